// Package evc implements the EventScript compiler core: tree expansion,
// type checking, optimization, stack-depth analysis and emission to
// pre-link bytecode.
//
// EventScript is a small statically-typed event-driven scripting language
// for resource-constrained robot VMs. This module picks up after an
// external parser has produced an AST rooted at a Program node — lexing
// and parsing, symbol-table construction and the linker that resolves
// jump patches into absolute addresses all live outside this core.
//
// # Quick Start
//
//	root, err := myParser.Parse(source) // external
//	if err != nil {
//	    log.Fatal(err)
//	}
//	program, err := evc.Compile(root, symbols)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Reusing a Compiler across many programs, with caching enabled:
//	c := compiler.New(compiler.WithCaching(true))
//	program, err = c.CompileSource(source, symbols, myParser.Parse)
//
// # More Information
//
// For detailed documentation, see:
//   - AST node model: github.com/eventscript-lang/evc/pkg/types
//   - Pipeline passes: github.com/eventscript-lang/evc/pkg/{expand,typecheck,optimize,stackdepth,emit}
//   - Bytecode buffer: github.com/eventscript-lang/evc/pkg/bytecode
//   - VM descriptors: github.com/eventscript-lang/evc/pkg/vmdesc
package evc

import (
	"fmt"

	"github.com/eventscript-lang/evc/pkg/bytecode"
	"github.com/eventscript-lang/evc/pkg/compiler"
	"github.com/eventscript-lang/evc/pkg/types"
)

// Version returns the current version of the compiler core.
func Version() string {
	return "v0.1.0-dev"
}

// Compile runs root through the full pipeline using a fresh, default
// Compiler configured by opts. For repeated compiles, construct a
// compiler.Compiler with compiler.New instead so passes share a logger and,
// if enabled, a program cache.
func Compile(root *types.Node, symbols types.SymbolTable, opts ...compiler.CompilerOption) (*bytecode.Program, error) {
	return compiler.New(opts...).Compile(root, symbols)
}

// MustCompile is like Compile but panics if root cannot be compiled. It
// simplifies safe initialization of global state built from trusted,
// already-validated sources.
func MustCompile(root *types.Node, symbols types.SymbolTable, opts ...compiler.CompilerOption) *bytecode.Program {
	program, err := Compile(root, symbols, opts...)
	if err != nil {
		panic(fmt.Sprintf("evc: Compile: %v", err))
	}
	return program
}
