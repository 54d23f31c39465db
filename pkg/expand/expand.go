// Package expand implements spec §4.2's tree-expansion pass: it lowers
// "abstract" vector-valued nodes (StaticVectorNode, MemoryVectorNode),
// compound assignments, and array-slice accesses into the concrete scalar
// node set pkg/typecheck, pkg/optimize, pkg/stackdepth and pkg/emit
// consume.
//
// Every exported entry point follows spec §4.1's pass convention: it takes
// ownership of the node(s) passed in and returns a replacement (which may
// be the same node, unchanged) or an error. Returning nil without an error
// is never legal for an expression slot.
package expand

import (
	"log/slog"

	"github.com/eventscript-lang/evc/pkg/types"
)

// Context carries the read-only collaborators the pass needs: the symbol
// table (spec §3.3) and a logger for pass tracing. It is threaded through
// every recursive call instead of stored in a receiver, matching the
// stateless-pass convention spec §9 describes.
type Context struct {
	Symbols types.SymbolTable
	Logger  *slog.Logger
}

// NewContext returns a Context ready to drive Program.
func NewContext(symbols types.SymbolTable, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{Symbols: symbols, Logger: logger}
}

// checkArraySymbol validates node's ArrayName against ctx.Symbols, when a
// symbol table was supplied. Nodes built directly by tests or by a caller
// that resolved names to addresses itself carry no name to check against a
// nil table, so this is a no-op unless ctx.Symbols is present — the one
// case spec §7's UnknownSymbol exists for is a parser that hands the
// compiler both a name-bearing tree and the table it should have resolved
// against, and the two disagree.
func checkArraySymbol(node *types.Node, ctx *Context) error {
	if ctx.Symbols == nil {
		return nil
	}
	info, ok := ctx.Symbols.Variable(node.ArrayName)
	if !ok {
		return types.NewError(types.UnknownSymbol,
			"reference to undeclared variable "+node.ArrayName, node.Pos)
	}
	if info.Address != node.ArrayAddr || info.Size != node.ArraySize {
		return types.NewError(types.InternalInvariantViolation,
			"array "+node.ArrayName+" resolved to an address/size that disagrees with its symbol-table entry", node.Pos)
	}
	return nil
}

// Program expands the top-level Program node's flat child list in place,
// left to right (spec §5's fixed ordering), replacing each child with its
// expanded form.
func Program(root *types.Node, ctx *Context) (*types.Node, error) {
	if root.Kind != types.KindProgram {
		return nil, types.NewError(types.InternalInvariantViolation, "expand.Program requires a Program node", root.Pos)
	}
	ctx.Logger.Debug("expand: entering program", "children", len(root.Children))
	for i, child := range root.Children {
		expanded, err := stmt(child, i, ctx)
		if err != nil {
			return nil, err
		}
		root.Children[i] = expanded
	}
	return root, nil
}
