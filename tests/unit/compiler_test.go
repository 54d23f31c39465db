package unit_test

import (
	"testing"

	"github.com/eventscript-lang/evc/pkg/bytecode"
	"github.com/eventscript-lang/evc/pkg/compiler"
	"github.com/eventscript-lang/evc/pkg/types"
)

func pos(row int) types.Position {
	return types.Position{Row: row, Column: 1}
}

func compile(t *testing.T, root *types.Node, opts ...compiler.CompilerOption) *bytecode.Program {
	t.Helper()
	program, err := compiler.New(opts...).Compile(root, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return program
}

func compileExpectError(t *testing.T, root *types.Node, opts ...compiler.CompilerOption) error {
	t.Helper()
	_, err := compiler.New(opts...).Compile(root, nil)
	return err
}

// A single event handler that stores a constant into a variable.

func TestCompileSimpleEventHandler(t *testing.T) {
	store := types.NewAssignment(pos(1), types.NewStore(pos(1), 0), types.NewImmediate(pos(1), 7))
	root := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), store)

	program := compile(t, root)

	region := program.RegionByID(bytecode.RegionID{Kind: bytecode.RegionEventHandler, ID: 0})
	if region == nil {
		t.Fatalf("expected a region for event handler 0, got regions: %v", program.Regions)
	}
	if len(region.Words) == 0 {
		t.Errorf("expected non-empty emitted words for the handler body")
	}
}

// Constant folding should collapse 1 + 2 into a single Immediate(3) before
// emission, leaving no BinaryOp word in the output.

func TestCompileConstantFolding(t *testing.T) {
	sum := types.NewBinary(pos(1), types.OpAdd, types.NewImmediate(pos(1), 1), types.NewImmediate(pos(1), 2))
	store := types.NewAssignment(pos(1), types.NewStore(pos(1), 0), sum)
	root := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), store)

	program := compile(t, root)

	region := program.RegionByID(bytecode.RegionID{Kind: bytecode.RegionEventHandler, ID: 0})
	for _, w := range region.Words {
		class := types.OpcodeClass(w >> 12)
		if class == types.ClassBinaryOp {
			t.Errorf("expected constant folding to eliminate the addition, found a BinaryOp word")
		}
	}
}

// Dividing by a literal zero is a compile-time error raised during
// optimization's constant folding, not deferred to runtime.

func TestCompileDivideByZero(t *testing.T) {
	div := types.NewBinary(pos(1), types.OpDiv, types.NewImmediate(pos(1), 10), types.NewImmediate(pos(1), 0))
	store := types.NewAssignment(pos(1), types.NewStore(pos(1), 0), div)
	root := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), store)

	err := compileExpectError(t, root)
	if err == nil {
		t.Fatalf("expected a DivideByZero error, got nil")
	}
	var ce *types.Error
	if e, ok := err.(*types.Error); ok {
		ce = e
	}
	if ce == nil || ce.Kind != types.DivideByZero {
		t.Errorf("got error %v, want kind DivideByZero", err)
	}
}

// Assigning a Bool-typed condition to an integer variable is rejected by
// type checking.

func TestCompileTypeMismatch(t *testing.T) {
	cmp := types.NewBinary(pos(1), types.OpLt, types.NewImmediate(pos(1), 1), types.NewImmediate(pos(1), 2))
	store := types.NewAssignment(pos(1), types.NewStore(pos(1), 0), cmp)
	root := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), store)

	if err := compileExpectError(t, root); err == nil {
		t.Fatalf("expected a type error assigning Bool to Store, got nil")
	}
}

// A VM descriptor with an unreasonably small stack limit rejects any
// program whose region needs more depth than that.

func TestCompileStackOverflow(t *testing.T) {
	deep := types.NewBinary(pos(1), types.OpAdd,
		types.NewBinary(pos(1), types.OpMul, types.NewLoad(pos(1), 1), types.NewLoad(pos(1), 2)),
		types.NewBinary(pos(1), types.OpMul, types.NewLoad(pos(1), 3), types.NewLoad(pos(1), 4)))
	store := types.NewAssignment(pos(1), types.NewStore(pos(1), 0), deep)
	root := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), store)

	tinyVM := types.DefaultVMDescriptor()
	tinyVM.MaxStackDepth = 1

	err := compileExpectError(t, root, compiler.WithVM(tinyVM))
	if err == nil {
		t.Fatalf("expected a StackOverflow error, got nil")
	}
	ce, ok := err.(*types.Error)
	if !ok || ce.Kind != types.StackOverflow {
		t.Errorf("got error %v, want kind StackOverflow", err)
	}
}

// An edge-sensitive IfWhen survives the full pipeline: the optimizer must
// not fold its comparison condition, since comparison-branch folding and
// edge-sensitivity are mutually exclusive.

func TestCompileEdgeSensitiveIfWhen(t *testing.T) {
	cond := types.NewBinary(pos(1), types.OpGt, types.NewLoad(pos(1), 1), types.NewImmediate(pos(1), 0))
	then := types.NewBlock(pos(2), types.NewAssignment(pos(2), types.NewStore(pos(2), 0), types.NewImmediate(pos(2), 1)))
	ifWhen := types.NewIfWhen(pos(1), true, 3, 10, cond, then, nil)
	root := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), ifWhen)

	program := compile(t, root)

	region := program.RegionByID(bytecode.RegionID{Kind: bytecode.RegionEventHandler, ID: 0})
	foundCompareBranch := false
	for _, w := range region.Words {
		if types.OpcodeClass(w>>12) == types.ClassCompareBranch {
			foundCompareBranch = true
		}
	}
	if foundCompareBranch {
		t.Errorf("edge-sensitive conditionals must never fold into a CompareBranch word")
	}
}

// A reference to an array name absent from a supplied symbol table fails
// compilation with UnknownSymbol, not a silent success.

func TestCompileUnknownArraySymbol(t *testing.T) {
	symbols := types.NewStaticSymbolTable()
	// "a" is deliberately left out of the table.
	write := types.NewMemoryVector(pos(1), 100, 4, "a", true, types.NewStaticVector(pos(1), []int32{0}))
	assign := types.NewAssignment(pos(1), write, types.NewImmediate(pos(1), 1))
	root := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), assign)

	_, err := compiler.New().Compile(root, symbols)
	if err == nil {
		t.Fatalf("expected an UnknownSymbol error, got nil")
	}
	ce, ok := err.(*types.Error)
	if !ok || ce.Kind != types.UnknownSymbol {
		t.Errorf("got error %v, want kind UnknownSymbol", err)
	}
}

// Compiling the same program twice through a caching Compiler must hit the
// cache the second time rather than recompiling, and must return
// byte-identical output either way.

func TestCompilerCachingReturnsSameProgram(t *testing.T) {
	source := []byte("on tick => mem[0] = 7")
	calls := 0
	parse := func([]byte) (*types.Node, error) {
		calls++
		store := types.NewAssignment(pos(1), types.NewStore(pos(1), 0), types.NewImmediate(pos(1), 7))
		return types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), store), nil
	}

	c := compiler.New(compiler.WithCaching(true))
	first, err := c.CompileSource(source, nil, parse)
	if err != nil {
		t.Fatalf("CompileSource: %v", err)
	}
	second, err := c.CompileSource(source, nil, parse)
	if err != nil {
		t.Fatalf("CompileSource: %v", err)
	}
	if calls != 1 {
		t.Errorf("got %d parse calls, want 1 (second compile should hit the cache)", calls)
	}
	if first != second {
		t.Errorf("expected the cached compile to return the identical *bytecode.Program pointer")
	}
}
