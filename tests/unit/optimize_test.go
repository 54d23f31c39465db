package unit_test

import (
	"testing"

	"github.com/eventscript-lang/evc/pkg/optimize"
	"github.com/eventscript-lang/evc/pkg/types"
)

func optimizeProgram(t *testing.T, root *types.Node) *types.Node {
	t.Helper()
	optimized, err := optimize.Program(root)
	if err != nil {
		t.Fatalf("optimize.Program: %v", err)
	}
	return optimized
}

// optimize(optimize(t)) must equal optimize(t) structurally (spec §8).

func TestOptimizeIdempotent(t *testing.T) {
	cond := types.NewBinary(pos(1), types.OpEq, types.NewLoad(pos(1), 0), types.NewImmediate(pos(1), 0))
	then := types.NewBlock(pos(1), types.NewAssignment(pos(1), types.NewStore(pos(1), 1), types.NewImmediate(pos(1), 1)))
	ifWhen := types.NewIfWhen(pos(1), false, 2, 0, cond, then, nil)
	sum := types.NewBinary(pos(1), types.OpAdd, types.NewImmediate(pos(1), 1), types.NewImmediate(pos(1), 2))
	store := types.NewAssignment(pos(1), types.NewStore(pos(1), 2), sum)
	root := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), ifWhen, store)

	once := optimizeProgram(t, root)
	dumped := dumpString(t, once)

	twiceRoot := types.NewProgram(pos(1), append([]*types.Node{}, once.Children...)...)
	twice := optimizeProgram(t, twiceRoot)

	if dumped != dumpString(t, twice) {
		t.Errorf("optimize is not idempotent:\nonce:\n%s\ntwice:\n%s", dumped, dumpString(t, twice))
	}
}

// x = 1 + 2 folds to a single Immediate(3) (spec §8 scenario 1).

func TestOptimizeConstantFolding(t *testing.T) {
	sum := types.NewBinary(pos(1), types.OpAdd, types.NewImmediate(pos(1), 1), types.NewImmediate(pos(1), 2))
	store := types.NewAssignment(pos(1), types.NewStore(pos(1), 0), sum)
	root := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), store)

	optimized := optimizeProgram(t, root)

	rhs := optimized.Children[1].Rhs()
	if rhs.Kind != types.KindImmediate || rhs.Value != 3 {
		t.Errorf("got %v, want a folded Immediate(3)", rhs)
	}
}

// if x == 0 then y = 1 end folds the comparison into a FoldedIfWhen (spec
// §8 scenario 2).

func TestOptimizeComparisonFolding(t *testing.T) {
	cond := types.NewBinary(pos(1), types.OpEq, types.NewLoad(pos(1), 0), types.NewImmediate(pos(1), 0))
	then := types.NewBlock(pos(1), types.NewAssignment(pos(1), types.NewStore(pos(1), 1), types.NewImmediate(pos(1), 1)))
	ifWhen := types.NewIfWhen(pos(1), false, 2, 0, cond, then, nil)
	root := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), ifWhen)

	optimized := optimizeProgram(t, root)

	folded := optimized.Children[1]
	if folded.Kind != types.KindFoldedIfWhen {
		t.Fatalf("got kind %s, want FoldedIfWhen", folded.Kind)
	}
	if folded.Op != types.OpEq {
		t.Errorf("got op %s, want Eq", folded.Op)
	}
}

// while x < 10 do x = x + 1 end folds into a FoldedWhile (spec §8 scenario 4).

func TestOptimizeWhileFolding(t *testing.T) {
	cond := types.NewBinary(pos(1), types.OpLt, types.NewLoad(pos(1), 0), types.NewImmediate(pos(1), 10))
	body := types.NewBlock(pos(1), types.NewAssignment(pos(1), types.NewStore(pos(1), 0),
		types.NewBinary(pos(1), types.OpAdd, types.NewLoad(pos(1), 0), types.NewImmediate(pos(1), 1))))
	while := types.NewWhile(pos(1), cond, body)
	root := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), while)

	optimized := optimizeProgram(t, root)

	folded := optimized.Children[1]
	if folded.Kind != types.KindFoldedWhile {
		t.Fatalf("got kind %s, want FoldedWhile", folded.Kind)
	}
}

// not (a < b) rewrites to a >= b via de Morgan on a comparison (spec §8
// scenario 5).

func TestOptimizeDeMorganComparison(t *testing.T) {
	cmp := types.NewBinary(pos(1), types.OpLt, types.NewLoad(pos(1), 0), types.NewLoad(pos(1), 1))
	not := types.NewUnary(pos(1), types.OpLogNot, cmp)
	store := types.NewAssignment(pos(1), types.NewStore(pos(1), 2), types.NewImmediate(pos(1), 0))
	ifWhen := types.NewIfWhen(pos(1), false, 2, 0, not, types.NewBlock(pos(1), store), nil)
	root := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), ifWhen)

	optimized := optimizeProgram(t, root)

	// The negated comparison must fold straight into a FoldedIfWhen on >=,
	// never surviving as a UnaryArithmetic(not, ...) wrapping a comparison.
	folded := optimized.Children[1]
	if folded.Kind != types.KindFoldedIfWhen {
		t.Fatalf("got kind %s, want FoldedIfWhen (de Morgan should enable comparison folding)", folded.Kind)
	}
	if folded.Op != types.OpGe {
		t.Errorf("got op %s, want Ge (de Morgan negation of Lt)", folded.Op)
	}
}

// 3 / 0 at compile time is a DivideByZero error, not a silently folded
// value (spec §8 scenario 6).

func TestOptimizeConstantDivideByZero(t *testing.T) {
	div := types.NewBinary(pos(1), types.OpDiv, types.NewImmediate(pos(1), 3), types.NewImmediate(pos(1), 0))
	store := types.NewAssignment(pos(1), types.NewStore(pos(1), 0), div)
	root := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), store)

	_, err := optimize.Program(root)
	if err == nil {
		t.Fatalf("expected DivideByZero, got nil")
	}
	ce, ok := err.(*types.Error)
	if !ok || ce.Kind != types.DivideByZero {
		t.Errorf("got error %v, want kind DivideByZero", err)
	}
}

// An edge-sensitive IfWhen's comparison condition must never fold into a
// FoldedIfWhen: the optimizer has no way to combine a compare-branch's
// single-step result with the previous-truth-value cell.

func TestOptimizeEdgeSensitiveNeverFolds(t *testing.T) {
	cond := types.NewBinary(pos(1), types.OpGt, types.NewLoad(pos(1), 0), types.NewImmediate(pos(1), 0))
	then := types.NewBlock(pos(1), types.NewAssignment(pos(1), types.NewStore(pos(1), 1), types.NewImmediate(pos(1), 1)))
	ifWhen := types.NewIfWhen(pos(1), true, 2, 10, cond, then, nil)
	root := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), ifWhen)

	optimized := optimizeProgram(t, root)

	result := optimized.Children[1]
	if result.Kind != types.KindIfWhen {
		t.Errorf("got kind %s, want IfWhen unchanged (edge-sensitive conditions never fold)", result.Kind)
	}
}
