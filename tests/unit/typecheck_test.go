package unit_test

import (
	"testing"

	"github.com/eventscript-lang/evc/pkg/typecheck"
	"github.com/eventscript-lang/evc/pkg/types"
)

// Running the type checker twice yields the same result and never mutates
// the tree beyond writing the same RetType a second time (spec §8).

func TestTypecheckDeterminism(t *testing.T) {
	cond := types.NewBinary(pos(1), types.OpLt, types.NewLoad(pos(1), 0), types.NewImmediate(pos(1), 10))
	then := types.NewBlock(pos(1), types.NewAssignment(pos(1), types.NewStore(pos(1), 1), types.NewImmediate(pos(1), 1)))
	ifWhen := types.NewIfWhen(pos(1), false, 2, 0, cond, then, nil)
	root := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), ifWhen)

	if err := typecheck.Program(root); err != nil {
		t.Fatalf("first typecheck.Program: %v", err)
	}
	first := dumpString(t, root)

	if err := typecheck.Program(root); err != nil {
		t.Fatalf("second typecheck.Program: %v", err)
	}
	second := dumpString(t, root)

	if first != second {
		t.Errorf("typecheck is not deterministic:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

// An IfWhen condition must be Bool; an Int condition is rejected.

func TestTypecheckConditionMustBeBool(t *testing.T) {
	then := types.NewBlock(pos(1), types.NewAssignment(pos(1), types.NewStore(pos(1), 1), types.NewImmediate(pos(1), 1)))
	ifWhen := types.NewIfWhen(pos(1), false, 2, 0, types.NewLoad(pos(1), 0), then, nil)
	root := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), ifWhen)

	err := typecheck.Program(root)
	if err == nil {
		t.Fatalf("expected a type error, got nil")
	}
	ce, ok := err.(*types.Error)
	if !ok || ce.Kind != types.TypeError {
		t.Errorf("got error %v, want kind TypeError", err)
	}
}

// A comparison's operands must both be Int; mixing a Bool subexpression in
// is rejected.

func TestTypecheckComparisonOperandsMustBeInt(t *testing.T) {
	boolExpr := types.NewBinary(pos(1), types.OpLt, types.NewLoad(pos(1), 0), types.NewImmediate(pos(1), 1))
	badCmp := types.NewBinary(pos(1), types.OpEq, boolExpr, types.NewImmediate(pos(1), 1))
	store := types.NewAssignment(pos(1), types.NewStore(pos(1), 2), types.NewImmediate(pos(1), 0))
	ifWhen := types.NewIfWhen(pos(1), false, 2, 0, badCmp, types.NewBlock(pos(1), store), nil)
	root := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), ifWhen)

	if err := typecheck.Program(root); err == nil {
		t.Fatalf("expected a type error comparing a Bool operand, got nil")
	}
}
