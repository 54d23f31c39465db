package emit

import (
	"github.com/eventscript-lang/evc/pkg/bytecode"
	"github.com/eventscript-lang/evc/pkg/types"
)

// expr emits n in an expression position, leaving exactly one scalar value
// on the operand stack.
func expr(b *bytecode.Builder, vm *types.VMDescriptor, n *types.Node) error {
	switch n.Kind {
	case types.KindImmediate:
		emitImmediate(b, vm, n.Value)
		return nil

	case types.KindLoad:
		b.Emit(word(vm, types.ClassLoad, mask12(n.VarAddr)))
		return nil

	case types.KindArrayRead:
		if err := expr(b, vm, n.IndexExpr()); err != nil {
			return err
		}
		b.Emit(word(vm, types.ClassIndexedLoad, mask12(n.ArraySize)))
		b.Emit(bytecode.Word(uint16(n.ArrayAddr)))
		return nil

	case types.KindBinaryArithmetic:
		if err := expr(b, vm, n.Left()); err != nil {
			return err
		}
		if err := expr(b, vm, n.Right()); err != nil {
			return err
		}
		b.Emit(word(vm, types.ClassBinaryOp, uint16(n.Op)))
		return nil

	case types.KindUnaryArithmetic:
		if err := expr(b, vm, n.Operand()); err != nil {
			return err
		}
		b.Emit(word(vm, types.ClassUnaryOp, uint16(n.Op)))
		return nil

	default:
		return types.NewError(types.InternalInvariantViolation,
			"emit: unexpected node kind in expression position: "+n.Kind.String(), n.Pos)
	}
}

// emitImmediate chooses between the single-word small-immediate encoding
// and the two-word large-immediate form (spec §4.6), using vm's configured
// threshold.
func emitImmediate(b *bytecode.Builder, vm *types.VMDescriptor, value int32) {
	if vm.FitsSmallImmediate(value) {
		b.Emit(word(vm, types.ClassSmallImmediate, uint16(value)&0x0FFF))
		return
	}
	b.Emit(word(vm, types.ClassLargeImmediate, 0))
	b.Emit(bytecode.Word(uint16(value)))
}
