package emit

import (
	"github.com/eventscript-lang/evc/pkg/bytecode"
	"github.com/eventscript-lang/evc/pkg/types"
)

// stmt emits n in a statement position, leaving the operand stack exactly
// as it found it.
func stmt(b *bytecode.Builder, vm *types.VMDescriptor, n *types.Node) error {
	switch n.Kind {
	case types.KindBlock:
		for _, c := range n.Children {
			if err := stmt(b, vm, c); err != nil {
				return err
			}
		}
		return nil

	case types.KindAssignment:
		return emitAssignment(b, vm, n)

	case types.KindIfWhen:
		return emitIfWhen(b, vm, n)

	case types.KindFoldedIfWhen:
		return emitFoldedIfWhen(b, vm, n)

	case types.KindWhile:
		return emitWhile(b, vm, n)

	case types.KindFoldedWhile:
		return emitFoldedWhile(b, vm, n)

	case types.KindEmit:
		return emitEmit(b, vm, n)

	case types.KindCall:
		return emitCall(b, vm, n)

	case types.KindCallSub:
		b.Emit(word(vm, types.ClassSubCall, mask12(n.SubroutineID)))
		return nil

	case types.KindReturn:
		b.Emit(word(vm, types.ClassReturn, 0))
		return nil

	default:
		return types.NewError(types.InternalInvariantViolation,
			"emit: unexpected node kind in statement position: "+n.Kind.String(), n.Pos)
	}
}

// emitAssignment evaluates rhs, then stores it through lhs (a Store or an
// ArrayWrite — spec §4.6: "ArrayWrite ... value already on stack").
func emitAssignment(b *bytecode.Builder, vm *types.VMDescriptor, n *types.Node) error {
	if err := expr(b, vm, n.Rhs()); err != nil {
		return err
	}
	lhs := n.Lhs()
	switch lhs.Kind {
	case types.KindStore:
		b.Emit(word(vm, types.ClassStore, mask12(lhs.VarAddr)))
		return nil
	case types.KindArrayWrite:
		if err := expr(b, vm, lhs.IndexExpr()); err != nil {
			return err
		}
		b.Emit(word(vm, types.ClassIndexedStore, mask12(lhs.ArraySize)))
		b.Emit(bytecode.Word(uint16(lhs.ArrayAddr)))
		return nil
	default:
		return types.NewError(types.InternalInvariantViolation,
			"emit: unexpected assignment target kind: "+lhs.Kind.String(), lhs.Pos)
	}
}
