package emit

import (
	"github.com/eventscript-lang/evc/pkg/bytecode"
	"github.com/eventscript-lang/evc/pkg/types"
)

// emitIfWhen implements spec §4.6's IfWhen rule: condition, a conditional
// jump over the then-block, the then-block, an unconditional jump over the
// else-block, the else-block. The edgeSensitive form first reduces the
// evaluated condition to "true now and false last time" using only the
// opcode classes spec §6 defines — there is no dedicated stack-duplicate
// class, so the previous-truth cell is round-tripped through memory
// instead of keeping two live copies of the condition on the stack:
//
//	Load  edgeStateAddr      ; oldPrev
//	UnaryOp not              ; !oldPrev
//	<cond>                   ; condVal   (evaluated exactly once)
//	Store edgeStateAddr      ; mem := condVal, remembered for next time
//	Load  edgeStateAddr      ; condVal reloaded
//	BinaryOp and             ; condVal and !oldPrev
func emitIfWhen(b *bytecode.Builder, vm *types.VMDescriptor, n *types.Node) error {
	if err := emitCondition(b, vm, n.EdgeSensitive, n.EdgeStateAddr, n.Cond()); err != nil {
		return err
	}
	return emitBranch(b, vm, n.Then(), n.Else())
}

// emitFoldedIfWhen implements the FoldedIfWhen rule: left, right, a single
// compare-and-branch-if-not-op that skips the then-block. The optimizer
// never produces an edge-sensitive FoldedIfWhen (pkg/optimize's
// optimizeIfWhen leaves edge-sensitive conditionals unfolded, since the
// compare-branch opcode branches directly off lhs/rhs with no intermediate
// boolean value to combine with the previous-truth cell).
func emitFoldedIfWhen(b *bytecode.Builder, vm *types.VMDescriptor, n *types.Node) error {
	if err := expr(b, vm, n.CmpLhs()); err != nil {
		return err
	}
	if err := expr(b, vm, n.CmpRhs()); err != nil {
		return err
	}
	b.Emit(word(vm, types.ClassCompareBranch, 0))
	b.Emit(bytecode.Word(uint16(n.Op)))
	skip := b.NewLabel()
	b.AddPatch(b.EmitPending(), skip)
	return emitBranchBody(b, vm, n.Then(), n.Else(), skip)
}

// emitWhile implements the While rule: loop-top label, condition, forward
// branch past the loop, body, unconditional back-edge jump to the loop top.
func emitWhile(b *bytecode.Builder, vm *types.VMDescriptor, n *types.Node) error {
	loopTop := b.NewLabel()
	b.DefineLabel(loopTop)
	if err := expr(b, vm, n.Cond()); err != nil {
		return err
	}
	b.Emit(word(vm, types.ClassConditionalBranch, 0))
	afterLoop := b.NewLabel()
	b.AddPatch(b.EmitPending(), afterLoop)
	if err := stmt(b, vm, n.Body()); err != nil {
		return err
	}
	b.Emit(word(vm, types.ClassJump, 0))
	b.AddPatch(b.EmitPending(), loopTop)
	b.DefineLabel(afterLoop)
	return nil
}

// emitFoldedWhile implements the FoldedWhile rule's single compare-branch
// form of the same loop shape.
func emitFoldedWhile(b *bytecode.Builder, vm *types.VMDescriptor, n *types.Node) error {
	loopTop := b.NewLabel()
	b.DefineLabel(loopTop)
	if err := expr(b, vm, n.CmpLhs()); err != nil {
		return err
	}
	if err := expr(b, vm, n.CmpRhs()); err != nil {
		return err
	}
	b.Emit(word(vm, types.ClassCompareBranch, 0))
	b.Emit(bytecode.Word(uint16(n.Op)))
	afterLoop := b.NewLabel()
	b.AddPatch(b.EmitPending(), afterLoop)
	if err := stmt(b, vm, n.Body()); err != nil {
		return err
	}
	b.Emit(word(vm, types.ClassJump, 0))
	b.AddPatch(b.EmitPending(), loopTop)
	b.DefineLabel(afterLoop)
	return nil
}

func emitCondition(b *bytecode.Builder, vm *types.VMDescriptor, edgeSensitive bool, edgeStateAddr int, cond *types.Node) error {
	if !edgeSensitive {
		return expr(b, vm, cond)
	}
	b.Emit(word(vm, types.ClassLoad, mask12(edgeStateAddr)))
	b.Emit(word(vm, types.ClassUnaryOp, uint16(types.OpLogNot)))
	if err := expr(b, vm, cond); err != nil {
		return err
	}
	b.Emit(word(vm, types.ClassStore, mask12(edgeStateAddr)))
	b.Emit(word(vm, types.ClassLoad, mask12(edgeStateAddr)))
	b.Emit(word(vm, types.ClassBinaryOp, uint16(types.OpLogAnd)))
	return nil
}

// emitBranch emits the conditional-jump-over-then / then / jump-over-else /
// else sequence once the condition value is already on the stack.
func emitBranch(b *bytecode.Builder, vm *types.VMDescriptor, then, els *types.Node) error {
	b.Emit(word(vm, types.ClassConditionalBranch, 0))
	skip := b.NewLabel()
	b.AddPatch(b.EmitPending(), skip)
	return emitBranchBody(b, vm, then, els, skip)
}

// emitBranchBody emits then/else given that a conditional branch to skip
// has already been registered (shared by the plain and folded forms, whose
// condition-evaluation prefixes differ but whose then/else shape doesn't).
func emitBranchBody(b *bytecode.Builder, vm *types.VMDescriptor, then, els *types.Node, skip bytecode.Label) error {
	if err := stmt(b, vm, then); err != nil {
		return err
	}
	if els == nil {
		b.DefineLabel(skip)
		return nil
	}
	b.Emit(word(vm, types.ClassJump, 0))
	afterElse := b.NewLabel()
	b.AddPatch(b.EmitPending(), afterElse)
	b.DefineLabel(skip)
	if err := stmt(b, vm, els); err != nil {
		return err
	}
	b.DefineLabel(afterElse)
	return nil
}
