package emit

import (
	"github.com/eventscript-lang/evc/pkg/bytecode"
	"github.com/eventscript-lang/evc/pkg/types"
)

// emitCall implements the Call rule: each argument expression is evaluated
// and stored into its pre-agreed memory address (spec §4.6: "arguments are
// referenced by their memory addresses"), left to right (spec §9's open
// question on argument evaluation order), before the native-call opcode
// runs. A StaticVector argument is a compile-time-constant list (spec §4.2
// rule 7's carve-out) — its elements are written directly, one immediate
// per slot, with no runtime evaluation needed.
func emitCall(b *bytecode.Builder, vm *types.VMDescriptor, n *types.Node) error {
	if err := storeArguments(b, vm, n.Children, n.ArgumentsAddr); err != nil {
		return err
	}
	b.Emit(word(vm, types.ClassNativeCall, mask12(n.FuncID)))
	return nil
}

// emitEmit implements the Emit rule. The payload slots at arrayAddr are
// filled the same way Call's arguments are, then the native-emit opcode
// fires unconditionally; arraySize == 0 simply means there is no payload
// to fill, not that the event itself goes unfired.
func emitEmit(b *bytecode.Builder, vm *types.VMDescriptor, n *types.Node) error {
	addrs := make([]int, len(n.Children))
	for i := range addrs {
		addrs[i] = n.ArrayAddr + i
	}
	if err := storeArguments(b, vm, n.Children, addrs); err != nil {
		return err
	}
	b.Emit(word(vm, types.ClassEmit, mask12(n.EventID)))
	b.Emit(bytecode.Word(uint16(n.ArrayAddr)))
	return nil
}

func storeArguments(b *bytecode.Builder, vm *types.VMDescriptor, args []*types.Node, addrs []int) error {
	for i, arg := range args {
		addr := addrs[i]
		if arg.Kind == types.KindStaticVector {
			for j, v := range arg.Values {
				emitImmediate(b, vm, v)
				b.Emit(word(vm, types.ClassStore, mask12(addr+j)))
			}
			continue
		}
		if err := expr(b, vm, arg); err != nil {
			return err
		}
		b.Emit(word(vm, types.ClassStore, mask12(addr)))
	}
	return nil
}
