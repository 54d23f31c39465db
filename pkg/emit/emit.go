// Package emit implements spec §4.6: the single recursive traversal that
// walks the optimized, stack-depth-analyzed tree and appends opcode words
// to a pre-link bytecode.Program. Every jump emits a 0-offset placeholder
// and registers a (site, label) patch; resolving those into absolute
// addresses is the linker's job, entirely out of scope here.
package emit

import (
	"github.com/eventscript-lang/evc/pkg/bytecode"
	"github.com/eventscript-lang/evc/pkg/types"
)

// Program emits root (a Program node) against vm, returning the finished
// pre-link Program with maxStackDepth recorded as its global maximum
// (spec §4.5).
func Program(root *types.Node, vm *types.VMDescriptor, maxStackDepth int) (*bytecode.Program, error) {
	if root.Kind != types.KindProgram {
		return nil, types.NewError(types.InternalInvariantViolation, "emit.Program requires a Program node", root.Pos)
	}

	b := bytecode.NewBuilder()
	for _, child := range root.Children {
		switch child.Kind {
		case types.KindEventDecl:
			b.SwitchRegion(bytecode.RegionID{Kind: bytecode.RegionEventHandler, ID: child.EventID})
			continue
		case types.KindSubDecl:
			b.SwitchRegion(bytecode.RegionID{Kind: bytecode.RegionSubroutine, ID: child.SubroutineID})
			continue
		}
		if err := stmt(b, vm, child); err != nil {
			return nil, err
		}
	}

	b.SetMaxStackDepth(maxStackDepth)
	return b.Finish(), nil
}

func word(vm *types.VMDescriptor, class types.OpcodeClass, payload uint16) bytecode.Word {
	return bytecode.OpcodeWord(vm, class, payload)
}

func mask12(v int) uint16 {
	return uint16(v) & 0x0FFF
}
