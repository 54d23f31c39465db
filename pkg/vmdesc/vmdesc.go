// Package vmdesc loads a target-VM descriptor (spec §6) from YAML, the one
// piece of file I/O the core exposes directly — everything else (source
// text, symbol tables, the linker) is handed to the compiler already
// parsed by its caller.
package vmdesc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eventscript-lang/evc/pkg/types"
)

// document is the on-disk shape; opcode class names are spelled the way
// §6 names them (SmallImmediate, LargeImmediate, ...) so a descriptor file
// reads the same as the spec's own class table.
type document struct {
	BitWidth          int              `yaml:"bitWidth"`
	SmallImmediateMin int32            `yaml:"smallImmediateMin"`
	SmallImmediateMax int32            `yaml:"smallImmediateMax"`
	MaxStackDepth     int              `yaml:"maxStackDepth"`
	Opcodes           map[string]uint16 `yaml:"opcodes"`
}

var classNames = map[string]types.OpcodeClass{
	"SmallImmediate":    types.ClassSmallImmediate,
	"LargeImmediate":    types.ClassLargeImmediate,
	"Load":              types.ClassLoad,
	"Store":             types.ClassStore,
	"IndexedLoad":       types.ClassIndexedLoad,
	"IndexedStore":      types.ClassIndexedStore,
	"BinaryOp":          types.ClassBinaryOp,
	"UnaryOp":           types.ClassUnaryOp,
	"Jump":              types.ClassJump,
	"ConditionalBranch": types.ClassConditionalBranch,
	"CompareBranch":     types.ClassCompareBranch,
	"Emit":              types.ClassEmit,
	"NativeCall":        types.ClassNativeCall,
	"SubCall":           types.ClassSubCall,
	"Return":            types.ClassReturn,
	"Stop":              types.ClassStop,
}

// Load reads a VMDescriptor from a YAML file at path.
func Load(path string) (*types.VMDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vmdesc: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a VMDescriptor from YAML bytes already read from disk or
// fetched from elsewhere.
func Parse(data []byte) (*types.VMDescriptor, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("vmdesc: parsing descriptor: %w", err)
	}

	vm := &types.VMDescriptor{
		BitWidth:          doc.BitWidth,
		SmallImmediateMin: doc.SmallImmediateMin,
		SmallImmediateMax: doc.SmallImmediateMax,
		MaxStackDepth:     doc.MaxStackDepth,
		Opcodes:           make(map[types.OpcodeClass]uint16, len(doc.Opcodes)),
	}
	for name, value := range doc.Opcodes {
		class, ok := classNames[name]
		if !ok {
			return nil, fmt.Errorf("vmdesc: unknown opcode class %q", name)
		}
		vm.Opcodes[class] = value
	}
	return vm, nil
}
