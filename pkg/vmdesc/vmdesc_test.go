package vmdesc_test

import (
	"testing"

	"github.com/eventscript-lang/evc/pkg/types"
	"github.com/eventscript-lang/evc/pkg/vmdesc"
)

const sample = `
bitWidth: 16
smallImmediateMin: -2048
smallImmediateMax: 2047
maxStackDepth: 24
opcodes:
  SmallImmediate: 0
  LargeImmediate: 1
  Load: 2
  Store: 3
  IndexedLoad: 4
  IndexedStore: 5
  BinaryOp: 6
  UnaryOp: 7
  Jump: 8
  ConditionalBranch: 9
  CompareBranch: 10
  Emit: 11
  NativeCall: 12
  SubCall: 13
  Return: 14
  Stop: 15
`

func TestParseValidDescriptor(t *testing.T) {
	vm, err := vmdesc.Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if vm.MaxStackDepth != 24 {
		t.Errorf("got MaxStackDepth %d, want 24", vm.MaxStackDepth)
	}
	if vm.Opcode(types.ClassCompareBranch) != 10 {
		t.Errorf("got CompareBranch opcode %d, want 10", vm.Opcode(types.ClassCompareBranch))
	}
	if !vm.FitsSmallImmediate(2047) || vm.FitsSmallImmediate(2048) {
		t.Errorf("small-immediate bound not honored")
	}
}

func TestParseUnknownOpcodeClassRejected(t *testing.T) {
	bad := sample + "  NotARealClass: 3\n"
	_, err := vmdesc.Parse([]byte(bad))
	if err == nil {
		t.Fatalf("expected an error for an unknown opcode class name, got nil")
	}
}

func TestParseMalformedYAMLRejected(t *testing.T) {
	_, err := vmdesc.Parse([]byte("not: [valid"))
	if err == nil {
		t.Fatalf("expected a YAML parse error, got nil")
	}
}
