package unit_test

import (
	"testing"

	"github.com/eventscript-lang/evc/pkg/stackdepth"
	"github.com/eventscript-lang/evc/pkg/types"
)

// x = 1 + 2, before constant folding, requires a stack depth of 2: both
// immediates are on the stack together when the addition runs, which then
// leaves one result for the store. (Once the optimizer folds the sum to
// Immediate(3), spec §8 scenario 1's depth is 1.)

func TestStackdepthSimpleAssignment(t *testing.T) {
	sum := types.NewBinary(pos(1), types.OpAdd, types.NewImmediate(pos(1), 1), types.NewImmediate(pos(1), 2))
	store := types.NewAssignment(pos(1), types.NewStore(pos(1), 0), sum)
	root := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), store)

	depth, err := stackdepth.Program(root, types.DefaultVMDescriptor())
	if err != nil {
		t.Fatalf("stackdepth.Program: %v", err)
	}
	if depth != 2 {
		t.Errorf("got depth %d, want 2", depth)
	}
}

// A region whose computed depth exceeds the VM's limit is rejected with
// StackOverflow, and the reported depth is still the true computed value.

func TestStackdepthOverflow(t *testing.T) {
	nested := types.NewBinary(pos(1), types.OpAdd,
		types.NewBinary(pos(1), types.OpMul, types.NewLoad(pos(1), 1), types.NewLoad(pos(1), 2)),
		types.NewLoad(pos(1), 3))
	store := types.NewAssignment(pos(1), types.NewStore(pos(1), 0), nested)
	root := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), store)

	tinyVM := types.DefaultVMDescriptor()
	tinyVM.MaxStackDepth = 1

	depth, err := stackdepth.Program(root, tinyVM)
	if err == nil {
		t.Fatalf("expected StackOverflow, got nil (computed depth %d)", depth)
	}
	ce, ok := err.(*types.Error)
	if !ok || ce.Kind != types.StackOverflow {
		t.Errorf("got error %v, want kind StackOverflow", err)
	}
	if depth < 2 {
		t.Errorf("got reported depth %d, want the true (over-limit) computed depth", depth)
	}
}

// An edge-sensitive IfWhen's condition needs one extra transient stack
// slot beyond its plain evaluation depth, for the previous-truth-value
// cell round-tripped through memory.

func TestStackdepthEdgeSensitiveExtraSlot(t *testing.T) {
	plainCond := types.NewLoad(pos(1), 0)
	then := types.NewBlock(pos(1), types.NewAssignment(pos(1), types.NewStore(pos(1), 1), types.NewImmediate(pos(1), 1)))

	plain := types.NewIfWhen(pos(1), false, 2, 0, plainCond, then, nil)
	edge := types.NewIfWhen(pos(1), true, 2, 10, plainCond.DeepCopy(), then.DeepCopy(), nil)

	plainRoot := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), plain)
	edgeRoot := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), edge)

	plainDepth, err := stackdepth.Program(plainRoot, types.DefaultVMDescriptor())
	if err != nil {
		t.Fatalf("stackdepth.Program(plain): %v", err)
	}
	edgeDepth, err := stackdepth.Program(edgeRoot, types.DefaultVMDescriptor())
	if err != nil {
		t.Fatalf("stackdepth.Program(edge): %v", err)
	}
	if edgeDepth != plainDepth+1 {
		t.Errorf("got edge-sensitive depth %d, want %d (plain depth + 1)", edgeDepth, plainDepth+1)
	}
}

// a[i] = 5 needs a stack depth of 2: emitAssignment pushes the rhs first,
// then evaluates the index expression on top of it before the indexed
// store consumes both, so the rhs value and the index computation overlap
// on the stack even though each alone only ever needs 1 slot.

func TestStackdepthArrayWriteOverlapsRhsAndIndex(t *testing.T) {
	write := types.NewArrayWrite(pos(1), 4, 8, "a", types.NewLoad(pos(1), 0))
	assign := types.NewAssignment(pos(1), write, types.NewImmediate(pos(1), 5))
	root := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), assign)

	depth, err := stackdepth.Program(root, types.DefaultVMDescriptor())
	if err != nil {
		t.Fatalf("stackdepth.Program: %v", err)
	}
	if depth != 2 {
		t.Errorf("got depth %d, want 2 (rhs stays on the stack under the index push)", depth)
	}
}

// a[b + c] = 5 still costs one more than the index alone needs, once the
// index expression is itself non-trivial.

func TestStackdepthArrayWriteWithDeeperIndex(t *testing.T) {
	index := types.NewBinary(pos(1), types.OpAdd, types.NewLoad(pos(1), 1), types.NewLoad(pos(1), 2))
	write := types.NewArrayWrite(pos(1), 4, 8, "a", index)
	assign := types.NewAssignment(pos(1), write, types.NewImmediate(pos(1), 5))
	root := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), assign)

	depth, err := stackdepth.Program(root, types.DefaultVMDescriptor())
	if err != nil {
		t.Fatalf("stackdepth.Program: %v", err)
	}
	// 1 (rhs, held) + max(depth(rhs)=1, depth(index)=2) = 3
	if depth != 3 {
		t.Errorf("got depth %d, want 3", depth)
	}
}

// An ArrayRead used in expression position (not as an assignment target)
// is unaffected by the overlap above: the index is fully consumed by the
// indexed load, leaving a single value.

func TestStackdepthArrayReadInExpression(t *testing.T) {
	read := types.NewArrayRead(pos(1), 4, 8, "a", types.NewLoad(pos(1), 0))
	sum := types.NewBinary(pos(1), types.OpAdd, read, types.NewImmediate(pos(1), 1))
	assign := types.NewAssignment(pos(1), types.NewStore(pos(1), 0), sum)
	root := types.NewProgram(pos(1), types.NewEventDecl(pos(1), 0), assign)

	depth, err := stackdepth.Program(root, types.DefaultVMDescriptor())
	if err != nil {
		t.Fatalf("stackdepth.Program: %v", err)
	}
	// read leaves 1 value behind, then the "+ 1" immediate is pushed on top: 2.
	if depth != 2 {
		t.Errorf("got depth %d, want 2", depth)
	}
}
