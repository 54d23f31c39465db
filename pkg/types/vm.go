package types

// OpcodeClass is one of the fixed instruction classes spec §6 defines; the
// top 4 bits of each 16-bit word select a class, the low 12 bits carry a
// class-specific payload. The exact numeric assignment per class is part
// of the target-VM descriptor, not fixed by this package (spec §6: "Exact
// numeric assignments are supplied by the VM descriptor, not fixed by this
// spec").
type OpcodeClass int

const (
	ClassSmallImmediate OpcodeClass = iota
	ClassLargeImmediate
	ClassLoad
	ClassStore
	ClassIndexedLoad
	ClassIndexedStore
	ClassBinaryOp
	ClassUnaryOp
	ClassJump
	ClassConditionalBranch
	ClassCompareBranch
	ClassEmit
	ClassNativeCall
	ClassSubCall
	ClassReturn
	ClassStop
)

// VMDescriptor is the target-VM description spec §6 lists as an input to
// the core: word bit width, the small-immediate encoding range, and the
// opcode numbering table. The compiler only reads it.
type VMDescriptor struct {
	// BitWidth is the VM's word size; 16-bit is the only width this
	// pipeline's encoding decisions (spec §6) assume.
	BitWidth int
	// SmallImmediateMin/Max bound the range a constant must fall in to use
	// the single-word small-immediate encoding; outside that range emission
	// falls back to the two-word large-immediate form (spec §4.6).
	SmallImmediateMin int32
	SmallImmediateMax int32
	// MaxStackDepth is the VM's operand-stack limit; pkg/stackdepth's
	// reported maximum is checked against it (StackOverflow, spec §7).
	MaxStackDepth int
	// Opcodes maps each instruction class to its numeric assignment on this
	// particular VM build.
	Opcodes map[OpcodeClass]uint16
}

// FitsSmallImmediate reports whether v can be encoded as a small immediate
// on this VM.
func (d *VMDescriptor) FitsSmallImmediate(v int32) bool {
	return v >= d.SmallImmediateMin && v <= d.SmallImmediateMax
}

// Opcode looks up the numeric assignment for class c, panicking if the
// descriptor omits it — an incomplete VMDescriptor is a caller bug, not a
// user-correctable compile error.
func (d *VMDescriptor) Opcode(c OpcodeClass) uint16 {
	op, ok := d.Opcodes[c]
	if !ok {
		panic("types: VMDescriptor missing opcode assignment for class")
	}
	return op
}

// DefaultVMDescriptor returns the canonical 16-bit descriptor spec §6
// describes as "typical": small-immediate range [-2048, 2047], opcode
// classes numbered in declaration order. Callers targeting a real device
// should load an actual descriptor via pkg/vmdesc instead.
func DefaultVMDescriptor() *VMDescriptor {
	d := &VMDescriptor{
		BitWidth:          16,
		SmallImmediateMin: -2048,
		SmallImmediateMax: 2047,
		MaxStackDepth:     32,
		Opcodes:           make(map[OpcodeClass]uint16),
	}
	for i := ClassSmallImmediate; i <= ClassStop; i++ {
		d.Opcodes[i] = uint16(i)
	}
	return d
}
