// Package bytecode defines the pre-link output contract spec §6 describes:
// a list of (region, opcode-word-sequence, pending-jump-patches) triples,
// one per event handler and subroutine, plus the program's global maximum
// stack depth. Concatenating regions into one address space and resolving
// jump patches into absolute offsets is the linker's job — out of scope
// here (spec §1) — so this package only defines the shape pkg/emit fills in
// and a Builder that accumulates it one word at a time.
package bytecode

import "github.com/eventscript-lang/evc/pkg/types"

// Word is one 16-bit VM instruction word (spec §6): top 4 bits opcode
// class, low 12 bits payload, with some classes (LargeImmediate,
// CompareBranch) followed by one extra word that is not opcode-shaped.
type Word uint16

// Label identifies a yet-unresolved jump target within a Region. It carries
// no address — DefineLabel records where it ends up, and the linker uses
// that to patch every Patch that references it.
type Label int

// RegionKind distinguishes an event handler's region from a subroutine's.
type RegionKind int

const (
	RegionEventHandler RegionKind = iota
	RegionSubroutine
)

// RegionID names one region: which event or subroutine it implements.
type RegionID struct {
	Kind RegionKind
	ID   int // EventID or SubroutineID, per Kind
}

// Patch is a pending jump fix-up: the word at Site (a 0-offset placeholder
// pkg/emit wrote) must be rewritten by the linker to the resolved address
// of Target once Target's Region.Labels entry is known.
type Patch struct {
	Site   int
	Target Label
}

// Region is one event handler or subroutine's pre-link instruction stream.
type Region struct {
	ID      RegionID
	Words   []Word
	Patches []Patch
	// Labels maps a Label defined within this region to the word offset it
	// was defined at (DefineLabel). The linker resolves a Patch by looking
	// up its Target here once region concatenation assigns this region a
	// base address.
	Labels map[Label]int
}

// Program is the complete pre-link output of one compile() call: every
// region plus the global maximum operand-stack depth the linker/VM must
// reserve (spec §4.5, §6).
type Program struct {
	Regions       []*Region
	MaxStackDepth int
}

// RegionByID returns the region with the given id, or nil if none exists
// yet.
func (p *Program) RegionByID(id RegionID) *Region {
	for _, r := range p.Regions {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// Builder accumulates a Program one word at a time across possibly many
// regions, matching spec §4.6's "single recursive traversal" emission
// model: the active region changes as the walk crosses EventDecl/SubDecl
// markers, and every write lands in whichever region is currently active.
type Builder struct {
	regions    []*Region
	byID       map[RegionID]*Region
	active     *Region
	nextLabel  Label
	maxStack   int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{byID: make(map[RegionID]*Region)}
}

// SwitchRegion makes id the active region, creating it if this is the
// first time emission has entered it. Subsequent Emit/EmitPending/
// DefineLabel calls land in this region until the next SwitchRegion.
func (b *Builder) SwitchRegion(id RegionID) {
	if r, ok := b.byID[id]; ok {
		b.active = r
		return
	}
	r := &Region{ID: id, Labels: make(map[Label]int)}
	b.byID[id] = r
	b.regions = append(b.regions, r)
	b.active = r
}

// Active returns the currently active region. Panics if no region has been
// opened yet — every caller must SwitchRegion before emitting.
func (b *Builder) Active() *Region {
	if b.active == nil {
		panic("bytecode: Emit called before any SwitchRegion")
	}
	return b.active
}

// Emit appends word to the active region and returns its offset.
func (b *Builder) Emit(word Word) int {
	r := b.Active()
	r.Words = append(r.Words, word)
	return len(r.Words) - 1
}

// EmitPending appends a zero placeholder word (spec §4.6: "All jumps emit
// 0-offset placeholders") and returns its offset, for use as a Patch site.
func (b *Builder) EmitPending() int {
	return b.Emit(0)
}

// NewLabel allocates a fresh, builder-wide unique jump target.
func (b *Builder) NewLabel() Label {
	l := b.nextLabel
	b.nextLabel++
	return l
}

// DefineLabel records that label resolves to the active region's current
// end-of-stream offset — the next word Emit writes is where jumps to label
// should land.
func (b *Builder) DefineLabel(label Label) {
	r := b.Active()
	r.Labels[label] = len(r.Words)
}

// AddPatch registers that the word at site (in the active region) must be
// rewritten by the linker to the resolved address of target.
func (b *Builder) AddPatch(site int, target Label) {
	r := b.Active()
	r.Patches = append(r.Patches, Patch{Site: site, Target: target})
}

// SetMaxStackDepth records the program-wide maximum operand-stack depth
// (spec §4.5) so the linker/VM can reserve stack before execution.
func (b *Builder) SetMaxStackDepth(depth int) {
	b.maxStack = depth
}

// Finish returns a pointer to a new Program holding the accumulated
// regions and the recorded maximum stack depth.
func (b *Builder) Finish() *Program {
	return &Program{Regions: b.regions, MaxStackDepth: b.maxStack}
}

// opcodeWord packs an opcode class and payload into one Word per the
// top-4-bits/low-12-bits layout spec §6 fixes, using the numeric class
// assignment vm supplies.
func opcodeWord(vm *types.VMDescriptor, class types.OpcodeClass, payload uint16) Word {
	const payloadMask = 0x0FFF
	opcode := vm.Opcode(class)
	return Word((opcode&0xF)<<12 | (payload & payloadMask))
}

// OpcodeWord exposes opcodeWord to pkg/emit, the only other package allowed
// to assemble raw Words.
func OpcodeWord(vm *types.VMDescriptor, class types.OpcodeClass, payload uint16) Word {
	return opcodeWord(vm, class, payload)
}
