package types

// The types in this file describe the symbol tables spec §3.3 calls
// "external" collaborators: they are built by the parser/symbol-table
// owner and merely queried — never mutated — by the compiler passes for
// the duration of a single compile() call (spec §5).

// VariableInfo is the entry a Variables table holds per scalar or array
// name: its memory address and its size in scalar slots (size ≥ 1; scalars
// have size 1).
type VariableInfo struct {
	Address int
	Size    int
}

// EventInfo is the entry an Events table holds per event name.
type EventInfo struct {
	EventID         int
	ExpectedArgSize int
}

// ParamDirection describes which way a native function's parameter memory
// flows: the VM passes native-function arguments by reference to
// caller-allocated memory (GLOSSARY), and a parameter's direction records
// whether that memory is read, written, or both. It is carried as data in
// NativeParamTemplate; no pass in this module reads it.
type ParamDirection int

const (
	ParamIn ParamDirection = iota
	ParamOut
	ParamInOut
)

// NativeParamTemplate describes one positional parameter of a native
// function: how many scalar slots it occupies and which direction data
// flows through it.
type NativeParamTemplate struct {
	Size      int
	Direction ParamDirection
}

// NativeFuncInfo is the entry a native-function table holds per name.
type NativeFuncInfo struct {
	FuncID int
	Params []NativeParamTemplate
}

// SymbolTable is the read-only view the compiler borrows from its caller:
// variable/event/subroutine/native-function name resolution. Implementations
// must be safe for the lifetime of one compile() call; the compiler takes no
// ownership and never mutates them (spec §5).
type SymbolTable interface {
	Variable(name string) (VariableInfo, bool)
	Event(name string) (EventInfo, bool)
	Subroutine(name string) (subroutineID int, ok bool)
	NativeFunc(name string) (NativeFuncInfo, bool)
}

// StaticSymbolTable is a plain in-memory SymbolTable, the shape a parser
// would build once per compilation unit and hand to the compiler.
type StaticSymbolTable struct {
	Variables map[string]VariableInfo
	Events    map[string]EventInfo
	Subs      map[string]int
	Natives   map[string]NativeFuncInfo
}

// NewStaticSymbolTable returns an empty, ready-to-populate symbol table.
func NewStaticSymbolTable() *StaticSymbolTable {
	return &StaticSymbolTable{
		Variables: make(map[string]VariableInfo),
		Events:    make(map[string]EventInfo),
		Subs:      make(map[string]int),
		Natives:   make(map[string]NativeFuncInfo),
	}
}

func (t *StaticSymbolTable) Variable(name string) (VariableInfo, bool) {
	v, ok := t.Variables[name]
	return v, ok
}

func (t *StaticSymbolTable) Event(name string) (EventInfo, bool) {
	v, ok := t.Events[name]
	return v, ok
}

func (t *StaticSymbolTable) Subroutine(name string) (int, bool) {
	v, ok := t.Subs[name]
	return v, ok
}

func (t *StaticSymbolTable) NativeFunc(name string) (NativeFuncInfo, bool) {
	v, ok := t.Natives[name]
	return v, ok
}
