// Package types defines the shared vocabulary the whole EventScript compiler
// pipeline is built on.
//
// This package contains:
//   - Node: the single AST node type every pass (expand, typecheck,
//     optimize, stackdepth, emit) consumes and rewrites.
//   - Type, Op, Position: the small closed value types a Node carries.
//   - Error: a structured compile-time error carrying a source position.
//   - SymbolTable, VMDescriptor: the external collaborators the compiler
//     borrows read-only for the duration of a single compile() call.
package types

import (
	"fmt"
	"io"
	"strings"
)

// NodeKind is the runtime variant tag of a Node (spec §3.2). The set is
// fixed and closed: no pass may introduce a kind outside this list, and
// every VectorNode kind (StaticVector, MemoryVector) must be gone from the
// tree after pkg/expand runs.
type NodeKind int

const (
	KindBlock NodeKind = iota
	KindProgram
	KindAssignment
	KindIfWhen
	KindFoldedIfWhen
	KindWhile
	KindFoldedWhile
	KindEventDecl
	KindEmit
	KindSubDecl
	KindCallSub
	KindBinaryArithmetic
	KindUnaryArithmetic
	KindImmediate
	KindStore
	KindLoad
	KindArrayWrite
	KindArrayRead
	KindCall
	KindReturn
	KindStaticVector
	KindMemoryVector
)

// String names the variant the way dumps and error messages show it.
func (k NodeKind) String() string {
	switch k {
	case KindBlock:
		return "Block"
	case KindProgram:
		return "Program"
	case KindAssignment:
		return "Assignment"
	case KindIfWhen:
		return "IfWhen"
	case KindFoldedIfWhen:
		return "FoldedIfWhen"
	case KindWhile:
		return "While"
	case KindFoldedWhile:
		return "FoldedWhile"
	case KindEventDecl:
		return "EventDecl"
	case KindEmit:
		return "Emit"
	case KindSubDecl:
		return "SubDecl"
	case KindCallSub:
		return "CallSub"
	case KindBinaryArithmetic:
		return "BinaryArithmetic"
	case KindUnaryArithmetic:
		return "UnaryArithmetic"
	case KindImmediate:
		return "Immediate"
	case KindStore:
		return "Store"
	case KindLoad:
		return "Load"
	case KindArrayWrite:
		return "ArrayWrite"
	case KindArrayRead:
		return "ArrayRead"
	case KindCall:
		return "Call"
	case KindReturn:
		return "Return"
	case KindStaticVector:
		return "StaticVector"
	case KindMemoryVector:
		return "MemoryVector"
	default:
		return "Kind(?)"
	}
}

// IsVectorNode reports whether k is one of the two abstract vector variants
// that pkg/expand must eliminate (spec §3.2 invariant).
func (k NodeKind) IsVectorNode() bool {
	return k == KindStaticVector || k == KindMemoryVector
}

// Node is the single AST node type. Every node carries a source position, a
// variant tag, and an ordered, exclusively-owned list of children — a
// node is never referenced from two parents at once (spec §3.1). Which of
// the attribute fields below are meaningful is determined by Kind; see the
// accessor methods for the per-kind contract (they also document, by their
// panics, which children a slot requires).
//
// Children is the single ownership-bearing list every generic pass
// (ShallowCopy, DeepCopy, ReleaseChildren, Dump) walks uniformly; the
// Left/Right/Cond/... accessors below are just named views into fixed
// positions of that same slice, one per Kind, matching the "Children"
// column of spec §3.2's variant table.
type Node struct {
	Kind     NodeKind
	Pos      Position
	RetType  Type // filled by pkg/typecheck; Unit until then
	Children []*Node

	// Scalar attributes. Only the ones relevant to Kind are meaningful.
	Op            Op     // BinaryArithmetic, UnaryArithmetic
	EdgeSensitive bool   // IfWhen, FoldedIfWhen ("when" semantics)
	EndLine       int    // IfWhen, FoldedIfWhen
	EdgeStateAddr int    // IfWhen, FoldedIfWhen (EdgeSensitive only): address of the hidden previous-truth-value cell (glossary: "Edge-sensitive")
	EventID       int    // EventDecl, Emit
	ArrayAddr     int    // Emit, ArrayWrite, ArrayRead, MemoryVector
	ArraySize     int    // Emit, ArrayWrite, ArrayRead, MemoryVector
	ArrayName     string // ArrayWrite, ArrayRead, MemoryVector
	SubroutineID  int    // SubDecl, CallSub
	Value         int32  // Immediate
	VarAddr       int    // Store, Load
	FuncID        int    // Call
	ArgumentsAddr []int  // Call (memory address per positional argument)
	Values        []int32 // StaticVector
	Write         bool    // MemoryVector
	CompoundOp    Op      // Assignment: OpNone for plain `=`, else the op of a `lhs op= rhs` the parser left for expansion to desugar
}

// --- constructors -----------------------------------------------------

// NewImmediate builds a constant-value leaf.
func NewImmediate(pos Position, value int32) *Node {
	return &Node{Kind: KindImmediate, Pos: pos, Value: value, RetType: Int}
}

// NewLoad builds a scalar-variable read.
func NewLoad(pos Position, varAddr int) *Node {
	return &Node{Kind: KindLoad, Pos: pos, VarAddr: varAddr, RetType: Int}
}

// NewStore builds a scalar-variable write; rhs is not attached here, the
// caller assembles the owning Assignment.
func NewStore(pos Position, varAddr int) *Node {
	return &Node{Kind: KindStore, Pos: pos, VarAddr: varAddr, RetType: Unit}
}

// NewBinary builds a binary arithmetic/comparison/logical node.
func NewBinary(pos Position, op Op, left, right *Node) *Node {
	return &Node{Kind: KindBinaryArithmetic, Pos: pos, Op: op, Children: []*Node{left, right}}
}

// NewUnary builds a unary arithmetic/logical node.
func NewUnary(pos Position, op Op, operand *Node) *Node {
	return &Node{Kind: KindUnaryArithmetic, Pos: pos, Op: op, Children: []*Node{operand}}
}

// NewBlock sequences stmts.
func NewBlock(pos Position, stmts ...*Node) *Node {
	return &Node{Kind: KindBlock, Pos: pos, Children: stmts, RetType: Unit}
}

// NewAssignment builds lhs = rhs; lhs must already be a Store, ArrayWrite,
// or (pre-expansion) a MemoryVector write slot.
func NewAssignment(pos Position, lhs, rhs *Node) *Node {
	return &Node{Kind: KindAssignment, Pos: pos, Children: []*Node{lhs, rhs}, RetType: Unit}
}

// NewCompoundAssignment builds `lhs op= rhs`, left for pkg/expand to desugar
// into `lhs = lhs op rhs` (spec §9's open question on compound
// array-assignment: expansion rejects this when lhs is an array element
// addressed by a non-constant index, since desugaring would duplicate and
// re-evaluate that index expression).
func NewCompoundAssignment(pos Position, op Op, lhs, rhs *Node) *Node {
	return &Node{Kind: KindAssignment, Pos: pos, CompoundOp: op, Children: []*Node{lhs, rhs}, RetType: Unit}
}

// NewIfWhen builds an if/when conditional. elseBlock may be nil.
// edgeStateAddr is only meaningful when edgeSensitive is true.
func NewIfWhen(pos Position, edgeSensitive bool, endLine, edgeStateAddr int, cond, thenBlock, elseBlock *Node) *Node {
	children := []*Node{cond, thenBlock}
	if elseBlock != nil {
		children = append(children, elseBlock)
	}
	return &Node{Kind: KindIfWhen, Pos: pos, EdgeSensitive: edgeSensitive, EndLine: endLine, EdgeStateAddr: edgeStateAddr, Children: children, RetType: Unit}
}

// NewFoldedIfWhen builds the optimizer-produced compare-and-branch form.
func NewFoldedIfWhen(pos Position, op Op, edgeSensitive bool, endLine, edgeStateAddr int, lhs, rhs, thenBlock, elseBlock *Node) *Node {
	children := []*Node{lhs, rhs, thenBlock}
	if elseBlock != nil {
		children = append(children, elseBlock)
	}
	return &Node{Kind: KindFoldedIfWhen, Pos: pos, Op: op, EdgeSensitive: edgeSensitive, EndLine: endLine, EdgeStateAddr: edgeStateAddr, Children: children, RetType: Unit}
}

// NewWhile builds a while loop.
func NewWhile(pos Position, cond, body *Node) *Node {
	return &Node{Kind: KindWhile, Pos: pos, Children: []*Node{cond, body}, RetType: Unit}
}

// NewFoldedWhile builds the optimizer-produced compare-and-branch loop form.
func NewFoldedWhile(pos Position, op Op, lhs, rhs, body *Node) *Node {
	return &Node{Kind: KindFoldedWhile, Pos: pos, Op: op, Children: []*Node{lhs, rhs, body}, RetType: Unit}
}

// NewArrayRead builds an indexed scalar read.
func NewArrayRead(pos Position, arrayAddr, arraySize int, arrayName string, index *Node) *Node {
	return &Node{Kind: KindArrayRead, Pos: pos, ArrayAddr: arrayAddr, ArraySize: arraySize, ArrayName: arrayName, Children: []*Node{index}, RetType: Int}
}

// NewArrayWrite builds an indexed scalar write.
func NewArrayWrite(pos Position, arrayAddr, arraySize int, arrayName string, index *Node) *Node {
	return &Node{Kind: KindArrayWrite, Pos: pos, ArrayAddr: arrayAddr, ArraySize: arraySize, ArrayName: arrayName, Children: []*Node{index}, RetType: Unit}
}

// NewCall builds a native-function invocation.
func NewCall(pos Position, funcID int, argumentsAddr []int, args ...*Node) *Node {
	return &Node{Kind: KindCall, Pos: pos, FuncID: funcID, ArgumentsAddr: argumentsAddr, Children: args, RetType: Unit}
}

// NewEmit builds an event-emission node; args are the payload-push children.
func NewEmit(pos Position, eventID, arrayAddr, arraySize int, args ...*Node) *Node {
	return &Node{Kind: KindEmit, Pos: pos, EventID: eventID, ArrayAddr: arrayAddr, ArraySize: arraySize, Children: args, RetType: Unit}
}

// NewCallSub builds a subroutine call.
func NewCallSub(pos Position, subroutineID int) *Node {
	return &Node{Kind: KindCallSub, Pos: pos, SubroutineID: subroutineID, RetType: Unit}
}

// NewReturn builds an implicit or explicit handler-end return.
func NewReturn(pos Position) *Node {
	return &Node{Kind: KindReturn, Pos: pos, RetType: Unit}
}

// NewEventDecl marks the start of an event handler's region in a Program's
// flat child list (see Program's doc comment).
func NewEventDecl(pos Position, eventID int) *Node {
	return &Node{Kind: KindEventDecl, Pos: pos, EventID: eventID, RetType: Unit}
}

// NewSubDecl marks the start of a subroutine's region in a Program's flat
// child list.
func NewSubDecl(pos Position, subroutineID int) *Node {
	return &Node{Kind: KindSubDecl, Pos: pos, SubroutineID: subroutineID, RetType: Unit}
}

// NewProgram builds the top-level container. children is the flat sequence
// of EventDecl/SubDecl markers interleaved with the statements of each
// region — see the Program doc comment below for why there is no separate
// per-handler wrapper node.
func NewProgram(pos Position, children ...*Node) *Node {
	return &Node{Kind: KindProgram, Pos: pos, Children: children, RetType: Unit}
}

// NewStaticVector builds a literal vector, legal only in positions spec §4.2
// rule 7 allows (native-call arguments, emit payload) after expansion.
func NewStaticVector(pos Position, values []int32) *Node {
	return &Node{Kind: KindStaticVector, Pos: pos, Values: values}
}

// NewMemoryVector builds an abstract vector reference. index may be nil (no
// index given — the whole array), a single-element StaticVector (constant
// index), a two-element StaticVector (constant [lo,hi] slice) or an
// arbitrary expression (dynamic index). pkg/expand must eliminate this node
// kind entirely.
func NewMemoryVector(pos Position, arrayAddr, arraySize int, arrayName string, write bool, index *Node) *Node {
	n := &Node{Kind: KindMemoryVector, Pos: pos, ArrayAddr: arrayAddr, ArraySize: arraySize, ArrayName: arrayName, Write: write}
	if index != nil {
		n.Children = []*Node{index}
	}
	return n
}

// --- accessors ----------------------------------------------------------
//
// Program's children are a flat sequence, not a tree of per-handler
// wrapper nodes: spec §3.2 gives EventDecl/SubDecl zero children of their
// own ("Children: —"), so the region each belongs to cannot be held inside
// the marker node itself. Instead a handler's body is the run of sibling
// statements between its EventDecl/SubDecl marker (inclusive) and the next
// marker or the end of the list — exactly the region pkg/emit keys its
// pre-link buffer by (spec §4.6: "each node appends opcodes ... keyed by
// the enclosing handler/subroutine id").

// Left returns the left operand of a BinaryArithmetic node.
func (n *Node) Left() *Node { return n.Children[0] }

// Right returns the right operand of a BinaryArithmetic node.
func (n *Node) Right() *Node { return n.Children[1] }

// Operand returns the sole operand of a UnaryArithmetic node.
func (n *Node) Operand() *Node { return n.Children[0] }

// Lhs returns the assignment target of an Assignment node.
func (n *Node) Lhs() *Node { return n.Children[0] }

// Rhs returns the value expression of an Assignment node.
func (n *Node) Rhs() *Node { return n.Children[1] }

// Cond returns the condition of an IfWhen or While node.
func (n *Node) Cond() *Node { return n.Children[0] }

// Then returns the then-block of an IfWhen or FoldedIfWhen node.
func (n *Node) Then() *Node {
	if n.Kind == KindFoldedIfWhen {
		return n.Children[2]
	}
	return n.Children[1]
}

// Else returns the else-block of an IfWhen or FoldedIfWhen node, or nil if
// there isn't one.
func (n *Node) Else() *Node {
	want := 3
	if n.Kind == KindFoldedIfWhen {
		want = 4
	}
	if len(n.Children) < want {
		return nil
	}
	return n.Children[want-1]
}

// Body returns the loop body of a While or FoldedWhile node.
func (n *Node) Body() *Node {
	if n.Kind == KindFoldedWhile {
		return n.Children[2]
	}
	return n.Children[1]
}

// CmpLhs returns the left comparison operand of a FoldedIfWhen/FoldedWhile.
func (n *Node) CmpLhs() *Node { return n.Children[0] }

// CmpRhs returns the right comparison operand of a FoldedIfWhen/FoldedWhile.
func (n *Node) CmpRhs() *Node { return n.Children[1] }

// IndexExpr returns the index expression of an ArrayRead/ArrayWrite node.
func (n *Node) IndexExpr() *Node { return n.Children[0] }

// Index returns the (possibly nil) index child of a MemoryVector node.
func (n *Node) Index() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// Args returns the argument/payload children of a Call or Emit node (may be
// empty).
func (n *Node) Args() []*Node { return n.Children }

// --- ownership operations (spec §4.1) ------------------------------------

// ShallowCopy duplicates n's attributes but not its children: the returned
// node gets its own Children slice, but the child nodes it points to are
// still shared with n. This is only ever used as
// the first step of DeepCopy; a pass must never install a ShallowCopy's
// children into two parents without following up with DeepCopy or
// ReleaseChildren, or the "owned by exactly one parent" invariant breaks.
func (n *Node) ShallowCopy() *Node {
	cp := *n
	if n.Children != nil {
		cp.Children = append([]*Node(nil), n.Children...)
	}
	if n.ArgumentsAddr != nil {
		cp.ArgumentsAddr = append([]int(nil), n.ArgumentsAddr...)
	}
	if n.Values != nil {
		cp.Values = append([]int32(nil), n.Values...)
	}
	return &cp
}

// DeepCopy duplicates n and its entire subtree. Used whenever a pass must
// duplicate a subtree rather than move it — e.g. expanding a compound
// assignment `a op= b` into `a = a op b` duplicates the subtree for `a`,
// and broadcasting a scalar across a vector operation duplicates the
// scalar subtree once per element (spec §4.2 rules 1, 6). The source
// position is preserved verbatim on every duplicated node (spec §4.7).
func (n *Node) DeepCopy() *Node {
	if n == nil {
		return nil
	}
	cp := n.ShallowCopy()
	if len(n.Children) > 0 {
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = c.DeepCopy()
		}
	}
	return cp
}

// ReleaseChildren detaches and returns n's children, leaving n with none.
// A pass calls this when replacing a node with a rebuilt node that reuses
// some or all of the original's children: ownership transfers to the
// caller, who must install each returned child into exactly one new
// parent slot (or DeepCopy it if it is needed in more than one place).
func (n *Node) ReleaseChildren() []*Node {
	children := n.Children
	n.Children = nil
	return children
}

// Dump pretty-prints the subtree rooted at n to w, indenting each
// successive depth by two spaces — used for diagnostics and for the
// round-trip-dump testable property (spec §8).
func (n *Node) Dump(w io.Writer, indent int) {
	if n == nil {
		fmt.Fprintf(w, "%s<nil>\n", strings.Repeat("  ", indent))
		return
	}
	prefix := strings.Repeat("  ", indent)
	fmt.Fprintf(w, "%s%s%s @%s\n", prefix, n.Kind, n.attrString(), n.Pos)
	for _, c := range n.Children {
		c.Dump(w, indent+1)
	}
}

// HasSideEffects reports whether evaluating n could have an observable
// effect beyond producing a value: a Call (native function) or an Emit
// anywhere in the subtree. ArrayRead is treated as side-effect free (spec
// §4.4 rule 2) — only Call and Emit block an optimizer rewrite or a
// scalar-broadcast duplication (spec §9's design note on broadcasting).
func (n *Node) HasSideEffects() bool {
	if n == nil {
		return false
	}
	if n.Kind == KindCall || n.Kind == KindEmit {
		return true
	}
	for _, c := range n.Children {
		if c.HasSideEffects() {
			return true
		}
	}
	return false
}

// attrString renders the scalar attributes relevant to n.Kind, used by Dump.
func (n *Node) attrString() string {
	var b strings.Builder
	switch n.Kind {
	case KindBinaryArithmetic, KindUnaryArithmetic:
		fmt.Fprintf(&b, "(op=%s)", n.Op)
	case KindImmediate:
		fmt.Fprintf(&b, "(value=%d)", n.Value)
	case KindLoad, KindStore:
		fmt.Fprintf(&b, "(varAddr=%d)", n.VarAddr)
	case KindArrayRead, KindArrayWrite:
		fmt.Fprintf(&b, "(array=%s addr=%d size=%d)", n.ArrayName, n.ArrayAddr, n.ArraySize)
	case KindMemoryVector:
		fmt.Fprintf(&b, "(array=%s addr=%d size=%d write=%t)", n.ArrayName, n.ArrayAddr, n.ArraySize, n.Write)
	case KindStaticVector:
		fmt.Fprintf(&b, "(values=%v)", n.Values)
	case KindIfWhen, KindFoldedIfWhen:
		fmt.Fprintf(&b, "(edgeSensitive=%t endLine=%d)", n.EdgeSensitive, n.EndLine)
		if n.Kind == KindFoldedIfWhen {
			fmt.Fprintf(&b, "(op=%s)", n.Op)
		}
	case KindFoldedWhile:
		fmt.Fprintf(&b, "(op=%s)", n.Op)
	case KindEventDecl:
		fmt.Fprintf(&b, "(eventId=%d)", n.EventID)
	case KindEmit:
		fmt.Fprintf(&b, "(eventId=%d arrayAddr=%d arraySize=%d)", n.EventID, n.ArrayAddr, n.ArraySize)
	case KindSubDecl, KindCallSub:
		fmt.Fprintf(&b, "(subroutineId=%d)", n.SubroutineID)
	case KindCall:
		fmt.Fprintf(&b, "(funcId=%d argumentsAddr=%v)", n.FuncID, n.ArgumentsAddr)
	}
	return b.String()
}
