// Package stackdepth implements spec §4.5: a bottom-up pass computing the
// maximum operand-stack depth each region of the program requires, and the
// program-wide maximum the linker/VM must reserve.
package stackdepth

import "github.com/eventscript-lang/evc/pkg/types"

// Program walks root's flat child list region by region, returning the
// maximum depth required by any single region. It raises StackOverflow if
// that maximum exceeds vm's limit.
func Program(root *types.Node, vm *types.VMDescriptor) (int, error) {
	if root.Kind != types.KindProgram {
		return 0, types.NewError(types.InternalInvariantViolation, "stackdepth.Program requires a Program node", root.Pos)
	}

	maxDepth := 0
	regionDepth := 0
	inRegion := false

	flush := func() {
		if inRegion && regionDepth > maxDepth {
			maxDepth = regionDepth
		}
	}

	for _, child := range root.Children {
		switch child.Kind {
		case types.KindEventDecl, types.KindSubDecl:
			flush()
			regionDepth = 0
			inRegion = true
			continue
		}
		d := depth(child)
		if d > regionDepth {
			regionDepth = d
		}
	}
	flush()

	if maxDepth > vm.MaxStackDepth {
		return maxDepth, types.NewError(types.StackOverflow,
			"computed stack depth exceeds the target VM's limit", root.Pos)
	}
	return maxDepth, nil
}

// depth computes the maximum simultaneous operand-stack depth n's subtree
// requires, per spec §4.5's per-kind formulas.
func depth(n *types.Node) int {
	switch n.Kind {
	case types.KindImmediate, types.KindLoad:
		return 1

	case types.KindStore:
		return 1

	case types.KindStaticVector:
		return 1

	case types.KindBinaryArithmetic:
		return max(depth(n.Left()), 1+depth(n.Right()))

	case types.KindUnaryArithmetic:
		return depth(n.Operand())

	case types.KindAssignment:
		// rhs is evaluated first and, for an ArrayWrite target, its result
		// sits on the stack under the index expression until the indexed
		// store pops both (pkg/emit's emitAssignment): the two overlap, so
		// an array target costs one more than a plain Store target.
		lhs := n.Lhs()
		if lhs.Kind == types.KindArrayWrite {
			return 1 + max(depth(n.Rhs()), depth(lhs.IndexExpr()))
		}
		return max(depth(lhs), depth(n.Rhs()))

	case types.KindArrayRead, types.KindArrayWrite:
		return max(1, depth(n.IndexExpr()))

	case types.KindBlock:
		d := 0
		for _, c := range n.Children {
			if cd := depth(c); cd > d {
				d = cd
			}
		}
		return d

	case types.KindIfWhen:
		d := edgeAwareDepth(n.EdgeSensitive, depth(n.Cond()))
		if td := depth(n.Then()); td > d {
			d = td
		}
		if e := n.Else(); e != nil {
			if ed := depth(e); ed > d {
				d = ed
			}
		}
		return d

	case types.KindFoldedIfWhen:
		d := edgeAwareDepth(n.EdgeSensitive, max(depth(n.CmpLhs()), 1+depth(n.CmpRhs())))
		if td := depth(n.Then()); td > d {
			d = td
		}
		if e := n.Else(); e != nil {
			if ed := depth(e); ed > d {
				d = ed
			}
		}
		return d

	case types.KindWhile:
		return max(depth(n.Cond()), depth(n.Body()))

	case types.KindFoldedWhile:
		return max(max(depth(n.CmpLhs()), 1+depth(n.CmpRhs())), depth(n.Body()))

	case types.KindCall, types.KindEmit:
		// A StaticVector argument counts as 1: pkg/emit pushes and stores
		// its elements one immediate at a time.
		d := 0
		for _, arg := range n.Children {
			if ad := depth(arg); ad > d {
				d = ad
			}
		}
		return d

	case types.KindEventDecl, types.KindSubDecl, types.KindCallSub, types.KindReturn:
		return 0

	default:
		return 0
	}
}

// edgeAwareDepth accounts for the hidden previous-truth-value cell an
// edge-sensitive ("when") conditional holds on the stack for the duration
// of evaluating its condition (pkg/emit's Load-Not-<cond>-Store-Load-And
// sequence): one extra slot beneath the condition's own depth.
func edgeAwareDepth(edgeSensitive bool, condDepth int) int {
	if edgeSensitive {
		return 1 + condDepth
	}
	return condDepth
}
