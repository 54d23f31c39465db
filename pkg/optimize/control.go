package optimize

import "github.com/eventscript-lang/evc/pkg/types"

// optimizeIfWhen implements spec §4.4 rules 4 and 5 for IfWhen: dead-branch
// elimination when the condition folds to a constant, else comparison-
// branch folding into FoldedIfWhen when the condition is a top-level
// comparison.
func optimizeIfWhen(n *types.Node) (*types.Node, error) {
	cond, err := node(n.Cond())
	if err != nil {
		return nil, err
	}
	n.Children[0] = cond

	then, err := node(n.Then())
	if err != nil {
		return nil, err
	}
	var els *types.Node
	if e := n.Else(); e != nil {
		els, err = node(e)
		if err != nil {
			return nil, err
		}
	}
	writeBranches(n, then, els)

	// An edge-sensitive ("when") conditional's fire decision depends on the
	// hidden previous-truth-value cell at runtime, not just on whether cond
	// is a compile-time constant — dead-branch elimination and
	// comparison-branch folding both assume the condition alone decides the
	// branch, so neither applies here (pkg/emit's Load/Not/Store/Load/And
	// sequence handles a constant or comparison cond correctly either way).
	if n.EdgeSensitive {
		return n, nil
	}

	if cond.Kind == types.KindImmediate {
		if truthy(cond) {
			return then, nil
		}
		if els != nil {
			return els, nil
		}
		return types.NewBlock(n.Pos), nil
	}

	if cond.Kind == types.KindBinaryArithmetic && cond.Op.IsComparison() {
		lhs, rhs := cond.Left(), cond.Right()
		return types.NewFoldedIfWhen(n.Pos, cond.Op, n.EdgeSensitive, n.EndLine, n.EdgeStateAddr, lhs, rhs, then, els), nil
	}

	return n, nil
}

// optimizeWhile implements spec §4.4 rules 4 and 5 for While: a
// constant-false condition removes the loop entirely; a constant-true
// condition is preserved (an infinite loop is legal); otherwise a
// top-level comparison condition folds into FoldedWhile.
func optimizeWhile(n *types.Node) (*types.Node, error) {
	cond, err := node(n.Cond())
	if err != nil {
		return nil, err
	}
	n.Children[0] = cond

	body, err := node(n.Body())
	if err != nil {
		return nil, err
	}
	n.Children[1] = body

	if cond.Kind == types.KindImmediate {
		if !truthy(cond) {
			return types.NewBlock(n.Pos), nil
		}
		return n, nil
	}

	if cond.Kind == types.KindBinaryArithmetic && cond.Op.IsComparison() {
		lhs, rhs := cond.Left(), cond.Right()
		return types.NewFoldedWhile(n.Pos, cond.Op, lhs, rhs, body), nil
	}

	return n, nil
}

// optimizeFoldedIfWhen re-optimizes an already-folded node — the shape a
// second optimizer pass sees (spec §8's idempotence property) or a FoldedIfWhen
// built directly by a tree-transforming test. Its comparison operands are
// re-optimized, and if both end up as Immediates, dead-branch elimination
// applies to the lifted comparison exactly as it would to an un-folded
// IfWhen.
func optimizeFoldedIfWhen(n *types.Node) (*types.Node, error) {
	lhs, err := node(n.CmpLhs())
	if err != nil {
		return nil, err
	}
	rhs, err := node(n.CmpRhs())
	if err != nil {
		return nil, err
	}
	n.Children[0] = lhs
	n.Children[1] = rhs

	then, err := node(n.Then())
	if err != nil {
		return nil, err
	}
	var els *types.Node
	if e := n.Else(); e != nil {
		els, err = node(e)
		if err != nil {
			return nil, err
		}
	}
	writeBranches(n, then, els)

	if lhs.Kind == types.KindImmediate && rhs.Kind == types.KindImmediate {
		if evalComparison(n.Op, lhs.Value, rhs.Value) {
			return then, nil
		}
		if els != nil {
			return els, nil
		}
		return types.NewBlock(n.Pos), nil
	}

	return n, nil
}

// optimizeFoldedWhile mirrors optimizeFoldedIfWhen for FoldedWhile.
func optimizeFoldedWhile(n *types.Node) (*types.Node, error) {
	lhs, err := node(n.CmpLhs())
	if err != nil {
		return nil, err
	}
	rhs, err := node(n.CmpRhs())
	if err != nil {
		return nil, err
	}
	n.Children[0] = lhs
	n.Children[1] = rhs

	body, err := node(n.Body())
	if err != nil {
		return nil, err
	}
	n.Children[2] = body

	if lhs.Kind == types.KindImmediate && rhs.Kind == types.KindImmediate {
		if !evalComparison(n.Op, lhs.Value, rhs.Value) {
			return types.NewBlock(n.Pos), nil
		}
	}

	return n, nil
}

// writeBranches installs the optimized then/else nodes back into an
// IfWhen/FoldedIfWhen's child slots, matching whichever shape n currently
// has (an Else slot may or may not be present).
func writeBranches(n, then, els *types.Node) {
	thenIdx := 1
	if n.Kind == types.KindFoldedIfWhen {
		thenIdx = 2
	}
	n.Children[thenIdx] = then
	if els != nil && len(n.Children) > thenIdx+1 {
		n.Children[thenIdx+1] = els
	}
}
