// Package optimize implements spec §4.4: a bottom-up, fixed-point-per-node
// rewrite pass over the type-checked tree — constant folding,
// identity/absorber simplification, De Morgan canonicalization, comparison-
// branch folding into FoldedIfWhen/FoldedWhile, dead-branch elimination and
// block flattening. Running the pass twice on its own output must yield the
// same tree (spec §8's idempotence property); every rewrite function here is
// written to be a no-op on input it has already produced.
package optimize

import "github.com/eventscript-lang/evc/pkg/types"

// Program optimizes every region of root's flat child list in place,
// returning the (possibly different) root node.
func Program(root *types.Node) (*types.Node, error) {
	if root.Kind != types.KindProgram {
		return nil, types.NewError(types.InternalInvariantViolation, "optimize.Program requires a Program node", root.Pos)
	}
	for i, child := range root.Children {
		opt, err := node(child)
		if err != nil {
			return nil, err
		}
		root.Children[i] = opt
	}
	return root, nil
}

// node optimizes n bottom-up: children first, then n's own rewrite rules.
// Returning n itself means "no change"; a different node means "replace me."
func node(n *types.Node) (*types.Node, error) {
	switch n.Kind {
	case types.KindImmediate, types.KindLoad, types.KindStore,
		types.KindEventDecl, types.KindSubDecl, types.KindCallSub, types.KindReturn,
		types.KindStaticVector:
		return n, nil

	case types.KindArrayRead, types.KindArrayWrite:
		idx, err := node(n.IndexExpr())
		if err != nil {
			return nil, err
		}
		n.Children[0] = idx
		return n, nil

	case types.KindBinaryArithmetic:
		return optimizeBinary(n)

	case types.KindUnaryArithmetic:
		return optimizeUnary(n)

	case types.KindAssignment:
		lhs, err := node(n.Lhs())
		if err != nil {
			return nil, err
		}
		rhs, err := node(n.Rhs())
		if err != nil {
			return nil, err
		}
		n.Children[0] = lhs
		n.Children[1] = rhs
		return n, nil

	case types.KindBlock:
		return optimizeBlock(n)

	case types.KindIfWhen:
		return optimizeIfWhen(n)

	case types.KindWhile:
		return optimizeWhile(n)

	case types.KindFoldedIfWhen:
		return optimizeFoldedIfWhen(n)

	case types.KindFoldedWhile:
		return optimizeFoldedWhile(n)

	case types.KindCall, types.KindEmit:
		for i, arg := range n.Children {
			if arg.Kind == types.KindStaticVector {
				continue
			}
			opt, err := node(arg)
			if err != nil {
				return nil, err
			}
			n.Children[i] = opt
		}
		return n, nil

	default:
		return nil, types.NewError(types.InternalInvariantViolation,
			"optimize: unhandled node kind "+n.Kind.String(), n.Pos)
	}
}

// truthy reads a folded Bool/Int Immediate's runtime value — both types are
// integer-shaped at runtime (spec §3.1), so the tag doesn't matter here.
func truthy(n *types.Node) bool { return n.Value != 0 }

func boolImmediate(pos types.Position, v bool) *types.Node {
	imm := types.NewImmediate(pos, 0)
	if v {
		imm.Value = 1
	}
	imm.RetType = types.Bool
	return imm
}
