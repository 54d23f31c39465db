package expand

import "github.com/eventscript-lang/evc/pkg/types"

// stmt expands a statement-level node. idx is the position n occupies in
// its parent's child list, threaded through so error messages and
// per-slot rewrites (e.g. distinguishing Assignment's lhs from its rhs)
// can reference it — matching spec §4.2's "index tracking" note.
func stmt(n *types.Node, idx int, ctx *Context) (*types.Node, error) {
	switch n.Kind {
	case types.KindBlock:
		for i, c := range n.Children {
			expanded, err := stmt(c, i, ctx)
			if err != nil {
				return nil, err
			}
			n.Children[i] = expanded
		}
		return n, nil

	case types.KindAssignment:
		return expandAssignment(n, ctx)

	case types.KindIfWhen:
		return expandIfWhen(n, ctx)

	case types.KindWhile:
		return expandWhile(n, ctx)

	case types.KindEventDecl, types.KindSubDecl, types.KindCallSub, types.KindReturn:
		return n, nil

	case types.KindEmit:
		return expandArgHolder(n, ctx)

	case types.KindCall:
		return expandArgHolder(n, ctx)

	default:
		return nil, types.NewError(types.InternalInvariantViolation,
			"expand: unexpected node kind in statement position: "+n.Kind.String(), n.Pos)
	}
}

func expandIfWhen(n *types.Node, ctx *Context) (*types.Node, error) {
	cond, err := expandExpr(n.Cond(), ctx)
	if err != nil {
		return nil, err
	}
	n.Children[0] = cond

	then, err := stmt(n.Then(), 1, ctx)
	if err != nil {
		return nil, err
	}
	n.Children[1] = then

	if els := n.Else(); els != nil {
		expandedElse, err := stmt(els, 2, ctx)
		if err != nil {
			return nil, err
		}
		n.Children[2] = expandedElse
	}
	return n, nil
}

func expandWhile(n *types.Node, ctx *Context) (*types.Node, error) {
	cond, err := expandExpr(n.Cond(), ctx)
	if err != nil {
		return nil, err
	}
	n.Children[0] = cond

	body, err := stmt(n.Body(), 1, ctx)
	if err != nil {
		return nil, err
	}
	n.Children[1] = body
	return n, nil
}

// expandArgHolder expands the arg-push children of a Call or Emit node,
// applying spec §4.2 rule 7's carve-out: a StaticVector argument remains
// unexpanded (it is a legal immediate-list position), everything else
// expands as an ordinary scalar expression. Argument order is preserved
// left to right (spec §9's open question on native-call evaluation order).
func expandArgHolder(n *types.Node, ctx *Context) (*types.Node, error) {
	for i, arg := range n.Children {
		if arg.Kind == types.KindStaticVector {
			continue
		}
		expanded, err := expandExpr(arg, ctx)
		if err != nil {
			return nil, err
		}
		n.Children[i] = expanded
	}
	return n, nil
}
