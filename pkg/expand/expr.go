package expand

import "github.com/eventscript-lang/evc/pkg/types"

// expandExpr expands n in a scalar expression position — an If/While
// condition, a binary/unary operand, an array index, or the rhs of a
// scalar assignment. It always returns a single scalar node; if n turns
// out to be vector-valued with more than one element, that is a shape
// mismatch in this position (ParseTypeMismatch).
func expandExpr(n *types.Node, ctx *Context) (*types.Node, error) {
	switch n.Kind {
	case types.KindImmediate, types.KindLoad:
		return n, nil

	case types.KindStaticVector:
		if len(n.Values) == 1 {
			return types.NewImmediate(n.Pos, n.Values[0]), nil
		}
		return nil, types.NewError(types.ParseTypeMismatch,
			"vector literal used where a scalar value is required", n.Pos)

	case types.KindMemoryVector:
		elems, err := expandVector(n, ctx, 1)
		if err != nil {
			return nil, err
		}
		return elems[0], nil

	case types.KindBinaryArithmetic:
		return expandScalarBinary(n, ctx)

	case types.KindUnaryArithmetic:
		return expandScalarUnary(n, ctx)

	case types.KindArrayRead:
		idx, err := expandExpr(n.IndexExpr(), ctx)
		if err != nil {
			return nil, err
		}
		n.Children[0] = idx
		return n, nil

	default:
		return nil, types.NewError(types.InternalInvariantViolation,
			"expand: unexpected node kind in scalar expression position: "+n.Kind.String(), n.Pos)
	}
}

func expandScalarBinary(n *types.Node, ctx *Context) (*types.Node, error) {
	leftSize, err := vectorSize(n.Left())
	if err != nil {
		return nil, err
	}
	rightSize, err := vectorSize(n.Right())
	if err != nil {
		return nil, err
	}
	if leftSize != 1 || rightSize != 1 {
		return nil, types.NewError(types.ParseTypeMismatch,
			"vector operand used where a scalar value is required", n.Pos)
	}
	left, err := expandExpr(n.Left(), ctx)
	if err != nil {
		return nil, err
	}
	right, err := expandExpr(n.Right(), ctx)
	if err != nil {
		return nil, err
	}
	n.Children[0] = left
	n.Children[1] = right
	return n, nil
}

func expandScalarUnary(n *types.Node, ctx *Context) (*types.Node, error) {
	size, err := vectorSize(n.Operand())
	if err != nil {
		return nil, err
	}
	if size != 1 {
		return nil, types.NewError(types.ParseTypeMismatch,
			"vector operand used where a scalar value is required", n.Pos)
	}
	operand, err := expandExpr(n.Operand(), ctx)
	if err != nil {
		return nil, err
	}
	n.Children[0] = operand
	return n, nil
}
