package expand

import (
	"fmt"

	"github.com/eventscript-lang/evc/pkg/types"
)

// expandAssignment implements spec §4.2 rule 1 plus the compound-assignment
// desugaring spec §9's open question describes: `lhs op= rhs` becomes
// `lhs = lhs op rhs`, rejected up front when lhs addresses an array element
// through a non-constant index (desugaring would duplicate, and so
// re-evaluate, that index expression).
func expandAssignment(n *types.Node, ctx *Context) (*types.Node, error) {
	lhs := n.Lhs()
	rhs := n.Rhs()

	if n.CompoundOp != types.OpNone {
		if err := checkCompoundIndexConstant(lhs); err != nil {
			return nil, err
		}
		readForm, err := toReadForm(lhs.DeepCopy())
		if err != nil {
			return nil, err
		}
		rhs = types.NewBinary(n.Pos, n.CompoundOp, readForm, rhs)
		n.CompoundOp = types.OpNone
	}

	if lhs.Kind == types.KindMemoryVector {
		return expandVectorAssignment(n.Pos, lhs, rhs, ctx)
	}

	lhsExpanded, err := expandLhsScalar(lhs, ctx)
	if err != nil {
		return nil, err
	}
	rhsExpanded, err := expandExpr(rhs, ctx)
	if err != nil {
		return nil, err
	}
	n.Children[0] = lhsExpanded
	n.Children[1] = rhsExpanded
	n.CompoundOp = types.OpNone
	return n, nil
}

// expandVectorAssignment implements rule 1: a vector-lhs assignment of
// static size k becomes a block of k scalar assignments (or, when the
// vector collapses to a single element — rules 2/4 — an ordinary scalar
// assignment).
func expandVectorAssignment(pos types.Position, lhs, rhs *types.Node, ctx *Context) (*types.Node, error) {
	lhsSize, err := vectorSize(lhs)
	if err != nil {
		return nil, err
	}

	if lhsSize == 1 {
		lhsElems, err := expandVector(lhs, ctx, 1)
		if err != nil {
			return nil, err
		}
		rhsExpanded, err := expandExpr(rhs, ctx)
		if err != nil {
			return nil, err
		}
		return types.NewAssignment(pos, lhsElems[0], rhsExpanded), nil
	}

	rhsSize, err := vectorSize(rhs)
	if err != nil {
		return nil, err
	}
	if rhsSize != lhsSize {
		return nil, types.NewError(types.ParseTypeMismatch,
			fmt.Sprintf("assignment size mismatch: left side has %d element(s), right side has %d", lhsSize, rhsSize), pos)
	}

	lhsElems, err := expandVector(lhs, ctx, lhsSize)
	if err != nil {
		return nil, err
	}
	rhsElems, err := expandVector(rhs, ctx, lhsSize)
	if err != nil {
		return nil, err
	}

	stmts := make([]*types.Node, lhsSize)
	for i := range stmts {
		stmts[i] = types.NewAssignment(pos, lhsElems[i], rhsElems[i])
	}
	return types.NewBlock(pos, stmts...), nil
}

// expandLhsScalar expands an already-scalar assignment target (a Store or
// an ArrayWrite whose index must still be expanded).
func expandLhsScalar(lhs *types.Node, ctx *Context) (*types.Node, error) {
	switch lhs.Kind {
	case types.KindStore:
		return lhs, nil
	case types.KindArrayWrite:
		idx, err := expandExpr(lhs.IndexExpr(), ctx)
		if err != nil {
			return nil, err
		}
		lhs.Children[0] = idx
		return lhs, nil
	default:
		return nil, types.NewError(types.InternalInvariantViolation,
			"expand: unexpected assignment target kind: "+lhs.Kind.String(), lhs.Pos)
	}
}

// checkCompoundIndexConstant enforces spec §9's documented limitation:
// `a[i] += 2` is only legal when i is a compile-time constant.
func checkCompoundIndexConstant(lhs *types.Node) error {
	switch lhs.Kind {
	case types.KindMemoryVector:
		if idx := lhs.Index(); idx != nil && !isConstantIndexExpr(idx) {
			return types.NewError(types.IllegalIndexExpression,
				"compound assignment to "+lhs.ArrayName+" requires a compile-time-constant index", lhs.Pos)
		}
	case types.KindArrayWrite:
		if !isConstantIndexExpr(lhs.IndexExpr()) {
			return types.NewError(types.IllegalIndexExpression,
				"compound assignment to "+lhs.ArrayName+" requires a compile-time-constant index", lhs.Pos)
		}
	}
	return nil
}

func isConstantIndexExpr(e *types.Node) bool {
	return e.Kind == types.KindStaticVector || e.Kind == types.KindImmediate
}

// toReadForm turns a (deep-copied) write-target into the equivalent
// read-form expression, used to build the `lhs` half of `lhs op rhs` when
// desugaring a compound assignment.
func toReadForm(target *types.Node) (*types.Node, error) {
	switch target.Kind {
	case types.KindStore:
		return types.NewLoad(target.Pos, target.VarAddr), nil
	case types.KindArrayWrite:
		return types.NewArrayRead(target.Pos, target.ArrayAddr, target.ArraySize, target.ArrayName, target.IndexExpr()), nil
	case types.KindMemoryVector:
		target.Write = false
		return target, nil
	default:
		return nil, types.NewError(types.InternalInvariantViolation,
			"expand: unexpected compound-assignment target kind: "+target.Kind.String(), target.Pos)
	}
}
