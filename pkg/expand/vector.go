package expand

import "github.com/eventscript-lang/evc/pkg/types"

// vectorSize statically computes how many scalar elements node denotes,
// without mutating or expanding anything. Every node kind not explicitly
// vector-shaped denotes exactly one scalar element.
func vectorSize(node *types.Node) (int, error) {
	switch node.Kind {
	case types.KindMemoryVector:
		idx := node.Index()
		if idx == nil {
			return node.ArraySize, nil
		}
		if idx.Kind == types.KindStaticVector {
			switch len(idx.Values) {
			case 2:
				return int(idx.Values[1]-idx.Values[0]) + 1, nil
			case 1:
				return 1, nil
			}
		}
		return 1, nil // arbitrary expression index: always a single element

	case types.KindStaticVector:
		return len(node.Values), nil

	case types.KindBinaryArithmetic:
		leftSize, err := vectorSize(node.Left())
		if err != nil {
			return 0, err
		}
		rightSize, err := vectorSize(node.Right())
		if err != nil {
			return 0, err
		}
		switch {
		case leftSize == rightSize:
			return leftSize, nil
		case leftSize == 1:
			return rightSize, nil
		case rightSize == 1:
			return leftSize, nil
		default:
			return 0, types.NewError(types.ParseTypeMismatch,
				"operand vector sizes disagree in binary operation", node.Pos)
		}

	case types.KindUnaryArithmetic:
		return vectorSize(node.Operand())

	default:
		return 1, nil
	}
}

// expandVector expands node in a position that expects exactly
// expectedSize scalar elements (an assignment side, or a vector operand
// being combined element-wise with another), returning the expanded
// per-element scalar nodes left to right.
func expandVector(node *types.Node, ctx *Context, expectedSize int) ([]*types.Node, error) {
	switch node.Kind {
	case types.KindMemoryVector:
		return expandMemoryVector(node, ctx, expectedSize)

	case types.KindStaticVector:
		if len(node.Values) != expectedSize {
			return nil, types.NewError(types.ParseTypeMismatch,
				"vector literal size does not match the expected size", node.Pos)
		}
		elems := make([]*types.Node, expectedSize)
		for i, v := range node.Values {
			elems[i] = types.NewImmediate(node.Pos, v)
		}
		return elems, nil

	case types.KindBinaryArithmetic:
		leftSize, err := vectorSize(node.Left())
		if err != nil {
			return nil, err
		}
		rightSize, err := vectorSize(node.Right())
		if err != nil {
			return nil, err
		}
		leftElems, err := broadcastOrExpand(node.Left(), ctx, expectedSize, leftSize)
		if err != nil {
			return nil, err
		}
		rightElems, err := broadcastOrExpand(node.Right(), ctx, expectedSize, rightSize)
		if err != nil {
			return nil, err
		}
		elems := make([]*types.Node, expectedSize)
		for i := range elems {
			elems[i] = types.NewBinary(node.Pos, node.Op, leftElems[i], rightElems[i])
		}
		return elems, nil

	case types.KindUnaryArithmetic:
		operandSize, err := vectorSize(node.Operand())
		if err != nil {
			return nil, err
		}
		operandElems, err := broadcastOrExpand(node.Operand(), ctx, expectedSize, operandSize)
		if err != nil {
			return nil, err
		}
		elems := make([]*types.Node, expectedSize)
		for i := range elems {
			elems[i] = types.NewUnary(node.Pos, node.Op, operandElems[i])
		}
		return elems, nil

	default:
		if expectedSize != 1 {
			return nil, types.NewError(types.ParseTypeMismatch,
				"scalar value used where a vector is required", node.Pos)
		}
		scalar, err := expandExpr(node, ctx)
		if err != nil {
			return nil, err
		}
		return []*types.Node{scalar}, nil
	}
}

// expandMemoryVector implements spec §4.2 rules 2–5, dispatching on the
// shape of the MemoryVector's index child.
func expandMemoryVector(node *types.Node, ctx *Context, expectedSize int) ([]*types.Node, error) {
	if err := checkArraySymbol(node, ctx); err != nil {
		return nil, err
	}

	idx := node.Index()
	makeScalar := func(addr int) *types.Node {
		if node.Write {
			return types.NewStore(node.Pos, addr)
		}
		return types.NewLoad(node.Pos, addr)
	}

	if idx == nil {
		// Rule 2: whole array.
		if node.ArraySize != expectedSize {
			return nil, types.NewError(types.ParseTypeMismatch,
				"array "+node.ArrayName+" size does not match the expected size", node.Pos)
		}
		elems := make([]*types.Node, node.ArraySize)
		for i := range elems {
			elems[i] = makeScalar(node.ArrayAddr + i)
		}
		return elems, nil
	}

	if idx.Kind == types.KindStaticVector && len(idx.Values) == 2 {
		// Rule 3: constant [lo, hi] slice, inclusive.
		lo, hi := idx.Values[0], idx.Values[1]
		if lo < 0 || hi >= int32(node.ArraySize) || lo > hi {
			return nil, types.NewError(types.OutOfBoundsAccess,
				"slice index out of range for array "+node.ArrayName, node.Pos)
		}
		size := int(hi-lo) + 1
		if size != expectedSize {
			return nil, types.NewError(types.ParseTypeMismatch,
				"array slice size does not match the expected size", node.Pos)
		}
		elems := make([]*types.Node, size)
		for i := range elems {
			elems[i] = makeScalar(node.ArrayAddr + int(lo) + i)
		}
		return elems, nil
	}

	if idx.Kind == types.KindStaticVector && len(idx.Values) == 1 {
		// Rule 4: constant single index folds directly to one scalar slot.
		c := idx.Values[0]
		if c < 0 || c >= int32(node.ArraySize) {
			return nil, types.NewError(types.OutOfBoundsAccess,
				"index out of range for array "+node.ArrayName, node.Pos)
		}
		if expectedSize != 1 {
			return nil, types.NewError(types.ParseTypeMismatch,
				"scalar array element used where a vector is required", node.Pos)
		}
		return []*types.Node{makeScalar(node.ArrayAddr + int(c))}, nil
	}

	// Rule 5: arbitrary expression index -> ArrayRead/ArrayWrite.
	if expectedSize != 1 {
		return nil, types.NewError(types.ParseTypeMismatch,
			"dynamically-indexed array element used where a vector is required", node.Pos)
	}
	expandedIdx, err := expandExpr(idx, ctx)
	if err != nil {
		return nil, err
	}
	if node.Write {
		return []*types.Node{types.NewArrayWrite(node.Pos, node.ArrayAddr, node.ArraySize, node.ArrayName, expandedIdx)}, nil
	}
	return []*types.Node{types.NewArrayRead(node.Pos, node.ArrayAddr, node.ArraySize, node.ArrayName, expandedIdx)}, nil
}

// broadcastOrExpand returns expectedSize scalar nodes for an operand whose
// own static size is nodeSize: either its element-wise expansion (sizes
// match) or expectedSize deep copies of its single expanded scalar form
// (nodeSize == 1, broadcasting — spec §4.2 rule 6). A side-effecting scalar
// cannot be broadcast: duplicating it would duplicate the side effect
// (spec §9's design note), so that case is rejected rather than silently
// re-run per element.
func broadcastOrExpand(node *types.Node, ctx *Context, expectedSize, nodeSize int) ([]*types.Node, error) {
	if nodeSize == expectedSize {
		return expandVector(node, ctx, expectedSize)
	}
	if nodeSize != 1 {
		return nil, types.NewError(types.ParseTypeMismatch,
			"operand vector size does not match the expected size", node.Pos)
	}
	scalar, err := expandExpr(node, ctx)
	if err != nil {
		return nil, err
	}
	if scalar.HasSideEffects() {
		return nil, types.NewError(types.ParseTypeMismatch,
			"cannot broadcast a side-effecting expression across a vector operation", node.Pos)
	}
	elems := make([]*types.Node, expectedSize)
	elems[0] = scalar
	for i := 1; i < expectedSize; i++ {
		elems[i] = scalar.DeepCopy()
	}
	return elems, nil
}
