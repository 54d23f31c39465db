package optimize

import "github.com/eventscript-lang/evc/pkg/types"

// optimizeBinary implements spec §4.4 rules 1 and 2 for BinaryArithmetic:
// constant folding when both operands are Immediate, else identity/absorber
// simplification.
func optimizeBinary(n *types.Node) (*types.Node, error) {
	left, err := node(n.Left())
	if err != nil {
		return nil, err
	}
	right, err := node(n.Right())
	if err != nil {
		return nil, err
	}
	n.Children[0] = left
	n.Children[1] = right

	if left.Kind == types.KindImmediate && right.Kind == types.KindImmediate {
		return foldConstantBinary(n, left, right)
	}

	if simplified := identityBinary(n, left, right); simplified != nil {
		return simplified, nil
	}

	return n, nil
}

// foldConstantBinary evaluates n.Op over two known values at compile time,
// using the VM's two's-complement wraparound semantics (spec §4.4 rule 1).
func foldConstantBinary(n *types.Node, left, right *types.Node) (*types.Node, error) {
	l, r := left.Value, right.Value

	switch {
	case n.Op.IsArithmeticOrBitwise():
		v, err := evalArithmetic(n.Op, l, r, n.Pos)
		if err != nil {
			return nil, err
		}
		return types.NewImmediate(n.Pos, v), nil

	case n.Op.IsComparison():
		return boolImmediate(n.Pos, evalComparison(n.Op, l, r)), nil

	case n.Op.IsLogical():
		return boolImmediate(n.Pos, evalLogical(n.Op, l != 0, r != 0)), nil

	default:
		return nil, types.NewError(types.InternalInvariantViolation,
			"optimize: binary node with unclassified op "+n.Op.String(), n.Pos)
	}
}

func evalArithmetic(op types.Op, l, r int32, pos types.Position) (int32, error) {
	switch op {
	case types.OpAdd:
		return l + r, nil
	case types.OpSub:
		return l - r, nil
	case types.OpMul:
		return l * r, nil
	case types.OpDiv:
		if r == 0 {
			return 0, types.NewError(types.DivideByZero, "constant division by zero", pos)
		}
		return l / r, nil
	case types.OpMod:
		if r == 0 {
			return 0, types.NewError(types.DivideByZero, "constant modulo by zero", pos)
		}
		return l % r, nil
	case types.OpBitAnd:
		return l & r, nil
	case types.OpBitOr:
		return l | r, nil
	case types.OpBitXor:
		return l ^ r, nil
	case types.OpShl:
		return l << (uint32(r) & 31), nil
	case types.OpShr:
		return l >> (uint32(r) & 31), nil
	default:
		panic("optimize: evalArithmetic called with non-arithmetic op " + op.String())
	}
}

func evalComparison(op types.Op, l, r int32) bool {
	switch op {
	case types.OpEq:
		return l == r
	case types.OpNe:
		return l != r
	case types.OpLt:
		return l < r
	case types.OpLe:
		return l <= r
	case types.OpGt:
		return l > r
	case types.OpGe:
		return l >= r
	default:
		panic("optimize: evalComparison called with non-comparison op " + op.String())
	}
}

func evalLogical(op types.Op, l, r bool) bool {
	switch op {
	case types.OpLogAnd:
		return l && r
	case types.OpLogOr:
		return l || r
	default:
		panic("optimize: evalLogical called with non-logical op " + op.String())
	}
}

// identityBinary implements spec §4.4 rule 2. It returns nil when no rule
// applies (n is returned unchanged by the caller). An Immediate operand
// being eliminated is always side-effect free; eliminating the *other*
// operand (x*0→0, x and false→false, x or true→true) is only safe when
// that operand has no side effects.
func identityBinary(n, left, right *types.Node) *types.Node {
	switch n.Op {
	case types.OpAdd:
		if isIntImmediate(left, 0) {
			return right
		}
		if isIntImmediate(right, 0) {
			return left
		}

	case types.OpSub:
		if isIntImmediate(right, 0) {
			return left
		}

	case types.OpMul:
		if isIntImmediate(left, 1) {
			return right
		}
		if isIntImmediate(right, 1) {
			return left
		}
		if isIntImmediate(right, 0) && !left.HasSideEffects() {
			return types.NewImmediate(n.Pos, 0)
		}
		if isIntImmediate(left, 0) && !right.HasSideEffects() {
			return types.NewImmediate(n.Pos, 0)
		}

	case types.OpLogAnd:
		if isBoolImmediate(left, true) {
			return right
		}
		if isBoolImmediate(right, true) {
			return left
		}
		if isBoolImmediate(right, false) && !left.HasSideEffects() {
			return boolImmediate(n.Pos, false)
		}
		if isBoolImmediate(left, false) && !right.HasSideEffects() {
			return boolImmediate(n.Pos, false)
		}

	case types.OpLogOr:
		if isBoolImmediate(left, false) {
			return right
		}
		if isBoolImmediate(right, false) {
			return left
		}
		if isBoolImmediate(right, true) && !left.HasSideEffects() {
			return boolImmediate(n.Pos, true)
		}
		if isBoolImmediate(left, true) && !right.HasSideEffects() {
			return boolImmediate(n.Pos, true)
		}
	}
	return nil
}

func isIntImmediate(n *types.Node, v int32) bool {
	return n.Kind == types.KindImmediate && n.RetType == types.Int && n.Value == v
}

func isBoolImmediate(n *types.Node, v bool) bool {
	return n.Kind == types.KindImmediate && n.RetType == types.Bool && truthy(n) == v
}
