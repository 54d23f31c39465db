// Package typecheck implements spec §4.3: a bottom-up, non-mutating walk
// that assigns every expression node its logical return type (Unit, Bool
// or Int) and rejects trees where a node's operand types don't match what
// its parent requires.
//
// It runs after pkg/expand, so a residual MemoryVector, or a StaticVector
// outside a Call/Emit argument slot, is a compiler bug, not a
// user error (InternalInvariantViolation) — expansion promises to have
// eliminated them.
package typecheck

import "github.com/eventscript-lang/evc/pkg/types"

// Program type-checks every region of root's flat child list.
func Program(root *types.Node) error {
	if root.Kind != types.KindProgram {
		return types.NewError(types.InternalInvariantViolation, "typecheck.Program requires a Program node", root.Pos)
	}
	for _, child := range root.Children {
		if _, err := check(child); err != nil {
			return err
		}
	}
	return nil
}

// check returns node's type, having verified every operand type it
// requires. It never replaces or reorders a node — only Node.RetType is
// written, and writing the same value twice is not an observable mutation
// (spec §8's type-check determinism property).
func check(n *types.Node) (types.Type, error) {
	switch n.Kind {
	case types.KindImmediate:
		n.RetType = types.Int
		return types.Int, nil

	case types.KindLoad, types.KindArrayRead:
		if n.Kind == types.KindArrayRead {
			if _, err := requireInt(n.IndexExpr()); err != nil {
				return types.Unit, err
			}
		}
		n.RetType = types.Int
		return types.Int, nil

	case types.KindStaticVector:
		// Call/Emit type their StaticVector arguments themselves (spec §4.2
		// rule 7's carve-out) and never reach here with one; anywhere else
		// it is a residual that expansion should have removed.
		return types.Unit, types.NewError(types.InternalInvariantViolation,
			"typecheck: residual StaticVector node outside a Call/Emit argument slot", n.Pos)

	case types.KindStore:
		n.RetType = types.Unit
		return types.Unit, nil

	case types.KindArrayWrite:
		if _, err := requireInt(n.IndexExpr()); err != nil {
			return types.Unit, err
		}
		n.RetType = types.Unit
		return types.Unit, nil

	case types.KindAssignment:
		if _, err := check(n.Lhs()); err != nil {
			return types.Unit, err
		}
		if _, err := requireInt(n.Rhs()); err != nil {
			return types.Unit, err
		}
		n.RetType = types.Unit
		return types.Unit, nil

	case types.KindBinaryArithmetic:
		return checkBinary(n)

	case types.KindUnaryArithmetic:
		return checkUnary(n)

	case types.KindBlock:
		for _, c := range n.Children {
			if _, err := check(c); err != nil {
				return types.Unit, err
			}
		}
		n.RetType = types.Unit
		return types.Unit, nil

	case types.KindIfWhen:
		if _, err := requireBool(n.Cond()); err != nil {
			return types.Unit, err
		}
		if _, err := check(n.Then()); err != nil {
			return types.Unit, err
		}
		if els := n.Else(); els != nil {
			if _, err := check(els); err != nil {
				return types.Unit, err
			}
		}
		n.RetType = types.Unit
		return types.Unit, nil

	case types.KindWhile:
		if _, err := requireBool(n.Cond()); err != nil {
			return types.Unit, err
		}
		if _, err := check(n.Body()); err != nil {
			return types.Unit, err
		}
		n.RetType = types.Unit
		return types.Unit, nil

	case types.KindFoldedIfWhen:
		if _, err := requireInt(n.CmpLhs()); err != nil {
			return types.Unit, err
		}
		if _, err := requireInt(n.CmpRhs()); err != nil {
			return types.Unit, err
		}
		if _, err := check(n.Then()); err != nil {
			return types.Unit, err
		}
		if els := n.Else(); els != nil {
			if _, err := check(els); err != nil {
				return types.Unit, err
			}
		}
		n.RetType = types.Unit
		return types.Unit, nil

	case types.KindFoldedWhile:
		if _, err := requireInt(n.CmpLhs()); err != nil {
			return types.Unit, err
		}
		if _, err := requireInt(n.CmpRhs()); err != nil {
			return types.Unit, err
		}
		if _, err := check(n.Body()); err != nil {
			return types.Unit, err
		}
		n.RetType = types.Unit
		return types.Unit, nil

	case types.KindEmit:
		for _, arg := range n.Args() {
			if arg.Kind == types.KindStaticVector {
				arg.RetType = types.Int
				continue
			}
			if _, err := requireInt(arg); err != nil {
				return types.Unit, err
			}
		}
		n.RetType = types.Unit
		return types.Unit, nil

	case types.KindCall:
		for _, arg := range n.Args() {
			if arg.Kind == types.KindStaticVector {
				arg.RetType = types.Int
				continue
			}
			if _, err := requireInt(arg); err != nil {
				return types.Unit, err
			}
		}
		n.RetType = types.Unit
		return types.Unit, nil

	case types.KindEventDecl, types.KindSubDecl, types.KindCallSub, types.KindReturn:
		n.RetType = types.Unit
		return types.Unit, nil

	case types.KindMemoryVector:
		return types.Unit, types.NewError(types.InternalInvariantViolation,
			"typecheck: residual MemoryVector node after expansion", n.Pos)

	default:
		return types.Unit, types.NewError(types.InternalInvariantViolation,
			"typecheck: unhandled node kind "+n.Kind.String(), n.Pos)
	}
}

func checkBinary(n *types.Node) (types.Type, error) {
	switch {
	case n.Op.IsLogical():
		if _, err := requireBool(n.Left()); err != nil {
			return types.Unit, err
		}
		if _, err := requireBool(n.Right()); err != nil {
			return types.Unit, err
		}
		n.RetType = types.Bool
		return types.Bool, nil

	case n.Op.IsComparison():
		if _, err := requireInt(n.Left()); err != nil {
			return types.Unit, err
		}
		if _, err := requireInt(n.Right()); err != nil {
			return types.Unit, err
		}
		n.RetType = types.Bool
		return types.Bool, nil

	case n.Op.IsArithmeticOrBitwise():
		if _, err := requireInt(n.Left()); err != nil {
			return types.Unit, err
		}
		if _, err := requireInt(n.Right()); err != nil {
			return types.Unit, err
		}
		n.RetType = types.Int
		return types.Int, nil

	default:
		return types.Unit, types.NewError(types.InternalInvariantViolation,
			"typecheck: binary node with unclassified op "+n.Op.String(), n.Pos)
	}
}

func checkUnary(n *types.Node) (types.Type, error) {
	if n.Op == types.OpLogNot {
		if _, err := requireBool(n.Operand()); err != nil {
			return types.Unit, err
		}
		n.RetType = types.Bool
		return types.Bool, nil
	}
	if _, err := requireInt(n.Operand()); err != nil {
		return types.Unit, err
	}
	n.RetType = types.Int
	return types.Int, nil
}

func requireInt(n *types.Node) (types.Type, error) {
	t, err := check(n)
	if err != nil {
		return types.Unit, err
	}
	if t != types.Int {
		return types.Unit, types.NewError(types.TypeError,
			"expected Int, found "+t.String(), n.Pos)
	}
	return t, nil
}

func requireBool(n *types.Node) (types.Type, error) {
	t, err := check(n)
	if err != nil {
		return types.Unit, err
	}
	if t != types.Bool {
		return types.Unit, types.NewError(types.TypeError,
			"expected Bool, found "+t.String(), n.Pos)
	}
	return t, nil
}
