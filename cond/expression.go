// Package cond evaluates condition trees — a leaf expression over two
// parameters, or a joint (AND/OR) of sub-conditions — against a memview
// frame. Every node defines IsTrue and IsFalse explicitly rather than one
// in terms of the other's negation, so a joint can short-circuit without
// forcing an extra evaluation that might itself fail to coerce.
package cond

import (
	"github.com/evalgo-labs/pipeflow/memview"
	"github.com/evalgo-labs/pipeflow/param"
	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/value"
)

// Condition is satisfied by both Expression and Joint, letting a Joint
// nest either as a sub-condition.
type Condition interface {
	IsTrue(f *memview.Frame) (bool, error)
	IsFalse(f *memview.Frame) (bool, error)
}

// Operator names one of the ten relational expression kinds.
type Operator string

const (
	OpEmpty          Operator = "empty"
	OpNotEmpty       Operator = "notEmpty"
	OpEquals         Operator = "="
	OpNotEquals      Operator = "≠"
	OpLessThan       Operator = "<"
	OpLessThanEquals Operator = "≤"
	OpMoreThan       Operator = ">"
	OpMoreThanEquals Operator = "≥"
	OpIn             Operator = "in"
	OpNotIn          Operator = "notIn"
)

// Expression compares Left against Right (Right is unused for the unary
// empty/notEmpty operators).
type Expression struct {
	Op    Operator
	Left  param.Parameter
	Right param.Parameter
}

// NewExpression validates that binary operators carry a right operand and
// unary ones don't need one; Right may be nil for empty/notEmpty.
func NewExpression(op Operator, left, right param.Parameter) (*Expression, error) {
	if left == nil {
		return nil, pipeflowerr.New(pipeflowerr.CodeMissingRequiredParameter, "condition expression requires a left parameter")
	}
	switch op {
	case OpEmpty, OpNotEmpty:
	default:
		if right == nil {
			return nil, pipeflowerr.Newf(pipeflowerr.CodeMissingRequiredParameter, "operator %q requires a right parameter", op)
		}
	}
	return &Expression{Op: op, Left: left, Right: right}, nil
}

func (e *Expression) leftValue(f *memview.Frame) (value.Value, error) {
	return e.Left.ValueFrom(f)
}

func (e *Expression) rightValue(f *memview.Frame) (value.Value, error) {
	return e.Right.ValueFrom(f)
}

func (e *Expression) IsTrue(f *memview.Frame) (bool, error) {
	l, err := e.leftValue(f)
	if err != nil {
		return false, err
	}
	switch e.Op {
	case OpEmpty:
		return l.IsEmpty(), nil
	case OpNotEmpty:
		return !l.IsEmpty(), nil
	}
	r, err := e.rightValue(f)
	if err != nil {
		return false, err
	}
	switch e.Op {
	case OpEquals:
		return value.IsSameAs(l, r), nil
	case OpNotEquals:
		return !value.IsSameAs(l, r), nil
	case OpLessThan:
		return value.LessThan(l, r)
	case OpLessThanEquals:
		more, err := value.MoreThan(l, r)
		if err != nil {
			return false, err
		}
		return !more, nil
	case OpMoreThan:
		return value.MoreThan(l, r)
	case OpMoreThanEquals:
		less, err := value.LessThan(l, r)
		if err != nil {
			return false, err
		}
		return !less, nil
	case OpIn:
		return value.IsIn(l, r)
	case OpNotIn:
		in, err := value.IsIn(l, r)
		if err != nil {
			return false, err
		}
		return !in, nil
	default:
		return false, pipeflowerr.Newf(pipeflowerr.CodeVariableFuncNotSupported, "unknown condition operator %q", e.Op)
	}
}

// IsFalse mirrors each operator's direct complement rather than negating
// IsTrue, matching the dedicated is_false implementation every original
// expression type carries alongside is_true.
func (e *Expression) IsFalse(f *memview.Frame) (bool, error) {
	l, err := e.leftValue(f)
	if err != nil {
		return false, err
	}
	switch e.Op {
	case OpEmpty:
		return !l.IsEmpty(), nil
	case OpNotEmpty:
		return l.IsEmpty(), nil
	}
	r, err := e.rightValue(f)
	if err != nil {
		return false, err
	}
	switch e.Op {
	case OpEquals:
		return !value.IsSameAs(l, r), nil
	case OpNotEquals:
		return value.IsSameAs(l, r), nil
	case OpLessThan:
		return value.MoreThan(l, r)
	case OpLessThanEquals:
		return value.MoreThan(l, r)
	case OpMoreThan:
		return value.LessThan(l, r)
	case OpMoreThanEquals:
		return value.LessThan(l, r)
	case OpIn:
		in, err := value.IsIn(l, r)
		if err != nil {
			return false, err
		}
		return !in, nil
	case OpNotIn:
		return value.IsIn(l, r)
	default:
		return false, pipeflowerr.Newf(pipeflowerr.CodeVariableFuncNotSupported, "unknown condition operator %q", e.Op)
	}
}
