package compiler

import (
	"github.com/evalgo-labs/pipeflow/cond"
	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/schema"
)

// compileCondition resolves a ConditionSpec tree into a cond.Condition
// tree, recursively compiling the parameters an expression leaf holds.
func (s *session) compileCondition(cs *schema.ConditionSpec) (cond.Condition, error) {
	if cs == nil {
		return nil, pipeflowerr.New(pipeflowerr.CodeMissingRequiredParameter, "condition is required")
	}

	switch cs.Kind {
	case schema.ConditionExpression:
		return s.compileExpression(cs)
	case schema.ConditionJoint:
		return s.compileJoint(cs)
	default:
		return nil, pipeflowerr.Newf(pipeflowerr.CodeComputeParameterValueNotOK, "unknown condition kind %q", cs.Kind)
	}
}

func (s *session) compileExpression(cs *schema.ConditionSpec) (cond.Condition, error) {
	left, err := s.compileParameter(cs.Left)
	if err != nil {
		return nil, err
	}

	op := cond.Operator(cs.Operator)
	switch op {
	case cond.OpEmpty, cond.OpNotEmpty:
		return cond.NewExpression(op, left, nil)
	default:
		if cs.Right == nil {
			return nil, pipeflowerr.Newf(pipeflowerr.CodeMissingRequiredParameter, "operator %q requires a right parameter", cs.Operator)
		}
		rightParam, err := s.compileParameter(cs.Right)
		if err != nil {
			return nil, err
		}
		return cond.NewExpression(op, left, rightParam)
	}
}

func (s *session) compileJoint(cs *schema.ConditionSpec) (cond.Condition, error) {
	var errs []error
	conditions := make([]cond.Condition, 0, len(cs.Conditions))
	for i := range cs.Conditions {
		c, err := s.compileCondition(&cs.Conditions[i])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		conditions = append(conditions, c)
	}
	if err := pipeflowerr.Multiple(errs...); err != nil {
		return nil, err
	}

	var jt cond.JointType
	switch cs.JointType {
	case "and", "":
		jt = cond.JointAnd
	case "or":
		jt = cond.JointOr
	default:
		return nil, pipeflowerr.Newf(pipeflowerr.CodeComputeParameterValueNotOK, "unknown joint type %q", cs.JointType)
	}

	return cond.NewJoint(jt, conditions), nil
}
