package cond

import "github.com/evalgo-labs/pipeflow/memview"

// JointType is the boolean combinator a Joint applies across its conditions.
type JointType string

const (
	JointAnd JointType = "and"
	JointOr  JointType = "or"
)

// Joint combines sub-conditions with AND/OR semantics. IsFalse is not the
// negation of IsTrue evaluated afterward — it's computed directly so that,
// e.g., an AND joint can stop at the first false sub-condition without
// evaluating the rest.
type Joint struct {
	Type       JointType
	Conditions []Condition
}

func NewJoint(t JointType, conditions []Condition) *Joint {
	return &Joint{Type: t, Conditions: conditions}
}

// IsTrue: for AND, true iff none of the conditions is false; for OR, true
// iff any condition is true.
func (j *Joint) IsTrue(f *memview.Frame) (bool, error) {
	switch j.Type {
	case JointAnd:
		for _, c := range j.Conditions {
			isFalse, err := c.IsFalse(f)
			if err != nil {
				return false, err
			}
			if isFalse {
				return false, nil
			}
		}
		return true, nil
	default: // JointOr
		for _, c := range j.Conditions {
			isTrue, err := c.IsTrue(f)
			if err != nil {
				return false, err
			}
			if isTrue {
				return true, nil
			}
		}
		return false, nil
	}
}

// IsFalse: for AND, true iff any condition is false; for OR, true iff none
// of the conditions is true.
func (j *Joint) IsFalse(f *memview.Frame) (bool, error) {
	switch j.Type {
	case JointAnd:
		for _, c := range j.Conditions {
			isFalse, err := c.IsFalse(f)
			if err != nil {
				return false, err
			}
			if isFalse {
				return true, nil
			}
		}
		return false, nil
	default: // JointOr
		for _, c := range j.Conditions {
			isTrue, err := c.IsTrue(f)
			if err != nil {
				return false, err
			}
			if isTrue {
				return false, nil
			}
		}
		return true, nil
	}
}
