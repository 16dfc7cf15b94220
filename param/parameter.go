// Package param reduces a compiled parameter tree to a single value against
// a memview frame: a topic-factor reference, a constant path, or a computed
// operator over sub-parameters.
package param

import (
	"github.com/evalgo-labs/pipeflow/memview"
	"github.com/evalgo-labs/pipeflow/path"
	"github.com/evalgo-labs/pipeflow/value"
)

// Parameter reduces itself to a value given the current evaluation frame.
type Parameter interface {
	ValueFrom(f *memview.Frame) (value.Value, error)
}

// Joint is the narrow surface param.CaseThenParameter needs from a
// condition tree, satisfied structurally by cond.Joint without param
// importing cond (cond imports param for expression operands instead).
type Joint interface {
	IsTrue(f *memview.Frame) (bool, error)
}

// TopicFactorParameter reads a single factor off the current record,
// bypassing variables even mid-unit.
type TopicFactorParameter struct {
	Path *path.Path
}

func NewTopicFactorParameter(p *path.Path) *TopicFactorParameter {
	return &TopicFactorParameter{Path: p}
}

func (p *TopicFactorParameter) ValueFrom(f *memview.Frame) (value.Value, error) {
	return f.ValueOfStrict(p.Path)
}

// ConstantParameter is a parsed path evaluated against the frame's ambient
// mode: literal text, literal-concatenation groups, and function segments
// are all legal, same as any other path.
type ConstantParameter struct {
	Path *path.Path
}

func NewConstantParameter(p *path.Path) *ConstantParameter {
	return &ConstantParameter{Path: p}
}

func (p *ConstantParameter) ValueFrom(f *memview.Frame) (value.Value, error) {
	return f.ValueOf(p.Path)
}
