package param

import (
	"github.com/evalgo-labs/pipeflow/memview"
	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/value"
)

type caseRoute struct {
	joint     Joint
	parameter Parameter
}

// CaseThenParameter picks its value from the first route whose joint is
// true, falling back to an optional default, or none if neither applies.
type CaseThenParameter struct {
	routes []caseRoute
	hasDef bool
	def    Parameter
}

func NewCaseThenParameter() *CaseThenParameter {
	return &CaseThenParameter{}
}

// AddRoute appends a conditional (joint, parameter) pair; routes are tried
// in order and the first true joint wins.
func (c *CaseThenParameter) AddRoute(j Joint, p Parameter) {
	c.routes = append(c.routes, caseRoute{joint: j, parameter: p})
}

// SetDefault registers the unconditional fallback route; calling it twice
// is a compile error, since a case-then can have at most one default.
func (c *CaseThenParameter) SetDefault(p Parameter) error {
	if c.hasDef {
		return pipeflowerr.New(pipeflowerr.CodeDoubleDefault, "case-then may have at most one default route")
	}
	c.def = p
	c.hasDef = true
	return nil
}

func (c *CaseThenParameter) ValueFrom(f *memview.Frame) (value.Value, error) {
	for _, r := range c.routes {
		ok, err := r.joint.IsTrue(f)
		if err != nil {
			return value.None, err
		}
		if ok {
			return r.parameter.ValueFrom(f)
		}
	}
	if c.hasDef {
		return c.def.ValueFrom(f)
	}
	return value.None, nil
}
