package param

import (
	"github.com/evalgo-labs/pipeflow/memview"
	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/value"
	"gopkg.in/inf.v0"
)

// numericOperand resolves one sub-parameter to a decimal, treating none and
// empty string as zero (the add/subtract/avg contract); anything else that
// doesn't coerce to a number fails ComputeParameterValueNotOK.
func numericOperand(f *memview.Frame, p Parameter, zeroOK bool) (*inf.Dec, error) {
	v, err := p.ValueFrom(f)
	if err != nil {
		return nil, err
	}
	if zeroOK && v.IsEmpty() {
		return inf.NewDec(0, 0), nil
	}
	n, ok := v.AsNumberCoerced()
	if !ok {
		return nil, pipeflowerr.New(pipeflowerr.CodeComputeParameterValueNotOK, "computed parameter argument is not a decimal")
	}
	return n, nil
}

func requireParameters(name string, params []Parameter) error {
	if len(params) == 0 {
		return pipeflowerr.Newf(pipeflowerr.CodeMissingRequiredParameter, "%s requires at least one sub-parameter", name)
	}
	return nil
}

// AddParameter sums its sub-parameters; none/empty-string contributes 0.
type AddParameter struct{ Parameters []Parameter }

func NewAddParameter(params []Parameter) (*AddParameter, error) {
	if err := requireParameters("add", params); err != nil {
		return nil, err
	}
	return &AddParameter{Parameters: params}, nil
}

func (p *AddParameter) ValueFrom(f *memview.Frame) (value.Value, error) {
	total := inf.NewDec(0, 0)
	for _, sub := range p.Parameters {
		n, err := numericOperand(f, sub, true)
		if err != nil {
			return value.None, err
		}
		total.Add(total, n)
	}
	return value.Number(total), nil
}

// SubtractParameter subtracts every sub-parameter after the first from the
// first; none/empty-string contributes 0 like add.
type SubtractParameter struct{ Parameters []Parameter }

func NewSubtractParameter(params []Parameter) (*SubtractParameter, error) {
	if err := requireParameters("subtract", params); err != nil {
		return nil, err
	}
	return &SubtractParameter{Parameters: params}, nil
}

func (p *SubtractParameter) ValueFrom(f *memview.Frame) (value.Value, error) {
	total, err := numericOperand(f, p.Parameters[0], true)
	if err != nil {
		return value.None, err
	}
	total = new(inf.Dec).Set(total)
	for _, sub := range p.Parameters[1:] {
		n, err := numericOperand(f, sub, true)
		if err != nil {
			return value.None, err
		}
		total.Sub(total, n)
	}
	return value.Number(total), nil
}

// MultiplyParameter multiplies its sub-parameters; none is rejected rather
// than treated as an identity element, since a silent 1 (or 0) would hide a
// missing value instead of surfacing it.
type MultiplyParameter struct{ Parameters []Parameter }

func NewMultiplyParameter(params []Parameter) (*MultiplyParameter, error) {
	if err := requireParameters("multiply", params); err != nil {
		return nil, err
	}
	return &MultiplyParameter{Parameters: params}, nil
}

func (p *MultiplyParameter) ValueFrom(f *memview.Frame) (value.Value, error) {
	total := inf.NewDec(1, 0)
	for _, sub := range p.Parameters {
		n, err := numericOperand(f, sub, false)
		if err != nil {
			return value.None, err
		}
		total.Mul(total, n)
	}
	return value.Number(total), nil
}

// DivideParameter divides the first sub-parameter by each of the rest in
// order; dividing by zero fails ComputeParameterDivideZero.
type DivideParameter struct{ Parameters []Parameter }

func NewDivideParameter(params []Parameter) (*DivideParameter, error) {
	if err := requireParameters("divide", params); err != nil {
		return nil, err
	}
	return &DivideParameter{Parameters: params}, nil
}

func (p *DivideParameter) ValueFrom(f *memview.Frame) (value.Value, error) {
	total, err := numericOperand(f, p.Parameters[0], false)
	if err != nil {
		return value.None, err
	}
	total = new(inf.Dec).Set(total)
	for _, sub := range p.Parameters[1:] {
		n, err := numericOperand(f, sub, false)
		if err != nil {
			return value.None, err
		}
		if n.Cmp(inf.NewDec(0, 0)) == 0 {
			return value.None, pipeflowerr.New(pipeflowerr.CodeComputeParameterDivideZero, "divide by zero")
		}
		total = new(inf.Dec).QuoRound(total, n, 10, inf.RoundHalfEven)
	}
	return value.Number(total), nil
}

// ModulusParameter reduces the first sub-parameter modulo each of the rest
// in order, using truncated division (remainder takes the sign of the
// dividend); modulus by zero fails ComputeParameterModulusZero.
type ModulusParameter struct{ Parameters []Parameter }

func NewModulusParameter(params []Parameter) (*ModulusParameter, error) {
	if err := requireParameters("modulus", params); err != nil {
		return nil, err
	}
	return &ModulusParameter{Parameters: params}, nil
}

func (p *ModulusParameter) ValueFrom(f *memview.Frame) (value.Value, error) {
	total, err := numericOperand(f, p.Parameters[0], false)
	if err != nil {
		return value.None, err
	}
	total = new(inf.Dec).Set(total)
	for _, sub := range p.Parameters[1:] {
		n, err := numericOperand(f, sub, false)
		if err != nil {
			return value.None, err
		}
		if n.Cmp(inf.NewDec(0, 0)) == 0 {
			return value.None, pipeflowerr.New(pipeflowerr.CodeComputeParameterModulusZero, "modulus by zero")
		}
		quotient := new(inf.Dec).QuoRound(total, n, 0, inf.RoundDown)
		product := new(inf.Dec).Mul(quotient, n)
		total = new(inf.Dec).Sub(total, product)
	}
	return value.Number(total), nil
}
