package funcs

import (
	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/value"
)

// toUsizeArg coerces a slice/substr argument from decimal, numeric
// string, or boolean (true=1, false=0) to a non-negative index; anything
// negative or non-integral is rejected.
func toUsizeArg(raw string) (int, error) {
	if b, ok := value.ParseBool(raw); ok {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	d, ok := value.ParseNumber(raw)
	if !ok {
		return 0, pipeflowerr.Newf(pipeflowerr.CodeComputeParameterValueNotOK, "argument %q is not numeric", raw)
	}
	unscaled := d.UnscaledBig()
	if d.Scale() != 0 {
		return 0, pipeflowerr.Newf(pipeflowerr.CodeComputeParameterValueNotOK, "argument %q is not an integer", raw)
	}
	n := unscaled.Int64()
	if n < 0 {
		return 0, pipeflowerr.Newf(pipeflowerr.CodeComputeParameterValueNotOK, "argument %q is negative", raw)
	}
	return int(n), nil
}
