package param

import (
	"github.com/evalgo-labs/pipeflow/memview"
	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/value"
)

// dateOfParameter is the shared shape of the eight calendar-field computed
// parameters; each only differs in which field it reads off the resolved
// time value.
type dateOfParameter struct {
	name      string
	parameter Parameter
	field     func(y, m, d, wd, isoWeek int) int64
}

func (p *dateOfParameter) ValueFrom(f *memview.Frame) (value.Value, error) {
	v, err := p.parameter.ValueFrom(f)
	if err != nil {
		return value.None, err
	}
	if v.IsEmpty() {
		return value.None, nil
	}
	_, t, ok := v.AsTemporalCoerced()
	if !ok {
		return value.None, pipeflowerr.Newf(pipeflowerr.CodeComputeParameterNotADate,
			"%s argument must be a date or datetime", p.name)
	}
	y, m, d := t.Date()
	_, isoWeek := t.ISOWeek()
	wd := int(t.Weekday())
	return value.NumberFromInt(p.field(y, int(m), d, wd, isoWeek)), nil
}

func newDateOf(name string, parameter Parameter, field func(y, m, d, wd, isoWeek int) int64) *dateOfParameter {
	return &dateOfParameter{name: name, parameter: parameter, field: field}
}

func NewYearOfParameter(p Parameter) Parameter {
	return newDateOf("yearOf", p, func(y, m, d, wd, iw int) int64 { return int64(y) })
}

func NewHalfYearOfParameter(p Parameter) Parameter {
	return newDateOf("halfYearOf", p, func(y, m, d, wd, iw int) int64 { return int64((m-1)/6 + 1) })
}

func NewQuarterOfParameter(p Parameter) Parameter {
	return newDateOf("quarterOf", p, func(y, m, d, wd, iw int) int64 { return int64((m-1)/3 + 1) })
}

func NewMonthOfParameter(p Parameter) Parameter {
	return newDateOf("monthOf", p, func(y, m, d, wd, iw int) int64 { return int64(m) })
}

func NewWeekOfYearParameter(p Parameter) Parameter {
	return newDateOf("weekOfYear", p, func(y, m, d, wd, iw int) int64 { return int64(iw) })
}

func NewWeekOfMonthParameter(p Parameter) Parameter {
	return newDateOf("weekOfMonth", p, func(y, m, d, wd, iw int) int64 { return int64((d-1)/7 + 1) })
}

func NewDayOfMonthParameter(p Parameter) Parameter {
	return newDateOf("dayOfMonth", p, func(y, m, d, wd, iw int) int64 { return int64(d) })
}

// NewDayOfWeekParameter counts Monday=1 .. Sunday=7 (Go's time.Weekday is
// Sunday=0, rotated here to the common ISO convention).
func NewDayOfWeekParameter(p Parameter) Parameter {
	return newDateOf("dayOfWeek", p, func(y, m, d, wd, iw int) int64 { return int64((wd+6)%7 + 1) })
}
