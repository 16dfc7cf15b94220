package value

import (
	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"gopkg.in/inf.v0"
)

// Sum ignores none/empty-string elements; everything else must coerce to
// a number or VariableFuncNotSupported.
func Sum(items []Value) (Value, error) {
	total := inf.NewDec(0, 0)
	for _, v := range items {
		if v.IsEmpty() {
			continue
		}
		n, ok := v.AsNumberCoerced()
		if !ok {
			return None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "sum: element not numeric")
		}
		total.Add(total, n)
	}
	return Number(total), nil
}

// Avg divides the sum by the count of non-none/non-empty elements; an
// all-empty vec yields none to avoid divide-by-zero.
func Avg(items []Value) (Value, error) {
	total := inf.NewDec(0, 0)
	count := 0
	for _, v := range items {
		if v.IsEmpty() {
			continue
		}
		n, ok := v.AsNumberCoerced()
		if !ok {
			return None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "avg: element not numeric")
		}
		total.Add(total, n)
		count++
	}
	if count == 0 {
		return None, nil
	}
	divisor := inf.NewDec(int64(count), 0)
	if exact := new(inf.Dec).QuoExact(total, divisor); exact != nil {
		return Number(exact), nil
	}
	result := new(inf.Dec).QuoRound(total, divisor, 10, inf.RoundHalfEven)
	return Number(result), nil
}

// Distinct rejects map elements; two scalars equal under IsSameAs appear
// at most once, first occurrence wins.
func Distinct(items []Value) ([]Value, error) {
	var result []Value
	for _, v := range items {
		if v.kind == KindMap {
			return nil, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "distinct: map element not supported")
		}
		dup := false
		for _, kept := range result {
			if IsSameAs(v, kept) {
				dup = true
				break
			}
		}
		if !dup {
			result = append(result, v)
		}
	}
	return result, nil
}

// MinMaxGate carries the four type-allow flags (allow_decimal,
// allow_datetime, allow_date, allow_time) plus a min/max discriminator.
type MinMaxGate struct {
	AllowDecimal  bool
	AllowDateTime bool
	AllowDate     bool
	AllowTime     bool
	Min           bool // true = min, false = max
}

// AnyGate is the "allow-any" variant used by the untyped min/max functions.
func AnyGate(min bool) MinMaxGate {
	return MinMaxGate{AllowDecimal: true, AllowDateTime: true, AllowDate: true, AllowTime: true, Min: min}
}

func NumGate(min bool) MinMaxGate  { return MinMaxGate{AllowDecimal: true, Min: min} }
func DateGate(min bool) MinMaxGate { return MinMaxGate{AllowDate: true, Min: min} }
func DtGate(min bool) MinMaxGate   { return MinMaxGate{AllowDateTime: true, Min: min} }
func TimeGate(min bool) MinMaxGate { return MinMaxGate{AllowTime: true, Min: min} }

// MinMax runs a two-phase scan over a vec.
//
// Phase 1 fixes the element type from the first non-string value seen,
// deferring strings for phase-2 reparse; none/empty-string short-circuits
// in min-mode (it is always the minimum) and is ignored in max-mode.
// Phase 2 reparses held strings under the now-known type; for the
// allow-any gate a string parsable as multiple kinds is held until a
// definitive kind is established, with decimal preferred over any
// temporal and temporal preferred over time.
func MinMax(items []Value, gate MinMaxGate) (Value, error) {
	if len(items) == 0 {
		return None, nil
	}

	var deferredStrings []string
	var fixedKind Kind = KindNone
	sawNone := false
	var best *Value

	consider := func(v Value) error {
		if best == nil {
			best = &v
			return nil
		}
		var less bool
		var err error
		if gate.Min {
			less, err = LessThan(v, *best)
		} else {
			less, err = MoreThan(v, *best)
		}
		if err != nil {
			return err
		}
		if less {
			best = &v
		}
		return nil
	}

	for _, v := range items {
		switch v.kind {
		case KindBool, KindVec, KindMap:
			return None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "min/max: unsupported element kind "+v.kind.String())
		case KindNone:
			sawNone = true
			continue
		case KindString:
			if v.str == "" {
				sawNone = true
				continue
			}
			deferredStrings = append(deferredStrings, v.str)
			continue
		default:
			if !gateAllows(gate, v.kind) {
				return None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "min/max: element kind "+v.kind.String()+" not allowed by gate")
			}
			if fixedKind == KindNone {
				fixedKind = v.kind
			}
			if err := consider(v); err != nil {
				return None, err
			}
		}
	}

	if gate.Min && sawNone {
		return None, nil
	}

	if fixedKind == KindNone {
		fixedKind = resolveAnyGateKind(gate)
	}

	for _, s := range deferredStrings {
		reparsed, ok := reparseAs(s, fixedKind, gate)
		if !ok {
			return None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "min/max: string %q does not parse as "+fixedKind.String())
		}
		if fixedKind == KindNone {
			fixedKind = reparsed.kind
		}
		if err := consider(reparsed); err != nil {
			return None, err
		}
	}

	if best == nil {
		return None, nil
	}
	return *best, nil
}

func gateAllows(gate MinMaxGate, k Kind) bool {
	switch k {
	case KindNumber:
		return gate.AllowDecimal
	case KindDate:
		return gate.AllowDate
	case KindDateTime:
		return gate.AllowDateTime
	case KindTime:
		return gate.AllowTime
	default:
		return false
	}
}

// resolveAnyGateKind picks the type to attempt first when every element was
// a string and no definitive kind was seen yet: decimal first, then
// datetime, then date, then time.
func resolveAnyGateKind(gate MinMaxGate) Kind {
	switch {
	case gate.AllowDecimal:
		return KindNumber
	case gate.AllowDateTime:
		return KindDateTime
	case gate.AllowDate:
		return KindDate
	case gate.AllowTime:
		return KindTime
	default:
		return KindNone
	}
}

func reparseAs(s string, preferred Kind, gate MinMaxGate) (Value, bool) {
	// Try the preferred kind first so an established fixedKind wins ties;
	// otherwise fall through decimal -> datetime -> date -> time, honoring
	// the gate.
	order := []Kind{preferred, KindNumber, KindDateTime, KindDate, KindTime}
	seen := map[Kind]bool{}
	for _, k := range order {
		if seen[k] || k == KindNone {
			continue
		}
		seen[k] = true
		if !gateAllows(gate, k) {
			continue
		}
		switch k {
		case KindNumber:
			if n, ok := ParseNumber(s); ok {
				return Number(n), true
			}
		case KindDateTime:
			if t, ok := ParseDateTime(s); ok {
				return DateTime(t), true
			}
		case KindDate:
			if t, ok := ParseDate(s); ok {
				return Date(t), true
			}
		case KindTime:
			if t, ok := ParseTime(s); ok {
				return Time(t), true
			}
		}
	}
	return None, false
}
