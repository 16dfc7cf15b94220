package value

import (
	"strings"

	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"gopkg.in/inf.v0"
)

// IsSameAs is symmetric by construction: every branch that treats (a, b)
// asymmetrically also handles (b, a) by the caller trying both orders
// (see the a/b swap fallback at the end).
func IsSameAs(a, b Value) bool {
	if a.IsEmpty() && b.IsEmpty() {
		return true
	}
	switch {
	case a.kind == KindMap || a.kind == KindVec || b.kind == KindMap || b.kind == KindVec:
		return false
	}

	switch {
	case a.kind == KindString && b.kind == KindString:
		return a.str == b.str
	case a.kind == b.kind && a.kind.Temporal():
		return sameTemporal(a, b)
	case a.kind == KindDateTime && b.kind == KindDate, a.kind == KindDate && b.kind == KindDateTime:
		return truncateToDate(a.t).Equal(truncateToDate(b.t))
	case a.kind == KindNumber && b.kind == KindBool, a.kind == KindBool && b.kind == KindNumber:
		return numberBoolEqual(a, b)
	}

	if a.kind == KindString && b.kind != KindString {
		return stringScalarEqual(a.str, b)
	}
	if b.kind == KindString && a.kind != KindString {
		return stringScalarEqual(b.str, a)
	}

	return false
}

func sameTemporal(a, b Value) bool {
	if a.kind == KindDateTime {
		return truncateToDate(a.t).Equal(truncateToDate(b.t))
	}
	return a.t.Equal(b.t)
}

func numberBoolEqual(a, b Value) bool {
	num, bl := a, b
	if a.kind == KindBool {
		num, bl = b, a
	}
	one := num.num != nil && num.num.Cmp(onesDec) == 0
	zero := num.num != nil && num.num.Cmp(zeroDec) == 0
	if bl.b {
		return one
	}
	return zero
}

// stringScalarEqual implements "string<->number/bool/date/datetime/time:
// attempt parse of the string; equal iff parsed and values match".
func stringScalarEqual(s string, other Value) bool {
	switch other.kind {
	case KindNumber:
		n, ok := ParseNumber(s)
		return ok && n.Cmp(other.num) == 0
	case KindBool:
		b, ok := ParseBool(s)
		return ok && b == other.b
	case KindDate:
		t, ok := ParseDate(s)
		return ok && truncateToDate(t).Equal(truncateToDate(other.t))
	case KindDateTime:
		t, ok := ParseDateTime(s)
		return ok && truncateToDate(t).Equal(truncateToDate(other.t))
	case KindTime:
		t, ok := ParseTime(s)
		return ok && t.Equal(other.t)
	default:
		return false
	}
}

var zeroDec = inf.NewDec(0, 0)
var onesDec = inf.NewDec(1, 0)

// LessThan / MoreThan order {none,string,number,date,datetime,time};
// never bool/map/vec. ValuesNotComparable is returned for disallowed pairs.
func LessThan(a, b Value) (bool, error) {
	return compareLess(a, b)
}

func MoreThan(a, b Value) (bool, error) {
	less, err := compareLess(b, a)
	return less, err
}

func compareLess(a, b Value) (bool, error) {
	if !a.kind.Orderable() || !b.kind.Orderable() {
		return false, pipeflowerr.New(pipeflowerr.CodeValuesNotComparable, "values not comparable: "+a.kind.String()+" vs "+b.kind.String())
	}
	if a.IsNone() && b.IsNone() {
		return false, nil
	}
	if a.IsNone() {
		return true, nil
	}
	if b.IsNone() {
		return false, nil
	}

	na, ta, numA := classifyOrderable(a)
	nb, tb, numB := classifyOrderable(b)

	if numA && numB {
		return na.Cmp(nb) < 0, nil
	}
	if !numA && !numB {
		ka, kb := ta.kind, tb.kind
		if (ka == KindDateTime || ka == KindDate) && (kb == KindDateTime || kb == KindDate) {
			return truncateToDate(ta.t).Before(truncateToDate(tb.t)), nil
		}
		if ka == kb {
			return ta.t.Before(tb.t), nil
		}
		return false, pipeflowerr.New(pipeflowerr.CodeValuesNotComparable, "values not comparable across temporal kinds")
	}
	return false, pipeflowerr.New(pipeflowerr.CodeValuesNotComparable, "values not comparable: number vs temporal")
}

// classifyOrderable reduces a string to its parsed numeric or temporal form
// so mixed string/typed comparisons work the same as typed/typed ones.
func classifyOrderable(v Value) (num *inf.Dec, temporal Value, isNumber bool) {
	if v.kind == KindNumber {
		return v.num, Value{}, true
	}
	if v.kind.Temporal() {
		return nil, v, false
	}
	// string: try number first, then datetime/date/time
	if n, ok := ParseNumber(v.str); ok {
		return n, Value{}, true
	}
	if t, ok := ParseDateTime(v.str); ok {
		return nil, DateTime(t), false
	}
	if t, ok := ParseDate(v.str); ok {
		return nil, Date(t), false
	}
	if t, ok := ParseTime(v.str); ok {
		return nil, Time(t), false
	}
	return nil, Value{}, false
}

// IsIn checks membership: vec rhs checks element equality; string rhs
// splits on comma; none rhs is always false; anything else errors.
func IsIn(needle, haystack Value) (bool, error) {
	switch haystack.kind {
	case KindVec:
		for _, item := range haystack.vec {
			if IsSameAs(needle, item) {
				return true, nil
			}
		}
		return false, nil
	case KindString:
		for _, part := range strings.Split(haystack.str, ",") {
			if IsSameAs(needle, String(strings.TrimSpace(part))) {
				return true, nil
			}
		}
		return false, nil
	case KindNone:
		return false, nil
	default:
		return false, pipeflowerr.New(pipeflowerr.CodeValuesNotComparable, "is_in right-hand side must be vec, string, or none")
	}
}
