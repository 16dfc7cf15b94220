package value

import (
	"time"

	"gopkg.in/inf.v0"
)

// DateLayout/TimeLayout/DateTimeLayout are the canonical formats a Value is
// rendered in (ToString, MarshalJSON). The parse layouts, which the
// environment can override, are the lists in coerce.go that Configure sets.
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02T15:04:05"
)

// Value is the tagged variant shared by every evaluator in the system.
// Once constructed a Value is never mutated in place: operators that
// "change" a value return a new one. Map and Vec hold Values by value, not
// pointer. Because Value has map and slice fields it cannot be compared
// with ==; IsSameAs is the equality operator.
type Value struct {
	kind Kind
	str  string
	num  *inf.Dec
	b    bool
	t    time.Time
	m    map[string]Value
	vec  []Value
}

// None is the canonical empty value.
var None = Value{kind: KindNone}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNone() bool { return v.kind == KindNone }

// IsEmpty reports the equivalence of none and empty string: both are
// "empty" for equality, joining, and sum/avg accumulation purposes, but not
// for strict string comparison.
func (v Value) IsEmpty() bool {
	return v.kind == KindNone || (v.kind == KindString && v.str == "")
}

func String(s string) Value { return Value{kind: KindString, str: s} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Number(d *inf.Dec) Value { return Value{kind: KindNumber, num: d} }

func NumberFromInt(i int64) Value { return Value{kind: KindNumber, num: inf.NewDec(i, 0)} }

func NumberFromFloat(f float64, scale inf.Scale) Value {
	d := new(inf.Dec).SetUnscaled(int64(f * pow10(int(scale))))
	d.SetScale(scale)
	return Value{kind: KindNumber, num: d}
}

func pow10(n int) float64 {
	r := 1.0
	for i := 0; i < n; i++ {
		r *= 10
	}
	return r
}

func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func Time(t time.Time) Value {
	return Value{kind: KindTime, t: time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)}
}

func DateTime(t time.Time) Value { return Value{kind: KindDateTime, t: t} }

func Map(m map[string]Value) Value {
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{kind: KindMap, m: cp}
}

func Vec(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindVec, vec: cp}
}

// AsNumber/AsBool/AsTime/AsMap/AsVec panic-free accessors; callers must
// check Kind() first (or use the coercion helpers in coerce.go), matching
// an exhaustive-match, no-silent-default discipline.
func (v Value) AsString() string { return v.str }

func (v Value) AsNumber() *inf.Dec { return v.num }

func (v Value) AsBool() bool { return v.b }

func (v Value) AsTime() time.Time { return v.t }

func (v Value) AsMap() map[string]Value { return v.m }

func (v Value) AsVec() []Value { return v.vec }

// Len returns the map/vec element count; used by the "count" function.
func (v Value) Len() int {
	switch v.kind {
	case KindMap:
		return len(v.m)
	case KindVec:
		return len(v.vec)
	default:
		return 0
	}
}
