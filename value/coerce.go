package value

import (
	"strings"
	"time"

	"gopkg.in/inf.v0"
)

// ParseNumber attempts to parse s as a decimal. Mirrors
// original_source/pipeline_kernel's string-to-number coercion used by
// is_same_as/is_less_than and by numeric computed parameters.
func ParseNumber(s string) (*inf.Dec, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	d := new(inf.Dec)
	if _, ok := d.SetString(s); !ok {
		return nil, false
	}
	return d, true
}

// ParseBool parses the limited true/false vocabulary used for string<->bool
// coercion, mirroring the number<->bool mapping (1<->true, 0<->false).
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

// dateLayouts/dateTimeLayouts/timeLayouts are overridden at process start,
// through Configure, by config.PipelineConfig's date/datetime/time format
// lists; these are the built-in defaults used until Configure runs.
var (
	dateLayouts     = []string{"2006-01-02", "2006/01/02"}
	dateTimeLayouts = []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05"}
	timeLayouts     = []string{"15:04:05", "15:04"}
)

// Configure overrides the parse-format lists from environment flags. Called
// once at process start; safe to call again from tests that want a
// known-clean set of layouts.
func Configure(dateFmts, dateTimeFmts, timeFmts []string) {
	if len(dateFmts) > 0 {
		dateLayouts = dateFmts
	}
	if len(dateTimeFmts) > 0 {
		dateTimeLayouts = dateTimeFmts
	}
	if len(timeFmts) > 0 {
		timeLayouts = timeFmts
	}
}

// ParseDate attempts every configured date layout in order.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDateTime attempts every configured datetime layout in order.
func ParseDateTime(s string) (time.Time, bool) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseTime attempts every configured time-of-day layout in order.
func ParseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseAny tries number, then datetime, then date, then time, in that
// order: decimals win over temporals, and temporals win over bare times.
// This is the priority the "allow-any" minmax variant resolves a deferred
// string's kind by.
func ParseAny(s string) (Value, bool) {
	if d, ok := ParseNumber(s); ok {
		return Number(d), true
	}
	if t, ok := ParseDateTime(s); ok {
		return DateTime(t), true
	}
	if t, ok := ParseDate(s); ok {
		return Date(t), true
	}
	if t, ok := ParseTime(s); ok {
		return Time(t), true
	}
	return None, false
}

// AsDecimalString renders a number value in canonical decimal text, used by
// concat/join and by string coercion of numbers.
func (v Value) AsDecimalString() string {
	if v.kind != KindNumber || v.num == nil {
		return ""
	}
	return v.num.String()
}

// ToString renders any scalar value as its canonical string form; used by
// concat/concatWith/join, where none renders as an empty string.
func (v Value) ToString() string {
	switch v.kind {
	case KindNone:
		return ""
	case KindString:
		return v.str
	case KindNumber:
		return v.AsDecimalString()
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindDate:
		return v.t.Format(DateLayout)
	case KindTime:
		return v.t.Format(TimeLayout)
	case KindDateTime:
		return v.t.Format(DateTimeLayout)
	default:
		return ""
	}
}

// truncateToDate drops the time-of-day component; datetime/date
// comparisons are defined as date-truncated.
func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AsNumberCoerced attempts to read v as a decimal, parsing strings and
// mapping booleans (1/0), used by numeric computed parameters and by
// sum/avg/min/max. ok is false for map/vec/none; callers decide whether
// none is treated as zero or skipped.
func (v Value) AsNumberCoerced() (*inf.Dec, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		return ParseNumber(v.str)
	case KindBool:
		if v.b {
			return inf.NewDec(1, 0), true
		}
		return inf.NewDec(0, 0), true
	default:
		return nil, false
	}
}

// AsTemporalCoerced attempts to read v as a date/time/datetime, parsing
// strings. Returns the resolved Kind alongside the time value.
func (v Value) AsTemporalCoerced() (Kind, time.Time, bool) {
	switch v.kind {
	case KindDate, KindTime, KindDateTime:
		return v.kind, v.t, true
	case KindString:
		if t, ok := ParseDateTime(v.str); ok {
			return KindDateTime, t, true
		}
		if t, ok := ParseDate(v.str); ok {
			return KindDate, t, true
		}
		if t, ok := ParseTime(v.str); ok {
			return KindTime, t, true
		}
		return KindNone, time.Time{}, false
	default:
		return KindNone, time.Time{}, false
	}
}
