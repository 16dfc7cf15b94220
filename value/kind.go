// Package value implements the tagged-variant value model that every
// operator in pipeflow shares: path addressing, the function kernel,
// parameter/condition evaluation, and action runners all read and produce
// Values rather than raw Go types.
package value

// Kind tags the concrete case a Value holds.
type Kind int

const (
	KindNone Kind = iota
	KindString
	KindNumber
	KindBool
	KindDate
	KindTime
	KindDateTime
	KindMap
	KindVec
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindDateTime:
		return "datetime"
	case KindMap:
		return "map"
	case KindVec:
		return "vec"
	default:
		return "unknown"
	}
}

// Scalar reports whether the kind participates in equality/ordering between
// the seven scalar kinds. Map and vec are never scalar.
func (k Kind) Scalar() bool {
	switch k {
	case KindNone, KindString, KindNumber, KindBool, KindDate, KindTime, KindDateTime:
		return true
	default:
		return false
	}
}

// Orderable reports whether the kind may appear as an operand of less_than /
// more_than. Defined for {none, string, number, date, datetime, time}; never
// for bool, map, or vec.
func (k Kind) Orderable() bool {
	switch k {
	case KindNone, KindString, KindNumber, KindDate, KindTime, KindDateTime:
		return true
	default:
		return false
	}
}

// Comparable mirrors original_source's is_type gate: map and vec never
// reach a relational operator, everything else is a candidate (subsequent
// per-pair rules in LessThan/MoreThan/IsSameAs narrow further).
func (k Kind) Comparable() bool {
	return k != KindMap && k != KindVec
}

// Temporal reports whether the kind is one of the three time-bearing kinds.
func (k Kind) Temporal() bool {
	switch k {
	case KindDate, KindTime, KindDateTime:
		return true
	default:
		return false
	}
}
