package value

import (
	"encoding/json"
)

// MarshalJSON renders a Value as plain JSON: scalars render as their native
// JSON type, dates/times/datetimes render as their canonical layout string,
// map and vec recurse. A none value renders as JSON null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNone:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		if v.num == nil {
			return []byte("null"), nil
		}
		return []byte(v.num.String()), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindDate:
		return json.Marshal(v.t.Format(DateLayout))
	case KindTime:
		return json.Marshal(v.t.Format(TimeLayout))
	case KindDateTime:
		return json.Marshal(v.t.Format(DateTimeLayout))
	case KindMap:
		return json.Marshal(v.m)
	case KindVec:
		return json.Marshal(v.vec)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON reconstructs a Value from arbitrary JSON: objects become
// KindMap, arrays become KindVec, and scalars map onto their nearest Value
// kind. JSON has no native date/time distinction, so a decoded value always
// lands as KindString, KindNumber, KindBool or KindNone until a caller
// re-types it against a factor's declared kind.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = fromInterface(raw)
	return nil
}

func fromInterface(raw interface{}) Value {
	switch t := raw.(type) {
	case nil:
		return None
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case float64:
		return NumberFromFloat(t, 6)
	case json.Number:
		d, ok := ParseNumber(t.String())
		if !ok {
			return String(t.String())
		}
		return Number(d)
	case map[string]interface{}:
		m := make(map[string]Value, len(t))
		for k, v := range t {
			m[k] = fromInterface(v)
		}
		return Map(m)
	case []interface{}:
		vec := make([]Value, 0, len(t))
		for _, v := range t {
			vec = append(vec, fromInterface(v))
		}
		return Vec(vec)
	default:
		return None
	}
}
