package path

import "strings"

// Serialize renders a parsed Path back to path-string form. It is not
// guaranteed to be byte-identical to the original source text (e.g.
// whitespace around function arguments is not preserved) but re-parsing
// the result addresses the same field set.
func (p *Path) Serialize() string {
	parts := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		parts[i] = serializeSegment(s)
	}
	return strings.Join(parts, ".")
}

func serializeSegment(s Segment) string {
	switch v := s.(type) {
	case PlainSegment:
		return escapeLiteral(v.Name)
	case FuncSegment:
		if len(v.Args) == 0 {
			return "&" + v.Name
		}
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = escapeLiteral(a)
		}
		return "&" + v.Name + "(" + strings.Join(args, ",") + ")"
	case LiteralSegment:
		var b strings.Builder
		for _, part := range v.Parts {
			if part.SubPath != nil {
				b.WriteByte('{')
				b.WriteString(part.SubPath.Serialize())
				b.WriteByte('}')
			} else {
				b.WriteString(escapeLiteral(part.Text))
			}
		}
		return b.String()
	default:
		return ""
	}
}

func escapeLiteral(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(escapable, c) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}
