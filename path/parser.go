package path

import "strings"

const escapable = ".,(){}&"

// Parse parses a path string into its segment tree. Single-pass, fail-fast:
// the first grammar violation aborts with IncorrectDataPath.
func Parse(s string) (*Path, error) {
	tokens, err := splitTopLevel(s, '.')
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, errIncorrectDataPath("empty data path")
	}
	segs := make([]Segment, 0, len(tokens))
	for _, tok := range tokens {
		seg, err := parseSegment(tok)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
	}
	return &Path{Segments: segs}, nil
}

// splitTopLevel splits s on sep, ignoring occurrences inside {...}, (...),
// or escaped with a backslash. Reports unbalanced braces/parens as
// IncorrectDataPath.
func splitTopLevel(s string, sep byte) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	depthBrace, depthParen := 0, 0
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			cur.WriteByte(c)
			escaped = false
			continue
		}
		switch c {
		case '\\':
			cur.WriteByte(c)
			escaped = true
			continue
		case '{':
			depthBrace++
		case '}':
			depthBrace--
			if depthBrace < 0 {
				return nil, errIncorrectDataPath("unbalanced '}' in path %q", s)
			}
		case '(':
			depthParen++
		case ')':
			depthParen--
			if depthParen < 0 {
				return nil, errIncorrectDataPath("unbalanced ')' in path %q", s)
			}
		}
		if c == sep && depthBrace == 0 && depthParen == 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	if escaped {
		return nil, errIncorrectDataPath("dangling escape at end of path %q", s)
	}
	if depthBrace != 0 {
		return nil, errIncorrectDataPath("unbalanced '{' in path %q", s)
	}
	if depthParen != 0 {
		return nil, errIncorrectDataPath("unbalanced '(' in path %q", s)
	}
	tokens = append(tokens, cur.String())
	return tokens, nil
}

// parseSegment classifies and parses one top-level '.'-delimited token.
func parseSegment(tok string) (Segment, error) {
	trimmed := strings.TrimSpace(tok)
	if trimmed == "" {
		return nil, errIncorrectDataPath("empty segment")
	}
	if strings.HasPrefix(trimmed, "&") {
		return parseFuncSegment(trimmed)
	}
	if strings.ContainsRune(tok, '{') {
		return parseLiteralSegment(tok)
	}
	if strings.ContainsRune(tok, '&') {
		return nil, errIncorrectDataPath("unexpected '&' in plain segment %q", tok)
	}
	return PlainSegment{Name: unescape(trimmed)}, nil
}

// parseFuncSegment parses `&name` or `&name(arg, arg, ...)`.
func parseFuncSegment(tok string) (Segment, error) {
	body := tok[1:] // drop leading '&'
	parenIdx := strings.IndexByte(body, '(')
	if parenIdx < 0 {
		name := strings.TrimSpace(body)
		if name == "" {
			return nil, errIncorrectDataPath("function segment missing name in %q", tok)
		}
		return FuncSegment{Name: canonicalFuncName(name)}, nil
	}
	name := strings.TrimSpace(body[:parenIdx])
	if name == "" {
		return nil, errIncorrectDataPath("function segment missing name in %q", tok)
	}
	if !strings.HasSuffix(strings.TrimSpace(body), ")") {
		return nil, errIncorrectDataPath("unbalanced '(' in function segment %q", tok)
	}
	argsBody := strings.TrimSpace(body)
	argsBody = argsBody[parenIdx+1 : len(argsBody)-1]
	var args []string
	if strings.TrimSpace(argsBody) != "" {
		rawArgs, err := splitTopLevel(argsBody, ',')
		if err != nil {
			return nil, err
		}
		for _, a := range rawArgs {
			args = append(args, unescape(strings.TrimSpace(a)))
		}
	}
	return FuncSegment{Name: canonicalFuncName(name), Args: args}, nil
}

// parseLiteralSegment parses text with embedded `{subpath}` groups into
// alternating literal-text / sub-path parts.
func parseLiteralSegment(tok string) (Segment, error) {
	var parts []LiteralPart
	var cur strings.Builder
	escaped := false
	i := 0
	for i < len(tok) {
		c := tok[i]
		if escaped {
			cur.WriteByte(c)
			escaped = false
			i++
			continue
		}
		if c == '\\' {
			escaped = true
			i++
			continue
		}
		if c == '{' {
			if cur.Len() > 0 {
				parts = append(parts, LiteralPart{Text: cur.String()})
				cur.Reset()
			}
			depth := 1
			start := i + 1
			j := start
			innerEscaped := false
			for j < len(tok) && depth > 0 {
				cj := tok[j]
				if innerEscaped {
					innerEscaped = false
					j++
					continue
				}
				switch cj {
				case '\\':
					innerEscaped = true
				case '{':
					depth++
				case '}':
					depth--
				}
				j++
			}
			if depth != 0 {
				return nil, errIncorrectDataPath("unbalanced '{' in literal segment %q", tok)
			}
			inner := tok[start : j-1]
			sub, err := Parse(inner)
			if err != nil {
				return nil, err
			}
			parts = append(parts, LiteralPart{SubPath: sub})
			i = j
			continue
		}
		if c == '}' {
			return nil, errIncorrectDataPath("unbalanced '}' in literal segment %q", tok)
		}
		cur.WriteByte(c)
		i++
	}
	if cur.Len() > 0 {
		parts = append(parts, LiteralPart{Text: cur.String()})
	}
	return LiteralSegment{Parts: parts}, nil
}

// unescape resolves backslash escapes for the path grammar's special
// characters. Unknown escapes pass the backslash through literally
// rather than erroring, matching a lenient single-pass scanner.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && strings.IndexByte(escapable+`\`, s[i+1]) >= 0 {
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// canonicalFuncName strips surrounding whitespace only; name aliasing
// (length/len, slice/substr, ...) is resolved by the funcs package, which
// owns the alias table.
func canonicalFuncName(name string) string {
	return strings.TrimSpace(name)
}
