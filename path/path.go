// Package path implements the data-path grammar: a path addresses nested
// fields of a topic record, optionally invoking built-in functions and
// concatenating literal text with embedded sub-paths.
//
//	Path := Segment ('.' Segment)*
//	Segment := Plain | Func | Literal
package path

import "github.com/evalgo-labs/pipeflow/pipeflowerr"

// Path is a parsed data path: an ordered list of segments applied
// left-to-right during evaluation (memview package).
type Path struct {
	Segments []Segment
	// IsVec marks a schema-resolved plain-factor path whose terminal
	// segment addresses a repeating (array) factor; set by the compiler,
	// never by the parser itself.
	IsVec bool
}

// Simple reports whether the path has exactly one Plain segment; a path
// with any Func or Literal segment, or more than one segment, is Complex.
func (p *Path) Simple() bool {
	return len(p.Segments) == 1 && p.Segments[0].Kind() == KindPlain
}

// PlainName returns the single plain segment's name; only valid when
// Simple() is true.
func (p *Path) PlainName() string {
	if !p.Simple() {
		return ""
	}
	return p.Segments[0].(PlainSegment).Name
}

// SegmentKind tags the three segment shapes the grammar allows.
type SegmentKind int

const (
	KindPlain SegmentKind = iota
	KindFunc
	KindLiteral
)

// Segment is the sum type of Plain/Func/Literal segments.
type Segment interface {
	Kind() SegmentKind
}

// PlainSegment is a bare factor-name token.
type PlainSegment struct {
	Name string
}

func (PlainSegment) Kind() SegmentKind { return KindPlain }

// FuncSegment is a `&name(arg, arg, ...)` invocation; Args are the raw
// (already-unescaped) argument texts, parsed further by the function
// kernel according to each function's own argument contract.
type FuncSegment struct {
	Name string
	Args []string
}

func (FuncSegment) Kind() SegmentKind { return KindFunc }

// LiteralSegment concatenates literal text runs with embedded `{...}`
// sub-paths, e.g. `a{b.c}d`.
type LiteralSegment struct {
	Parts []LiteralPart
}

func (LiteralSegment) Kind() SegmentKind { return KindLiteral }

// LiteralPart is either raw text or a recursively parsed sub-path.
type LiteralPart struct {
	Text    string
	SubPath *Path // nil when Text is set
}

// errIncorrectDataPath mints a grammar-violation error.
func errIncorrectDataPath(format string, args ...any) error {
	return pipeflowerr.Newf(pipeflowerr.CodeIncorrectDataPath, format, args...)
}
