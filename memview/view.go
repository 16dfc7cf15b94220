// Package memview evaluates a parsed data path against an in-memory
// current/previous record pair plus a scratch variable map, the same
// three-tier resolution a compiled pipeline unit walks at runtime.
package memview

import (
	"strings"

	"github.com/evalgo-labs/pipeflow/funcs"
	"github.com/evalgo-labs/pipeflow/path"
	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/value"
)

const (
	CodeCurrentDataMissing  = "MEMV-00001"
	CodePreviousDataMissing = "MEMV-00002"
)

// Frame holds one evaluation's current/previous record plus the scratch
// variables a unit's earlier actions have written. Variables shadow the
// current record under the same name; switching to current-only mode (via
// CurrentOnly) is how a trigger precondition evaluates strictly against
// the raw inbound record, bypassing anything written mid-unit.
type Frame struct {
	current      *value.Value
	previous     *value.Value
	variables    map[string]value.Value
	currentOnly  bool
	env          *funcs.Env
}

// NewFrame builds a Frame. Either record may be nil when not yet known
// (e.g. previous is nil on an insert trigger).
func NewFrame(current, previous *value.Value, env *funcs.Env) *Frame {
	if env == nil {
		env = funcs.DefaultEnv()
	}
	f := &Frame{current: current, previous: previous, variables: map[string]value.Value{}, env: env}
	env.CurrentRecord = func() (value.Value, bool) {
		if f.current == nil {
			return value.None, false
		}
		return *f.current, true
	}
	env.PreviousRecord = func() (value.Value, bool) {
		if f.previous == nil {
			return value.None, false
		}
		return *f.previous, true
	}
	return f
}

// CurrentOnly restricts plain-segment lookups to the current record,
// ignoring variables written earlier in the unit.
func (f *Frame) CurrentOnly() *Frame {
	f.currentOnly = true
	return f
}

// AllAllowed restores the default lookup order (variables, then current).
func (f *Frame) AllAllowed() *Frame {
	f.currentOnly = false
	return f
}

// SetVariable records a scratch value visible to subsequent path lookups.
func (f *Frame) SetVariable(name string, v value.Value) {
	f.variables[name] = v
}

// ValueOfStrict evaluates p against the current record only, regardless of
// the frame's ambient mode, then restores that mode afterward. A
// topic-factor parameter always resolves this way: against the raw current
// record, never against variables written earlier in the same unit.
func (f *Frame) ValueOfStrict(p *path.Path) (value.Value, error) {
	was := f.currentOnly
	f.currentOnly = true
	v, err := f.ValueOf(p)
	f.currentOnly = was
	return v, err
}

func (f *Frame) currentData() (value.Value, error) {
	if f.current == nil {
		return value.None, pipeflowerr.New(CodeCurrentDataMissing, "current trigger data is missing")
	}
	return *f.current, nil
}

func (f *Frame) previousData() (value.Value, error) {
	if f.previous == nil {
		return value.None, pipeflowerr.New(CodePreviousDataMissing, "previous trigger data is missing")
	}
	return *f.previous, nil
}

func (f *Frame) fromCurrent(prop string) (value.Value, error) {
	cur, err := f.currentData()
	if err != nil {
		return value.None, err
	}
	if cur.Kind() != value.KindMap {
		return value.None, nil
	}
	if v, ok := cur.AsMap()[prop]; ok {
		return v, nil
	}
	return value.None, nil
}

func (f *Frame) fromVariablesOrCurrent(prop string) (value.Value, error) {
	if v, ok := f.variables[prop]; ok {
		return v, nil
	}
	return f.fromCurrent(prop)
}

// ValueOf evaluates p against the frame's memory, starting from either
// the current record (plus variables, unless CurrentOnly is set) and
// threading each subsequent segment's result as the next segment's
// context.
func (f *Frame) ValueOf(p *path.Path) (value.Value, error) {
	if len(p.Segments) == 0 {
		return value.None, pipeflowerr.New(pipeflowerr.CodeIncorrectDataPath, "data path is empty")
	}
	first := p.Segments[0]
	current, err := f.segmentFromMemory(first, p.IsVec && len(p.Segments) == 1)
	if err != nil {
		return value.None, err
	}
	for i := 1; i < len(p.Segments); i++ {
		terminal := i == len(p.Segments)-1
		current, err = f.segmentFromSource(current, p.Segments[i], p.IsVec && terminal)
		if err != nil {
			return value.None, err
		}
	}
	return current, nil
}

func (f *Frame) segmentFromMemory(seg path.Segment, isVec bool) (value.Value, error) {
	switch s := seg.(type) {
	case path.PlainSegment:
		var v value.Value
		var err error
		if f.currentOnly {
			v, err = f.fromCurrent(s.Name)
		} else {
			v, err = f.fromVariablesOrCurrent(s.Name)
		}
		if err != nil {
			return value.None, err
		}
		if isVec && v.IsNone() {
			return value.Vec(nil), nil
		}
		return v, nil
	case path.FuncSegment:
		return funcs.Call(f.env, s.Name, value.None, false, s.Args)
	case path.LiteralSegment:
		return f.evalLiteral(s)
	default:
		return value.None, pipeflowerr.New(pipeflowerr.CodeIncorrectDataPath, "unknown segment kind")
	}
}

// segmentFromSource resolves seg against a prior result rather than
// memory: a Plain segment navigates into a map, or flattens across a vec
// of maps per the rules below; a Func segment threads source as its
// context; a Literal segment ignores source entirely (it only ever
// renders its own text and sub-paths).
//
// Vec traversal: a none element is dropped unless isVec is false (then
// it is kept as a placeholder); a map element contributes its named
// field, recursing one level of vec-in-vec flattening, or a placeholder
// none when the field is absent and isVec is false; any other element
// kind is IncorrectDataPath.
func (f *Frame) segmentFromSource(source value.Value, seg path.Segment, isVec bool) (value.Value, error) {
	switch s := seg.(type) {
	case path.PlainSegment:
		return navigateField(source, s.Name, isVec)
	case path.FuncSegment:
		return funcs.Call(f.env, s.Name, source, true, s.Args)
	case path.LiteralSegment:
		return f.evalLiteral(s)
	default:
		return value.None, pipeflowerr.New(pipeflowerr.CodeIncorrectDataPath, "unknown segment kind")
	}
}

func navigateField(source value.Value, prop string, isVec bool) (value.Value, error) {
	switch source.Kind() {
	case value.KindMap:
		if v, ok := source.AsMap()[prop]; ok {
			return v, nil
		}
		return value.None, nil
	case value.KindVec:
		var out []value.Value
		for _, elm := range source.AsVec() {
			switch elm.Kind() {
			case value.KindNone:
				if !isVec {
					out = append(out, elm)
				}
			case value.KindMap:
				v, ok := elm.AsMap()[prop]
				switch {
				case !ok:
					if !isVec {
						out = append(out, value.None)
					}
				case v.Kind() == value.KindNone:
					if !isVec {
						out = append(out, v)
					}
				case v.Kind() == value.KindVec:
					out = append(out, v.AsVec()...)
				default:
					out = append(out, v)
				}
			default:
				return value.None, pipeflowerr.Newf(pipeflowerr.CodeIncorrectDataPath,
					"cannot retrieve %q from vec element: element is not none or map", prop)
			}
		}
		return value.Vec(out), nil
	default:
		return value.None, pipeflowerr.Newf(pipeflowerr.CodeIncorrectDataPath,
			"cannot retrieve %q: source is not map or vec", prop)
	}
}

func (f *Frame) evalLiteral(s path.LiteralSegment) (value.Value, error) {
	var b strings.Builder
	for _, part := range s.Parts {
		if part.SubPath != nil {
			v, err := f.ValueOf(part.SubPath)
			if err != nil {
				return value.None, err
			}
			b.WriteString(v.ToString())
			continue
		}
		b.WriteString(part.Text)
	}
	return value.String(b.String()), nil
}
