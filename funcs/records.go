package funcs

import (
	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/value"
)

func init() {
	register("nextSeq", ContextForbidden, fnNextSeq)
	register("cur", ContextForbidden, fnCur)
	register("old", ContextForbidden, fnOld)
}

func fnNextSeq(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if len(args) != 0 {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "nextSeq: expects no arguments")
	}
	if env == nil || env.NextSeq == nil {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "nextSeq: no sequence source configured")
	}
	return value.NumberFromInt(env.NextSeq()), nil
}

func fnCur(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if len(args) != 1 {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "cur: expects 1 argument (a path into the current record)")
	}
	if env == nil || env.CurrentRecord == nil {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "cur: no current record configured")
	}
	rec, ok := env.CurrentRecord()
	if !ok {
		return value.None, nil
	}
	return lookupField(rec, args[0])
}

func fnOld(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if len(args) != 1 {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "old: expects 1 argument (a path into the previous record)")
	}
	if env == nil || env.PreviousRecord == nil {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "old: no previous record configured")
	}
	rec, ok := env.PreviousRecord()
	if !ok {
		return value.None, nil
	}
	return lookupField(rec, args[0])
}

// lookupField resolves a plain dotted field name against a record's map
// value; cur()/old() only ever address a single stored field, never the
// full path grammar a top-level data path supports.
func lookupField(rec value.Value, name string) (value.Value, error) {
	if rec.Kind() != value.KindMap {
		return value.None, pipeflowerr.Newf(pipeflowerr.CodeVariableFuncNotSupported, "record is not a map, cannot resolve %q", name)
	}
	m := rec.AsMap()
	v, ok := m[name]
	if !ok {
		return value.None, nil
	}
	return v, nil
}
