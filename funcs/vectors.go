package funcs

import (
	"strings"

	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/value"
)

func init() {
	register("count", ContextRequired, fnCount)
	register("concat", ContextOptional, fnConcat)
	register("concatWith", ContextOptional, fnConcatWith)
	register("join", ContextRequired, fnJoin)
	register("distinct", ContextRequired, fnDistinct)
	register("sum", ContextRequired, fnSum)
	register("avg", ContextRequired, fnAvg)
	register("min", ContextRequired, fnMinAny)
	register("max", ContextRequired, fnMaxAny)
	register("minNum", ContextRequired, typedMinMax(value.NumGate, true))
	register("maxNum", ContextRequired, typedMinMax(value.NumGate, false))
	register("minDate", ContextRequired, typedMinMax(value.DateGate, true))
	register("maxDate", ContextRequired, typedMinMax(value.DateGate, false))
	register("minDt", ContextRequired, typedMinMax(value.DtGate, true))
	register("maxDt", ContextRequired, typedMinMax(value.DtGate, false))
	register("minTime", ContextRequired, typedMinMax(value.TimeGate, true))
	register("maxTime", ContextRequired, typedMinMax(value.TimeGate, false))
}

func fnCount(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if ctx.Kind() != value.KindVec && ctx.Kind() != value.KindMap {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "count: context must be vec or map")
	}
	return value.NumberFromInt(int64(ctx.Len())), nil
}

// scalarOrErr rejects map/vec-in-vec elements when flattening a vec into a
// joined or concatenated string.
func scalarOrErr(v value.Value) (string, error) {
	switch v.Kind() {
	case value.KindVec, value.KindMap:
		return "", pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "concat/join: vec-in-vec or map-in-vec not supported")
	default:
		return v.ToString(), nil
	}
}

func fnConcat(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	var parts []string
	if hasCtx {
		s, err := scalarOrErr(ctx)
		if err != nil {
			return value.None, err
		}
		parts = append(parts, s)
	}
	parts = append(parts, args...)
	if len(parts) == 0 {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "concat: expects at least 1 scalar")
	}
	return value.String(strings.Join(parts, "")), nil
}

func fnConcatWith(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if len(args) < 1 {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "concatWith: expects separator plus parts")
	}
	sep := args[0]
	parts := append([]string{}, args[1:]...)
	if hasCtx {
		s, err := scalarOrErr(ctx)
		if err != nil {
			return value.None, err
		}
		parts = append([]string{s}, parts...)
	}
	if len(parts) < 1 {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "concatWith: expects at least 2 total arguments (sep, parts...)")
	}
	return value.String(strings.Join(parts, sep)), nil
}

func fnJoin(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	sep := ""
	if env != nil && env.JoinDefaultComma {
		sep = ","
	}
	if len(args) == 1 {
		sep = args[0]
	} else if len(args) != 0 {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "join: expects 0 or 1 arguments")
	}

	switch ctx.Kind() {
	case value.KindString:
		return ctx, nil
	case value.KindVec:
		parts := make([]string, len(ctx.AsVec()))
		for i, v := range ctx.AsVec() {
			s, err := scalarOrErr(v)
			if err != nil {
				return value.None, err
			}
			parts[i] = s
		}
		return value.String(strings.Join(parts, sep)), nil
	default:
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "join: context must be vec or string")
	}
}

func fnDistinct(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if ctx.Kind() == value.KindMap {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "distinct: context must not be map")
	}
	items := ctx.AsVec()
	if ctx.Kind() != value.KindVec {
		items = []value.Value{ctx}
	}
	out, err := value.Distinct(items)
	if err != nil {
		return value.None, err
	}
	return value.Vec(out), nil
}

func fnSum(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if ctx.Kind() != value.KindVec {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "sum: context must be vec")
	}
	return value.Sum(ctx.AsVec())
}

func fnAvg(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if ctx.Kind() != value.KindVec {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "avg: context must be vec")
	}
	return value.Avg(ctx.AsVec())
}

func fnMinAny(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if ctx.Kind() != value.KindVec {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "min: context must be vec")
	}
	return value.MinMax(ctx.AsVec(), value.AnyGate(true))
}

func fnMaxAny(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if ctx.Kind() != value.KindVec {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "max: context must be vec")
	}
	return value.MinMax(ctx.AsVec(), value.AnyGate(false))
}

func typedMinMax(gateFn func(bool) value.MinMaxGate, min bool) Fn {
	return func(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
		if ctx.Kind() != value.KindVec {
			return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "min/max: context must be vec")
		}
		return value.MinMax(ctx.AsVec(), gateFn(min))
	}
}
