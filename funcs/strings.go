package funcs

import (
	"strings"

	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/value"
)

func init() {
	register("length", ContextRequired, fnLength)
	register("slice", ContextRequired, fnSlice)
	register("index", ContextRequired, fnIndex)
	register("startsWith", ContextOptional, fnStartsWith)
	register("endsWith", ContextOptional, fnEndsWith)
	register("contains", ContextOptional, fnContains)
	register("strip", ContextRequired, fnStrip)
	register("upper", ContextRequired, fnUpper)
	register("lower", ContextRequired, fnLower)
	register("replace", ContextRequired, fnReplace)
	register("replaceFirst", ContextRequired, fnReplaceFirst)
	register("split", ContextRequired, fnSplit)
}

// fnLength returns a char count for a string context, a digit count for a
// number context.
func fnLength(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	switch ctx.Kind() {
	case value.KindString:
		return value.NumberFromInt(int64(len([]rune(ctx.AsString())))), nil
	case value.KindNumber:
		digits := 0
		for _, r := range ctx.AsDecimalString() {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		return value.NumberFromInt(int64(digits)), nil
	default:
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "length: context must be string or number")
	}
}

func fnSlice(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if ctx.Kind() != value.KindString {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "slice: context must be string")
	}
	if len(args) != 1 && len(args) != 2 {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "slice: expects 1 or 2 arguments")
	}
	runes := []rune(ctx.AsString())
	start, err := toUsizeArg(args[0])
	if err != nil {
		return value.None, err
	}
	end := len(runes)
	if len(args) == 2 {
		end, err = toUsizeArg(args[1])
		if err != nil {
			return value.None, err
		}
	}
	if start > len(runes) {
		start = len(runes)
	}
	if end > len(runes) {
		end = len(runes)
	}
	if end < start {
		end = start
	}
	return value.String(string(runes[start:end])), nil
}

func fnIndex(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if ctx.Kind() != value.KindString {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "index: context must be string")
	}
	if len(args) != 1 {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "index: expects 1 argument")
	}
	idx := strings.Index(ctx.AsString(), decodeControlEscapes(args[0]))
	return value.NumberFromInt(int64(idx)), nil
}

// contextAsSearchString treats a none or absent context as an empty
// string, so startsWith/endsWith/contains degrade gracefully.
func contextAsSearchString(ctx value.Value, hasCtx bool) (string, error) {
	if !hasCtx || ctx.IsNone() {
		return "", nil
	}
	if ctx.Kind() != value.KindString {
		return "", pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "context must be string or none")
	}
	return ctx.AsString(), nil
}

func fnStartsWith(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	s, err := contextAsSearchString(ctx, hasCtx)
	if err != nil {
		return value.None, err
	}
	if len(args) != 1 {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "startsWith: expects 1 argument")
	}
	needle := decodeControlEscapes(args[0])
	if needle == "" {
		return value.Bool(true), nil
	}
	return value.Bool(strings.HasPrefix(s, needle)), nil
}

func fnEndsWith(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	s, err := contextAsSearchString(ctx, hasCtx)
	if err != nil {
		return value.None, err
	}
	if len(args) != 1 {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "endsWith: expects 1 argument")
	}
	needle := decodeControlEscapes(args[0])
	if needle == "" {
		return value.Bool(true), nil
	}
	return value.Bool(strings.HasSuffix(s, needle)), nil
}

func fnContains(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	s, err := contextAsSearchString(ctx, hasCtx)
	if err != nil {
		return value.None, err
	}
	if len(args) != 1 {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "contains: expects 1 argument")
	}
	needle := decodeControlEscapes(args[0])
	if needle == "" {
		return value.Bool(true), nil
	}
	return value.Bool(strings.Contains(s, needle)), nil
}

func fnStrip(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if ctx.Kind() != value.KindString {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "strip: context must be string")
	}
	if len(args) == 0 {
		return value.String(strings.TrimSpace(ctx.AsString())), nil
	}
	if len(args) != 1 {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "strip: expects 0 or 1 arguments")
	}
	return value.String(strings.Trim(ctx.AsString(), decodeControlEscapes(args[0]))), nil
}

func fnUpper(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if ctx.Kind() != value.KindString {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "upper: context must be string")
	}
	return value.String(strings.ToUpper(ctx.AsString())), nil
}

func fnLower(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if ctx.Kind() != value.KindString {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "lower: context must be string")
	}
	return value.String(strings.ToLower(ctx.AsString())), nil
}

func fnReplace(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if ctx.Kind() != value.KindString {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "replace: context must be string")
	}
	if len(args) != 2 {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "replace: expects 2 arguments")
	}
	return value.String(strings.ReplaceAll(ctx.AsString(), decodeControlEscapes(args[0]), decodeControlEscapes(args[1]))), nil
}

func fnReplaceFirst(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if ctx.Kind() != value.KindString {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "replaceFirst: context must be string")
	}
	if len(args) != 2 {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "replaceFirst: expects 2 arguments")
	}
	return value.String(strings.Replace(ctx.AsString(), decodeControlEscapes(args[0]), decodeControlEscapes(args[1]), 1)), nil
}

func fnSplit(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if ctx.Kind() != value.KindString {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "split: context must be string")
	}
	sep := ","
	if len(args) == 1 {
		sep = decodeControlEscapes(args[0])
	} else if len(args) != 0 {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "split: expects 0 or 1 arguments")
	}
	parts := strings.Split(ctx.AsString(), sep)
	items := make([]value.Value, len(parts))
	for i, p := range parts {
		items[i] = value.String(p)
	}
	return value.Vec(items), nil
}
