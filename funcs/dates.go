package funcs

import (
	"time"

	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/value"
)

func init() {
	register("now", ContextForbidden, fnNow)
	register("moveDate", ContextRequired, fnMoveDate)
	register("dayDiff", ContextRequired, fnDayDiff)
	register("monthDiff", ContextRequired, fnMonthDiff)
	register("yearDiff", ContextRequired, fnYearDiff)
	register("dateFormat", ContextRequired, fnDateFormat)
}

func fnNow(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if len(args) != 0 {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "now: expects no arguments")
	}
	now := time.Now
	if env != nil && env.Now != nil {
		now = env.Now
	}
	return value.DateTime(now()), nil
}

func fnMoveDate(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if len(args) != 1 {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "moveDate: expects 1 argument")
	}
	return moveDate(ctx, args[0])
}

func diffDays(a, b value.Value) (int64, error) {
	_, ta, ok := a.AsTemporalCoerced()
	if !ok {
		return 0, pipeflowerr.New(pipeflowerr.CodeComputeParameterNotADate, "dayDiff: context is not a date/time/datetime")
	}
	_, tb, ok := b.AsTemporalCoerced()
	if !ok {
		return 0, pipeflowerr.New(pipeflowerr.CodeComputeParameterNotADate, "dayDiff: argument is not a date/time/datetime")
	}
	return int64(ta.Sub(tb).Hours() / 24), nil
}

func fnDayDiff(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if len(args) != 1 {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "dayDiff: expects 1 argument")
	}
	other, ok := value.ParseAny(args[0])
	if !ok {
		return value.None, pipeflowerr.New(pipeflowerr.CodeComputeParameterNotADate, "dayDiff: argument is not a date/time/datetime")
	}
	days, err := diffDays(ctx, other)
	if err != nil {
		return value.None, err
	}
	return value.NumberFromInt(days), nil
}

func monthsBetween(a, b value.Value) (int64, error) {
	_, ta, ok := a.AsTemporalCoerced()
	if !ok {
		return 0, pipeflowerr.New(pipeflowerr.CodeComputeParameterNotADate, "monthDiff: context is not a date/time/datetime")
	}
	_, tb, ok := b.AsTemporalCoerced()
	if !ok {
		return 0, pipeflowerr.New(pipeflowerr.CodeComputeParameterNotADate, "monthDiff: argument is not a date/time/datetime")
	}
	months := int64(ta.Year()-tb.Year())*12 + int64(ta.Month()-tb.Month())
	if ta.Day() < tb.Day() {
		if months > 0 {
			months--
		} else if months < 0 {
			months++
		}
	}
	return months, nil
}

func fnMonthDiff(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if len(args) != 1 {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "monthDiff: expects 1 argument")
	}
	other, ok := value.ParseAny(args[0])
	if !ok {
		return value.None, pipeflowerr.New(pipeflowerr.CodeComputeParameterNotADate, "monthDiff: argument is not a date/time/datetime")
	}
	months, err := monthsBetween(ctx, other)
	if err != nil {
		return value.None, err
	}
	return value.NumberFromInt(months), nil
}

func fnYearDiff(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if len(args) != 1 {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "yearDiff: expects 1 argument")
	}
	other, ok := value.ParseAny(args[0])
	if !ok {
		return value.None, pipeflowerr.New(pipeflowerr.CodeComputeParameterNotADate, "yearDiff: argument is not a date/time/datetime")
	}
	months, err := monthsBetween(ctx, other)
	if err != nil {
		return value.None, err
	}
	return value.NumberFromInt(months / 12), nil
}

func fnDateFormat(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if len(args) != 1 {
		return value.None, pipeflowerr.New(pipeflowerr.CodeVariableFuncNotSupported, "dateFormat: expects 1 argument")
	}
	_, t, ok := ctx.AsTemporalCoerced()
	if !ok {
		return value.None, pipeflowerr.New(pipeflowerr.CodeComputeParameterNotADate, "dateFormat: context is not a date/time/datetime")
	}
	return value.String(t.Format(args[0])), nil
}
