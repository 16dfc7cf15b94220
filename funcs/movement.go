package funcs

import (
	"strconv"
	"strings"
	"time"

	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/value"
)

// MovementOp is one Y/M/D/h/m/s triple of a movement expression. Unit
// letters are case-sensitive; whitespace separates triples but never
// appears inside one.
type MovementOp struct {
	Unit byte // 'Y','M','D','h','m','s'
	Type byte // '+','-', or 's' for "set"
	N    int
}

// ParseMovement parses a movement string such as "Y2024 M+1 D-3 h12 m+30
// s0" into an ordered list of operations, applied left to right.
func ParseMovement(s string) ([]MovementOp, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, pipeflowerr.New(pipeflowerr.CodeIncorrectDataPath, "empty movement")
	}
	ops := make([]MovementOp, 0, len(fields))
	for _, f := range fields {
		op, err := parseMovementToken(f)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func parseMovementToken(tok string) (MovementOp, error) {
	if tok == "" {
		return MovementOp{}, pipeflowerr.New(pipeflowerr.CodeIncorrectDataPath, "empty movement token")
	}
	unit := tok[0]
	switch unit {
	case 'Y', 'M', 'D', 'h', 'm', 's':
	default:
		return MovementOp{}, pipeflowerr.Newf(pipeflowerr.CodeIncorrectDataPath, "unknown movement unit %q", string(unit))
	}
	rest := tok[1:]
	if rest == "" {
		return MovementOp{}, pipeflowerr.Newf(pipeflowerr.CodeIncorrectDataPath, "movement %q missing value", tok)
	}
	var typ byte
	var numStr string
	switch rest[0] {
	case '+', '-':
		typ = rest[0]
		numStr = rest[1:]
	default:
		typ = 's'
		numStr = rest
	}
	if numStr == "" {
		return MovementOp{}, pipeflowerr.Newf(pipeflowerr.CodeIncorrectDataPath, "movement %q missing digits", tok)
	}
	for i := 0; i < len(numStr); i++ {
		if numStr[i] < '0' || numStr[i] > '9' {
			return MovementOp{}, pipeflowerr.Newf(pipeflowerr.CodeIncorrectDataPath, "movement %q has non-digit value", tok)
		}
	}
	n, err := strconv.Atoi(numStr)
	if err != nil {
		return MovementOp{}, pipeflowerr.Wrap(pipeflowerr.CodeIncorrectDataPath, err)
	}
	return MovementOp{Unit: unit, Type: typ, N: n}, nil
}

// ApplyMovement applies ops to t in order. "set" clamps out-of-range values
// (months to 12, days to last-of-month, hours to 23, ...); "+"/"-" wraps via
// normal calendar addition. A year "set" landing on Feb 29 of a non-leap
// year clamps the day to 28.
func ApplyMovement(t time.Time, ops []MovementOp) time.Time {
	for _, op := range ops {
		t = applyOne(t, op)
	}
	return t
}

func applyOne(t time.Time, op MovementOp) time.Time {
	y, mo, d := t.Date()
	h, mi, se := t.Hour(), t.Minute(), t.Second()

	switch op.Unit {
	case 'Y':
		switch op.Type {
		case 's':
			y = op.N
			if mo == time.February && d == 29 && !isLeap(y) {
				d = 28
			}
		case '+':
			y += op.N
			if mo == time.February && d == 29 && !isLeap(y) {
				d = 28
			}
		case '-':
			y -= op.N
			if mo == time.February && d == 29 && !isLeap(y) {
				d = 28
			}
		}
	case 'M':
		switch op.Type {
		case 's':
			if op.N < 1 {
				op.N = 1
			}
			if op.N > 12 {
				op.N = 12
			}
			mo = time.Month(op.N)
			d = clampDay(y, mo, d)
		case '+':
			total := int(mo) - 1 + op.N
			y += total / 12
			rem := total % 12
			if rem < 0 {
				rem += 12
				y--
			}
			mo = time.Month(rem + 1)
			d = clampDay(y, mo, d)
		case '-':
			total := int(mo) - 1 - op.N
			y += total / 12
			rem := total % 12
			if rem < 0 {
				rem += 12
				y--
			}
			mo = time.Month(rem + 1)
			d = clampDay(y, mo, d)
		}
	case 'D':
		switch op.Type {
		case 's':
			d = clampDay(y, mo, op.N)
		case '+':
			return time.Date(y, mo, d, h, mi, se, 0, time.UTC).AddDate(0, 0, op.N)
		case '-':
			return time.Date(y, mo, d, h, mi, se, 0, time.UTC).AddDate(0, 0, -op.N)
		}
	case 'h':
		switch op.Type {
		case 's':
			h = clampInt(op.N, 0, 23)
		case '+':
			return time.Date(y, mo, d, h, mi, se, 0, time.UTC).Add(time.Duration(op.N) * time.Hour)
		case '-':
			return time.Date(y, mo, d, h, mi, se, 0, time.UTC).Add(-time.Duration(op.N) * time.Hour)
		}
	case 'm':
		switch op.Type {
		case 's':
			mi = clampInt(op.N, 0, 59)
		case '+':
			return time.Date(y, mo, d, h, mi, se, 0, time.UTC).Add(time.Duration(op.N) * time.Minute)
		case '-':
			return time.Date(y, mo, d, h, mi, se, 0, time.UTC).Add(-time.Duration(op.N) * time.Minute)
		}
	case 's':
		switch op.Type {
		case 's':
			se = clampInt(op.N, 0, 59)
		case '+':
			return time.Date(y, mo, d, h, mi, se, 0, time.UTC).Add(time.Duration(op.N) * time.Second)
		case '-':
			return time.Date(y, mo, d, h, mi, se, 0, time.UTC).Add(-time.Duration(op.N) * time.Second)
		}
	}
	return time.Date(y, mo, d, h, mi, se, 0, time.UTC)
}

func isLeap(y int) bool {
	return (y%4 == 0 && y%100 != 0) || y%400 == 0
}

func lastDayOfMonth(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func clampDay(y int, m time.Month, d int) int {
	last := lastDayOfMonth(y, m)
	return clampInt(d, 1, last)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ResolveMovementArg parses the given string argument into a movement; it
// is equivalent to ParseMovement.
func ResolveMovementArg(arg string) ([]MovementOp, error) {
	return ParseMovement(arg)
}

// moveDate applies a movement to a date/time/datetime/string context value,
// preserving its original Kind.
func moveDate(ctx value.Value, movement string) (value.Value, error) {
	ops, err := ParseMovement(movement)
	if err != nil {
		return value.None, err
	}
	kind, t, ok := ctx.AsTemporalCoerced()
	if !ok {
		return value.None, pipeflowerr.New(pipeflowerr.CodeComputeParameterNotADate, "moveDate: context is not a date/time/datetime")
	}
	moved := ApplyMovement(t, ops)
	switch kind {
	case value.KindDate:
		return value.Date(moved), nil
	case value.KindTime:
		return value.Time(moved), nil
	default:
		return value.DateTime(moved), nil
	}
}
