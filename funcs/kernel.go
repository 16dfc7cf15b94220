// Package funcs implements the built-in function kernel: every function
// takes an optional context value (the value to the left of `.&fn`) plus
// zero or more positional arguments, and self-declares whether the
// context is required, forbidden, or optional.
package funcs

import (
	"strings"
	"time"

	"github.com/evalgo-labs/pipeflow/pipeflowerr"
	"github.com/evalgo-labs/pipeflow/value"
)

// ContextRule tags whether a function requires, forbids, or tolerates an
// optional context value.
type ContextRule int

const (
	ContextForbidden ContextRule = iota
	ContextRequired
	ContextOptional
)

// Fn is one built-in function implementation.
type Fn func(env *Env, ctx value.Value, hasCtx bool, args []string) (value.Value, error)

// Env carries the process-wide, lazily-published state functions need:
// the join-separator default flag, the monotonic id generator backing
// nextSeq, the clock backing now(), and accessors for the current/previous
// record backing the cur() (from-current) / old() (from-previous)
// functions. Constructed once at process start.
type Env struct {
	JoinDefaultComma bool
	NextSeq          func() int64
	Now              func() time.Time
	CurrentRecord    func() (value.Value, bool)
	PreviousRecord   func() (value.Value, bool)
}

// DefaultEnv returns an Env usable in tests: NextSeq counts from 1, Now
// uses the real clock, and cur/old are unset (callers relying on them must
// provide their own Env).
func DefaultEnv() *Env {
	var counter int64
	return &Env{
		NextSeq: func() int64 { counter++; return counter },
		Now:     time.Now,
	}
}

type entry struct {
	rule ContextRule
	fn   Fn
}

var registry = map[string]entry{}

// aliases maps an alternate spelling to its canonical registry name.
var aliases = map[string]string{
	"len":         "length",
	"substr":      "slice",
	"find":        "index",
	"startswith":  "startsWith",
	"endswith":    "endsWith",
	"trim":        "strip",
	"minDatetime": "minDt",
	"maxDatetime": "maxDt",
	"fmtDate":     "dateFormat",
}

func register(name string, rule ContextRule, fn Fn) {
	registry[name] = entry{rule: rule, fn: fn}
}

func canonical(name string) string {
	if alias, ok := aliases[name]; ok {
		return alias
	}
	return name
}

// Call dispatches a function by name, validating the context rule before
// invoking the implementation. hasCtx distinguishes "no context supplied"
// from "context supplied and is none".
func Call(env *Env, name string, ctx value.Value, hasCtx bool, args []string) (value.Value, error) {
	if env == nil {
		env = DefaultEnv()
	}
	e, ok := registry[canonical(name)]
	if !ok {
		return value.None, pipeflowerr.Newf(pipeflowerr.CodeUnknownFunction, "unknown function %q", name)
	}
	switch e.rule {
	case ContextForbidden:
		if hasCtx {
			return value.None, pipeflowerr.Newf(pipeflowerr.CodeVariableFuncNotSupported, "function %q forbids a context value", name)
		}
	case ContextRequired:
		if !hasCtx {
			return value.None, pipeflowerr.Newf(pipeflowerr.CodeVariableFuncNotSupported, "function %q requires a context value", name)
		}
	}
	return e.fn(env, ctx, hasCtx, args)
}

// decodeControlEscapes decodes \r \n \t to their control-char equivalents
// in string-search function arguments, applied after the path parser has
// already unescaped delimiter characters.
func decodeControlEscapes(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	r := strings.NewReplacer(`\r`, "\r", `\n`, "\n", `\t`, "\t")
	return r.Replace(s)
}
