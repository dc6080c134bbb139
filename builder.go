package scimfilter

import (
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
)

// Builder helpers let callers assemble a Filter programmatically instead
// of parsing text (spec §4.7). Each comparison helper takes a Path
// directly so a caller can build one from a string via ParsePath, or
// compose one by hand.

func Eq(path Path, value Value) Filter  { return NewComparison(KindEqual, path, value) }
func Ne(path Path, value Value) Filter  { return NewComparison(KindNotEqual, path, value) }
func Co(path Path, value Value) Filter  { return NewComparison(KindContains, path, value) }
func Sw(path Path, value Value) Filter  { return NewComparison(KindStartsWith, path, value) }
func Ew(path Path, value Value) Filter  { return NewComparison(KindEndsWith, path, value) }
func Gt(path Path, value Value) Filter  { return NewComparison(KindGreaterThan, path, value) }
func Ge(path Path, value Value) Filter  { return NewComparison(KindGreaterOrEqual, path, value) }
func Lt(path Path, value Value) Filter  { return NewComparison(KindLessThan, path, value) }
func Le(path Path, value Value) Filter  { return NewComparison(KindLessOrEqual, path, value) }
func Pr(path Path) Filter               { return NewPresent(path) }
func And(children ...Filter) (Filter, error) { return NewAnd(children...) }
func Or(children ...Filter) (Filter, error)  { return NewOr(children...) }
func Not(child Filter) Filter            { return NewNot(child) }
func ComplexValue(path Path, inner Filter) Filter { return NewComplexValue(path, inner) }

// TimeValue builds a StringValue holding t formatted as RFC 3339 with a
// UTC offset, which satisfies looksLikeISO8601 so ordering/equality
// comparisons against it go through compareAsDates rather than plain
// string comparison (spec §4.6).
func TimeValue(t time.Time) Value {
	return StringValue(t.UTC().Format(time.RFC3339))
}

// Like builds a non-standard conjunction that approximates shell-style
// glob matching over a string attribute by compiling pattern with
// gobwas/glob and mapping it onto a single sw, co, ew or eq comparison,
// the way holomush-holomush's policy DSL evaluates `like` at
// evaluation time rather than extending the AST with a new filter kind
// (see evalLike in dsl/evaluator.go) — scimfilter instead compiles the
// pattern down to the standard grammar once, at build time, so the
// resulting Filter renders and round-trips like any other filter. Only
// a single leading and/or trailing '*' is supported; anything else
// returns an error from the underlying glob compiler or is rejected
// outright, since the standard-grammar decomposition has no way to
// express interior wildcards.
func Like(path Path, pattern string) (Filter, error) {
	if _, err := glob.Compile(pattern); err != nil {
		return Filter{}, &InvalidArgumentError{Message: "invalid glob pattern: " + err.Error()}
	}
	hasPrefix := len(pattern) > 0 && pattern[0] == '*'
	hasSuffix := len(pattern) > 0 && pattern[len(pattern)-1] == '*'
	core := pattern
	if hasPrefix {
		core = core[1:]
	}
	if hasSuffix && len(core) > 0 {
		core = core[:len(core)-1]
	}
	if containsWildcard(core) {
		return Filter{}, &InvalidArgumentError{Message: "like only supports a single leading/trailing '*', got " + pattern}
	}

	switch {
	case hasPrefix && hasSuffix:
		return Co(path, StringValue(core)), nil
	case hasSuffix:
		return Sw(path, StringValue(core)), nil
	case hasPrefix:
		return Ew(path, StringValue(core)), nil
	default:
		return Eq(path, StringValue(core)), nil
	}
}

func containsWildcard(s string) bool {
	for _, r := range s {
		if r == '*' || r == '?' {
			return true
		}
	}
	return false
}

// BuildFilterID returns a content-addressed, deterministic identifier for
// f: a version-5 (SHA-1 namespaced) UUID derived from f.Hash(), so two
// structurally-equal-but-differently-ordered And/Or trees (bag equality,
// spec §9) collide on the same ID while unrelated filters do not. Useful
// for caching compiled filters or deduplicating stored filter expressions
// keyed by identity. Built on Hash rather than Render, since Render
// preserves the original child order for round-trip fidelity and is not
// itself order-invariant.
var filterIDNamespace = uuid.MustParse("6f2b8b7e-7f0b-4b8b-8f0b-2b8b7e7f0b4b")

func BuildFilterID(f Filter) string {
	var buf [8]byte
	h := f.Hash()
	for i := 0; i < 8; i++ {
		buf[i] = byte(h >> (8 * i))
	}
	return uuid.NewSHA1(filterIDNamespace, buf[:]).String()
}
