package scimfilter

import (
	"strings"
	"time"
)

// defaultMaxDepth bounds how deeply nested complex value filters
// (`path[... path2[... path3[...] ...] ...]`) may recurse through the
// mutual Evaluator/Value-Locator recursion before evaluation gives up with
// a TooDeep FilterError (spec §4.6). It guards against adversarially
// nested value filters only; ordinary and/or/not nesting recurses through
// evalFilter without being counted against this bound.
const defaultMaxDepth = 64

// evalContext threads the recursion-depth bound through the mutually
// recursive Locate/Evaluate calls triggered by value filters (spec §2's
// data-flow note). It is never mutated in place — descend returns a new
// context with depth+1, so sibling array elements each start counting
// from the same parent depth instead of accumulating across each other.
type evalContext struct {
	depth    int
	maxDepth int
}

func newEvalContext() *evalContext {
	return &evalContext{maxDepth: defaultMaxDepth}
}

func (c *evalContext) descend() (*evalContext, error) {
	if c.depth >= c.maxDepth {
		return nil, newFilterError(TooDeep, "value filter nesting exceeds maximum depth %d", c.maxDepth)
	}
	return &evalContext{depth: c.depth + 1, maxDepth: c.maxDepth}, nil
}

// EvaluatorOption configures a call to Evaluate (spec §4.7's configuration
// surface), mirroring the functional-options style of an EvalContext
// constructed via With* helpers.
type EvaluatorOption func(*evalContext)

// WithMaxDepth overrides the default recursion-depth bound.
func WithMaxDepth(n int) EvaluatorOption {
	return func(c *evalContext) { c.maxDepth = n }
}

// Evaluate reports whether root (the root JSON resource) satisfies f (spec
// §4.6). A FilterError surfaces for an invalid comparison (ordering
// operators against Bool/Binary) or for exceeding the recursion-depth
// bound; ParseErrors never originate here.
func Evaluate(f Filter, root Value, opts ...EvaluatorOption) (bool, error) {
	ctx := newEvalContext()
	for _, opt := range opts {
		opt(ctx)
	}
	return evalFilter(ctx, f, root)
}

func evalFilter(ctx *evalContext, f Filter, root Value) (bool, error) {
	switch f.Kind() {
	case KindAnd:
		for _, c := range f.CombinedFilters() {
			ok, err := evalFilter(ctx, c, root)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil

	case KindOr:
		for _, c := range f.CombinedFilters() {
			ok, err := evalFilter(ctx, c, root)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case KindNot:
		ok, err := evalFilter(ctx, *f.InvertedFilter(), root)
		if err != nil {
			return false, err
		}
		return !ok, nil

	case KindPresent:
		return evalPresent(ctx, *f.ComparisonPath(), root)

	case KindComplexValue:
		return evalComplexValue(ctx, *f.ComparisonPath(), *f.ValueFilterInner(), root)

	default: // comparisons
		value, _ := f.ComparisonValue()
		return evalComparison(ctx, f.Kind(), *f.ComparisonPath(), value, root)
	}
}

// evalPresent implements `path pr` (spec §4.6): true iff path resolves to
// at least one value that is not unassigned (spec §3 Glossary,
// "Unassigned": missing, explicit null, or an empty array all count as
// absent, so `pr` on an explicit null is false).
func evalPresent(ctx *evalContext, path Path, root Value) (bool, error) {
	values, err := locate(ctx, path, root)
	if err != nil {
		return false, err
	}
	for _, v := range values {
		if !v.IsNull() {
			return true, nil
		}
	}
	return false, nil
}

// evalComplexValue implements `path[filter]` used as a standalone Primary
// (spec §4.6): true iff at least one element the (possibly multi-valued)
// path resolves to satisfies filter, re-rooted at that element. Locate
// already flattens one level of array nesting per path element, so the
// values it returns here are the candidate elements directly.
func evalComplexValue(ctx *evalContext, path Path, inner Filter, root Value) (bool, error) {
	values, err := locate(ctx, path, root)
	if err != nil {
		return false, err
	}
	for _, v := range values {
		if v.Kind() != KindObject {
			continue
		}
		ok, err := evaluateValueFilter(ctx, inner, v)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// evalComparison implements the 9 comparison operators (spec §4.6). When
// path resolves to multiple values (it traverses a multi-valued
// attribute), every operator except `ne` is "any element matches"; `ne`
// is "no element equals" (spec §9's resolution of the open question) so
// that `emails.value ne "a@b.com"` excludes resources where any email
// matches, rather than being satisfied by the mere presence of a second,
// different address.
func evalComparison(ctx *evalContext, kind FilterKind, path Path, value Value, root Value) (bool, error) {
	values, err := locate(ctx, path, root)
	if err != nil {
		return false, err
	}
	if len(values) == 0 {
		// Unassigned ≡ null (spec §3 Glossary).
		values = []Value{NullValue()}
	}

	// eq/ne against an explicit null literal are not complements of each
	// other the way every other comparison pair is (spec §8 invariant 5):
	// `ne null` never reports true, even when the attribute is present
	// with a non-null value — eq is false there too, so neither side of
	// the pair "matches". Only when every located value is itself
	// null/unassigned does eq(null) hold, with ne the ordinary negation.
	if value.Kind() == KindNull {
		switch kind {
		case KindEqual:
			for _, v := range values {
				if v.Kind() != KindNull {
					return false, nil
				}
			}
			return true, nil
		case KindNotEqual:
			return false, nil
		}
	}

	if kind == KindNotEqual {
		for _, v := range values {
			eq, err := compareOp(KindEqual, v, value)
			if err != nil {
				return false, err
			}
			if eq {
				return false, nil
			}
		}
		return true, nil
	}

	for _, v := range values {
		ok, err := compareOp(kind, v, value)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// compareOp applies one comparison operator to a single (located, literal)
// pair of values (spec §4.6). String comparisons are ASCII-case-
// insensitive only (spec §9: "do not Unicode-case-fold"); ordering
// operators against Bool or Binary raise InvalidComparison; a pair of
// ISO-8601-looking strings compares chronologically (see
// compareAsDates), falling back to ASCII-case-insensitive comparison
// otherwise. co
// falls back to exact-equal when either operand isn't a String; sw/ew
// carry no such fallback and simply don't match non-String operands.
func compareOp(kind FilterKind, a, b Value) (bool, error) {
	switch kind {
	case KindEqual:
		return valuesEqual(a, b), nil

	case KindContains:
		// Unlike sw/ew, co falls back to exact-equal when either operand
		// isn't a String (spec §4.6): `age co 25` against {"age":25} is
		// true even though neither side is a String to substring-match.
		if a.Kind() != KindString || b.Kind() != KindString {
			return valuesEqual(a, b), nil
		}
		return strings.Contains(toASCIILower(a.Text()), toASCIILower(b.Text())), nil

	case KindStartsWith, KindEndsWith:
		if a.Kind() != KindString || b.Kind() != KindString {
			return false, nil
		}
		as, bs := toASCIILower(a.Text()), toASCIILower(b.Text())
		if kind == KindStartsWith {
			return strings.HasPrefix(as, bs), nil
		}
		return strings.HasSuffix(as, bs), nil

	case KindGreaterThan, KindGreaterOrEqual, KindLessThan, KindLessOrEqual:
		return compareOrdering(kind, a, b)

	default:
		return false, newFilterError(InvalidComparison, "unsupported comparison operator %s", kind)
	}
}

// valuesEqual implements `eq` (spec §4.6): unassigned/null only equals
// null, numbers compare across Int/Float by numeric value, strings and
// dates compare ASCII-case-insensitively, everything else requires
// matching kinds.
func valuesEqual(a, b Value) bool {
	if a.Kind() == KindNull || b.Kind() == KindNull {
		return a.Kind() == KindNull && b.Kind() == KindNull
	}
	if isNumeric(a.Kind()) && isNumeric(b.Kind()) {
		return numericEqual(a, b)
	}
	if (a.Kind() == KindBinary && b.Kind() == KindString) || (a.Kind() == KindString && b.Kind() == KindBinary) {
		// A Binary compares against a String by its base64 text.
		return a.asText() == b.asText()
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case KindBool:
		return a.Bool() == b.Bool()
	case KindString:
		if cmp, ok := compareAsDates(a.Text(), b.Text()); ok {
			return cmp == 0
		}
		return asciiEqualFold(a.Text(), b.Text())
	case KindBinary:
		return a.Equal(b)
	default:
		return a.Equal(b)
	}
}

// compareOrdering implements gt/ge/lt/le (spec §4.6).
func compareOrdering(kind FilterKind, a, b Value) (bool, error) {
	if a.Kind() == KindBool || b.Kind() == KindBool || a.Kind() == KindBinary || b.Kind() == KindBinary {
		return false, newFilterError(InvalidComparison, "%s is not defined for %s/%s", kind, a.Kind(), b.Kind())
	}
	if a.Kind() == KindNull || b.Kind() == KindNull {
		// An absent value never satisfies an ordering comparison.
		return false, nil
	}

	var cmp int
	switch {
	case isNumeric(a.Kind()) && isNumeric(b.Kind()):
		cmp = numericCompare(a, b)
	case a.Kind() == KindString && b.Kind() == KindString:
		if dateCmp, ok := compareAsDates(a.Text(), b.Text()); ok {
			cmp = dateCmp
		} else {
			cmp = strings.Compare(toASCIILower(a.Text()), toASCIILower(b.Text()))
		}
	default:
		return false, nil
	}

	switch kind {
	case KindGreaterThan:
		return cmp > 0, nil
	case KindGreaterOrEqual:
		return cmp >= 0, nil
	case KindLessThan:
		return cmp < 0, nil
	default: // KindLessOrEqual
		return cmp <= 0, nil
	}
}

func isNumeric(k Kind) bool { return k == KindInt || k == KindFloat }

func numericEqual(a, b Value) bool {
	if a.Kind() == KindInt && b.Kind() == KindInt {
		return a.Int() == b.Int()
	}
	return toFloat(a) == toFloat(b)
}

func numericCompare(a, b Value) int {
	if a.Kind() == KindInt && b.Kind() == KindInt {
		switch {
		case a.Int() < b.Int():
			return -1
		case a.Int() > b.Int():
			return 1
		default:
			return 0
		}
	}
	fa, fb := toFloat(a), toFloat(b)
	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	default:
		return 0
	}
}

func toFloat(v Value) float64 {
	if v.Kind() == KindInt {
		return float64(v.Int())
	}
	return v.Float()
}

// looksLikeISO8601 implements spec §4.6's date-comparison heuristic: a
// string is treated as a date-time for ordering purposes when it is at
// least 19 characters long and begins with 4 digits followed by '-'
// (e.g. "2023-01-15T00:00:00Z").
func looksLikeISO8601(s string) bool {
	if len(s) < 19 {
		return false
	}
	for i := 0; i < 4; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s[4] == '-'
}

// compareAsDates reports the chronological ordering of a and b when both
// look like ISO-8601 date-times and both actually parse as one. Plain
// byte-wise comparison is not enough here: "2023-07-25T08:00:00Z" and
// "2023-07-25T08:00:00.000Z" denote the same instant but sort
// differently as strings (the fractional-seconds '.' byte sorts before
// 'Z'), so the values are parsed with time.Parse and compared as
// time.Time instead. ok is false when either string fails to parse,
// letting the caller fall back to a plain string comparison.
func compareAsDates(a, b string) (cmp int, ok bool) {
	if !looksLikeISO8601(a) || !looksLikeISO8601(b) {
		return 0, false
	}
	ta, err := parseTimeFlexible(a)
	if err != nil {
		return 0, false
	}
	tb, err := parseTimeFlexible(b)
	if err != nil {
		return 0, false
	}
	switch {
	case ta.Before(tb):
		return -1, true
	case ta.After(tb):
		return 1, true
	default:
		return 0, true
	}
}

// parseTimeFlexible tries the date-time layouts SCIM resources commonly
// use: RFC 3339 with and without fractional seconds.
func parseTimeFlexible(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
