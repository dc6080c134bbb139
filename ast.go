package scimfilter

import "hash/fnv"

// FilterKind discriminates the 14 variants of the Filter sum type (spec §3).
type FilterKind int

const (
	KindAnd FilterKind = iota
	KindOr
	KindNot
	KindPresent
	KindEqual
	KindNotEqual
	KindContains
	KindStartsWith
	KindEndsWith
	KindGreaterThan
	KindGreaterOrEqual
	KindLessThan
	KindLessOrEqual
	KindComplexValue
)

func (k FilterKind) String() string {
	switch k {
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	case KindNot:
		return "not"
	case KindPresent:
		return "pr"
	case KindEqual:
		return "eq"
	case KindNotEqual:
		return "ne"
	case KindContains:
		return "co"
	case KindStartsWith:
		return "sw"
	case KindEndsWith:
		return "ew"
	case KindGreaterThan:
		return "gt"
	case KindGreaterOrEqual:
		return "ge"
	case KindLessThan:
		return "lt"
	case KindLessOrEqual:
		return "le"
	case KindComplexValue:
		return "complex"
	default:
		return "unknown"
	}
}

// isComparison reports whether k is one of the 9 comparison-filter kinds.
func (k FilterKind) isComparison() bool {
	switch k {
	case KindEqual, KindNotEqual, KindContains, KindStartsWith, KindEndsWith,
		KindGreaterThan, KindGreaterOrEqual, KindLessThan, KindLessOrEqual:
		return true
	default:
		return false
	}
}

// Filter is the SCIM filter AST (spec §3). It is an immutable value;
// callers never mutate a Filter after construction. The zero Filter is
// not a valid filter — always obtain one via ParseFilter or a builder.
type Filter struct {
	kind FilterKind

	// And/Or
	children []Filter

	// Not
	negated *Filter

	// Present, Equal..LessOrEqual, ComplexValue
	path *Path

	// Equal..LessOrEqual
	value Value

	// ComplexValue
	inner *Filter
}

func (f Filter) Kind() FilterKind { return f.kind }

// CombinedFilters returns the direct children of an And/Or filter, or nil
// for any other kind (spec §6, AST inspection surface).
func (f Filter) CombinedFilters() []Filter {
	if f.kind != KindAnd && f.kind != KindOr {
		return nil
	}
	return append([]Filter(nil), f.children...)
}

// InvertedFilter returns the operand of a Not filter, or nil otherwise.
func (f Filter) InvertedFilter() *Filter {
	if f.kind != KindNot {
		return nil
	}
	return f.negated
}

// ComparisonPath returns the attribute path of a Present, comparison, or
// ComplexValue filter, or nil for a logical filter.
func (f Filter) ComparisonPath() *Path {
	return f.path
}

// ComparisonValue returns the right-hand value of a comparison filter.
// The second result is false for non-comparison kinds.
func (f Filter) ComparisonValue() (Value, bool) {
	if !f.kind.isComparison() {
		return Value{}, false
	}
	return f.value, true
}

// ValueFilterInner returns the inner filter of a ComplexValue filter, or
// nil otherwise.
func (f Filter) ValueFilterInner() *Filter {
	if f.kind != KindComplexValue {
		return nil
	}
	return f.inner
}

// --- Smart constructors (spec §3 invariants, §4.7 Builder API, §8) ---

// NewAnd builds an And filter. Nested And children are flattened into the
// parent (preserving duplicate children — bag equality, spec §9 — so
// flattening never changes semantics), then arity is checked: fewer than
// two resulting children is an InvalidArgumentError.
func NewAnd(children ...Filter) (Filter, error) {
	return newCombining(KindAnd, children)
}

// NewOr builds an Or filter, analogous to NewAnd.
func NewOr(children ...Filter) (Filter, error) {
	return newCombining(KindOr, children)
}

func newCombining(kind FilterKind, children []Filter) (Filter, error) {
	flat := make([]Filter, 0, len(children))
	for _, c := range children {
		if c.kind == kind {
			flat = append(flat, c.children...)
		} else {
			flat = append(flat, c)
		}
	}
	if len(flat) < 2 {
		return Filter{}, &InvalidArgumentError{Message: kind.String() + " requires at least two children"}
	}
	return Filter{kind: kind, children: flat}, nil
}

// NewNot builds a Not filter wrapping child.
func NewNot(child Filter) Filter {
	c := child
	return Filter{kind: KindNot, negated: &c}
}

// NewPresent builds a Present filter over path.
func NewPresent(path Path) Filter {
	p := path
	return Filter{kind: KindPresent, path: &p}
}

// NewComparison builds one of the 9 comparison filters. kind must satisfy
// FilterKind.isComparison(); any other kind panics, since this is an
// internal/builder invariant, not a user input validation path (user
// input goes through ParseFilter, which never calls this with a bad kind).
func NewComparison(kind FilterKind, path Path, value Value) Filter {
	if !kind.isComparison() {
		panic("scimfilter: NewComparison called with non-comparison kind " + kind.String())
	}
	p := path
	return Filter{kind: kind, path: &p, value: value}
}

// NewComplexValue builds a ComplexValue filter selecting elements of the
// multi-valued attribute named by path that satisfy inner.
func NewComplexValue(path Path, inner Filter) Filter {
	p := path
	in := inner
	return Filter{kind: KindComplexValue, path: &p, inner: &in}
}

// --- Equality and hashing (spec §3, §8 invariants 6 and 7) ---

// Equal implements bag (multiset) equality for And/Or children and
// structural equality for every other variant (spec §9's resolution of
// the duplicate-children open question).
func (f Filter) Equal(other Filter) bool {
	if f.kind != other.kind {
		return false
	}
	switch f.kind {
	case KindAnd, KindOr:
		return bagEqual(f.children, other.children)
	case KindNot:
		return f.negated.Equal(*other.negated)
	case KindPresent:
		return f.path.Equal(*other.path)
	case KindComplexValue:
		return f.path.Equal(*other.path) && f.inner.Equal(*other.inner)
	default: // comparisons
		return f.path.Equal(*other.path) && f.value.Equal(other.value)
	}
}

// bagEqual reports whether a and b contain the same elements with the
// same multiplicities, in any order.
func bagEqual(a, b []Filter) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, x := range a {
		found := false
		for j, y := range b {
			if used[j] {
				continue
			}
			if x.Equal(y) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Hash returns a hash consistent with Equal, including the unordered
// (multiset) semantics of And/Or: child hashes are combined with an
// order-independent sum (after mixing each through a finalizer, so two
// copies of the same child hash differently from one) rather than a
// plain XOR, which would spuriously cancel out matching pairs.
func (f Filter) Hash() uint64 {
	h := fnv.New64a()
	writeUint64(h, uint64(f.kind))

	switch f.kind {
	case KindAnd, KindOr:
		var sum uint64
		for _, c := range f.children {
			sum += mixHash(c.Hash())
		}
		writeUint64(h, sum)
	case KindNot:
		writeUint64(h, f.negated.Hash())
	case KindPresent:
		writeUint64(h, f.path.Hash())
	case KindComplexValue:
		writeUint64(h, f.path.Hash())
		writeUint64(h, f.inner.Hash())
	default:
		writeUint64(h, f.path.Hash())
		writeUint64(h, valueHash(f.value))
	}
	return h.Sum64()
}

func writeUint64(h interface{ Write([]byte) (int, error) }, v uint64) {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	h.Write(buf[:])
}

// mixHash is a splitmix64-style finalizer used to decorrelate child
// hashes before summing them, so that bag equality (spec invariant 6)
// and hash consistency (invariant 7) hold together without duplicate
// children cancelling each other out the way a plain XOR would.
func mixHash(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	x = x ^ (x >> 31)
	return x
}

func valueHash(v Value) uint64 {
	h := fnv.New64a()
	writeUint64(h, uint64(v.kind))
	h.Write([]byte(v.asText()))
	return h.Sum64()
}
