package scimfilter

// Visitor inspects a Filter AST one node at a time (spec §4.8's traversal
// surface). Each method is called as Walk descends; returning a non-nil
// error halts the walk immediately and that error surfaces from Walk.
// Embed Base to implement only the methods a particular walk cares about,
// the way the teacher's FilterVisitor/Visitor pair split a full interface
// from a no-op base implementation.
type Visitor interface {
	VisitAnd(f Filter) error
	VisitOr(f Filter) error
	VisitNot(f Filter) error
	VisitPresent(f Filter) error
	VisitComparison(f Filter) error
	VisitComplexValue(f Filter) error
}

// Base is a no-op Visitor; embed it and override only what you need.
type Base struct{}

func (Base) VisitAnd(Filter) error          { return nil }
func (Base) VisitOr(Filter) error           { return nil }
func (Base) VisitNot(Filter) error          { return nil }
func (Base) VisitPresent(Filter) error      { return nil }
func (Base) VisitComparison(Filter) error   { return nil }
func (Base) VisitComplexValue(Filter) error { return nil }

// Walk visits f and every descendant node in depth-first, parent-before-
// children order, dispatching each to the matching Visitor method. A Not
// filter's operand, an And/Or's children, and a ComplexValue's inner
// filter are all visited as descendants; a comparison filter's value is a
// leaf and is not itself visited.
func Walk(f Filter, v Visitor) error {
	switch f.Kind() {
	case KindAnd:
		if err := v.VisitAnd(f); err != nil {
			return err
		}
		for _, c := range f.CombinedFilters() {
			if err := Walk(c, v); err != nil {
				return err
			}
		}
		return nil

	case KindOr:
		if err := v.VisitOr(f); err != nil {
			return err
		}
		for _, c := range f.CombinedFilters() {
			if err := Walk(c, v); err != nil {
				return err
			}
		}
		return nil

	case KindNot:
		if err := v.VisitNot(f); err != nil {
			return err
		}
		return Walk(*f.InvertedFilter(), v)

	case KindPresent:
		return v.VisitPresent(f)

	case KindComplexValue:
		if err := v.VisitComplexValue(f); err != nil {
			return err
		}
		return Walk(*f.ValueFilterInner(), v)

	default: // comparisons
		return v.VisitComparison(f)
	}
}

// pathCollector gathers the attribute path of every Present, comparison,
// and ComplexValue node encountered during a walk, in traversal order,
// without deduplication (spec §4.4's "Paths" convenience facade,
// grounded on imulab-go-scim-style walk-and-collect helpers).
type pathCollector struct {
	Base
	paths []Path
}

func (c *pathCollector) VisitPresent(f Filter) error {
	c.paths = append(c.paths, *f.ComparisonPath())
	return nil
}

func (c *pathCollector) VisitComparison(f Filter) error {
	c.paths = append(c.paths, *f.ComparisonPath())
	return nil
}

func (c *pathCollector) VisitComplexValue(f Filter) error {
	c.paths = append(c.paths, *f.ComparisonPath())
	return nil
}

// Paths returns the attribute path of every Present, comparison and
// ComplexValue node in f, in traversal order, including duplicates. A path
// element's inline `[...]` filter is returned as part of its path; the
// paths inside that inline filter are not collected separately.
func (f Filter) Paths() []Path {
	c := &pathCollector{}
	_ = Walk(f, c)
	return c.paths
}
