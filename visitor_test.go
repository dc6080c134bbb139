package scimfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kindCountingVisitor struct {
	Base
	ands, ors, nots, presents, comparisons, complexValues int
}

func (v *kindCountingVisitor) VisitAnd(Filter) error          { v.ands++; return nil }
func (v *kindCountingVisitor) VisitOr(Filter) error           { v.ors++; return nil }
func (v *kindCountingVisitor) VisitNot(Filter) error          { v.nots++; return nil }
func (v *kindCountingVisitor) VisitPresent(Filter) error      { v.presents++; return nil }
func (v *kindCountingVisitor) VisitComparison(Filter) error   { v.comparisons++; return nil }
func (v *kindCountingVisitor) VisitComplexValue(Filter) error { v.complexValues++; return nil }

func TestWalkVisitsEveryNode(t *testing.T) {
	f := mustParse(t, `not (userName pr) and emails[type eq "work"]`)
	v := &kindCountingVisitor{}
	require.NoError(t, Walk(f, v))
	assert.Equal(t, 1, v.ands)
	assert.Equal(t, 1, v.nots)
	assert.Equal(t, 1, v.presents)
	assert.Equal(t, 1, v.complexValues)
	assert.Equal(t, 1, v.comparisons)
}

func TestWalkStopsOnError(t *testing.T) {
	f := mustParse(t, `a eq 1 and b eq 2`)
	sentinel := assert.AnError
	v := &errorOnFirstComparison{err: sentinel}
	err := Walk(f, v)
	assert.Equal(t, sentinel, err)
	assert.Equal(t, 1, v.seen)
}

type errorOnFirstComparison struct {
	Base
	err  error
	seen int
}

func (v *errorOnFirstComparison) VisitComparison(Filter) error {
	v.seen++
	return v.err
}

func TestFilterPathsCollectsInTraversalOrder(t *testing.T) {
	f := mustParse(t, `userName pr and emails[type eq "work"].value eq "x"`)
	paths := f.Paths()
	require.Len(t, paths, 2)
	assert.Equal(t, "userName", paths[0].String())
	assert.Equal(t, `emails[type eq "work"].value`, paths[1].String())
}
