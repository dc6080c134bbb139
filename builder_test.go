package scimfilter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderComparisonHelpersRenderLikeParsedFilters(t *testing.T) {
	p, _ := ParsePath("userName")
	built := Eq(p, StringValue("bjensen"))
	parsed := mustParse(t, `userName eq "bjensen"`)
	assert.True(t, built.Equal(parsed))
}

func TestBuilderAndOrRequireTwoChildren(t *testing.T) {
	p, _ := ParsePath("a")
	_, err := And(Eq(p, IntValue(1)))
	require.Error(t, err)

	_, err = Or(Eq(p, IntValue(1)), Eq(p, IntValue(2)))
	require.NoError(t, err)
}

func TestBuilderTimeValueSupportsOrderingHeuristic(t *testing.T) {
	ts := time.Date(2023, 7, 25, 8, 0, 0, 0, time.UTC)
	v := TimeValue(ts)
	require.Equal(t, KindString, v.Kind())
	assert.True(t, looksLikeISO8601(v.Text()))
}

func TestBuilderLikePrefixSuffixAndContains(t *testing.T) {
	p, _ := ParsePath("userName")

	eqF, err := Like(p, "bjensen")
	require.NoError(t, err)
	assert.Equal(t, KindEqual, eqF.Kind())

	swF, err := Like(p, "bj*")
	require.NoError(t, err)
	assert.Equal(t, KindStartsWith, swF.Kind())

	ewF, err := Like(p, "*sen")
	require.NoError(t, err)
	assert.Equal(t, KindEndsWith, ewF.Kind())

	coF, err := Like(p, "*jens*")
	require.NoError(t, err)
	assert.Equal(t, KindContains, coF.Kind())
}

func TestBuilderLikeRejectsInteriorWildcard(t *testing.T) {
	p, _ := ParsePath("userName")
	_, err := Like(p, "bj*sen")
	require.Error(t, err)
	var iae *InvalidArgumentError
	require.ErrorAs(t, err, &iae)
}

func TestBuildFilterIDDeterministicAndOrderInvariant(t *testing.T) {
	p1, _ := ParsePath("a")
	p2, _ := ParsePath("b")
	f1, err := And(Eq(p1, IntValue(1)), Eq(p2, IntValue(2)))
	require.NoError(t, err)
	f2, err := And(Eq(p2, IntValue(2)), Eq(p1, IntValue(1)))
	require.NoError(t, err)

	id1 := BuildFilterID(f1)
	id2 := BuildFilterID(f2)
	assert.Equal(t, id1, id2, "content-addressed ID should not depend on renderer output differing")

	f3 := Eq(p1, IntValue(999))
	assert.NotEqual(t, id1, BuildFilterID(f3))
}
