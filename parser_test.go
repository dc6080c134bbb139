package scimfilter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kr/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) Filter {
	t.Helper()
	f, err := ParseFilter(src)
	require.NoError(t, err, "ParseFilter(%q)", src)
	return f
}

func TestParseFilterComparisons(t *testing.T) {
	tests := []struct {
		src  string
		kind FilterKind
	}{
		{`userName eq "bjensen"`, KindEqual},
		{`userName ne "bjensen"`, KindNotEqual},
		{`userName co "jensen"`, KindContains},
		{`userName sw "bj"`, KindStartsWith},
		{`userName ew "sen"`, KindEndsWith},
		{`age gt 25`, KindGreaterThan},
		{`age ge 25`, KindGreaterOrEqual},
		{`age lt 25`, KindLessThan},
		{`age le 25`, KindLessOrEqual},
	}
	for _, tc := range tests {
		f := mustParse(t, tc.src)
		assert.Equal(t, tc.kind, f.Kind(), "parsing %q", tc.src)
	}
}

func TestParseFilterPresent(t *testing.T) {
	f := mustParse(t, "nickName pr")
	assert.Equal(t, KindPresent, f.Kind())
	assert.Equal(t, "nickName", f.ComparisonPath().String())
}

func TestParseFilterAndOrPrecedence(t *testing.T) {
	// and binds tighter than or: `a or b and c` == `a or (b and c)`.
	f := mustParse(t, `userName pr or active pr and nickName pr`)
	require.Equal(t, KindOr, f.Kind())
	children := f.CombinedFilters()
	require.Len(t, children, 2)
	assert.Equal(t, KindPresent, children[0].Kind())
	assert.Equal(t, KindAnd, children[1].Kind())
}

func TestParseFilterNotRequiresParens(t *testing.T) {
	_, err := ParseFilter("not nickName pr")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, UnexpectedToken, pe.Kind)

	f := mustParse(t, "not (nickName pr)")
	assert.Equal(t, KindNot, f.Kind())
}

func TestParseFilterComplexValue(t *testing.T) {
	f := mustParse(t, `emails[type eq "work" and value ew "@example.com"]`)
	require.Equal(t, KindComplexValue, f.Kind())
	assert.Equal(t, "emails", f.ComparisonPath().String())
	assert.Equal(t, KindAnd, f.ValueFilterInner().Kind())
}

func TestParseFilterNestedValueFilterThenDot(t *testing.T) {
	f := mustParse(t, `emails[type eq "work"].value eq "b@example.com"`)
	require.Equal(t, KindEqual, f.Kind())
	path := f.ComparisonPath()
	require.Len(t, path.Elements, 2)
	assert.Equal(t, "emails", path.Elements[0].Attribute)
	require.NotNil(t, path.Elements[0].ValueFilter)
	assert.Equal(t, "value", path.Elements[1].Attribute)
}

func TestParseFilterEmptyString(t *testing.T) {
	_, err := ParseFilter("")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, UnexpectedEnd, pe.Kind)
}

func TestParseFilterMissingOperator(t *testing.T) {
	_, err := ParseFilter("userName")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, MissingOperator, pe.Kind)
}

func TestParseFilterUnmatchedParen(t *testing.T) {
	_, err := ParseFilter(`(userName pr`)
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, BracketMismatch, pe.Kind)
}

func TestParseFilterTrailingInput(t *testing.T) {
	_, err := ParseFilter(`userName pr )`)
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, UnexpectedToken, pe.Kind)
}

// TestParseFilterRoundTrip exercises spec §8 invariant 1/2: re-parsing the
// rendered form of a parsed filter yields an AST-equal result.
func TestParseFilterRoundTrip(t *testing.T) {
	srcs := []string{
		`userName eq "bjensen"`,
		`emails[type eq "work" and value ew "@example.com"]`,
		`meta.created ge "2023-07-25T08:00:00Z"`,
		`not (nickName pr)`,
		`(userName sw "win") and (meta.resourceType eq "User")`,
		`name.familyName ne "Traffic"`,
		`a eq 1 and b eq 2 or c eq 3`,
		`age gt 3.14`,
		`active eq true`,
		`nick eq null`,
	}
	for _, src := range srcs {
		f := mustParse(t, src)
		rendered := Render(f)
		f2, err := ParseFilter(rendered)
		require.NoError(t, err, "re-parsing rendered %q (from %q)", rendered, src)
		if !f.Equal(f2) {
			t.Errorf("round trip mismatch for %q:\n%s", src, cmp.Diff(pretty.Sprint(f), pretty.Sprint(f2)))
		}
	}
}
