package scimfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderCanonicalLowercase(t *testing.T) {
	f := mustParse(t, `userName EQ "bjensen" AND active PR`)
	assert.Equal(t, `userName eq "bjensen" and active pr`, Render(f))
}

func TestRenderParenthesizesMixedAndOrNot(t *testing.T) {
	f := mustParse(t, `(userName pr or active pr) and nickName pr`)
	assert.Equal(t, `(userName pr or active pr) and nickName pr`, Render(f))
}

func TestRenderDoesNotParenthesizeSameKindNesting(t *testing.T) {
	f := mustParse(t, `a eq 1 and b eq 2 and c eq 3`)
	assert.Equal(t, `a eq 1 and b eq 2 and c eq 3`, Render(f))
}

func TestRenderNot(t *testing.T) {
	f := mustParse(t, `not (active pr)`)
	assert.Equal(t, `not (active pr)`, Render(f))
}

func TestRenderStringEscaping(t *testing.T) {
	p, _ := ParsePath("note")
	f := Eq(p, StringValue("line\nwith \"quotes\""))
	assert.Equal(t, `note eq "line\nwith \"quotes\""`, Render(f))
}

func TestRenderNumbersAndBool(t *testing.T) {
	p, _ := ParsePath("age")
	assert.Equal(t, `age eq 42`, Render(Eq(p, IntValue(42))))
	assert.Equal(t, `age eq 3.5`, Render(Eq(p, FloatValue(3.5))))
	assert.Equal(t, `age eq true`, Render(Eq(p, BoolValue(true))))
	assert.Equal(t, `age eq null`, Render(Eq(p, NullValue())))
}

func TestRenderPathWithSchemaAndValueFilter(t *testing.T) {
	p, err := ParsePath(`urn:ietf:params:scim:schemas:core:2.0:User:emails[type eq "work"].value`)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t,
		`urn:ietf:params:scim:schemas:core:2.0:User:emails[type eq "work"].value`,
		RenderPath(p))
}
