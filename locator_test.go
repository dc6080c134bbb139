package scimfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, json string) Value {
	t.Helper()
	v, err := DecodeJSON([]byte(json))
	require.NoError(t, err)
	return v
}

func TestLocateSimpleAttribute(t *testing.T) {
	root := mustDecode(t, `{"userName":"bjensen"}`)
	p, _ := ParsePath("userName")
	vals, err := Locate(p, root)
	require.NoError(t, err)
	require.Len(t, vals, 1)
	assert.Equal(t, "bjensen", vals[0].Text())
}

func TestLocateMissingAttribute(t *testing.T) {
	root := mustDecode(t, `{"userName":"bjensen"}`)
	p, _ := ParsePath("nickName")
	vals, err := Locate(p, root)
	require.NoError(t, err)
	assert.Empty(t, vals)
}

func TestLocateNestedDotPath(t *testing.T) {
	root := mustDecode(t, `{"name":{"familyName":"Jensen"}}`)
	p, _ := ParsePath("name.familyName")
	vals, err := Locate(p, root)
	require.NoError(t, err)
	require.Len(t, vals, 1)
	assert.Equal(t, "Jensen", vals[0].Text())
}

func TestLocateCaseInsensitiveField(t *testing.T) {
	root := mustDecode(t, `{"UserName":"bjensen"}`)
	p, _ := ParsePath("username")
	vals, err := Locate(p, root)
	require.NoError(t, err)
	require.Len(t, vals, 1)
	assert.Equal(t, "bjensen", vals[0].Text())
}

func TestLocateFlattensArray(t *testing.T) {
	root := mustDecode(t, `{"emails":[{"value":"a@x.io"},{"value":"b@y.io"}]}`)
	p, _ := ParsePath("emails")
	vals, err := Locate(p, root)
	require.NoError(t, err)
	require.Len(t, vals, 2)
	assert.Equal(t, KindObject, vals[0].Kind())
}

func TestLocateArrayWithValueFilter(t *testing.T) {
	root := mustDecode(t, `{"emails":[{"type":"home","value":"a@x.io"},{"type":"work","value":"b@y.io"}]}`)
	p, _ := ParsePath(`emails[type eq "work"].value`)
	vals, err := Locate(p, root)
	require.NoError(t, err)
	require.Len(t, vals, 1)
	assert.Equal(t, "b@y.io", vals[0].Text())
}

func TestLocateValueFilterNoMatchOnNonObject(t *testing.T) {
	root := mustDecode(t, `{"tags":["a","b"]}`)
	p, _ := ParsePath(`tags[value eq "a"]`)
	vals, err := Locate(p, root)
	require.NoError(t, err)
	assert.Empty(t, vals, "value filter against scalar array elements yields no matches")
}

func TestLocateTooDeepPropagates(t *testing.T) {
	root := mustDecode(t, `{"a":[{"b":[{"c":"x"}]}]}`)
	inner := Eq(mustParsePath(t, "c"), StringValue("x"))
	aFilter := NewComplexValue(mustParsePath(t, "a"), NewComplexValue(mustParsePath(t, "b"), inner))

	ok, evalErr := Evaluate(aFilter, root, WithMaxDepth(1))
	require.Error(t, evalErr)
	var fe *FilterError
	require.ErrorAs(t, evalErr, &fe)
	assert.Equal(t, TooDeep, fe.Kind)
	assert.False(t, ok)
}

func mustParsePath(t *testing.T, src string) Path {
	t.Helper()
	p, err := ParsePath(src)
	require.NoError(t, err)
	return p
}
