package scimfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONPreservesIntVsFloat(t *testing.T) {
	v, err := DecodeJSON([]byte(`{"age":42,"score":3.5}`))
	require.NoError(t, err)

	age, ok := v.Field("age")
	require.True(t, ok)
	assert.Equal(t, KindInt, age.Kind())
	assert.Equal(t, int64(42), age.Int())

	score, ok := v.Field("score")
	require.True(t, ok)
	assert.Equal(t, KindFloat, score.Kind())
}

func TestDecodeJSONNestedArraysAndObjects(t *testing.T) {
	v, err := DecodeJSON([]byte(`{"emails":[{"value":"a@x.io"}]}`))
	require.NoError(t, err)
	emails, ok := v.Field("emails")
	require.True(t, ok)
	require.Equal(t, KindArray, emails.Kind())
	require.Len(t, emails.Elements(), 1)
	val, ok := emails.Elements()[0].Field("value")
	require.True(t, ok)
	assert.Equal(t, "a@x.io", val.Text())
}

func TestValueIsNull(t *testing.T) {
	assert.True(t, NullValue().IsNull())
	assert.True(t, ArrayValue().IsNull())
	assert.False(t, ArrayValue(IntValue(1)).IsNull())
	assert.False(t, ObjectValue(map[string]Value{}).IsNull())
	assert.False(t, StringValue("").IsNull())
}

func TestValueFieldCaseInsensitiveFallback(t *testing.T) {
	v := ObjectValue(map[string]Value{"UserName": StringValue("bjensen")})
	val, ok := v.Field("username")
	require.True(t, ok)
	assert.Equal(t, "bjensen", val.Text())
}

func TestValueEqualExactStructural(t *testing.T) {
	a := IntValue(1)
	b := FloatValue(1.0)
	assert.False(t, a.Equal(b), "Value.Equal performs no numeric coercion across kinds")
}
