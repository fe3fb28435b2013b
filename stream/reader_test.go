package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_Scalars(t *testing.T) {
	r := NewReaderString(`"hello"`)
	k, err := r.Peek()
	require.NoError(t, err)
	assert.Equal(t, KindString, k)
	s, err := r.String()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
	require.NoError(t, r.ExpectEOF())

	r = NewReaderString(`true`)
	b, err := r.Bool()
	require.NoError(t, err)
	assert.True(t, b)

	r = NewReaderString(`null`)
	require.NoError(t, r.Null())

	r = NewReaderString(`-12.5e2`)
	f, err := r.Float64()
	require.NoError(t, err)
	assert.Equal(t, -1250.0, f)
}

func TestReader_StringEscapes(t *testing.T) {
	r := NewReaderString(`"a\"b\\cé\n"`)
	s, err := r.String()
	require.NoError(t, err)
	assert.Equal(t, "a\"b\\cé\n", s)
}

func TestReader_Object(t *testing.T) {
	r := NewReaderString(`{"a": 1, "b": [true, null], "c": {"d": "x"}}`)
	require.NoError(t, r.BeginObject())

	name, err := r.Name()
	require.NoError(t, err)
	assert.Equal(t, "a", name)
	n, err := r.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	name, err = r.Name()
	require.NoError(t, err)
	assert.Equal(t, "b", name)
	require.NoError(t, r.BeginArray())
	b, err := r.Bool()
	require.NoError(t, err)
	assert.True(t, b)
	require.NoError(t, r.Null())
	require.NoError(t, r.EndArray())

	name, err = r.Name()
	require.NoError(t, err)
	assert.Equal(t, "c", name)
	require.NoError(t, r.SkipValue())

	require.NoError(t, r.EndObject())
	require.NoError(t, r.ExpectEOF())
}

func TestReader_NumberText(t *testing.T) {
	r := NewReaderString(`[10, 10.25, 1e400, -0.5]`)
	require.NoError(t, r.BeginArray())

	for _, want := range []string{"10", "10.25", "1e400", "-0.5"} {
		got, err := r.NumberText()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	require.NoError(t, r.EndArray())
}

func TestReader_Float64RejectsOverflow(t *testing.T) {
	// 1e400 is syntactically valid but exceeds float64 range; the
	// strict reader refuses to round it to infinity.
	r := NewReaderString(`1e400`)
	_, err := r.Float64()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgNonFiniteNumber)

	r = NewReaderString(`1e400`)
	r.SetLenient(true)
	f, err := r.Float64()
	require.NoError(t, err)
	assert.True(t, f > 0 && f*2 == f) // +Inf
}

func TestReader_MalformedNumber(t *testing.T) {
	for _, in := range []string{`01`, `1.`, `.5`, `+1`, `1e`, `--1`} {
		r := NewReaderString(in)
		_, err := r.NumberText()
		assert.Error(t, err, "input %q", in)
	}
}

func TestReader_TrailingData(t *testing.T) {
	r := NewReaderString(`1 2`)
	_, err := r.Int64()
	require.NoError(t, err)
	err = r.ExpectEOF()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgTrailingData)
}

func TestReader_UnexpectedEOF(t *testing.T) {
	r := NewReaderString(`{"a": `)
	require.NoError(t, r.BeginObject())
	_, err := r.Name()
	require.NoError(t, err)
	_, err = r.Peek()
	require.Error(t, err)
}

func TestReader_RawValue(t *testing.T) {
	r := NewReaderString(`{"a": {"nested": [1, 2, 3]}, "b": 2}`)
	require.NoError(t, r.BeginObject())
	_, err := r.Name()
	require.NoError(t, err)
	raw, err := r.RawValue()
	require.NoError(t, err)
	assert.Equal(t, `{"nested": [1, 2, 3]}`, string(raw))

	name, err := r.Name()
	require.NoError(t, err)
	assert.Equal(t, "b", name)
}

func TestReader_PeekIsIdempotent(t *testing.T) {
	r := NewReaderString(`42`)
	for i := 0; i < 3; i++ {
		k, err := r.Peek()
		require.NoError(t, err)
		assert.Equal(t, KindNumber, k)
	}
	n, err := r.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

func TestReader_TypeMismatch(t *testing.T) {
	r := NewReaderString(`"text"`)
	_, err := r.Int64()
	require.Error(t, err)

	r = NewReaderString(`[1]`)
	err = r.BeginObject()
	require.Error(t, err)
}
