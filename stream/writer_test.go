package stream

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_Object(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.BeginObject())
	require.NoError(t, w.Name("a"))
	require.NoError(t, w.Int64(1))
	require.NoError(t, w.Name("b"))
	require.NoError(t, w.BeginArray())
	require.NoError(t, w.Bool(true))
	require.NoError(t, w.Null())
	require.NoError(t, w.String("x"))
	require.NoError(t, w.EndArray())
	require.NoError(t, w.EndObject())

	assert.Equal(t, `{"a":1,"b":[true,null,"x"]}`, string(w.Bytes()))
}

func TestWriter_StringEscapes(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.String("a\"b\\c\n"))
	assert.Equal(t, `"a\"b\\c\n"`, string(w.Bytes()))
}

func TestWriter_NonFiniteFloats(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		w := NewWriter()
		err := w.Float64(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgNonFiniteNumber)
	}
}

func TestWriter_DanglingName(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.BeginObject())
	require.NoError(t, w.Name("a"))
	err := w.EndObject()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgDanglingName)
}

func TestWriter_ValueWithoutName(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.BeginObject())
	err := w.String("orphan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgValueWithoutName)
}

func TestWriter_NameOutsideObject(t *testing.T) {
	w := NewWriter()
	err := w.Name("a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgNameOutsideValue)

	w = NewWriter()
	require.NoError(t, w.BeginArray())
	err = w.Name("a")
	require.Error(t, err)
}

func TestWriter_NumberText(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.NumberText("3.141592653589793238462643383279"))
	assert.Equal(t, "3.141592653589793238462643383279", string(w.Bytes()))

	w = NewWriter()
	err := w.NumberText("not-a-number")
	require.Error(t, err)
}

func TestWriter_Raw(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.BeginObject())
	require.NoError(t, w.Name("payload"))
	require.NoError(t, w.Raw([]byte(`{"k":[1,2]}`)))
	require.NoError(t, w.EndObject())
	assert.Equal(t, `{"payload":{"k":[1,2]}}`, string(w.Bytes()))

	w = NewWriter()
	err := w.Raw([]byte(`{broken`))
	require.Error(t, err)
}

func TestWriter_RoundTrip(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.BeginArray())
	require.NoError(t, w.Float64(1.5))
	require.NoError(t, w.Uint64(18446744073709551615))
	require.NoError(t, w.EndArray())

	r := NewReader(w.Bytes())
	require.NoError(t, r.BeginArray())
	f, err := r.Float64()
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)
	u, err := r.Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(18446744073709551615), u)
	require.NoError(t, r.EndArray())
	require.NoError(t, r.ExpectEOF())
}
