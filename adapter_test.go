package jsonbind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsonbind/jsonbind/stream"
)

func TestNullSafe(t *testing.T) {
	wrapped := NullSafe(AdapterFuncs(
		func(r *stream.Reader) (any, error) { return r.String() },
		func(w *stream.Writer, v any) error { return w.String(v.(string)) },
	))

	r := stream.NewReaderString(`null`)
	v, err := wrapped.Read(r)
	require.NoError(t, err)
	assert.Nil(t, v)

	r = stream.NewReaderString(`"x"`)
	v, err = wrapped.Read(r)
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	w := stream.NewWriter()
	require.NoError(t, wrapped.Write(w, nil))
	assert.Equal(t, "null", string(w.Bytes()))

	// Wrapping twice is a no-op.
	assert.Equal(t, wrapped, NullSafe(wrapped))
}

func TestLazyAdapter_UnresolvedForceFails(t *testing.T) {
	lz := newLazyAdapter(DescriptorFor[int]())
	_, err := lz.Read(stream.NewReaderString(`1`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAdapterCycle)

	err = lz.Write(stream.NewWriter(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAdapterCycle)
}

func TestLazyAdapter_SetOnce(t *testing.T) {
	lz := newLazyAdapter(DescriptorFor[int]())
	first := AdapterFuncs(
		func(r *stream.Reader) (any, error) { return int(1), nil },
		func(w *stream.Writer, v any) error { return w.Int64(1) },
	)
	second := AdapterFuncs(
		func(r *stream.Reader) (any, error) { return int(2), nil },
		func(w *stream.Writer, v any) error { return w.Int64(2) },
	)
	lz.set(first)
	lz.set(second) // ignored

	v, err := lz.Read(stream.NewReaderString(`0`))
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}
