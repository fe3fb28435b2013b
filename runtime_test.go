package jsonbind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsonbind/jsonbind/stream"
)

// Shape plays the declared-type side of runtime-type arbitration;
// Circle and Square are the concrete values stored in it.
type Shape interface {
	Area() float64
}

type Circle struct {
	Radius float64 `json:"radius"`
}

func (c Circle) Area() float64 { return 3.14159 * c.Radius * c.Radius }

type Square struct {
	Side float64 `json:"side"`
}

func (s Square) Area() float64 { return s.Side * s.Side }

type Drawing struct {
	Shape Shape `json:"shape"`
}

func TestRuntimeType_ReflectiveUsesConcreteValue(t *testing.T) {
	// No registrations: the declared interface resolves to the default
	// dynamic adapter, so writing consults the runtime type and emits
	// the concrete value's full shape.
	codec := New()

	data, err := codec.Marshal(&Drawing{Shape: Circle{Radius: 2}})
	require.NoError(t, err)
	assert.Equal(t, `{"shape":{"radius":2}}`, string(data))

	data, err = codec.Marshal(&Drawing{Shape: Square{Side: 3}})
	require.NoError(t, err)
	assert.Equal(t, `{"shape":{"side":3}}`, string(data))
}

func TestRuntimeType_AnyFieldAlwaysUsesRuntime(t *testing.T) {
	type box struct {
		V any `json:"v"`
	}
	codec := New()
	data, err := codec.Marshal(&box{V: Circle{Radius: 1}})
	require.NoError(t, err)
	assert.Equal(t, `{"v":{"radius":1}}`, string(data))
}

func TestRuntimeType_InterfaceSerializerWins(t *testing.T) {
	// A registration for the declared interface type is not a default
	// adapter, so it beats runtime-type resolution even though the
	// stored value is a Circle.
	shapeAdapter := AdapterFuncs(
		func(r *stream.Reader) (any, error) { return nil, r.SkipValue() },
		func(w *stream.Writer, v any) error {
			return w.String("shape")
		},
	)
	codec := NewBuilder().
		RegisterAdapter(DescriptorFor[Shape](), shapeAdapter).
		Build()

	data, err := codec.Marshal(&Drawing{Shape: Circle{Radius: 2}})
	require.NoError(t, err)
	assert.Equal(t, `{"shape":"shape"}`, string(data))
}

func TestRuntimeType_ConcreteRegistrationWinsThroughInterface(t *testing.T) {
	// Nothing is registered for Shape, so the field's adapter is the
	// default one and runtime resolution runs; it finds the custom
	// Circle adapter.
	circleAdapter := AdapterFuncs(
		func(r *stream.Reader) (any, error) { return nil, r.SkipValue() },
		func(w *stream.Writer, v any) error {
			return w.String("custom circle")
		},
	)
	codec := NewBuilder().
		RegisterAdapter(DescriptorFor[Circle](), circleAdapter).
		Build()

	data, err := codec.Marshal(&Drawing{Shape: Circle{Radius: 2}})
	require.NoError(t, err)
	assert.Equal(t, `{"shape":"custom circle"}`, string(data))

	// Squares still go through the reflective adapter.
	data, err = codec.Marshal(&Drawing{Shape: Square{Side: 3}})
	require.NoError(t, err)
	assert.Equal(t, `{"shape":{"side":3}}`, string(data))
}

func TestRuntimeType_DeserializerOnlyWritesReflectively(t *testing.T) {
	// A read-only registration for the interface leaves writing on the
	// fallback path, which resolves the runtime type reflectively.
	codec := NewBuilder().
		RegisterDeserializer(DescriptorFor[Shape](), func(tree any) (any, error) {
			m := tree.(map[string]any)
			n, _ := m["radius"].(Number)
			r, err := n.Float64()
			if err != nil {
				return nil, err
			}
			return Circle{Radius: r}, nil
		}).
		Build()

	data, err := codec.Marshal(&Drawing{Shape: Circle{Radius: 2}})
	require.NoError(t, err)
	assert.Equal(t, `{"shape":{"radius":2}}`, string(data))

	var d Drawing
	require.NoError(t, codec.Unmarshal([]byte(`{"shape": {"radius": 5}}`), &d))
	assert.Equal(t, Circle{Radius: 5}, d.Shape)
}

func TestRuntimeType_InterfaceTreeSerializerBeatsConcreteAdapter(t *testing.T) {
	// When both an interface-level serializer and a concrete-type
	// adapter exist, the field's own non-default adapter wins; runtime
	// resolution never runs.
	circleAdapter := AdapterFuncs(
		func(r *stream.Reader) (any, error) { return nil, r.SkipValue() },
		func(w *stream.Writer, v any) error { return w.String("custom circle") },
	)
	codec := NewBuilder().
		RegisterAdapter(DescriptorFor[Circle](), circleAdapter).
		RegisterSerializer(DescriptorFor[Shape](), func(v any) (any, error) {
			return "via interface serializer", nil
		}).
		Build()

	data, err := codec.Marshal(&Drawing{Shape: Circle{Radius: 2}})
	require.NoError(t, err)
	assert.Equal(t, `{"shape":"via interface serializer"}`, string(data))
}

func TestRuntimeType_SliceElementsResolveAtRuntime(t *testing.T) {
	codec := New()
	shapes := []Shape{Circle{Radius: 1}, Square{Side: 2}}
	data, err := codec.Marshal(shapes)
	require.NoError(t, err)
	assert.Equal(t, `[{"radius":1},{"side":2}]`, string(data))
}
