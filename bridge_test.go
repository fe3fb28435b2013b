package jsonbind

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsonbind/jsonbind/stream"
)

// Point has asymmetric wire forms in several tests: "x,y" as a string
// or an object, depending on which sides are registered.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func pointToTree(v any) (any, error) {
	p, ok := v.(Point)
	if !ok {
		return nil, fmt.Errorf("expected Point, got %T", v)
	}
	return fmt.Sprintf("%d,%d", p.X, p.Y), nil
}

func treeToPoint(tree any) (any, error) {
	s, ok := tree.(string)
	if !ok {
		return nil, fmt.Errorf("expected string tree, got %T", tree)
	}
	var p Point
	if _, err := fmt.Sscanf(s, "%d,%d", &p.X, &p.Y); err != nil {
		return nil, err
	}
	return p, nil
}

func TestTreeAdapter_BothSides(t *testing.T) {
	codec := NewBuilder().
		RegisterTreeAdapter(DescriptorFor[Point](), pointToTree, treeToPoint).
		Build()

	data, err := codec.Marshal(Point{X: 1, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, `"1,2"`, string(data))

	var p Point
	require.NoError(t, codec.Unmarshal([]byte(`"3,4"`), &p))
	assert.Equal(t, Point{X: 3, Y: 4}, p)
}

func TestTreeAdapter_SerializerOnlyFallsBackOnRead(t *testing.T) {
	codec := NewBuilder().
		RegisterSerializer(DescriptorFor[Point](), pointToTree).
		Build()

	// Writes use the serializer.
	data, err := codec.Marshal(Point{X: 1, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, `"1,2"`, string(data))

	// Reads fall through to the reflective adapter.
	var p Point
	require.NoError(t, codec.Unmarshal([]byte(`{"x": 3, "y": 4}`), &p))
	assert.Equal(t, Point{X: 3, Y: 4}, p)
}

func TestTreeAdapter_DeserializerOnlyFallsBackOnWrite(t *testing.T) {
	codec := NewBuilder().
		RegisterDeserializer(DescriptorFor[Point](), treeToPoint).
		Build()

	data, err := codec.Marshal(Point{X: 1, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, `{"x":1,"y":2}`, string(data))

	var p Point
	require.NoError(t, codec.Unmarshal([]byte(`"3,4"`), &p))
	assert.Equal(t, Point{X: 3, Y: 4}, p)
}

func TestTreeAdapter_FallbackSkipsPastOwnRegistration(t *testing.T) {
	// An earlier full registration for the same type becomes the
	// fallback of a later one-sided registration; the one-sided
	// adapter never selects itself.
	full := AdapterFuncs(
		func(r *stream.Reader) (any, error) {
			s, err := r.String()
			if err != nil {
				return nil, err
			}
			var p Point
			_, err = fmt.Sscanf(s, "<%d|%d>", &p.X, &p.Y)
			return p, err
		},
		func(w *stream.Writer, v any) error {
			p := v.(Point)
			return w.String(fmt.Sprintf("<%d|%d>", p.X, p.Y))
		},
	)
	codec := NewBuilder().
		RegisterAdapter(DescriptorFor[Point](), full).
		RegisterSerializer(DescriptorFor[Point](), pointToTree).
		Build()

	// The later serializer wins on write.
	data, err := codec.Marshal(Point{X: 1, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, `"1,2"`, string(data))

	// Reads delegate past the serializer to the earlier registration,
	// not to the reflective adapter.
	var p Point
	require.NoError(t, codec.Unmarshal([]byte(`"<3|4>"`), &p))
	assert.Equal(t, Point{X: 3, Y: 4}, p)
}

func TestTreeAdapter_TwoDeserializersFallBackToReflectiveWrite(t *testing.T) {
	// With two read-only registrations stacked for the same type and
	// no serializer anywhere, a write cascades: the newest bridge
	// delegates past its own factory to the older bridge, which
	// delegates past its factory in turn, landing on the reflective
	// adapter.
	codec := NewBuilder().
		RegisterDeserializer(DescriptorFor[Point](), treeToPoint).
		RegisterDeserializer(DescriptorFor[Point](), func(tree any) (any, error) {
			s, ok := tree.(string)
			if !ok {
				return nil, fmt.Errorf("expected string tree, got %T", tree)
			}
			var p Point
			if _, err := fmt.Sscanf(s, "(%d;%d)", &p.X, &p.Y); err != nil {
				return nil, err
			}
			return p, nil
		}).
		Build()

	data, err := codec.Marshal(Point{X: 1, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, `{"x":1,"y":2}`, string(data))

	// Reading still uses the newest registration.
	var p Point
	require.NoError(t, codec.Unmarshal([]byte(`"(3;4)"`), &p))
	assert.Equal(t, Point{X: 3, Y: 4}, p)
}

func TestTreeAdapter_NullBypassesDeserializer(t *testing.T) {
	codec := NewBuilder().
		RegisterTreeAdapter(DescriptorFor[*Point](), nil, func(tree any) (any, error) {
			t.Fatalf("deserializer must not see null")
			return nil, nil
		}).
		Build()

	var p *Point
	require.NoError(t, codec.Unmarshal([]byte(`null`), &p))
	assert.Nil(t, p)
}

func TestReadTree_Shapes(t *testing.T) {
	r := stream.NewReaderString(`{"s": "x", "n": 1.5, "b": true, "z": null, "a": [1, "two"]}`)
	tree, err := ReadTree(r)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"s": "x",
		"n": Number("1.5"),
		"b": true,
		"z": nil,
		"a": []any{Number("1"), "two"},
	}, tree)
}

func TestWriteTree_Shapes(t *testing.T) {
	w := stream.NewWriter()
	err := WriteTree(w, map[string]any{
		"b": false,
		"a": []any{Number("1"), 2.5, "x", nil},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":[1,2.5,"x",null],"b":false}`, string(w.Bytes()))
}
