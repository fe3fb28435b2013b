package jsonbind

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jsonbind/jsonbind/stream"
)

// SerializeFunc converts a value into an in-memory JSON tree. Trees
// are built from nil, bool, string, Number, float64, int64, []any and
// map[string]any.
type SerializeFunc func(v any) (any, error)

// DeserializeFunc converts an in-memory JSON tree into a value.
type DeserializeFunc func(tree any) (any, error)

// treeFactory wraps an optional tree serializer/deserializer pair for
// one type into the uniform adapter contract.
type treeFactory struct {
	target      Descriptor
	serialize   SerializeFunc
	deserialize DeserializeFunc
}

func (f *treeFactory) Create(r Resolver, d Descriptor) (Adapter, error) {
	if !d.Equal(f.target) {
		return nil, nil
	}
	return &treeAdapter{
		codec:       r.Codec(),
		factory:     f,
		target:      d,
		serialize:   f.serialize,
		deserialize: f.deserialize,
	}, nil
}

// treeAdapter bridges tree-shaped conversion functions onto the token
// stream. Whichever side was not supplied delegates to the adapter
// that would have been resolved had this registration not existed: the
// fallback search continues past this adapter's own factory in the
// chain, finding an earlier registration for the same type or
// ultimately a built-in. The fallback is resolved on first need and
// memoized; both sides share one delegate since they skip to the same
// place.
type treeAdapter struct {
	codec       *Codec
	factory     Factory
	target      Descriptor
	serialize   SerializeFunc
	deserialize DeserializeFunc

	once        sync.Once
	fallback    Adapter
	fallbackErr error
}

func (t *treeAdapter) delegate() (Adapter, error) {
	t.once.Do(func() {
		t.fallback, t.fallbackErr = t.codec.DelegateAdapter(t.factory, t.target)
	})
	return t.fallback, t.fallbackErr
}

func (t *treeAdapter) Read(r *stream.Reader) (any, error) {
	if t.deserialize == nil {
		d, err := t.delegate()
		if err != nil {
			return nil, err
		}
		return d.Read(r)
	}
	tree, err := ReadTree(r)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, nil
	}
	return t.deserialize(tree)
}

func (t *treeAdapter) Write(w *stream.Writer, v any) error {
	if t.serialize == nil {
		d, err := t.delegate()
		if err != nil {
			return err
		}
		return d.Write(w, v)
	}
	if v == nil {
		return w.Null()
	}
	tree, err := t.serialize(v)
	if err != nil {
		return err
	}
	return WriteTree(w, tree)
}

// ReadTree consumes one value from r into an in-memory JSON tree.
// Numbers are kept as Number to stay lossless.
func ReadTree(r *stream.Reader) (any, error) {
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	switch k {
	case stream.KindNull:
		return nil, r.Null()
	case stream.KindBool:
		return r.Bool()
	case stream.KindString:
		return r.String()
	case stream.KindNumber:
		s, err := r.NumberText()
		if err != nil {
			return nil, err
		}
		return Number(s), nil
	case stream.KindBeginArray:
		if err := r.BeginArray(); err != nil {
			return nil, err
		}
		out := []any{}
		for {
			k, err := r.Peek()
			if err != nil {
				return nil, err
			}
			if k == stream.KindEndArray {
				return out, r.EndArray()
			}
			elem, err := ReadTree(r)
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
	case stream.KindBeginObject:
		if err := r.BeginObject(); err != nil {
			return nil, err
		}
		out := map[string]any{}
		for {
			k, err := r.Peek()
			if err != nil {
				return nil, err
			}
			if k == stream.KindEndObject {
				return out, r.EndObject()
			}
			name, err := r.Name()
			if err != nil {
				return nil, err
			}
			member, err := ReadTree(r)
			if err != nil {
				return nil, err
			}
			out[name] = member
		}
	default:
		return nil, fmt.Errorf("jsonbind: expected a value, got %s token", k)
	}
}

// WriteTree emits an in-memory JSON tree as one value on w.
func WriteTree(w *stream.Writer, tree any) error {
	switch x := tree.(type) {
	case nil:
		return w.Null()
	case bool:
		return w.Bool(x)
	case string:
		return w.String(x)
	case Number:
		return w.NumberText(string(x))
	case float64:
		return w.Float64(x)
	case float32:
		return w.Float64(float64(x))
	case int:
		return w.Int64(int64(x))
	case int64:
		return w.Int64(x)
	case uint64:
		return w.Uint64(x)
	case []any:
		if err := w.BeginArray(); err != nil {
			return err
		}
		for _, elem := range x {
			if err := WriteTree(w, elem); err != nil {
				return err
			}
		}
		return w.EndArray()
	case map[string]any:
		if err := w.BeginObject(); err != nil {
			return err
		}
		for _, name := range sortedKeys(x) {
			if err := w.Name(name); err != nil {
				return err
			}
			if err := WriteTree(w, x[name]); err != nil {
				return err
			}
		}
		return w.EndObject()
	default:
		return fmt.Errorf("jsonbind: %T is not a JSON tree node", tree)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
