package jsonbind

import "reflect"

// singleTypeFactory serves one pre-built adapter for exactly one
// descriptor. RegisterAdapter wraps user adapters in these so that a
// direct registration and a factory registration share the same
// precedence machinery.
type singleTypeFactory struct {
	target  Descriptor
	adapter Adapter
}

func (f *singleTypeFactory) Create(r Resolver, d Descriptor) (Adapter, error) {
	if !d.Equal(f.target) {
		return nil, nil
	}
	return f.adapter, nil
}

// sameFactory reports identity between two chain entries without
// panicking on factories of uncomparable dynamic types.
func sameFactory(a, b Factory) bool {
	if a == nil || b == nil {
		return a == b
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
