package jsonbind

import (
	"fmt"
	"sync/atomic"

	"github.com/jsonbind/jsonbind/stream"
)

// lazyAdapter stands in for an adapter whose resolution is still in
// progress. Factories that resolve a nested type receive a lazyAdapter
// when that type is already being resolved further up the call stack,
// which is what lets mutually-referential type graphs terminate: the
// placeholder escapes the recursion and its delegate is filled in once
// the outer resolution completes.
//
// The delegate transitions from unset to set exactly once. Forcing an
// unset delegate means a factory demanded its own adapter while still
// constructing it, which no amount of laziness can break.
type lazyAdapter struct {
	target   Descriptor
	delegate atomic.Pointer[Adapter]
}

func newLazyAdapter(d Descriptor) *lazyAdapter {
	return &lazyAdapter{target: d}
}

func (l *lazyAdapter) set(a Adapter) {
	l.delegate.CompareAndSwap(nil, &a)
}

// resolved returns the memoized delegate, or nil while unresolved.
func (l *lazyAdapter) resolved() Adapter {
	if p := l.delegate.Load(); p != nil {
		return *p
	}
	return nil
}

func (l *lazyAdapter) force() (Adapter, error) {
	if a := l.resolved(); a != nil {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %s required before its resolution completed", ErrAdapterCycle, l.target)
}

func (l *lazyAdapter) Read(r *stream.Reader) (any, error) {
	a, err := l.force()
	if err != nil {
		return nil, err
	}
	return a.Read(r)
}

func (l *lazyAdapter) Write(w *stream.Writer, v any) error {
	a, err := l.force()
	if err != nil {
		return err
	}
	return a.Write(w, v)
}
