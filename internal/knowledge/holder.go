package knowledge

import "sync/atomic"

// Source yields the knowledge base to use for one computation.
type Source interface {
	Current() *Base
}

// Holder publishes the live knowledge base. Readers take a snapshot with
// Current; reloads replace the whole base with Swap.
type Holder struct {
	ptr atomic.Pointer[Base]
}

func NewHolder(b *Base) *Holder {
	h := &Holder{}
	h.ptr.Store(b)
	return h
}

func (h *Holder) Current() *Base { return h.ptr.Load() }

// Swap installs b and returns the previous base.
func (h *Holder) Swap(b *Base) *Base { return h.ptr.Swap(b) }

type staticSource struct{ b *Base }

func (s staticSource) Current() *Base { return s.b }

// Static wraps a fixed base.
func Static(b *Base) Source { return staticSource{b: b} }
