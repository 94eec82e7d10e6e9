package ephem

import (
	"sync"
	"sync/atomic"

	"github.com/litescript/lunas/internal/astro"
)

// Shared is a process-wide provider handle that runs its loader at most
// once. Concurrent first callers block on the same load and never observe
// a partially initialized provider. A failed load is remembered.
type Shared struct {
	get   func() (Provider, error)
	ready atomic.Bool
}

// NewShared wraps load in a single-initialization guard.
func NewShared(load func() (Provider, error)) *Shared {
	s := &Shared{}
	s.get = sync.OnceValues(func() (Provider, error) {
		p, err := load()
		if err == nil {
			s.ready.Store(true)
		}
		return p, err
	})
	return s
}

// Get returns the loaded provider, loading it on first use.
func (s *Shared) Get() (Provider, error) {
	return s.get()
}

// Ready reports whether the provider has been loaded successfully.
func (s *Shared) Ready() bool {
	return s.ready.Load()
}

// Position implements astro.Ephemeris by delegating to the loaded provider.
func (s *Shared) Position(body astro.Body, at astro.Instant) (astro.Vec3, error) {
	p, err := s.get()
	if err != nil {
		return astro.Vec3{}, err
	}
	return p.Position(body, at)
}
