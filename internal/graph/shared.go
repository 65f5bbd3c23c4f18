package graph

import "sync"

// Shared is the single owner of a Graph that is fed by a sampling goroutine
// and painted by a UI loop. Each call holds exclusive access for its whole
// duration; fn must not call back into the same Shared.
type Shared struct {
	mu sync.Mutex
	g  *Graph
}

// Share wraps g. The caller must not keep using g directly.
func Share(g *Graph) *Shared {
	return &Shared{g: g}
}

// Update runs fn with exclusive access to the graph.
func (s *Shared) Update(fn func(g *Graph)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.g)
}

// Render renders the graph under the lock.
func (s *Shared) Render(width, height float64) Geometry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Render(width, height)
}

// Dirty reports whether the graph has changed since its last render.
func (s *Shared) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Dirty()
}
