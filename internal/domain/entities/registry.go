// Package entities holds the stage, factor and registry types the assembler works with.
package entities

// Registry is an insertion-ordered mapping from stage label to handle.
// It is append-only: a label is never replaced or removed, and after Seal
// nothing more can be registered.
type Registry struct {
	order   []string
	handles map[string]StageHandle
	sealed  bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]StageHandle)}
}

// Register adds h under label.
func (r *Registry) Register(label string, h StageHandle) error {
	if r.sealed {
		return NewSealedRegistryError("", label)
	}
	if _, exists := r.handles[label]; exists {
		return NewDuplicateStageError("", label)
	}
	r.order = append(r.order, label)
	r.handles[label] = h
	return nil
}

// Get returns the handle registered under label.
func (r *Registry) Get(label string) (StageHandle, bool) {
	h, ok := r.handles[label]
	return h, ok
}

// Has reports whether label is registered.
func (r *Registry) Has(label string) bool {
	_, ok := r.handles[label]
	return ok
}

// Labels returns the labels in registration order.
func (r *Registry) Labels() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Handles returns the handles in registration order.
func (r *Registry) Handles() []StageHandle {
	out := make([]StageHandle, 0, len(r.order))
	for _, label := range r.order {
		out = append(out, r.handles[label])
	}
	return out
}

// Len returns the number of registered stages.
func (r *Registry) Len() int {
	return len(r.order)
}

// Seal freezes the registry.
func (r *Registry) Seal() {
	r.sealed = true
}

// Sealed reports whether Seal was called.
func (r *Registry) Sealed() bool {
	return r.sealed
}
