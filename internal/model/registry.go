package model

import (
	"fmt"
	"strings"
	"sync"
)

// Registry tracks open documents. The resolver performs read-only name
// lookups against it; all mutation flows through the broker, which
// serializes per document.
type Registry struct {
	mu         sync.RWMutex
	parts      map[string]*PartDocument
	assemblies map[string]*AssemblyDocument
	activeID   string
}

func NewRegistry() *Registry {
	return &Registry{
		parts:      make(map[string]*PartDocument),
		assemblies: make(map[string]*AssemblyDocument),
	}
}

// AddPart registers a part document and makes it active.
func (r *Registry) AddPart(d *PartDocument) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parts[d.ID] = d
	r.activeID = d.ID
}

// AddAssembly registers an assembly document and makes it active.
func (r *Registry) AddAssembly(d *AssemblyDocument) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assemblies[d.ID] = d
	r.activeID = d.ID
}

// Part resolves a part document by id.
func (r *Registry) Part(id string) (*PartDocument, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.parts[id]
	return d, ok
}

// Assembly resolves an assembly document by id.
func (r *Registry) Assembly(id string) (*AssemblyDocument, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.assemblies[id]
	return d, ok
}

// ActivePart returns the active document when it is a part.
func (r *Registry) ActivePart() (*PartDocument, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.parts[r.activeID]
	return d, ok
}

// ActiveAssembly returns the active document when it is an assembly.
func (r *Registry) ActiveAssembly() (*AssemblyDocument, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.assemblies[r.activeID]
	return d, ok
}

// ActiveID returns the id of the active document, empty when none.
func (r *Registry) ActiveID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeID
}

// SetActive switches the active document.
func (r *Registry) SetActive(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.parts[id]; ok {
		r.activeID = id
		return nil
	}
	if _, ok := r.assemblies[id]; ok {
		r.activeID = id
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownDocument, id)
}

// ClosePart closes and unregisters a part document.
func (r *Registry) ClosePart(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.parts[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDocument, id)
	}
	d.Close()
	delete(r.parts, id)
	if r.activeID == id {
		r.activeID = ""
	}
	return nil
}

// CloseAssembly unregisters an assembly document.
func (r *Registry) CloseAssembly(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assemblies[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDocument, id)
	}
	delete(r.assemblies, id)
	if r.activeID == id {
		r.activeID = ""
	}
	return nil
}

// The lookup methods below back the resolver's read-only reference checks.

// HasPartNamed reports whether any open part document carries the name.
func (r *Registry) HasPartNamed(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.parts {
		if strings.EqualFold(d.Name, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// HasComponent reports whether the active assembly has the named component.
func (r *Registry) HasComponent(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.assemblies[r.activeID]
	if !ok {
		return false
	}
	_, ok = d.Components[strings.TrimSpace(name)]
	return ok
}

// SmallestEdge returns the smallest known edge length of a part in meters.
// Zero/false when the document has no bounding hint.
func (r *Registry) SmallestEdge(id string) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.parts[id]
	if !ok || d.BoundingHint <= 0 {
		return 0, false
	}
	return d.BoundingHint, true
}
