// ABOUTME: Graph interface and in-memory implementation
// ABOUTME: Provides methods for storing and querying object graphs

package graph

import (
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrUnknownObject is returned when an ID names no object in the graph
var ErrUnknownObject = errors.New("unknown object")

// Graph represents an object graph
type Graph interface {
	// AddObject adds an object to the graph, replacing any with the same ID
	AddObject(obj *Object)

	// GetObject retrieves an object by ID, or nil
	GetObject(id ObjID) *Object

	// NumObjects returns the total number of objects
	NumObjects() int

	// ForEachObject iterates over all objects
	ForEachObject(fn func(*Object))

	// SetRoots sets the document roots
	SetRoots(roots Roots)

	// GetRoots returns the document roots
	GetRoots() Roots
}

// Lookup retrieves an object by ID and fails with ErrUnknownObject when the
// graph has no such object
func Lookup(g Graph, id ObjID) (*Object, error) {
	obj := g.GetObject(id)
	if obj == nil {
		return nil, errors.Wrapf(ErrUnknownObject, "object %d", id)
	}
	return obj, nil
}

// MemGraph is an in-memory implementation of Graph. It is safe for
// concurrent use, so several walks may read it at once.
type MemGraph struct {
	mu      sync.RWMutex
	objects map[ObjID]*Object
	roots   Roots
}

// NewMemGraph creates a new in-memory graph
func NewMemGraph() *MemGraph {
	return &MemGraph{
		objects: make(map[ObjID]*Object),
	}
}

// AddObject adds an object to the graph
func (g *MemGraph) AddObject(obj *Object) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.objects[obj.ID] = obj
}

// GetObject retrieves an object by ID
func (g *MemGraph) GetObject(id ObjID) *Object {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.objects[id]
}

// NumObjects returns the total number of objects
func (g *MemGraph) NumObjects() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.objects)
}

// ForEachObject iterates over all objects. fn must not modify the graph.
func (g *MemGraph) ForEachObject(fn func(*Object)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, obj := range g.objects {
		fn(obj)
	}
}

// SetRoots sets the document roots
func (g *MemGraph) SetRoots(roots Roots) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.roots = roots
}

// GetRoots returns the document roots
func (g *MemGraph) GetRoots() Roots {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.roots
}
