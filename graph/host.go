// ABOUTME: Walker collaborators backed by an object graph
// ABOUTME: Oracle, enumerator and flyweight classifier over graph objects

package graph

import (
	"fmt"
	"log/slog"

	"github.com/cockroachdb/errors"
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/prateek/sizeof/walker"
)

// Options configures walks over a graph
type Options struct {
	// SharedTypes names object types treated as process-wide shared
	// instances in addition to objects flagged Shared.
	SharedTypes []string

	// Workers bounds the number of roots sized in parallel by
	// RetainedSizes. Zero or less means one per root.
	Workers int

	Logger *slog.Logger
}

// host adapts a Graph to the walker's collaborator interfaces
type host struct {
	g      Graph
	shared mapset.Set[string]
}

// NewWalker returns a walker over g. Node identities are object IDs.
func NewWalker(g Graph, opts Options) *walker.Walker[ObjID, ObjID] {
	h := &host{g: g, shared: mapset.NewThreadUnsafeSet(opts.SharedTypes...)}
	return &walker.Walker[ObjID, ObjID]{
		Oracle:     h,
		Enumerator: h,
		Classifier: h,
		Logger:     opts.Logger,
	}
}

// ShallowSize returns the object's recorded size
func (h *host) ShallowSize(id ObjID) (uint64, error) {
	obj, err := Lookup(h.g, id)
	if err != nil {
		return 0, err
	}
	return obj.Size, nil
}

// Identity returns id; objects are identified by ID
func (h *host) Identity(id ObjID) ObjID { return id }

// Enumerate lists the object's fields. A reference to an ID the graph does
// not hold cannot be read and fails the walk.
func (h *host) Enumerate(id ObjID) (walker.Listing[ObjID], error) {
	obj, err := Lookup(h.g, id)
	if err != nil {
		return walker.Listing[ObjID]{}, err
	}

	listing := walker.Listing[ObjID]{Shape: walker.Composite}
	if obj.IsSequence() {
		listing.Shape = walker.Sequence
		listing.Elem = obj.Elem
	}

	listing.Refs = make([]walker.Ref[ObjID], 0, len(obj.Fields))
	for _, f := range obj.Fields {
		switch {
		case f.Kind != walker.Reference:
			listing.Refs = append(listing.Refs, walker.Prim[ObjID](f.Name, f.Kind))
		case f.To == 0:
			listing.Refs = append(listing.Refs, walker.Null[ObjID](f.Name))
		case h.g.GetObject(f.To) == nil:
			return walker.Listing[ObjID]{}, walker.NewReferenceAccessError(
				describe(obj), f.Name, errors.Wrapf(ErrUnknownObject, "object %d", f.To))
		default:
			listing.Refs = append(listing.Refs, walker.To(f.Name, f.To))
		}
	}
	return listing, nil
}

// Shared reports objects flagged shared or of a shared type
func (h *host) Shared(id ObjID) bool {
	obj := h.g.GetObject(id)
	if obj == nil {
		return false
	}
	return obj.Shared || h.shared.Contains(obj.Type)
}

func describe(obj *Object) string {
	return fmt.Sprintf("object %d (%s)", obj.ID, obj.Type)
}
