// ABOUTME: Reflection host supplying the walker's oracle, enumerator and classifier
// ABOUTME: Sizes live Go values; entry points take any and return bytes

package reflectsize

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/cockroachdb/errors"
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/prateek/sizeof/walker"
)

// errUnreadableBuffer is the cause reported for buffered channel contents,
// which cannot be read without receiving from the channel.
var errUnreadableBuffer = errors.New("buffered channel elements are not readable")

// Host sizes Go values. A Host is safe for concurrent use.
type Host struct {
	shared     mapset.Set[Identity]
	flyweights bool
	logger     *slog.Logger
	walker     *walker.Walker[Node, Identity]
}

// Option configures a Host.
type Option func(*Host)

// WithShared registers canonical singletons, such as sentinel errors, that
// are shared process-wide and must never be charged to an owner.
func WithShared(vals ...any) Option {
	return func(h *Host) {
		for _, v := range vals {
			if n, ok := rootNode(v); ok {
				h.shared.Add(n.id)
			}
		}
	}
}

// WithLogger sets the logger for the host and its walker.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) { h.logger = l }
}

// WithoutFlyweights disables flyweight detection; every reachable value is
// charged and no string is interned.
func WithoutFlyweights() Option {
	return func(h *Host) { h.flyweights = false }
}

// New returns a Host configured with opts. Unless flyweights are disabled,
// each distinct string a walk meets is looked up with unique.Make, which
// interns a clone of it until a later collection drops the unused entry.
// Walks over many large distinct strings therefore allocate their contents
// once more.
func New(opts ...Option) *Host {
	h := &Host{
		shared:     mapset.NewSet[Identity](),
		flyweights: true,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.walker = &walker.Walker[Node, Identity]{
		Oracle:     h,
		Enumerator: h,
		Logger:     h.logger,
	}
	if h.flyweights {
		h.walker.Classifier = h
	}
	h.logger.Debug("Reflection host ready", "shared", h.shared.Cardinality(), "flyweights", h.flyweights)
	return h
}

// Walker returns the walker backed by this host.
func (h *Host) Walker() *walker.Walker[Node, Identity] { return h.walker }

// Root returns the node standing for v. It reports false for nil and for
// values that own no storage the walker can see.
func (h *Host) Root(v any) (Node, bool) { return rootNode(v) }

// SizeOf returns the shallow size of v.
func (h *Host) SizeOf(v any) (uint64, error) {
	n, ok := rootNode(v)
	if !ok {
		return 0, nil
	}
	return h.walker.ShallowSize(n)
}

// RetainedSize returns the bytes retained by v.
func (h *Host) RetainedSize(v any) (uint64, error) {
	report, err := h.Walk(v)
	return report.Total, err
}

// Walk returns the full walk report for v.
func (h *Host) Walk(v any) (walker.Report, error) {
	n, ok := rootNode(v)
	if !ok {
		return walker.Report{}, nil
	}
	report, err := h.walker.Walk(n)
	if err != nil {
		return walker.Report{}, errors.Wrapf(err, "retained size of %T", v)
	}
	return report, nil
}

// ShallowSize implements walker.Oracle.
func (h *Host) ShallowSize(n Node) (uint64, error) {
	switch n.shape {
	case pointee, boxed:
		return uint64(n.v.Type().Size()), nil
	case backing:
		return uint64(n.v.Cap()) * uint64(n.v.Type().Elem().Size()), nil
	case text:
		return uint64(n.v.Len()), nil
	case table:
		return mapSize(n.v.Type(), n.v.Len()), nil
	case channel:
		return chanSize(n.v.Type(), n.v.Cap()), nil
	}
	return 0, errors.Newf("unknown node shape %d", n.shape)
}

// Identity implements walker.Enumerator.
func (h *Host) Identity(n Node) Identity { return n.id }

// Enumerate implements walker.Enumerator.
func (h *Host) Enumerate(n Node) (listing walker.Listing[Node], err error) {
	l := &lister{}
	defer func() {
		if r := recover(); r != nil {
			listing = walker.Listing[Node]{}
			err = walker.NewReferenceAccessError(n.String(), l.at, fmt.Errorf("%v", r))
		}
	}()

	switch n.shape {
	case pointee, boxed:
		if n.v.Kind() == reflect.Array {
			return sequence(l, n.v), nil
		}
		l.inline("", n.v)
		return walker.Listing[Node]{Shape: walker.Composite, Refs: l.refs}, nil
	case backing:
		// Elements past len still hold references.
		return sequence(l, n.v.Slice(0, n.v.Cap())), nil
	case text:
		return walker.Listing[Node]{Shape: walker.Sequence, Elem: walker.Byte}, nil
	case table:
		t := n.v.Type()
		if !traversable(t.Key()) && !traversable(t.Elem()) {
			return walker.Listing[Node]{Shape: walker.Sequence, Elem: walker.Byte}, nil
		}
		iter := n.v.MapRange()
		for i := 0; iter.Next(); i++ {
			l.inline(index("key", i), iter.Key())
			l.inline(index("val", i), iter.Value())
		}
		return walker.Listing[Node]{Shape: walker.Sequence, Elem: walker.Reference, Refs: l.refs}, nil
	case channel:
		elem := n.v.Type().Elem()
		if !traversable(elem) {
			return walker.Listing[Node]{Shape: walker.Sequence, Elem: kindOf(elem)}, nil
		}
		if n.v.Len() > 0 {
			return walker.Listing[Node]{}, walker.NewReferenceAccessError(n.String(), "buffer", errUnreadableBuffer)
		}
		return walker.Listing[Node]{Shape: walker.Sequence, Elem: walker.Reference}, nil
	}
	return walker.Listing[Node]{}, errors.Newf("unknown node shape %d", n.shape)
}

// sequence lists the elements of an array or slice value.
func sequence(l *lister, v reflect.Value) walker.Listing[Node] {
	elem := v.Type().Elem()
	if !traversable(elem) {
		return walker.Listing[Node]{Shape: walker.Sequence, Elem: kindOf(elem)}
	}
	for i := 0; i < v.Len(); i++ {
		l.inline(index("", i), v.Index(i))
	}
	return walker.Listing[Node]{Shape: walker.Sequence, Elem: walker.Reference, Refs: l.refs}
}
