// ABOUTME: Worklist traversal computing the retained size of a root node
// ABOUTME: Dedupes by identity, skips flyweights and primitive-element sequences

package walker

import (
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emirpasic/gods/stacks/arraystack"
)

// Walker computes retained sizes with the collaborators it is configured
// with. It holds no per-call state, so one Walker may serve many goroutines.
type Walker[N any, K comparable] struct {
	Oracle     Oracle[N]
	Enumerator Enumerator[N, K]
	Classifier Classifier[N] // nil means no flyweights
	Logger     *slog.Logger  // nil means slog.Default()
}

// Report summarises one retained-size computation.
type Report struct {
	Total      uint64 // bytes
	Nodes      int    // distinct identities counted, root included
	Primitives int    // primitive-valued references charged
	Flyweights int    // references skipped as shared instances
	Repeats    int    // references to identities already counted
	Nulls      int    // absent references
	Bulk       int    // primitive-element sequences skipped in bulk
}

// walk is the state owned by a single computation.
type walk[N any, K comparable] struct {
	w       *Walker[N, K]
	visited mapset.Set[K]
	pending *arraystack.Stack
	report  Report
}

// ShallowSize returns the footprint of n alone.
func (w *Walker[N, K]) ShallowSize(n N) (uint64, error) {
	if w.Oracle == nil {
		return 0, ErrUninitializedOracle
	}
	size, err := w.Oracle.ShallowSize(n)
	if err != nil {
		return 0, errors.Wrap(err, "shallow size")
	}
	return size, nil
}

// RetainedSize returns the bytes retained by root: its own shallow size plus
// that of every distinct value reachable from it, minus shared instances.
func (w *Walker[N, K]) RetainedSize(root N) (uint64, error) {
	report, err := w.Walk(root)
	if err != nil {
		return 0, err
	}
	return report.Total, nil
}

// Walk runs the traversal and returns the full report. On error no partial
// total is returned.
func (w *Walker[N, K]) Walk(root N) (Report, error) {
	if w.Oracle == nil {
		return Report{}, ErrUninitializedOracle
	}
	if w.Enumerator == nil {
		return Report{}, ErrUninitializedEnumerator
	}
	start := time.Now()
	s := &walk[N, K]{
		w:       w,
		visited: mapset.NewThreadUnsafeSet[K](),
		pending: arraystack.New(),
	}
	if err := s.admit(root); err != nil {
		return Report{}, err
	}
	for !s.pending.Empty() {
		top, _ := s.pending.Pop()
		if err := s.drain(top.(N)); err != nil {
			return Report{}, err
		}
	}
	w.logger().Debug("Computed retained size", "bytes", s.report.Total,
		"nodes", s.report.Nodes, "flyweights", s.report.Flyweights,
		"repeats", s.report.Repeats, "elapsed", time.Since(start))
	return s.report, nil
}

// admit charges n, marks it visited and queues it. Callers have already
// checked that n is unseen and not shared.
func (s *walk[N, K]) admit(n N) error {
	size, err := s.w.Oracle.ShallowSize(n)
	if err != nil {
		return errors.Wrap(err, "shallow size")
	}
	s.visited.Add(s.w.Enumerator.Identity(n))
	s.report.Total += size
	s.report.Nodes++
	s.pending.Push(n)
	return nil
}

// drain enumerates one node and admits its fresh references.
func (s *walk[N, K]) drain(n N) error {
	listing, err := s.w.Enumerator.Enumerate(n)
	if err != nil {
		return errors.Wrap(err, "enumerating references")
	}
	if listing.Shape == Sequence && listing.Elem.IsPrimitive() {
		s.report.Bulk++
		return nil
	}
	for _, ref := range listing.Refs {
		if ref.Kind != Reference {
			width, err := WidthOf(ref.Kind)
			if err != nil {
				return errors.Wrapf(err, "reference %q", ref.Name)
			}
			s.report.Total += width
			s.report.Primitives++
			continue
		}
		if ref.Nil {
			s.report.Nulls++
			continue
		}
		if s.visited.Contains(s.w.Enumerator.Identity(ref.Value)) {
			s.report.Repeats++
			continue
		}
		if s.w.Classifier != nil && s.w.Classifier.Shared(ref.Value) {
			s.report.Flyweights++
			continue
		}
		if err := s.admit(ref.Value); err != nil {
			return errors.Wrapf(err, "reference %q", ref.Name)
		}
	}
	return nil
}

func (w *Walker[N, K]) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}
