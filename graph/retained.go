// ABOUTME: Calculates retained memory sizes by walking the object graph
// ABOUTME: Sizes one root or many roots in parallel with independent walks

package graph

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/prateek/sizeof/walker"
)

// RetainedSize computes the retained size of root: its own size plus the
// size of every distinct object reachable from it, minus shared objects and
// plus the width of every primitive field met along the way. A zero root is
// nil and retains nothing.
func RetainedSize(g Graph, root ObjID, opts Options) (uint64, error) {
	report, err := Walk(g, root, opts)
	return report.Total, err
}

// Walk is RetainedSize returning the full walk report
func Walk(g Graph, root ObjID, opts Options) (walker.Report, error) {
	if root == 0 {
		return walker.Report{}, nil
	}
	report, err := NewWalker(g, opts).Walk(root)
	if err != nil {
		return walker.Report{}, errors.Wrapf(err, "retained size of object %d", root)
	}
	return report, nil
}

// RetainedSizes computes retained sizes for several roots in parallel. Each
// root gets its own walk, so objects reachable from several roots are
// charged to each of them. Zero roots are skipped. The first failure
// cancels the remaining roots.
func RetainedSizes(ctx context.Context, g Graph, roots []ObjID, opts Options) (map[ObjID]uint64, error) {
	result := make(map[ObjID]uint64, len(roots))
	if len(roots) == 0 {
		return result, nil
	}

	w := NewWalker(g, opts)
	var mu sync.Mutex

	eg, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		eg.SetLimit(opts.Workers)
	}
	for _, root := range roots {
		root := root
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if root == 0 {
				return nil
			}
			size, err := w.RetainedSize(root)
			if err != nil {
				return errors.Wrapf(err, "retained size of object %d", root)
			}
			mu.Lock()
			result[root] = size
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
