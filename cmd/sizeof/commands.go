// ABOUTME: Actions behind the sizeof subcommands
// ABOUTME: Each action loads a document and prints sizes or an object report

package main

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli/v2"

	"github.com/prateek/sizeof/graph"
	"github.com/prateek/sizeof/heapdump"
)

// load reads settings, installs the logger and opens the document
func load(ctx *cli.Context) (Config, graph.Graph, error) {
	cfg, err := settings(ctx)
	if err != nil {
		return Config{}, nil, err
	}
	logger := setupLogger(cfg.Verbosity)

	path, err := fileArg(ctx)
	if err != nil {
		return Config{}, nil, err
	}
	start := time.Now()
	g, err := heapdump.OpenFile(path)
	if err != nil {
		return Config{}, nil, err
	}
	logger.Info("Loaded dump", "file", path, "objects", g.NumObjects(),
		"roots", len(g.GetRoots().IDs), "elapsed", time.Since(start))
	return cfg, g, nil
}

func retainedAction(ctx *cli.Context) error {
	cfg, g, err := load(ctx)
	if err != nil {
		return err
	}

	roots := g.GetRoots().IDs
	if ctx.IsSet(rootFlag.Name) {
		roots = nil
		for _, id := range ctx.Uint64Slice(rootFlag.Name) {
			roots = append(roots, graph.ObjID(id))
		}
	}
	if len(roots) == 0 {
		return errors.New("no roots to size: the document names none and no --root was given")
	}

	c, cancel, err := commandContext(ctx, cfg)
	if err != nil {
		return err
	}
	defer cancel()

	sizes, err := graph.RetainedSizes(c, g, roots, graph.Options{
		SharedTypes: cfg.SharedTypes,
		Workers:     cfg.Workers,
	})
	if err != nil {
		return err
	}

	w := ctx.App.Writer
	for _, id := range roots {
		size, ok := sizes[id]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", id, typeOf(g, id), formatSize(size, cfg.Human))
	}
	return nil
}

func shallowAction(ctx *cli.Context) error {
	cfg, g, err := load(ctx)
	if err != nil {
		return err
	}
	w := graph.NewWalker(g, graph.Options{})
	size, err := w.ShallowSize(graph.ObjID(ctx.Uint64(idFlag.Name)))
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, formatSize(size, cfg.Human))
	return nil
}

func inspectAction(ctx *cli.Context) error {
	_, g, err := load(ctx)
	if err != nil {
		return err
	}
	id := graph.ObjID(ctx.Uint64(idFlag.Name))
	obj, err := graph.Lookup(g, id)
	if err != nil {
		return err
	}

	w := ctx.App.Writer
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
	cfg.Fdump(w, obj)

	fmt.Fprintln(w, "referrers:")
	for _, ref := range graph.BuildReverseEdges(g)[id] {
		fmt.Fprintf(w, "  %d.%s (%s)\n", ref.From, ref.Field, typeOf(g, ref.From))
	}

	fmt.Fprintln(w, "paths to roots:")
	for _, p := range graph.PathsToRoots(g, id, ctx.Int(pathsFlag.Name)) {
		fmt.Fprintf(w, "  %s\n", formatPath(p))
	}
	return nil
}

func typeOf(g graph.Graph, id graph.ObjID) string {
	if obj := g.GetObject(id); obj != nil {
		return obj.Type
	}
	return "?"
}

// formatPath renders a path root first, e.g. "1.next -> 2.items -> 3"
func formatPath(p graph.Path) string {
	s := fmt.Sprint(p.IDs[len(p.IDs)-1])
	for i := len(p.IDs) - 2; i >= 0; i-- {
		s += "." + p.Fields[i] + " -> " + fmt.Sprint(p.IDs[i])
	}
	return s
}
