// ABOUTME: Command-line entry point for sizing object-graph documents
// ABOUTME: Provides the retained, shallow and inspect commands

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"

	"github.com/prateek/sizeof"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	verbosityFlag = &cli.StringFlag{
		Name:  "verbosity",
		Usage: "log level (debug|info|warn|error)",
		Value: "info",
	}

	rootFlag = &cli.Uint64SliceFlag{
		Name:  "root",
		Usage: "object ID to size; defaults to the document roots",
	}
	idFlag = &cli.Uint64Flag{
		Name:     "id",
		Usage:    "object ID",
		Required: true,
	}
	humanFlag = &cli.BoolFlag{
		Name:  "human",
		Usage: "\"Human-readable\" sizes",
	}
	workersFlag = &cli.IntFlag{
		Name:  "workers",
		Usage: "roots sized in parallel (0 means one per root)",
	}
	timeoutFlag = &cli.DurationFlag{
		Name:  "timeout",
		Usage: "stop starting new roots after this long; a root already being sized runs to completion",
	}
	sharedTypesFlag = &cli.StringSliceFlag{
		Name:  "shared-type",
		Usage: "object type treated as a shared instance",
	}
	pathsFlag = &cli.IntFlag{
		Name:  "paths",
		Usage: "number of root paths to show",
		Value: 3,
	}
)

var (
	retainedCommand = &cli.Command{
		Name:      "retained",
		Usage:     "Prints the retained size of objects",
		ArgsUsage: "FILE",
		Action:    retainedAction,
		Flags:     []cli.Flag{rootFlag, humanFlag, workersFlag, timeoutFlag, sharedTypesFlag},
	}
	shallowCommand = &cli.Command{
		Name:      "shallow",
		Usage:     "Prints the shallow size of an object",
		ArgsUsage: "FILE",
		Action:    shallowAction,
		Flags:     []cli.Flag{idFlag, humanFlag},
	}
	inspectCommand = &cli.Command{
		Name:      "inspect",
		Usage:     "Dumps an object, its referrers and its paths to the roots",
		ArgsUsage: "FILE",
		Action:    inspectAction,
		Flags:     []cli.Flag{idFlag, pathsFlag},
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:                 "sizeof",
		Usage:                "retained-size calculator for object-graph documents",
		Version:              sizeof.Version,
		Flags:                []cli.Flag{configFlag, verbosityFlag},
		Commands:             []*cli.Command{retainedCommand, shallowCommand, inspectCommand},
		EnableBashCompletion: true,
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commandContext returns the command's context bounded by the configured
// timeout. RetainedSizes checks it before each root, not during a walk.
func commandContext(ctx *cli.Context, cfg Config) (context.Context, context.CancelFunc, error) {
	parent := ctx.Context
	if parent == nil {
		parent = context.Background()
	}
	timeout, err := cfg.timeout()
	if err != nil {
		return nil, nil, err
	}
	if timeout <= 0 {
		c, cancel := context.WithCancel(parent)
		return c, cancel, nil
	}
	c, cancel := context.WithTimeout(parent, timeout)
	return c, cancel, nil
}

func fileArg(ctx *cli.Context) (string, error) {
	if ctx.NArg() != 1 {
		return "", errors.Newf("%s: expected exactly one FILE argument, got %d", ctx.Command.Name, ctx.NArg())
	}
	return ctx.Args().First(), nil
}
