// ABOUTME: Terminal logging setup for the sizeof command
// ABOUTME: Installs a slog text handler on stderr, coloured by level on terminals

package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// levelColor returns the colour records at lvl are printed in
func levelColor(lvl slog.Level) *color.Color {
	var c *color.Color
	switch {
	case lvl >= slog.LevelError:
		c = color.New(color.FgRed)
	case lvl >= slog.LevelWarn:
		c = color.New(color.FgYellow)
	case lvl >= slog.LevelInfo:
		c = color.New(color.FgGreen)
	default:
		c = color.New(color.FgCyan)
	}
	// The caller has already decided the output is a terminal.
	c.EnableColor()
	return c
}

// colorSink is shared by a colorHandler and every handler derived from it
type colorSink struct {
	mu  sync.Mutex
	buf bytes.Buffer
	w   io.Writer
}

// colorHandler formats records with a text handler and prints each one in
// the colour of its level
type colorHandler struct {
	inner slog.Handler
	sink  *colorSink
}

func newColorHandler(w io.Writer, opts *slog.HandlerOptions) *colorHandler {
	sink := &colorSink{w: w}
	return &colorHandler{inner: slog.NewTextHandler(&sink.buf, opts), sink: sink}
}

func (h *colorHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.inner.Enabled(ctx, lvl)
}

func (h *colorHandler) Handle(ctx context.Context, r slog.Record) error {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()

	h.sink.buf.Reset()
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	line := strings.TrimSuffix(h.sink.buf.String(), "\n")
	_, err := io.WriteString(h.sink.w, levelColor(r.Level).Sprint(line)+"\n")
	return err
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &colorHandler{inner: h.inner.WithAttrs(attrs), sink: h.sink}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	return &colorHandler{inner: h.inner.WithGroup(name), sink: h.sink}
}

// parseLevel maps a verbosity name to a level, defaulting to info
func parseLevel(verbosity string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(verbosity))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// newLogger builds a text logger writing to w
func newLogger(w io.Writer, verbosity string, usecolor bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(verbosity)}
	if usecolor {
		return slog.New(newColorHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// setupLogger installs the default logger on stderr
func setupLogger(verbosity string) *slog.Logger {
	output := io.Writer(os.Stderr)
	usecolor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	if usecolor {
		output = colorable.NewColorableStderr()
	}
	logger := newLogger(output, verbosity, usecolor)
	slog.SetDefault(logger)
	return logger
}
