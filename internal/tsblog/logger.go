/*
 * TSBTAPE - Wrapper for slog, plus per-tape-file verbosity gating.
 *
 * Copyright 2025, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package tsblog wraps log/slog the way the teacher's util/logger package
// does: a custom Handler that mirrors warnings and errors to stderr and
// optionally tees everything to a log file, gated by a debug flag.
package tsblog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Handler is a slog.Handler that writes formatted lines to an optional
// file and mirrors Warn/Error (or everything, in debug mode) to stderr.
type Handler struct {
	out   io.Writer
	h     slog.Handler
	mu    *sync.Mutex
	debug bool
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{out: h.out, h: h.h.WithAttrs(attrs), mu: h.mu, debug: h.debug}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{out: h.out, h: h.h.WithGroup(name), mu: h.mu, debug: h.debug}
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	level := r.Level.String() + ":"
	formattedTime := r.Time.Format("2006/01/02 15:04:05")

	strs := []string{formattedTime, level, r.Message}
	r.Attrs(func(a slog.Attr) bool {
		strs = append(strs, a.Value.String())
		return true
	})
	line := strings.Join(strs, " ") + "\n"
	b := []byte(line)

	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	if h.out != nil {
		_, err = h.out.Write(b)
	}
	if h.debug || r.Level >= slog.LevelWarn {
		_, err = os.Stderr.Write(b)
	}
	return err
}

// NewHandler builds a Handler writing to file (may be nil) with the given
// options, mirroring Warn/Error to stderr unconditionally and everything
// when debug is set.
func NewHandler(file io.Writer, opts *slog.HandlerOptions, debug bool) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &Handler{
		out:   file,
		h:     slog.NewTextHandler(file, opts),
		mu:    &sync.Mutex{},
		debug: debug,
	}
}

// FileCounter tracks how many errors have been reported for the tape file
// currently being processed, implementing spec.md §7's verbosity policy:
// level 1 prints the first error per file, level 2 prints every error.
type FileCounter struct {
	logger  *slog.Logger
	verbose int
	errors  int
}

// NewFileCounter constructs a FileCounter bound to logger at the given
// verbosity level.
func NewFileCounter(logger *slog.Logger, verbose int) *FileCounter {
	return &FileCounter{logger: logger, verbose: verbose}
}

// Reset is called at the start of each tape file.
func (f *FileCounter) Reset() { f.errors = 0 }

// ReportError logs err according to the current verbosity: always logged
// at verbose>=2, only the first per file at verbose==1, never below that
// (the caller still sees the error returned from the operation).
func (f *FileCounter) ReportError(fileName string, err error) {
	f.errors++
	switch {
	case f.verbose >= 2:
		f.logger.Warn(err.Error(), "file", fileName, "n", f.errors)
	case f.verbose == 1 && f.errors == 1:
		f.logger.Warn(err.Error(), "file", fileName)
	}
}
