// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
)

const (
	FormatTerminal = "terminal"
	FormatJSON     = "json"
	FormatLogfmt   = "logfmt"
)

// Levels re-exported so callers don't need to import go-ethereum.
const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// LevelFromVerbosity maps the legacy 0..5 verbosity (crit..trace) onto slog levels.
func LevelFromVerbosity(verbosity int) slog.Level {
	return ethlog.FromLegacyLevel(verbosity)
}

// NewHandler creates a handler of the given format writing to w.
// The level is read on every record, so a *slog.LevelVar can change it later.
func NewHandler(w io.Writer, format string, level slog.Leveler, useColor bool) (slog.Handler, error) {
	var h slog.Handler
	switch format {
	case "", FormatTerminal:
		h = ethlog.NewTerminalHandlerWithLevel(w, LevelTrace, useColor)
	case FormatJSON:
		h = ethlog.JSONHandlerWithLevel(w, LevelTrace)
	case FormatLogfmt:
		h = ethlog.LogfmtHandlerWithLevel(w, LevelTrace)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return &levelHandler{h, level}, nil
}

// levelHandler drops records below the current level of a leveler.
type levelHandler struct {
	inner slog.Handler
	level slog.Leveler
}

func (h *levelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level() && h.inner.Enabled(ctx, level)
}

func (h *levelHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level < h.level.Level() {
		return nil
	}
	return h.inner.Handle(ctx, r)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{h.inner.WithAttrs(attrs), h.level}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{h.inner.WithGroup(name), h.level}
}

// NewStdoutHandler creates a handler on stdout, coloured when stdout is a terminal.
// Passing a *slog.LevelVar allows the level to change at run time.
func NewStdoutHandler(format string, level slog.Leveler) (slog.Handler, error) {
	useColor := (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())) &&
		os.Getenv("TERM") != "dumb"
	return NewHandler(os.Stdout, format, level, useColor)
}

// DiscardHandler drops every record.
func DiscardHandler() slog.Handler {
	return ethlog.DiscardHandler()
}
