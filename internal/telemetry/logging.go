// Package telemetry implements gatesim's ambient observability surface:
// structured logging with a custom trace level (grounded on
// core/util.go's LevelTrace/LevelWaveform pattern), a go-pretty table
// renderer for area/cell-breakdown reports (grounded on
// core/util.go's PrintState register/buffer tables), and an optional
// process-wide Monitor a design.Design can register itself with.
package telemetry

import (
	"context"
	"log/slog"
)

// LevelTrace is a custom slog level for per-cycle simulation detail,
// one step above slog.LevelInfo (so a handler at the default Info level
// emits it), mirroring core/util.go's LevelTrace/LevelWaveform
// declarations.
const LevelTrace slog.Level = slog.LevelInfo + 1

// Trace logs msg at LevelTrace.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}
