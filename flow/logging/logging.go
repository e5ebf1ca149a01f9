// Package logging provides the per-action file logger described by the
// persisted state layout: <log-root>/<job-id>/<action>.log. It is built on
// log/slog initialized through github.com/rakunlabs/logi, the same pairing
// rakunlabs-at uses (cmd/at/main.go calls logi.InitializeLog; the workflow
// scheduler then derives per-run loggers with logi.WithContext/logi.Ctx).
package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/rakunlabs/logi"
)

// disableEnv mirrors spec's ACTION_LOG_DISABLE=true|false switch.
const disableEnv = "ACTION_LOG_DISABLE"

// levelEnv is this engine's FLOW_LOG tracing filter, the Go-idiomatic
// rename of the original's RUST_LOG-equivalent knob (SPEC_FULL.md §6.3).
const levelEnv = "FLOW_LOG"

// ApplyLevelFromEnv sets the process-wide log level from FLOW_LOG (e.g.
// "debug", "info", "warn", "error") via logi.SetLogLevel, the same setter
// rakunlabs-at's config loader uses (internal/config/config.go). A missing
// or invalid value leaves the default level untouched.
func ApplyLevelFromEnv() {
	level := os.Getenv(levelEnv)
	if level == "" {
		return
	}
	_ = logi.SetLogLevel(level)
}

// Root owns the base handler (stdout, via logi) and hands out per-action
// file loggers scoped under <logRoot>/<jobID>/<action>.log.
type Root struct {
	logRoot string
	base    *slog.Logger
	enabled bool

	mu    sync.Mutex
	files map[string]*os.File
}

// NewRoot initializes the process-wide slog handler via logi and returns a
// Root that can mint per-action file loggers under logRoot.
func NewRoot(logRoot string) *Root {
	handler := logi.InitializeLog(logi.WithCaller(false))
	enabled := os.Getenv(disableEnv) != "true"
	return &Root{
		logRoot: logRoot,
		base:    slog.New(handler),
		enabled: enabled,
		files:   make(map[string]*os.File),
	}
}

// Base returns the process-wide logger, used for run-level (not per-action)
// messages such as schema validation failures before any node has started.
func (r *Root) Base() *slog.Logger { return r.base }

// ActionLogger returns a logger that writes to
// <logRoot>/<jobID>/<action>.log in addition to the process handler, or the
// base logger alone when ACTION_LOG_DISABLE=true or logRoot is empty (the
// ram://-only / no-persisted-state configuration).
func (r *Root) ActionLogger(jobID, action string) (*slog.Logger, error) {
	base := r.base.With("job_id", jobID, "action", action)
	if !r.enabled || r.logRoot == "" {
		return base, nil
	}

	dir := filepath.Join(r.logRoot, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, action+".log")

	r.mu.Lock()
	f, ok := r.files[path]
	if !ok {
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			r.mu.Unlock()
			return nil, err
		}
		r.files[path] = f
	}
	r.mu.Unlock()

	fileHandler := slog.NewJSONHandler(f, nil)
	return slog.New(teeHandler{a: r.base.Handler(), b: fileHandler}).With("job_id", jobID, "action", action), nil
}

// Close releases every per-action file handle opened by ActionLogger.
func (r *Root) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for path, f := range r.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.files, path)
	}
	return firstErr
}

// teeHandler fans a single slog record out to two handlers: the process-wide
// console handler and a per-action file handler.
type teeHandler struct {
	a, b slog.Handler
}

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return t.a.Enabled(ctx, level) || t.b.Enabled(ctx, level)
}

func (t teeHandler) Handle(ctx context.Context, record slog.Record) error {
	if t.a.Enabled(ctx, record.Level) {
		if err := t.a.Handle(ctx, record.Clone()); err != nil {
			return err
		}
	}
	if t.b.Enabled(ctx, record.Level) {
		if err := t.b.Handle(ctx, record.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return teeHandler{a: t.a.WithAttrs(attrs), b: t.b.WithAttrs(attrs)}
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	return teeHandler{a: t.a.WithGroup(name), b: t.b.WithGroup(name)}
}
