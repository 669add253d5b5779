// Package wait polls remote DSS operations until they reach a terminal state
// or a timeout elapses.
package wait

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JedIV/dataiku-chat-control/internal/observability"
)

// Kind names the type of remote operation being waited on.
type Kind string

// Operation kinds.
const (
	KindJob      Kind = "job"
	KindScenario Kind = "scenario"
	KindRecipe   Kind = "recipe"
	KindFuture   Kind = "future"
)

// Label returns the capitalized kind used in timeout messages.
func (k Kind) Label() string {
	switch k {
	case KindJob:
		return "Job"
	case KindScenario:
		return "Scenario"
	case KindRecipe:
		return "Recipe"
	case KindFuture:
		return "Future"
	case "":
		return "Operation"
	}
	return string(k)
}

// Status values reported in a Result.
const (
	StatusRunning = "RUNNING"
	StatusDone    = "DONE"
	StatusFailed  = "FAILED"
	StatusAborted = "ABORTED"
	StatusTimeout = "TIMEOUT"
	StatusUnknown = "UNKNOWN"
)

// ErrInvalidOptions is returned for negative timeouts or poll intervals.
var ErrInvalidOptions = errors.New("wait: invalid options")

// Handle is anything whose current status can be queried.
type Handle interface {
	Status(ctx context.Context) (map[string]any, error)
}

// HandleFunc adapts a function to Handle.
type HandleFunc func(ctx context.Context) (map[string]any, error)

// Status calls f.
func (f HandleFunc) Status(ctx context.Context) (map[string]any, error) {
	return f(ctx)
}

// Result is the outcome of a wait. JSON names match what callers print.
type Result struct {
	Success  bool    `json:"success"`
	Status   string  `json:"status"`
	Duration float64 `json:"duration"`
	Outcome  string  `json:"outcome,omitempty"`
	Details  any     `json:"details"`
}

// Defaults holds the timeout and poll interval used when Options leave them zero.
type Defaults struct {
	Timeout      time.Duration
	PollInterval time.Duration
}

// Options controls one wait.
type Options struct {
	Kind Kind
	// Timeout bounds the total wait; zero uses the kind default.
	Timeout time.Duration
	// PollInterval is the pause between status queries; zero uses the kind default.
	PollInterval time.Duration
	// Predicate overrides the kind predicate.
	Predicate Predicate
}

// Waiter runs polling loops. The zero value is not usable; use New.
type Waiter struct {
	defaults map[Kind]Defaults
	logger   *slog.Logger
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// BuiltinDefaults returns the per-kind timeouts used when nothing is configured.
func BuiltinDefaults() map[Kind]Defaults {
	return map[Kind]Defaults{
		KindJob:      {Timeout: 600 * time.Second, PollInterval: 2 * time.Second},
		KindScenario: {Timeout: 600 * time.Second, PollInterval: 2 * time.Second},
		KindRecipe:   {Timeout: 600 * time.Second, PollInterval: 2 * time.Second},
		KindFuture:   {Timeout: 300 * time.Second, PollInterval: time.Second},
	}
}

// New returns a Waiter. Entries in overrides replace the built-in defaults
// field by field; zero fields keep the built-in value.
func New(logger *slog.Logger, overrides map[Kind]Defaults) *Waiter {
	defaults := BuiltinDefaults()
	for kind, d := range overrides {
		base := defaults[kind]
		if d.Timeout > 0 {
			base.Timeout = d.Timeout
		}
		if d.PollInterval > 0 {
			base.PollInterval = d.PollInterval
		}
		defaults[kind] = base
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Waiter{
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Defaults returns the effective defaults for kind.
func (w *Waiter) Defaults(kind Kind) Defaults {
	if d, ok := w.defaults[kind]; ok {
		return d
	}
	return w.defaults[KindJob]
}

// Wait polls handle until the predicate reports a terminal state or the
// timeout elapses. A timeout is a Result, not an error; the remote
// operation keeps running. Status query errors are returned as errors.
func (w *Waiter) Wait(ctx context.Context, handle Handle, opts Options) (Result, error) {
	if handle == nil {
		return Result{}, fmt.Errorf("%w: nil handle", ErrInvalidOptions)
	}
	if opts.Timeout < 0 || opts.PollInterval < 0 {
		return Result{}, fmt.Errorf("%w: timeout %s, poll interval %s", ErrInvalidOptions, opts.Timeout, opts.PollInterval)
	}

	defaults := w.Defaults(opts.Kind)
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaults.Timeout
	}
	interval := opts.PollInterval
	if interval == 0 {
		interval = defaults.PollInterval
	}
	predicate := opts.Predicate
	if predicate == nil {
		predicate = PredicateFor(opts.Kind)
	}

	start := w.now()
	polls := 0
	for {
		elapsed := w.now().Sub(start)
		if elapsed >= timeout {
			res := Result{
				Success:  false,
				Status:   StatusTimeout,
				Duration: elapsed.Seconds(),
				Details:  timeoutMessage(opts.Kind, timeout),
			}
			w.finish(opts.Kind, res, elapsed, polls)
			return res, nil
		}

		raw, err := handle.Status(ctx)
		polls++
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{}, ctxErr
			}
			return Result{}, fmt.Errorf("query %s status: %w", opts.Kind, err)
		}

		report := predicate(raw)
		w.logger.Debug("wait poll", "kind", opts.Kind, "state", report.State, "terminal", report.Terminal, "elapsed", elapsed)
		if report.Terminal {
			res := Result{
				Success:  report.Success,
				Status:   report.State,
				Duration: elapsed.Seconds(),
				Outcome:  report.Outcome,
				Details:  raw,
			}
			w.finish(opts.Kind, res, elapsed, polls)
			return res, nil
		}

		if err := w.sleep(ctx, interval); err != nil {
			return Result{}, err
		}
	}
}

func (w *Waiter) finish(kind Kind, res Result, elapsed time.Duration, polls int) {
	observability.ObserveWait(string(kind), res.Status, elapsed)
	w.logger.Info("wait finished", "kind", kind, "status", res.Status, "success", res.Success, "duration", elapsed, "polls", polls)
}

func timeoutMessage(kind Kind, timeout time.Duration) string {
	return fmt.Sprintf("%s did not complete within %s seconds", kind.Label(), formatSeconds(timeout))
}

func formatSeconds(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%d", int64(d/time.Second))
	}
	return fmt.Sprintf("%g", d.Seconds())
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var (
	defaultMu     sync.RWMutex
	defaultWaiter = New(nil, nil)
)

// Default returns the process-wide waiter used by the package-level Wait.
func Default() *Waiter {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultWaiter
}

// SetDefault replaces the process-wide waiter.
func SetDefault(w *Waiter) {
	if w == nil {
		return
	}
	defaultMu.Lock()
	defaultWaiter = w
	defaultMu.Unlock()
}

// Wait runs Default().Wait.
func Wait(ctx context.Context, handle Handle, opts Options) (Result, error) {
	return Default().Wait(ctx, handle, opts)
}
