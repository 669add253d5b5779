// Package session runs Go source against a persistent interpreter whose
// namespace is seeded with an authenticated DSS client and the helper
// packages.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/scanner"
	"io"
	"log/slog"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/JedIV/dataiku-chat-control/internal/config"
	"github.com/JedIV/dataiku-chat-control/internal/dss"
	"github.com/JedIV/dataiku-chat-control/internal/observability"
	"github.com/JedIV/dataiku-chat-control/internal/templates"
)

// Error kinds reported in a failed Result.
const (
	KindPanic       = "panic"
	KindSyntax      = "SyntaxError"
	KindInterrupted = "Interrupted"
	KindEval        = "EvalError"
	KindClient      = "ClientError"
)

// NoOutput is returned for a successful call that printed nothing.
const NoOutput = "(executed successfully, no output)"

// ClientFactory builds the DSS client on first use.
type ClientFactory func(ctx context.Context) (*dss.Client, error)

// Config configures a Session.
type Config struct {
	// URL and APIKey are checked before every call; either one empty
	// refuses execution.
	URL    string
	APIKey string
	// NewClient is called lazily, at most once successfully.
	NewClient ClientFactory
	// Messages renders the diagnostic and placeholder texts.
	Messages templates.Renderer
	// Logger receives execution logs.
	Logger *slog.Logger
	// BaseContext is what ctx holds before the first call, and what
	// dataiku.Context returns outside a call.
	BaseContext context.Context
}

// ExecError describes a failed call.
type ExecError struct {
	Kind    string
	Message string
	Trace   string
}

func (e *ExecError) Error() string {
	return e.Kind + ": " + e.Message
}

// Result is the outcome of one call.
type Result struct {
	// Output is everything the code printed, or the placeholder or the
	// credentials diagnostic.
	Output string
	// Err is set when the code failed.
	Err *ExecError
	// Unconfigured is set when the call was refused for missing credentials.
	Unconfigured bool
}

// String renders the text returned to the caller.
func (r Result) String() string {
	if r.Err == nil {
		return r.Output
	}
	return r.Output + "\nError: " + r.Err.Kind + ": " + r.Err.Message + "\n\n" + r.Err.Trace
}

// Session owns one interpreter and, once acquired, one client.
// Calls are serialized; all callers share the namespace.
type Session struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	interp *interp.Interpreter
	out    *switchWriter
	calls  *callContexts
	client *dss.Client
	bound  bool
}

// New creates the interpreter and imports the helper packages into it.
func New(cfg Config) (*Session, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	base := cfg.BaseContext
	if base == nil {
		base = context.Background()
	}

	s := &Session{
		cfg:    cfg,
		logger: logger,
		out:    newSwitchWriter(io.Discard),
		calls:  &callContexts{base: base},
	}

	i := interp.New(interp.Options{Stdout: s.out, Stderr: s.out})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("load stdlib symbols: %w", err)
	}
	if err := i.Use(s.symbols()); err != nil {
		return nil, fmt.Errorf("load helper symbols: %w", err)
	}
	// Imports and statements cannot share one evaluation.
	if _, err := i.Eval(bootstrapImports); err != nil {
		return nil, fmt.Errorf("bootstrap imports: %w", err)
	}
	if _, err := i.Eval("ctx := dataiku.Context()"); err != nil {
		return nil, fmt.Errorf("bootstrap ctx: %w", err)
	}
	s.interp = i
	return s, nil
}

const bootstrapImports = `
import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"dataiku"
	"dataiku/datasets"
	"dataiku/dss"
	"dataiku/export"
	"dataiku/inspection"
	"dataiku/jobs"
	"dataiku/search"
	"dataiku/wait"
)
`

// Missing returns the names of unset credential variables.
func (s *Session) Missing() []string {
	var missing []string
	if strings.TrimSpace(s.cfg.URL) == "" {
		missing = append(missing, config.EnvURL)
	}
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		missing = append(missing, config.EnvAPIKey)
	}
	return missing
}

// Execute runs code and returns the text result.
func (s *Session) Execute(ctx context.Context, code string) string {
	return s.Run(ctx, code).String()
}

// Run runs code in the shared namespace. Failures are reported in the
// Result and never returned as errors.
func (s *Session) Run(ctx context.Context, code string) Result {
	if missing := s.Missing(); len(missing) > 0 {
		msg := templates.RenderOr(s.cfg.Messages, templates.KeyCredentialsMissing,
			map[string]any{"Missing": missing}, "ERROR: Dataiku credentials not configured. Missing: "+strings.Join(missing, ", "))
		return Result{Output: msg, Unconfigured: true}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() {
		observability.ExecuteDuration.Observe(time.Since(start).Seconds())
	}()

	if err := s.ensureClient(ctx); err != nil {
		s.logger.Warn("client acquisition failed", "error", err)
		return Result{Err: &ExecError{Kind: KindClient, Message: err.Error()}}
	}

	output, execErr := s.eval(ctx, code)
	if execErr != nil {
		s.logger.Info("execution failed", "kind", execErr.Kind, "duration", time.Since(start))
		return Result{Output: output, Err: execErr}
	}
	s.logger.Debug("execution finished", "duration", time.Since(start), "output_bytes", len(output))
	if output == "" {
		output = templates.RenderOr(s.cfg.Messages, templates.KeyNoOutput, nil, NoOutput)
	}
	return Result{Output: output}
}

// ensureClient acquires the client on first use and binds it to the
// client variable. A failed acquisition is retried on the next call.
func (s *Session) ensureClient(ctx context.Context) error {
	if s.client == nil {
		if s.cfg.NewClient == nil {
			return errors.New("no client factory configured")
		}
		c, err := s.cfg.NewClient(ctx)
		if err != nil {
			return err
		}
		if c == nil {
			return errors.New("client factory returned nil client")
		}
		s.client = c
		s.logger.Info("dss client acquired", "url", c.URL())
	}
	if !s.bound {
		if _, err := s.interp.Eval("client := dataiku.Client()"); err != nil {
			return fmt.Errorf("bind client: %w", err)
		}
		s.bound = true
	}
	return nil
}

// eval runs code with output captured into a fresh buffer. Evaluation is
// synchronous: a cancelled ctx ends the call only once the interpreted code
// has returned, so nothing from this call writes into the next call's
// output or runs alongside it.
func (s *Session) eval(ctx context.Context, code string) (output string, execErr *ExecError) {
	var buf bytes.Buffer
	prev := s.out.Swap(&buf)
	s.calls.set(ctx)
	defer func() {
		s.calls.set(nil)
		s.out.Swap(prev)
		output = buf.String()
	}()

	// A snippet may have shadowed ctx with something else; keep going.
	if _, err := s.interp.Eval(rebindContext); err != nil {
		s.logger.Debug("ctx not rebound", "error", err)
	}

	decls, stmts := splitSource(code)
	err := s.run(ctx, decls, stmts)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", &ExecError{Kind: KindInterrupted, Message: ctxErr.Error()}
	}
	if err != nil {
		return "", classify(err)
	}
	return "", nil
}

const rebindContext = "ctx = dataiku.Context()"

// run evaluates the declarations then the statements of one snippet.
func (s *Session) run(ctx context.Context, decls, stmts string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			var pc [64]uintptr
			n := runtime.Callers(1, pc[:])
			err = interp.Panic{Value: r, Callers: pc[:n], Stack: debug.Stack()}
		}
	}()
	for _, src := range []string{decls, stmts} {
		if strings.TrimSpace(src) == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.interp.Eval(src); err != nil {
			return err
		}
	}
	return nil
}

func classify(err error) *ExecError {
	var p interp.Panic
	if errors.As(err, &p) {
		msg := fmt.Sprint(p.Value)
		if e, ok := p.Value.(error); ok {
			msg = e.Error()
		}
		return &ExecError{Kind: KindPanic, Message: msg, Trace: string(p.Stack)}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &ExecError{Kind: KindInterrupted, Message: err.Error()}
	}
	var list scanner.ErrorList
	if errors.As(err, &list) {
		return &ExecError{Kind: KindSyntax, Message: list.Error(), Trace: joinErrors(list)}
	}
	var single *scanner.Error
	if errors.As(err, &single) {
		return &ExecError{Kind: KindSyntax, Message: single.Error()}
	}
	return &ExecError{Kind: KindEval, Message: err.Error()}
}

func joinErrors(list scanner.ErrorList) string {
	lines := make([]string, len(list))
	for i, e := range list {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// Client returns the acquired client, or nil before the first call.
func (s *Session) Client() *dss.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}
