package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/JedIV/dataiku-chat-control/internal/audit"
	"github.com/JedIV/dataiku-chat-control/internal/constants"
	"github.com/JedIV/dataiku-chat-control/internal/dsl"
	"github.com/JedIV/dataiku-chat-control/internal/helpers"
	"github.com/JedIV/dataiku-chat-control/internal/observability"
	"github.com/JedIV/dataiku-chat-control/internal/protocol"
	"github.com/JedIV/dataiku-chat-control/internal/security"
	"github.com/JedIV/dataiku-chat-control/internal/session"
	"github.com/JedIV/dataiku-chat-control/internal/templates"
	"github.com/JedIV/dataiku-chat-control/internal/timeutil"
)

// Executor runs code for the execute tool.
type Executor interface {
	// Run executes code in the shared namespace.
	Run(ctx context.Context, code string) session.Result
	// Missing lists unset credential variables.
	Missing() []string
}

// Builder constructs an MCP server around an execution session.
type Builder struct {
	// Logger is used for structured logging.
	Logger *slog.Logger
	// Audit records tool events.
	Audit audit.Logger
	// Session executes code for execute_go.
	Session Executor
	// Messages provides the server instructions.
	Messages templates.Renderer
	// URL is the DSS instance shown in the instructions.
	URL string
}

// ExecuteInput is the execute_go argument set.
type ExecuteInput struct {
	Code          string `json:"code" jsonschema:"Go statements to run. Variables, functions and imports persist between calls."`
	CorrelationID string `json:"correlation_id,omitempty" jsonschema:"Optional identifier echoed in logs and the structured result."`
}

// ListHelpersInput is the (empty) list_helpers argument set.
type ListHelpersInput struct{}

// Build creates an MCP server with the execute and catalog tools and the
// configured resources.
func (b Builder) Build(cfg *dsl.Config) (*mcp.Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if b.Session == nil {
		return nil, fmt.Errorf("session is nil")
	}
	executeTimeout, err := timeutil.ParseNonNegative(cfg.Server.ExecuteTimeout)
	if err != nil {
		return nil, fmt.Errorf("server.execute_timeout: %w", err)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Server.Name,
		Version: cfg.Server.Version,
	}, &mcp.ServerOptions{
		Instructions: b.Instructions(),
	})

	catalog := helpers.Catalog()
	addTextResource(server, &mcp.Resource{
		Name:        "dataiku-helpers",
		URI:         constants.HelpersResourceURI,
		Description: "Signatures of the helper packages available to " + constants.ToolExecute,
		MIMEType:    "text/plain",
	}, catalog)
	for _, res := range cfg.Resources {
		addTextResource(server, &mcp.Resource{
			Name:        res.Name,
			URI:         res.URI,
			Description: res.Description,
			MIMEType:    res.MIMEType,
		}, res.Text)
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:  constants.ToolExecute,
		Title: "Execute Go against Dataiku",
		Description: "Run Go code with a pre-configured Dataiku client. The namespace persists " +
			"between calls; print results with fmt.Println. Returns the printed output, or the " +
			"output followed by the error kind, message and trace.",
		Annotations: &mcp.ToolAnnotations{OpenWorldHint: ptr(true)},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ExecuteInput) (*mcp.CallToolResult, protocol.ExecuteResponse, error) {
		return b.execute(ctx, input, executeTimeout)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        constants.ToolListHelpers,
		Title:       "List Dataiku helpers",
		Description: "List the helper packages and function signatures available to " + constants.ToolExecute + ".",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ ListHelpersInput) (*mcp.CallToolResult, any, error) {
		observability.ToolCallsTotal.WithLabelValues(constants.ToolListHelpers, protocol.StatusSuccess).Inc()
		return textResult(catalog), nil, nil
	})

	return server, nil
}

// Instructions renders the server instructions for the current credentials.
func (b Builder) Instructions() string {
	if b.Session != nil && len(b.Session.Missing()) > 0 {
		return templates.RenderOr(b.Messages, templates.KeyInstructionsMissing, nil,
			"Dataiku credentials not configured: set DATAIKU_URL and DATAIKU_API_KEY.")
	}
	return templates.RenderOr(b.Messages, templates.KeyInstructionsConfigured, map[string]any{
		"ExecuteTool": constants.ToolExecute,
		"ListTool":    constants.ToolListHelpers,
		"URL":         b.URL,
	}, "Use "+constants.ToolExecute+" to run Go code against Dataiku.")
}

func (b Builder) execute(ctx context.Context, input ExecuteInput, timeout time.Duration) (*mcp.CallToolResult, protocol.ExecuteResponse, error) {
	correlationID := strings.TrimSpace(input.CorrelationID)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	tool := constants.ToolExecute

	if b.Logger != nil {
		b.Logger.Info("tool call", "tool", tool, "correlation_id", correlationID,
			"args", security.RedactArguments(map[string]any{"code_bytes": len(input.Code), "correlation_id": input.CorrelationID}))
	}
	if b.Audit != nil {
		b.Audit.Record(ctx, audit.Event{Type: audit.EventToolStart, Tool: tool, CorrelationID: correlationID})
	}

	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	result := b.Session.Run(runCtx, input.Code)
	elapsed := time.Since(start)

	resp := protocol.ExecuteResponse{Status: protocol.StatusSuccess, CorrelationID: correlationID}
	reason := ""
	switch {
	case result.Unconfigured:
		resp.Status = protocol.StatusUnconfigured
		reason = strings.Join(b.Session.Missing(), ", ")
	case result.Err != nil:
		resp.Status = protocol.StatusError
		resp.ErrorKind = result.Err.Kind
		reason = result.Err.Error()
	}

	observability.ToolCallsTotal.WithLabelValues(tool, resp.Status).Inc()
	if b.Audit != nil {
		b.Audit.Record(ctx, audit.Event{
			Type:          audit.EventToolFinish,
			Tool:          tool,
			CorrelationID: correlationID,
			Status:        resp.Status,
			Duration:      elapsed,
			Reason:        reason,
		})
	}
	return textResult(result.String()), resp, nil
}

func addTextResource(server *mcp.Server, res *mcp.Resource, text string) {
	server.AddResource(res, func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{URI: res.URI, MIMEType: res.MIMEType, Text: text},
			},
		}, nil
	})
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func ptr[T any](v T) *T {
	return &v
}
