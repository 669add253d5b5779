package cli

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/JedIV/dataiku-chat-control/internal/app"
	"github.com/JedIV/dataiku-chat-control/internal/audit"
	"github.com/JedIV/dataiku-chat-control/internal/constants"
	"github.com/JedIV/dataiku-chat-control/internal/http/health"
	"github.com/JedIV/dataiku-chat-control/internal/runtime"
	"github.com/JedIV/dataiku-chat-control/internal/session"
)

func newServeCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the execute_go and list_helpers MCP tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), st)
		},
	}
}

// newSession creates the execution session shared by all tool calls.
func (st *state) newSession(ctx context.Context) (*session.Session, error) {
	return session.New(session.Config{
		URL:         st.env.URL,
		APIKey:      st.env.APIKey,
		NewClient:   st.newClient,
		Messages:    st.messages,
		Logger:      st.logger,
		BaseContext: ctx,
	})
}

func serve(ctx context.Context, st *state) error {
	sess, err := st.newSession(ctx)
	if err != nil {
		return err
	}
	if missing := sess.Missing(); len(missing) > 0 {
		st.logger.Warn("dataiku credentials not configured", "missing", missing)
	}

	builder := runtime.Builder{
		Logger:   st.logger,
		Audit:    audit.New(st.logger),
		Session:  sess,
		Messages: st.messages,
		URL:      st.env.URL,
	}
	server, err := builder.Build(st.cfg)
	if err != nil {
		return err
	}

	st.logger.Info("starting server", "name", st.cfg.Server.Name, "transport", st.cfg.Server.Transport)
	switch st.cfg.Server.Transport {
	case constants.TransportHTTP:
		return runHTTP(ctx, st, server, sess)
	default:
		return runStdio(ctx, server)
	}
}

func runStdio(ctx context.Context, server *mcp.Server) error {
	err := server.Run(ctx, &mcp.StdioTransport{})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runHTTP(ctx context.Context, st *state, server *mcp.Server, sess *session.Session) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{
		Stateless: st.cfg.Server.HTTP.Stateless,
	})

	credentials := health.Check(func() error {
		if missing := sess.Missing(); len(missing) > 0 {
			return errors.New(strings.Join(missing, ", ") + " not set")
		}
		return nil
	})

	application, err := app.New(ctx, st.cfg.Server, handler, app.Options{
		Checks:          []health.Check{credentials},
		Logger:          st.logger,
		ShutdownTimeout: st.env.ShutdownTimeout,
	})
	if err != nil {
		return err
	}
	return application.Run(ctx)
}
