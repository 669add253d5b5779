// Package cli wires configuration, logging and the DSS client into the
// dataiku-mcp-server commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JedIV/dataiku-chat-control/configs"
	"github.com/JedIV/dataiku-chat-control/internal/config"
	"github.com/JedIV/dataiku-chat-control/internal/dss"
	"github.com/JedIV/dataiku-chat-control/internal/dsl"
	"github.com/JedIV/dataiku-chat-control/internal/log"
	"github.com/JedIV/dataiku-chat-control/internal/render"
	"github.com/JedIV/dataiku-chat-control/internal/templates"
	"github.com/JedIV/dataiku-chat-control/internal/wait"
)

const defaultEnvFile = ".env"

// flags holds the persistent command-line flags.
type flags struct {
	envFile        string
	configPath     string
	embeddedConfig string
	transport      string
	logLevel       string
}

// state is what every command needs once the pre-run hook has loaded the
// environment and the YAML config.
type state struct {
	env      config.Config
	cfg      *dsl.Config
	logger   *slog.Logger
	messages *templates.Bundle
}

// NewRootCommand builds the command tree. Running the root command without
// a subcommand serves MCP.
func NewRootCommand() *cobra.Command {
	f := &flags{}
	st := &state{}

	root := &cobra.Command{
		Use:           "dataiku-mcp-server",
		Short:         "Dataiku DSS control server exposed over MCP",
		Long:          "Runs Go code against a Dataiku DSS instance through a persistent interpreter, as MCP tools or from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.load(cmd, f)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), st)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&f.envFile, "env-file", defaultEnvFile, "dotenv file loaded before reading the environment")
	pf.StringVar(&f.configPath, "config", "", "YAML config file (overrides DATAIKU_MCP_CONFIG)")
	pf.StringVar(&f.embeddedConfig, "embedded-config", "", "embedded config name ("+strings.Join(configs.Names(), ", ")+")")
	pf.StringVar(&f.transport, "transport", "", "transport override: stdio or http")
	pf.StringVar(&f.logLevel, "log-level", "", "log level override: debug, info, warn or error")

	root.AddCommand(
		newServeCommand(st),
		newExecCommand(st),
		newHelpersCommand(),
		newCreateDatasetCommand(st),
		newImportTableCommand(st),
		newListSchemasCommand(st),
		newListTablesCommand(st),
	)
	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (st *state) load(cmd *cobra.Command, f *flags) error {
	if err := loadEnvFile(f.envFile, cmd.Flags().Changed("env-file")); err != nil {
		return err
	}

	env, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if f.logLevel != "" {
		env.LogLevel = f.logLevel
	}
	if f.configPath != "" {
		env.ConfigPath = f.configPath
	}
	st.env = env
	st.logger = log.NewWithWriter(cmd.ErrOrStderr(), env.LogLevel, env.LogFormat)

	rendered, err := renderConfig(env.ConfigPath, f.embeddedConfig)
	if err != nil {
		return err
	}
	cfg, err := dsl.Load(rendered)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	transport := f.transport
	if transport == "" {
		transport = env.Transport
	}
	if transport != "" {
		cfg.Server.Transport = transport
		if err := dsl.Validate(cfg); err != nil {
			return fmt.Errorf("transport override: %w", err)
		}
	}
	st.cfg = cfg

	st.messages, err = templates.Load(env.Lang)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	wait.SetDefault(wait.New(st.logger, cfg.WaitDefaults()))
	return nil
}

// loadEnvFile loads a dotenv file without overriding variables already set.
// A missing default file is ignored.
func loadEnvFile(path string, explicit bool) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func renderConfig(path, embedded string) ([]byte, error) {
	if path != "" && embedded == "" {
		rendered, err := render.File(path)
		if err != nil {
			return nil, fmt.Errorf("render config: %w", err)
		}
		return rendered, nil
	}
	name := embedded
	if name == "" {
		name = configs.Default
	}
	raw, err := configs.Load(name)
	if err != nil {
		return nil, err
	}
	rendered, err := render.Bytes(name, raw)
	if err != nil {
		return nil, fmt.Errorf("render config: %w", err)
	}
	return rendered, nil
}

// newClient builds a DSS client from the environment and the client section
// of the YAML config.
func (st *state) newClient(context.Context) (*dss.Client, error) {
	return dss.New(dss.Options{
		URL:                st.env.URL,
		APIKey:             st.env.APIKey,
		Timeout:            st.cfg.Client.Timeout(),
		InsecureSkipVerify: st.env.InsecureSkipVerify,
		RequestsPerSecond:  st.cfg.Client.RequestsPerSecond,
		Burst:              st.cfg.Client.Burst,
		Logger:             st.logger,
	})
}

// requireClient returns a client or the credentials diagnostic as an error.
func (st *state) requireClient(ctx context.Context) (*dss.Client, error) {
	if missing := st.env.MissingCredentials(); len(missing) > 0 {
		return nil, errors.New(templates.RenderOr(st.messages, templates.KeyCredentialsMissing,
			map[string]any{"Missing": missing}, "Dataiku credentials not configured: "+strings.Join(missing, ", ")))
	}
	return st.newClient(ctx)
}
