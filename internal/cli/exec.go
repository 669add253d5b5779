package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JedIV/dataiku-chat-control/internal/helpers"
)

func newExecCommand(st *state) *cobra.Command {
	var code string
	cmd := &cobra.Command{
		Use:   "exec [file|-]",
		Short: "Run Go code through an execution session and print the result",
		Example: `  dataiku-mcp-server exec --code 'keys, _ := client.ListProjectKeys(ctx); fmt.Println(keys)'
  dataiku-mcp-server exec script.go
  echo 'fmt.Println(1)' | dataiku-mcp-server exec -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := code
			if len(args) == 1 {
				if code != "" {
					return fmt.Errorf("use either --code or a file argument")
				}
				raw, err := readSource(cmd.InOrStdin(), args[0])
				if err != nil {
					return err
				}
				src = string(raw)
			}
			if src == "" {
				return fmt.Errorf("no code given")
			}

			sess, err := st.newSession(cmd.Context())
			if err != nil {
				return err
			}
			res := sess.Run(cmd.Context(), src)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), res.String())
			switch {
			case res.Unconfigured:
				return fmt.Errorf("dataiku credentials not configured")
			case res.Err != nil:
				return fmt.Errorf("execution failed: %s", res.Err.Kind)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&code, "code", "c", "", "Go statements to run")
	return cmd
}

func readSource(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	raw, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return raw, nil
}

func newHelpersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "helpers",
		Short: "Print the helper catalog available to executed code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), helpers.Catalog())
			return err
		},
	}
}
