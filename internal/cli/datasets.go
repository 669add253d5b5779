package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JedIV/dataiku-chat-control/internal/constants"
	"github.com/JedIV/dataiku-chat-control/internal/helpers/datasets"
	"github.com/JedIV/dataiku-chat-control/internal/session"
)

func newCreateDatasetCommand(st *state) *cobra.Command {
	var project, name, connection string
	cmd := &cobra.Command{
		Use:   "create-dataset <csv-file|->",
		Short: "Create (or replace) an uploaded dataset from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readSource(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			c, err := st.requireClient(cmd.Context())
			if err != nil {
				return err
			}
			if err := datasets.CreateFromCSV(cmd.Context(), c, project, name, string(raw), connection); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created dataset %s.%s\n", project, name)
			return err
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "project key")
	cmd.Flags().StringVarP(&name, "name", "n", "", "dataset name")
	cmd.Flags().StringVar(&connection, "connection", constants.DefaultUploadConnection, "connection storing the uploaded files")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newImportTableCommand(st *state) *cobra.Command {
	var project, connection, schema, table, name string
	cmd := &cobra.Command{
		Use:   "import-table",
		Short: "Import a SQL table as a dataset and wait for the import",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := st.requireClient(cmd.Context())
			if err != nil {
				return err
			}
			res, err := datasets.ImportTable(cmd.Context(), c, project, connection, schema, table, name)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), session.JSON(res))
			if !res.Wait.Success {
				return fmt.Errorf("import of %s.%s finished with status %s", schema, table, res.Wait.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "project key")
	cmd.Flags().StringVar(&connection, "connection", "", "SQL connection name")
	cmd.Flags().StringVar(&schema, "schema", "", "SQL schema")
	cmd.Flags().StringVar(&table, "table", "", "SQL table")
	cmd.Flags().StringVarP(&name, "name", "n", "", "dataset name (defaults to the table name)")
	for _, required := range []string{"project", "connection", "schema", "table"} {
		_ = cmd.MarkFlagRequired(required)
	}
	return cmd
}

func newListSchemasCommand(st *state) *cobra.Command {
	var project, connection string
	cmd := &cobra.Command{
		Use:   "list-schemas",
		Short: "List the schemas of a SQL connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := st.requireClient(cmd.Context())
			if err != nil {
				return err
			}
			schemas, err := datasets.ListSchemas(cmd.Context(), c, connection, project)
			if err != nil {
				return err
			}
			return printLines(cmd.OutOrStdout(), schemas)
		},
	}
	cmd.Flags().StringVar(&connection, "connection", "", "SQL connection name")
	cmd.Flags().StringVarP(&project, "project", "p", "", "project used as listing context (defaults to the first project)")
	_ = cmd.MarkFlagRequired("connection")
	return cmd
}

func newListTablesCommand(st *state) *cobra.Command {
	var project, connection, schema string
	cmd := &cobra.Command{
		Use:   "list-tables",
		Short: "List the tables of a SQL schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := st.requireClient(cmd.Context())
			if err != nil {
				return err
			}
			tables, err := datasets.ListTables(cmd.Context(), c, connection, schema, project)
			if err != nil {
				return err
			}
			return printLines(cmd.OutOrStdout(), tables)
		},
	}
	cmd.Flags().StringVar(&connection, "connection", "", "SQL connection name")
	cmd.Flags().StringVar(&schema, "schema", "", "SQL schema")
	cmd.Flags().StringVarP(&project, "project", "p", "", "project used as listing context (defaults to the first project)")
	_ = cmd.MarkFlagRequired("connection")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func printLines(w io.Writer, items []string) error {
	if len(items) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(w, strings.Join(items, "\n"))
	return err
}
