package cli

import (
	"strings"

	"github.com/dmitrijs2005/charkeeper/internal/client/models"
	"github.com/dmitrijs2005/charkeeper/internal/common"
	"github.com/dmitrijs2005/charkeeper/internal/query"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree. Without a subcommand the REPL is
// started. Configuration flags (-d, -p, ...) are parsed by the config
// package, so they are whitelisted here rather than declared.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           common.AppName,
		Short:         "Manage collections of characters",
		Long:          "charkeeper keeps collections of characters with properties, tags, notes and relations.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		FParseErrWhitelist: cobra.FParseErrWhitelist{
			UnknownFlags: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context())
		},
	}

	root.AddCommand(
		newListCommand(app),
		newCreateCommand(app),
		newSearchCommand(app),
		newExportCommand(app),
		newImportCommand(app),
		newBackupCommand(app),
		newRestoreCommand(app),
		newURLCommand(app),
		newDeleteCommand(app),
	)
	return root
}

func withWhitelist(cmd *cobra.Command) *cobra.Command {
	cmd.FParseErrWhitelist = cobra.FParseErrWhitelist{UnknownFlags: true}
	return cmd
}

func newListCommand(app *App) *cobra.Command {
	return withWhitelist(&cobra.Command{
		Use:   "list",
		Short: "List collections, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Collections(cmd.Context())
		},
	})
}

func newCreateCommand(app *App) *cobra.Command {
	return withWhitelist(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a collection and print its uuid",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := app.collections.Create(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return app.fail(err)
			}
			app.println(id)
			return nil
		},
	})
}

func newSearchCommand(app *App) *cobra.Command {
	var sortBy string

	cmd := withWhitelist(&cobra.Command{
		Use:   "search <uuid> [clause...]",
		Short: "Print the characters of a collection matching every clause",
		Example: `  charkeeper search 0b6f... "age > 15" "relation friend" --sort "property age desc"
  charkeeper search /editor/0b6f... "text Alice"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sortParam, err := query.ParseSortParam(sortBy)
			if err != nil {
				return app.fail(err)
			}
			clauses := make([]query.SearchParam, 0, len(args)-1)
			for _, s := range args[1:] {
				p, err := query.ParseSearchParam(s)
				if err != nil {
					return app.fail(err)
				}
				clauses = append(clauses, p)
			}

			id, err := models.ParseEditorPath(args[0])
			if err != nil {
				return app.fail(err)
			}
			if _, err := app.switchTo(ctx, id); err != nil {
				return app.fail(err)
			}
			defer app.CloseCollection(ctx)

			app.clauses = clauses
			app.sort = sortParam
			return app.List(ctx)
		},
	})
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort order, e.g. \"name desc\" or \"property age\"")
	return cmd
}

func newExportCommand(app *App) *cobra.Command {
	var output string

	cmd := withWhitelist(&cobra.Command{
		Use:   "export <uuid>",
		Short: "Write a collection to a zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := models.ParseEditorPath(args[0])
			if err != nil {
				return app.fail(err)
			}
			path, err := app.export(cmd.Context(), id, output)
			if err != nil {
				return app.failf("export failed", err)
			}
			app.println(path)
			return nil
		},
	})
	cmd.Flags().StringVarP(&output, "output", "o", "", "archive path (default: derived from the collection name)")
	return cmd
}

func newImportCommand(app *App) *cobra.Command {
	return withWhitelist(&cobra.Command{
		Use:   "import <file>",
		Short: "Import a zip archive as a new collection and print its uuid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readFile(args[0])
			if err != nil {
				return app.failf("import failed", err)
			}
			id, err := app.importArchive(cmd.Context(), data)
			if err != nil {
				return app.failf("import failed", err)
			}
			app.println(id)
			return nil
		},
	})
}

func newBackupCommand(app *App) *cobra.Command {
	return withWhitelist(&cobra.Command{
		Use:   "backup <uuid>",
		Short: "Upload a collection archive to S3 and print its key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := models.ParseEditorPath(args[0])
			if err != nil {
				return app.fail(err)
			}
			key, err := app.collections.Backup(cmd.Context(), id)
			if err != nil {
				return app.failf("backup failed", err)
			}
			app.println(key)
			return nil
		},
	})
}

func newRestoreCommand(app *App) *cobra.Command {
	return withWhitelist(&cobra.Command{
		Use:   "restore <key>",
		Short: "Import a backup from S3 and print the new uuid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := app.collections.Restore(cmd.Context(), args[0])
			if err != nil {
				return app.failf("restore failed", err)
			}
			app.println(id)
			return nil
		},
	})
}

func newURLCommand(app *App) *cobra.Command {
	return withWhitelist(&cobra.Command{
		Use:   "url <key>",
		Short: "Print a temporary download link for a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.URL(cmd.Context(), args)
		},
	})
}

func newDeleteCommand(app *App) *cobra.Command {
	return withWhitelist(&cobra.Command{
		Use:   "delete <uuid>",
		Short: "Delete a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := models.ParseEditorPath(args[0])
			if err != nil {
				return app.fail(err)
			}
			return app.delete(cmd.Context(), id)
		},
	})
}
