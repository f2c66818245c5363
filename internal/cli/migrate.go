package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/marksync/internal/store/sqlite"
)

// MigrateOptions holds flags for the migrate command.
type MigrateOptions struct {
	*RootOptions
	DatabasePath string
}

// NewMigrateCommand creates the migrate command. Opening the store applies
// the embedded schema.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.DatabasePath
			if path == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				path = cfg.DatabasePath
			}
			return runMigrate(cmd, path)
		},
	}

	cmd.Flags().StringVar(&opts.DatabasePath, "db", "", "database path (default from config)")

	return cmd
}

func runMigrate(cmd *cobra.Command, path string) error {
	st, err := sqlite.Open(path)
	if err != nil {
		return fmt.Errorf("failed to migrate %s: %w", path, err)
	}
	defer st.Close()

	v, err := st.SchemaVersion(cmd.Context())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: schema version %d\n", path, v)
	return err
}
