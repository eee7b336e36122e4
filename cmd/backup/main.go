package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"santaswishlist/internal/config"
	"santaswishlist/internal/database"
	"santaswishlist/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "backup",
		Short: "Santa's Wishlist database backup tool",
		Long: `Export and import the wishlist database as JSON.

The database is selected with DATABASE_TYPE (sqlite, postgres or mysql),
DB_PATH for SQLite and DATABASE_URL for PostgreSQL or MySQL.`,
		SilenceUsage: true,
	}

	root.AddCommand(newExportCmd(), newImportCmd())
	return root
}

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Export database to JSON file",
		Example: "  backup export\n  backup export --output mybackup.json",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "" {
				output = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
			}
			if dir := filepath.Dir(output); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}

			return withBackupService(func(backups *service.BackupService, logger *zap.Logger) error {
				logger.Info("exporting database", zap.String("output", output))
				if err := backups.Export(output); err != nil {
					return fmt.Errorf("export failed: %w", err)
				}

				info, err := os.Stat(output)
				if err == nil {
					logger.Info("export complete", zap.String("size", fmt.Sprintf("%.2f MB", float64(info.Size())/1024/1024)))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default backup_YYYYMMDD_HHMMSS.json)")
	return cmd
}

func newImportCmd() *cobra.Command {
	var (
		input     string
		clearData bool
		assumeYes bool
	)

	cmd := &cobra.Command{
		Use:     "import",
		Short:   "Import database from JSON file",
		Example: "  backup import --input backup.json\n  backup import --input backup.json --clear",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(input); err != nil {
				return fmt.Errorf("input file %s: %w", input, err)
			}

			return withBackupService(func(backups *service.BackupService, logger *zap.Logger) error {
				if clearData {
					if !assumeYes && !confirm(cmd, "WARNING: This will delete all existing data. Type 'yes' to confirm: ") {
						logger.Info("import cancelled")
						return nil
					}
					if err := backups.Clear(); err != nil {
						return fmt.Errorf("failed to clear database: %w", err)
					}
				}

				logger.Info("importing database", zap.String("input", input))
				if err := backups.Import(input); err != nil {
					return fmt.Errorf("import failed: %w", err)
				}
				logger.Info("import complete")
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input file path")
	cmd.Flags().BoolVar(&clearData, "clear", false, "clear existing data before import (destructive)")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the --clear confirmation prompt")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// withBackupService opens the configured database, brings the schema up to
// date and runs fn
func withBackupService(fn func(*service.BackupService, *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath, logger); err != nil {
		return err
	}

	return fn(service.NewBackupService(db, logger), logger)
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.TrimSpace(answer) == "yes"
}
