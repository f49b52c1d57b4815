package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/missionconf/server/internal/audit"
	"github.com/missionconf/server/internal/config"
	"github.com/missionconf/server/internal/domain/registrations"
	"github.com/missionconf/server/internal/storage/postgres"
	"github.com/missionconf/server/internal/validation"
	"github.com/spf13/cobra"
)

func newExportCommand(flags *globalFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every registration to an xlsx workbook",
		Long: `Export reads all registrations and writes the same workbook served by
GET /api/registrations/export.

Examples:
  server export
  server export --out /tmp/registrations.xlsx
  server export --out - > registrations.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			return runExport(ctx, cfg, out, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", registrations.ExportFilename, `output path, or "-" for stdout`)
	return cmd
}

func runExport(ctx context.Context, cfg config.Config, out string, stdout, stderr io.Writer) (err error) {
	logger := config.NewLoggerTo(cfg.Logging, stderr)

	pool, err := postgres.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConnections)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return fmt.Errorf("repository init failed: %w", err)
	}
	svc := registrations.NewService(repo.Registrations(), validation.New(cfg.Validation.DefaultPhoneRegion), logger)
	auditLog := audit.NewLogger(logger)
	defer func() {
		status := audit.StatusSuccess
		if err != nil {
			status = audit.StatusFailure
		}
		auditLog.Log(audit.Entry{
			Action:  audit.ActionRegistrationsExport,
			Actor:   "cli",
			Status:  status,
			Details: map[string]string{"out": out},
		})
	}()

	if out == "-" {
		_, err = svc.Export(ctx, stdout)
		return err
	}

	var rows int
	err = writeFileAtomically(out, func(w io.Writer) error {
		var werr error
		rows, werr = svc.Export(ctx, w)
		return werr
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stderr, "wrote %d registrations to %s\n", rows, out)
	return nil
}

// writeFileAtomically writes to a temp file beside path and renames it into
// place once write succeeds. On failure path is left untouched.
func writeFileAtomically(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
