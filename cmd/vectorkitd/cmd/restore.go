package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vectorkit/vectorkit/internal/backup"
	"github.com/vectorkit/vectorkit/internal/config"
	"github.com/vectorkit/vectorkit/internal/model"
	"github.com/vectorkit/vectorkit/internal/service"
)

func newRestoreCmd() *cobra.Command {
	var configPath string
	var targetTenant string
	var overwrite bool
	var verify bool
	var restoreIndexes bool
	var restoreMetadata bool

	cmd := &cobra.Command{
		Use:   "restore <backup-id>",
		Short: "Restore a backup without starting a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			svc, err := service.New(cfg, nil, backup.NewLocalObjectStore(cfg.ObjectStore.URI), nil)
			if err != nil {
				return fmt.Errorf("failed to start service: %w", err)
			}
			defer svc.Close()

			record, err := svc.RestoreBackup(cmd.Context(), args[0], model.RestoreOptions{
				TargetTenant:      targetTenant,
				OverwriteExisting: overwrite,
				VerifyIntegrity:   verify,
				RestoreIndexes:    restoreIndexes,
				RestoreMetadata:   restoreMetadata,
			})
			if err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(record)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&targetTenant, "target-tenant", "", "Restore into a different tenant id")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing datasets")
	cmd.Flags().BoolVar(&verify, "verify", true, "Verify archive integrity before restoring")
	cmd.Flags().BoolVar(&restoreIndexes, "restore-indexes", true, "Rebuild indexes after restoring vectors")
	cmd.Flags().BoolVar(&restoreMetadata, "restore-metadata", true, "Restore dataset metadata")

	return cmd
}
