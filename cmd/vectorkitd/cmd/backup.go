package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vectorkit/vectorkit/internal/backup"
	"github.com/vectorkit/vectorkit/internal/config"
	"github.com/vectorkit/vectorkit/internal/model"
	"github.com/vectorkit/vectorkit/internal/service"
)

func newBackupCmd() *cobra.Command {
	var configPath string
	var tenantID string
	var backupType string
	var datasetIDs []string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create a one-shot backup without starting a server",
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

			job := svc.CreateBackup(cmd.Context(), model.BackupType(backupType), tenantID, datasetIDs, nil)

			for {
				j, ok := svc.GetJob(job.ID)
				if !ok {
					return fmt.Errorf("backup job %s vanished", job.ID)
				}
				if j.Terminal() {
					break
				}
				select {
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				case <-time.After(100 * time.Millisecond):
				}
			}

			record, ok := svc.GetBackup(job.ID)
			if !ok {
				return fmt.Errorf("backup record %s not found after completion", job.ID)
			}
			if record.Status == model.BackupStatusFailed {
				return fmt.Errorf("backup failed: %s", record.ErrorMessage)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(record)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant id to back up")
	cmd.Flags().StringVar(&backupType, "type", string(model.BackupTypeFull), "Backup type: full, incremental, or snapshot")
	cmd.Flags().StringSliceVar(&datasetIDs, "dataset", nil, "Limit the backup to specific dataset ids, repeatable")

	return cmd
}
