package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/vectorkit/vectorkit/internal/model"
)

// CreateBackup starts an asynchronous backup of the requested scope as a
// tracked Job, sharing the job's id with the BackupRecord it produces so
// GetBackup/CancelJob/restore all address the same backup by one id.
func (s *Service) CreateBackup(_ context.Context, backupType model.BackupType, tenantID string, datasetIDs []string, metadata map[string]string) model.Job {
	// The archive runs detached from the calling request's context, the
	// same way jobRebuildTrigger.ScheduleRebuild does, since it must keep
	// running after the HTTP handler that started it has returned.
	backupID := uuid.NewString()
	return s.jobs.StartWithID(context.Background(), backupID, model.JobKindBackup, tenantID, func(jobCtx context.Context, report func(model.JobProgress)) error {
		record, err := s.backups.CreateBackupWithID(jobCtx, backupID, backupType, tenantID, datasetIDs, metadata)
		if record != nil {
			report(model.JobProgress{Total: len(record.DatasetIDs), Processed: len(record.DatasetIDs), Succeeded: len(record.DatasetIDs)})
		}
		return err
	})
}

// RestoreBackup unpacks and replays a prior backup.
func (s *Service) RestoreBackup(ctx context.Context, backupID string, opts model.RestoreOptions) (*model.BackupRecord, error) {
	record, err := s.backups.Restore(ctx, backupID, opts)
	if err != nil {
		return nil, err
	}
	for _, id := range record.DatasetIDs {
		target := id
		if remapped, ok := opts.DatasetMapping[id]; ok {
			target = remapped
		}
		s.invalidateRead(target)
		s.dropLexical(target)
		s.cache.InvalidateDataset(ctx, target)
	}
	return record, nil
}

// GetBackup returns a single backup record by id.
func (s *Service) GetBackup(backupID string) (*model.BackupRecord, bool) {
	return s.backups.Get(backupID)
}

// ListBackups returns every known backup record for a tenant.
func (s *Service) ListBackups(tenantID string) []*model.BackupRecord {
	return s.backups.List(tenantID)
}

// DeleteBackup removes a backup record.
func (s *Service) DeleteBackup(ctx context.Context, backupID string) error {
	return s.backups.Delete(ctx, backupID)
}

// SweepBackups removes completed backup records past retention.
func (s *Service) SweepBackups() int {
	return s.backups.Sweep(s.cfg.Backup.RetentionMaxAge)
}
