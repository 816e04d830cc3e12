package service

import (
	"context"

	"notetrack-be/internal/entity"
	"notetrack-be/internal/pkg/logger"
)

const maintenanceModule = "MaintenanceService"

type RetentionPolicy struct {
	AuditLogDays    int
	DeletedNoteDays int
}

type MaintenanceReport struct {
	AuditLogsPruned int64
	NotesPurged     int64
}

type IMaintenanceService interface {
	Run(ctx context.Context) (*MaintenanceReport, error)
}

type maintenanceService struct {
	audit  IAuditService
	notes  INoteService
	policy RetentionPolicy
	logger logger.ILogger
}

func NewMaintenanceService(audit IAuditService, notes INoteService, policy RetentionPolicy, log logger.ILogger) IMaintenanceService {
	return &maintenanceService{
		audit:  audit,
		notes:  notes,
		policy: policy,
		logger: log,
	}
}

// Run applies the retention policy. A zero window disables that step.
func (s *maintenanceService) Run(ctx context.Context) (*MaintenanceReport, error) {
	report := &MaintenanceReport{}

	if s.policy.AuditLogDays > 0 {
		days := s.policy.AuditLogDays
		pruned, err := s.audit.ClearLogs(ctx, entity.SystemActor(), &days)
		if err != nil {
			return report, err
		}
		report.AuditLogsPruned = pruned
	}

	if s.policy.DeletedNoteDays > 0 {
		purged, err := s.notes.PurgeDeletedOlderThan(ctx, s.policy.DeletedNoteDays)
		if err != nil {
			return report, err
		}
		report.NotesPurged = purged
	}

	s.logger.Info(maintenanceModule, "Maintenance finished", map[string]interface{}{
		"audit_logs_pruned": report.AuditLogsPruned,
		"notes_purged":      report.NotesPurged,
	})
	return report, nil
}
