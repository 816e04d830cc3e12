package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"notetrack-be/internal/dto"
	"notetrack-be/internal/entity"
	"notetrack-be/internal/mapper"
	"notetrack-be/internal/pkg/apperror"
	"notetrack-be/internal/pkg/logger"
	"notetrack-be/internal/repository/memory"
	"notetrack-be/internal/repository/scope"
	"notetrack-be/internal/repository/specification"
	"notetrack-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const auditModule = "AuditService"

// systemUserName labels entries written by background jobs.
const systemUserName = "System"

type IAuditService interface {
	LogAction(ctx context.Context, actor entity.Actor, noteId uuid.UUID, details entity.AuditDetails) (uuid.UUID, error)
	GetAuditLogs(ctx context.Context, noteId *uuid.UUID, limit, offset int) (*dto.AuditLogListResponse, error)
	GetAuditLogsCount(ctx context.Context, noteId *uuid.UUID) (int64, error)
	ClearLogs(ctx context.Context, actor entity.Actor, olderThanDays *int) (int64, error)
}

type auditService struct {
	uowFactory unitofwork.RepositoryFactory
	userNames  *memory.UserNameCache
	mapper     *mapper.AuditMapper
	logger     logger.ILogger
	now        func() time.Time
}

func NewAuditService(uowFactory unitofwork.RepositoryFactory, userNames *memory.UserNameCache, log logger.ILogger) IAuditService {
	return &auditService{
		uowFactory: uowFactory,
		userNames:  userNames,
		mapper:     mapper.NewAuditMapper(),
		logger:     log,
		now:        utcNow,
	}
}

// newAuditEntry builds an entry stamped with the actor's request metadata.
// oldValue and newValue are JSON encoded when non-nil.
func newAuditEntry(actor entity.Actor, noteId uuid.UUID, details entity.AuditDetails, oldValue, newValue interface{}) (*entity.AuditLogEntry, error) {
	entry := &entity.AuditLogEntry{
		NoteId:    noteId,
		UserId:    actor.UserId,
		Action:    details.Action(),
		Details:   details,
		IpAddress: actor.IpAddress,
		UserAgent: actor.UserAgent,
	}
	if oldValue != nil {
		raw, err := json.Marshal(oldValue)
		if err != nil {
			return nil, err
		}
		entry.OldValue = raw
	}
	if newValue != nil {
		raw, err := json.Marshal(newValue)
		if err != nil {
			return nil, err
		}
		entry.NewValue = raw
	}
	return entry, nil
}

func (s *auditService) LogAction(ctx context.Context, actor entity.Actor, noteId uuid.UUID, details entity.AuditDetails) (uuid.UUID, error) {
	if details == nil || strings.TrimSpace(string(details.Action())) == "" {
		return uuid.Nil, apperror.Validation("audit action is required")
	}
	if custom, ok := details.(entity.CustomDetails); ok && custom.Tag.IsBuiltin() {
		return uuid.Nil, apperror.Validation("action %q is reserved", custom.Tag)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: noteId})
	if err != nil {
		return uuid.Nil, storageFault(s.logger, auditModule, "load note", err)
	}
	if note == nil {
		return uuid.Nil, apperror.NotFound("note")
	}

	entry, err := newAuditEntry(actor, noteId, details, nil, nil)
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid audit payload: %v", err)
	}
	if err := uow.AuditLogRepository().Create(ctx, entry); err != nil {
		return uuid.Nil, storageFault(s.logger, auditModule, "write audit entry", err)
	}
	return entry.Id, nil
}

func (s *auditService) GetAuditLogs(ctx context.Context, noteId *uuid.UUID, limit, offset int) (*dto.AuditLogListResponse, error) {
	limit, offset = normalizePage(limit, offset)
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var filters []specification.Specification
	if noteId != nil {
		filters = append(filters, specification.ByNoteID{NoteID: *noteId})
	}

	total, err := uow.AuditLogRepository().Count(ctx, filters...)
	if err != nil {
		return nil, storageFault(s.logger, auditModule, "count audit logs", err)
	}

	specs := append(filters,
		specification.Scoped(scope.OrderByCreatedDesc),
		specification.Pagination{Limit: limit, Offset: offset},
	)
	entries, err := uow.AuditLogRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, storageFault(s.logger, auditModule, "list audit logs", err)
	}

	if err := s.enrich(ctx, uow, entries); err != nil {
		return nil, storageFault(s.logger, auditModule, "enrich audit logs", err)
	}

	items := make([]*dto.AuditLogResponse, len(entries))
	for i, e := range entries {
		items[i] = s.mapper.ToResponse(e, FormatAction(e.Action, e.Details))
	}

	return &dto.AuditLogListResponse{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

// enrich fills display names (through the LRU) and note titles. Deleted notes keep their title.
func (s *auditService) enrich(ctx context.Context, uow unitofwork.UnitOfWork, entries []*entity.AuditLogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	names := make(map[uuid.UUID]string)
	var missingUsers []uuid.UUID
	noteIds := make([]uuid.UUID, 0, len(entries))
	seenNotes := make(map[uuid.UUID]bool)

	for _, e := range entries {
		if !seenNotes[e.NoteId] {
			seenNotes[e.NoteId] = true
			noteIds = append(noteIds, e.NoteId)
		}
		if e.UserId == uuid.Nil {
			names[e.UserId] = systemUserName
			continue
		}
		if _, ok := names[e.UserId]; ok {
			continue
		}
		if name, ok := s.userNames.Get(e.UserId); ok {
			names[e.UserId] = name
			continue
		}
		names[e.UserId] = ""
		missingUsers = append(missingUsers, e.UserId)
	}

	if len(missingUsers) > 0 {
		users, err := uow.UserRepository().FindAll(ctx, specification.ByIDs{IDs: missingUsers})
		if err != nil {
			return err
		}
		for _, u := range users {
			name := u.DisplayName()
			names[u.Id] = name
			s.userNames.Add(u.Id, name)
		}
	}

	notes, err := uow.NoteRepository().FindAll(ctx, specification.ByIDs{IDs: noteIds})
	if err != nil {
		return err
	}
	titles := make(map[uuid.UUID]string, len(notes))
	for _, n := range notes {
		titles[n.Id] = n.Title
	}

	for _, e := range entries {
		e.UserName = names[e.UserId]
		e.NoteTitle = titles[e.NoteId]
	}
	return nil
}

func (s *auditService) GetAuditLogsCount(ctx context.Context, noteId *uuid.UUID) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var specs []specification.Specification
	if noteId != nil {
		specs = append(specs, specification.ByNoteID{NoteID: *noteId})
	}

	count, err := uow.AuditLogRepository().Count(ctx, specs...)
	if err != nil {
		return 0, storageFault(s.logger, auditModule, "count audit logs", err)
	}
	return count, nil
}

// ClearLogs deletes every entry when olderThanDays is nil, else entries older than the cutoff.
func (s *auditService) ClearLogs(ctx context.Context, actor entity.Actor, olderThanDays *int) (int64, error) {
	if !actor.IsAdmin {
		return 0, apperror.Unauthorized("only administrators can clear audit logs")
	}

	var specs []specification.Specification
	if olderThanDays != nil {
		if *olderThanDays < 1 {
			return 0, apperror.Validation("older_than_days must be at least 1")
		}
		cutoff := s.now().AddDate(0, 0, -*olderThanDays)
		specs = append(specs, specification.CreatedBefore{Time: cutoff})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	deleted, err := uow.AuditLogRepository().DeleteAll(ctx, specs...)
	if err != nil {
		return 0, storageFault(s.logger, auditModule, "clear audit logs", err)
	}

	s.logger.Info(auditModule, "Audit logs cleared", map[string]interface{}{
		"deleted":         deleted,
		"older_than_days": olderThanDays,
		"user_id":         actor.UserId,
	})
	return deleted, nil
}

// FormatAction renders an audit entry as a sentence for activity feeds.
func FormatAction(action entity.AuditAction, details entity.AuditDetails) string {
	switch d := details.(type) {
	case entity.NoteCreatedDetails:
		return fmt.Sprintf("Created note %q", d.Title)
	case entity.NoteUpdatedDetails:
		if len(d.Fields) == 0 {
			return fmt.Sprintf("Updated note %q", d.Title)
		}
		return fmt.Sprintf("Updated note %q (%s)", d.Title, strings.Join(d.Fields, ", "))
	case entity.NoteDeletedDetails:
		return fmt.Sprintf("Deleted note %q", d.Title)
	case entity.NoteArchivedDetails:
		return fmt.Sprintf("Archived note %q", d.Title)
	case entity.NoteRestoredDetails:
		return fmt.Sprintf("Restored note %q", d.Title)
	case entity.AssignmentChangedDetails:
		return fmt.Sprintf("Changed assignee from %s to %s",
			personLabel(d.OldAssigneeId, d.OldAssigneeName),
			personLabel(d.NewAssigneeId, d.NewAssigneeName))
	case entity.StageChangedDetails:
		text := fmt.Sprintf("Moved from stage %s to %s",
			stageLabel(d.OldStageId, d.OldStageName),
			stageLabel(d.NewStageId, d.NewStageName))
		if d.Reason == entity.StageChangeReasonStageDeleted {
			text += " (stage deleted)"
		}
		return text
	case entity.CustomDetails:
		text := humanizeAction(d.Tag)
		if d.Tag == "" {
			text = humanizeAction(action)
		}
		if d.Message != "" {
			text += ": " + d.Message
		}
		return text
	}

	switch action {
	case entity.ActionNoteCreated:
		return "Created note"
	case entity.ActionNoteUpdated:
		return "Updated note"
	case entity.ActionNoteDeleted:
		return "Deleted note"
	case entity.ActionNoteArchived:
		return "Archived note"
	case entity.ActionNoteRestored:
		return "Restored note"
	case entity.ActionAssignmentChanged:
		return "Changed assignee"
	case entity.ActionStageChanged:
		return "Changed stage"
	}
	return humanizeAction(action)
}

// Casers are stateful, so each call gets its own.
func humanizeAction(action entity.AuditAction) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(action), "_", " "))
}

func personLabel(id *uuid.UUID, name string) string {
	if id == nil {
		return "unassigned"
	}
	if name != "" {
		return name
	}
	return id.String()
}

func stageLabel(id *uuid.UUID, name string) string {
	if id == nil {
		return "none"
	}
	if name != "" {
		return fmt.Sprintf("%q", name)
	}
	return id.String()
}
