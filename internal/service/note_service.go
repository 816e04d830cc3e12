// FILE: internal/service/note_service.go
package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"notetrack-be/internal/dto"
	"notetrack-be/internal/entity"
	"notetrack-be/internal/mapper"
	"notetrack-be/internal/pkg/apperror"
	"notetrack-be/internal/pkg/logger"
	"notetrack-be/internal/repository/scope"
	"notetrack-be/internal/repository/specification"
	"notetrack-be/internal/repository/unitofwork"
	"notetrack-be/pkg/events"

	"github.com/google/uuid"
)

const (
	noteModule       = "NoteService"
	recentNoteWindow = 7 * 24 * time.Hour
	fieldTitle       = "title"
	fieldBody        = "body"
	fieldPriority    = "priority"
	fieldContextType = "context_type"
	fieldContextId   = "context_id"
	fieldAssigneeId  = "assignee_id"
	fieldStageId     = "stage_id"
	fieldDeadline    = "deadline"
)

type INoteService interface {
	Create(ctx context.Context, actor entity.Actor, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.NoteResponse, error)
	Update(ctx context.Context, actor entity.Actor, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	UpdateFields(ctx context.Context, actor entity.Actor, req *dto.UpdateNoteFieldsRequest) (*dto.NoteResponse, error)
	Archive(ctx context.Context, actor entity.Actor, id uuid.UUID) error
	Restore(ctx context.Context, actor entity.Actor, id uuid.UUID) error
	Delete(ctx context.Context, actor entity.Actor, id uuid.UUID) error

	ListByContext(ctx context.Context, contextType entity.ContextType, contextId *int64, limit, offset int) (*dto.NoteListResponse, error)
	ListByAuthor(ctx context.Context, authorId uuid.UUID, limit, offset int) (*dto.NoteListResponse, error)
	ListByAssignee(ctx context.Context, assigneeId uuid.UUID, limit, offset int) (*dto.NoteListResponse, error)
	ListByStage(ctx context.Context, stageId uuid.UUID, limit, offset int) (*dto.NoteListResponse, error)
	ListAll(ctx context.Context, limit, offset int) (*dto.NoteListResponse, error)

	CountByContext(ctx context.Context, contextType entity.ContextType, contextId *int64) (int64, error)
	CountByAuthor(ctx context.Context, authorId uuid.UUID) (int64, error)
	CountByAssignee(ctx context.Context, assigneeId uuid.UUID) (int64, error)
	CountByStage(ctx context.Context, stageId uuid.UUID) (int64, error)
	CountAll(ctx context.Context) (int64, error)

	GetStatistics(ctx context.Context) (*dto.NoteStatisticsResponse, error)
	PurgeDeletedOlderThan(ctx context.Context, days int) (int64, error)
}

type noteService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  IPublisherService
	mapper     *mapper.NoteMapper
	logger     logger.ILogger
	now        func() time.Time
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	publisher IPublisherService,
	log logger.ILogger,
) INoteService {
	return &noteService{
		uowFactory: uowFactory,
		publisher:  publisher,
		mapper:     mapper.NewNoteMapper(),
		logger:     log,
		now:        utcNow,
	}
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperror.Validation("note title is required")
	}
	if utf8.RuneCountInString(title) > entity.MaxNoteTitleLength {
		return "", apperror.Validation("note title must be at most %d characters", entity.MaxNoteTitleLength)
	}
	return title, nil
}

func validateBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", apperror.Validation("note body is required")
	}
	return body, nil
}

func parsePriority(raw string) (entity.NotePriority, error) {
	if raw == "" {
		return entity.NotePriorityMedium, nil
	}
	p := entity.NotePriority(strings.ToLower(strings.TrimSpace(raw)))
	if !p.Valid() {
		return "", apperror.Validation("invalid priority %q", raw)
	}
	return p, nil
}

func parseContextType(raw string) (entity.ContextType, error) {
	if raw == "" {
		return entity.ContextDashboard, nil
	}
	c := entity.ContextType(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", apperror.Validation("invalid context type %q", raw)
	}
	return c, nil
}

// resolveContext enforces that dashboard notes have no content id and post/page notes have one.
func resolveContext(contextType entity.ContextType, contextId *int64) (*int64, error) {
	if contextType == entity.ContextDashboard {
		return nil, nil
	}
	if contextId == nil || *contextId <= 0 {
		return nil, apperror.Validation("context_id is required for %s notes", contextType)
	}
	id := *contextId
	return &id, nil
}

func toUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func (s *noteService) requireUser(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID, role string) (*entity.User, error) {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, storageFault(s.logger, noteModule, "load "+role, err)
	}
	if user == nil {
		return nil, apperror.Validation("%s %s does not exist", role, id)
	}
	return user, nil
}

func (s *noteService) requireStage(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.Stage, error) {
	stage, err := uow.StageRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, storageFault(s.logger, noteModule, "load stage", err)
	}
	if stage == nil {
		return nil, apperror.Validation("stage %s does not exist", id)
	}
	return stage, nil
}

func (s *noteService) Create(ctx context.Context, actor entity.Actor, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error) {
	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}
	body, err := validateBody(req.Body)
	if err != nil {
		return nil, err
	}
	priority, err := parsePriority(req.Priority)
	if err != nil {
		return nil, err
	}
	contextType, err := parseContextType(req.ContextType)
	if err != nil {
		return nil, err
	}
	contextId, err := resolveContext(contextType, req.ContextId)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageFault(s.logger, noteModule, "begin transaction", err)
	}
	defer uow.Rollback()

	if _, err := s.requireUser(ctx, uow, actor.UserId, "author"); err != nil {
		return nil, err
	}
	if req.AssigneeId != nil {
		if _, err := s.requireUser(ctx, uow, *req.AssigneeId, "assignee"); err != nil {
			return nil, err
		}
	}

	var stageId *uuid.UUID
	if req.StageId != nil {
		stage, err := s.requireStage(ctx, uow, *req.StageId)
		if err != nil {
			return nil, err
		}
		stageId = &stage.Id
	} else {
		defaultStage, err := uow.StageRepository().FindOne(ctx, specification.IsDefaultStage{})
		if err != nil {
			return nil, storageFault(s.logger, noteModule, "load default stage", err)
		}
		if defaultStage != nil {
			stageId = &defaultStage.Id
		}
	}

	note := entity.Note{
		ContextType: contextType,
		ContextId:   contextId,
		Title:       title,
		Body:        body,
		Priority:    priority,
		AuthorId:    actor.UserId,
		AssigneeId:  req.AssigneeId,
		StageId:     stageId,
		Deadline:    toUTC(req.Deadline),
		Status:      entity.NoteStatusActive,
	}
	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return nil, storageFault(s.logger, noteModule, "create note", err)
	}

	snapshot := note.Snapshot()
	entry, err := newAuditEntry(actor, note.Id, entity.NoteCreatedDetails{
		Title:    note.Title,
		Priority: note.Priority,
		StageId:  note.StageId,
	}, nil, snapshot)
	if err != nil {
		return nil, storageFault(s.logger, noteModule, "encode audit entry", err)
	}
	if err := uow.AuditLogRepository().Create(ctx, entry); err != nil {
		return nil, storageFault(s.logger, noteModule, "write audit entry", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, storageFault(s.logger, noteModule, "commit note", err)
	}

	s.publish(ctx, events.NoteCreated, &note, nil)

	return &dto.CreateNoteResponse{Id: note.Id}, nil
}

func (s *noteService) Show(ctx context.Context, id uuid.UUID) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.NoteNotDeleted{},
	)
	if err != nil {
		return nil, storageFault(s.logger, noteModule, "load note", err)
	}
	if note == nil {
		return nil, apperror.NotFound("note")
	}
	return s.mapper.ToResponse(note), nil
}

// loadForUpdate fetches a live note inside the unit of work.
func (s *noteService) loadForUpdate(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.Note, error) {
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.NoteNotDeleted{},
	)
	if err != nil {
		return nil, storageFault(s.logger, noteModule, "load note", err)
	}
	if note == nil {
		return nil, apperror.NotFound("note")
	}
	return note, nil
}

func clears(list []string, field string) bool {
	for _, f := range list {
		if f == field {
			return true
		}
	}
	return false
}

func sameUUID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func sameInt64(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// workflowPatch is the subset of fields shared by full and narrow updates.
type workflowPatch struct {
	priority   *string
	assigneeId *uuid.UUID
	stageId    *uuid.UUID
	deadline   *time.Time
	clear      []string
}

// applyWorkflow validates and applies a workflowPatch to note.
func (s *noteService) applyWorkflow(ctx context.Context, uow unitofwork.UnitOfWork, note *entity.Note, p workflowPatch) error {
	if p.priority != nil {
		priority, err := parsePriority(*p.priority)
		if err != nil {
			return err
		}
		note.Priority = priority
	}

	switch {
	case clears(p.clear, fieldAssigneeId):
		note.AssigneeId = nil
	case p.assigneeId != nil:
		if _, err := s.requireUser(ctx, uow, *p.assigneeId, "assignee"); err != nil {
			return err
		}
		id := *p.assigneeId
		note.AssigneeId = &id
	}

	switch {
	case clears(p.clear, fieldStageId):
		note.StageId = nil
	case p.stageId != nil:
		stage, err := s.requireStage(ctx, uow, *p.stageId)
		if err != nil {
			return err
		}
		note.StageId = &stage.Id
	}

	switch {
	case clears(p.clear, fieldDeadline):
		note.Deadline = nil
	case p.deadline != nil:
		note.Deadline = toUTC(p.deadline)
	}
	return nil
}

func changedFields(before, after *entity.Note) []string {
	var fields []string
	if before.Title != after.Title {
		fields = append(fields, fieldTitle)
	}
	if before.Body != after.Body {
		fields = append(fields, fieldBody)
	}
	if before.Priority != after.Priority {
		fields = append(fields, fieldPriority)
	}
	if before.ContextType != after.ContextType {
		fields = append(fields, fieldContextType)
	}
	if !sameInt64(before.ContextId, after.ContextId) {
		fields = append(fields, fieldContextId)
	}
	if !sameUUID(before.AssigneeId, after.AssigneeId) {
		fields = append(fields, fieldAssigneeId)
	}
	if !sameUUID(before.StageId, after.StageId) {
		fields = append(fields, fieldStageId)
	}
	if !sameTime(before.Deadline, after.Deadline) {
		fields = append(fields, fieldDeadline)
	}
	return fields
}

func (s *noteService) Update(ctx context.Context, actor entity.Actor, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageFault(s.logger, noteModule, "begin transaction", err)
	}
	defer uow.Rollback()

	before, err := s.loadForUpdate(ctx, uow, req.Id)
	if err != nil {
		return nil, err
	}
	if !before.CanModify(actor) {
		return nil, apperror.Unauthorized("only the author or an administrator can edit this note")
	}

	after := *before
	if req.Title != nil {
		if after.Title, err = validateTitle(*req.Title); err != nil {
			return nil, err
		}
	}
	if req.Body != nil {
		if after.Body, err = validateBody(*req.Body); err != nil {
			return nil, err
		}
	}
	if req.ContextType != nil || req.ContextId != nil {
		contextType := after.ContextType
		if req.ContextType != nil {
			if contextType, err = parseContextType(*req.ContextType); err != nil {
				return nil, err
			}
		}
		contextId := after.ContextId
		if req.ContextId != nil {
			contextId = req.ContextId
		}
		if after.ContextId, err = resolveContext(contextType, contextId); err != nil {
			return nil, err
		}
		after.ContextType = contextType
	}
	if err := s.applyWorkflow(ctx, uow, &after, workflowPatch{
		priority:   req.Priority,
		assigneeId: req.AssigneeId,
		stageId:    req.StageId,
		deadline:   req.Deadline,
		clear:      req.Clear,
	}); err != nil {
		return nil, err
	}

	fields := changedFields(before, &after)
	if len(fields) == 0 {
		return s.mapper.ToResponse(before), nil
	}
	if err := s.persistChanges(ctx, uow, actor, before, &after, fields); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, storageFault(s.logger, noteModule, "commit note", err)
	}

	s.publishChanges(ctx, before, &after, fields)
	return s.mapper.ToResponse(&after), nil
}

// UpdateFields is the narrow workflow update. Moving a note between stages only
// needs the relaxed stage gate; anything else needs author or admin.
func (s *noteService) UpdateFields(ctx context.Context, actor entity.Actor, req *dto.UpdateNoteFieldsRequest) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageFault(s.logger, noteModule, "begin transaction", err)
	}
	defer uow.Rollback()

	before, err := s.loadForUpdate(ctx, uow, req.Id)
	if err != nil {
		return nil, err
	}

	// The gate runs before any lookup so callers cannot probe for user or stage ids.
	if isStageOnly(req) {
		if !before.CanChangeStage(actor) {
			return nil, apperror.Unauthorized("you cannot move this note")
		}
	} else if !before.CanModify(actor) {
		return nil, apperror.Unauthorized("only the author or an administrator can edit this note")
	}

	after := *before
	if err := s.applyWorkflow(ctx, uow, &after, workflowPatch{
		priority:   req.Priority,
		assigneeId: req.AssigneeId,
		stageId:    req.StageId,
		deadline:   req.Deadline,
		clear:      req.Clear,
	}); err != nil {
		return nil, err
	}

	fields := changedFields(before, &after)
	if len(fields) == 0 {
		return s.mapper.ToResponse(before), nil
	}

	if err := s.persistChanges(ctx, uow, actor, before, &after, fields); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, storageFault(s.logger, noteModule, "commit note", err)
	}

	s.publishChanges(ctx, before, &after, fields)
	return s.mapper.ToResponse(&after), nil
}

// isStageOnly reports whether the request touches nothing but the stage.
func isStageOnly(req *dto.UpdateNoteFieldsRequest) bool {
	if req.Priority != nil || req.AssigneeId != nil || req.Deadline != nil {
		return false
	}
	for _, field := range req.Clear {
		if field != fieldStageId {
			return false
		}
	}
	return req.StageId != nil || clears(req.Clear, fieldStageId)
}

// persistChanges saves the note and writes its audit entries in the caller's transaction:
// note_updated for content fields, assignment_changed and stage_changed for those moves.
func (s *noteService) persistChanges(ctx context.Context, uow unitofwork.UnitOfWork, actor entity.Actor, before, after *entity.Note, fields []string) error {
	if err := uow.NoteRepository().Update(ctx, after); err != nil {
		return storageFault(s.logger, noteModule, "update note", err)
	}

	var entries []*entity.AuditLogEntry
	var contentFields []string
	for _, f := range fields {
		if f != fieldAssigneeId && f != fieldStageId {
			contentFields = append(contentFields, f)
		}
	}

	if len(contentFields) > 0 {
		entry, err := newAuditEntry(actor, after.Id, entity.NoteUpdatedDetails{
			Title:  after.Title,
			Fields: contentFields,
		}, before.Snapshot(), after.Snapshot())
		if err != nil {
			return storageFault(s.logger, noteModule, "encode audit entry", err)
		}
		entries = append(entries, entry)
	}

	if !sameUUID(before.AssigneeId, after.AssigneeId) {
		details := entity.AssignmentChangedDetails{
			OldAssigneeId: before.AssigneeId,
			NewAssigneeId: after.AssigneeId,
		}
		var err error
		if details.OldAssigneeName, err = s.userName(ctx, uow, before.AssigneeId); err != nil {
			return err
		}
		if details.NewAssigneeName, err = s.userName(ctx, uow, after.AssigneeId); err != nil {
			return err
		}
		entry, err := newAuditEntry(actor, after.Id, details,
			map[string]interface{}{fieldAssigneeId: before.AssigneeId},
			map[string]interface{}{fieldAssigneeId: after.AssigneeId})
		if err != nil {
			return storageFault(s.logger, noteModule, "encode audit entry", err)
		}
		entries = append(entries, entry)
	}

	if !sameUUID(before.StageId, after.StageId) {
		details := entity.StageChangedDetails{
			OldStageId: before.StageId,
			NewStageId: after.StageId,
		}
		var err error
		if details.OldStageName, err = s.stageName(ctx, uow, before.StageId); err != nil {
			return err
		}
		if details.NewStageName, err = s.stageName(ctx, uow, after.StageId); err != nil {
			return err
		}
		entry, err := newAuditEntry(actor, after.Id, details,
			map[string]interface{}{fieldStageId: before.StageId},
			map[string]interface{}{fieldStageId: after.StageId})
		if err != nil {
			return storageFault(s.logger, noteModule, "encode audit entry", err)
		}
		entries = append(entries, entry)
	}

	for _, entry := range entries {
		if err := uow.AuditLogRepository().Create(ctx, entry); err != nil {
			return storageFault(s.logger, noteModule, "write audit entry", err)
		}
	}
	return nil
}

func (s *noteService) userName(ctx context.Context, uow unitofwork.UnitOfWork, id *uuid.UUID) (string, error) {
	if id == nil {
		return "", nil
	}
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: *id})
	if err != nil {
		return "", storageFault(s.logger, noteModule, "load user", err)
	}
	if user == nil {
		return "", nil
	}
	return user.DisplayName(), nil
}

func (s *noteService) stageName(ctx context.Context, uow unitofwork.UnitOfWork, id *uuid.UUID) (string, error) {
	if id == nil {
		return "", nil
	}
	stage, err := uow.StageRepository().FindOne(ctx, specification.ByID{ID: *id})
	if err != nil {
		return "", storageFault(s.logger, noteModule, "load stage", err)
	}
	if stage == nil {
		return "", nil
	}
	return stage.Name, nil
}

func (s *noteService) Archive(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	return s.transition(ctx, actor, id, entity.NoteStatusArchived)
}

func (s *noteService) Restore(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	return s.transition(ctx, actor, id, entity.NoteStatusActive)
}

// Delete is a soft delete. Deleted notes never come back and are hidden from every read.
func (s *noteService) Delete(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	return s.transition(ctx, actor, id, entity.NoteStatusDeleted)
}

// transition moves a live note to target. Reaching a state the note is already in
// is a successful no-op without an audit entry.
func (s *noteService) transition(ctx context.Context, actor entity.Actor, id uuid.UUID, target entity.NoteStatus) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return storageFault(s.logger, noteModule, "begin transaction", err)
	}
	defer uow.Rollback()

	note, err := s.loadForUpdate(ctx, uow, id)
	if err != nil {
		return err
	}
	if !note.CanModify(actor) {
		return apperror.Unauthorized("only the author or an administrator can change this note")
	}
	if note.Status == target {
		return nil
	}

	before := note.Snapshot()
	if err := uow.NoteRepository().UpdateStatus(ctx, note.Id, target); err != nil {
		return storageFault(s.logger, noteModule, "update note status", err)
	}
	note.Status = target

	var (
		details   entity.AuditDetails
		eventType string
	)
	switch target {
	case entity.NoteStatusArchived:
		details, eventType = entity.NoteArchivedDetails{Title: note.Title}, events.NoteArchived
	case entity.NoteStatusActive:
		details, eventType = entity.NoteRestoredDetails{Title: note.Title}, events.NoteRestored
	default:
		details, eventType = entity.NoteDeletedDetails{Title: note.Title}, events.NoteDeleted
	}

	entry, err := newAuditEntry(actor, note.Id, details,
		map[string]interface{}{"status": before.Status},
		map[string]interface{}{"status": target})
	if err != nil {
		return storageFault(s.logger, noteModule, "encode audit entry", err)
	}
	if err := uow.AuditLogRepository().Create(ctx, entry); err != nil {
		return storageFault(s.logger, noteModule, "write audit entry", err)
	}
	if err := uow.Commit(); err != nil {
		return storageFault(s.logger, noteModule, "commit note status", err)
	}

	s.publish(ctx, eventType, note, map[string]interface{}{"status": string(target)})
	return nil
}

func (s *noteService) list(ctx context.Context, limit, offset int, filters ...specification.Specification) (*dto.NoteListResponse, error) {
	limit, offset = normalizePage(limit, offset)
	uow := s.uowFactory.NewUnitOfWork(ctx)

	filters = append([]specification.Specification{specification.NoteNotDeleted{}}, filters...)
	total, err := uow.NoteRepository().Count(ctx, filters...)
	if err != nil {
		return nil, storageFault(s.logger, noteModule, "count notes", err)
	}

	specs := append(filters,
		specification.Scoped(scope.OrderByCreatedDesc),
		specification.Pagination{Limit: limit, Offset: offset},
	)
	notes, err := uow.NoteRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, storageFault(s.logger, noteModule, "list notes", err)
	}

	return &dto.NoteListResponse{
		Items:  s.mapper.ToResponses(notes),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (s *noteService) count(ctx context.Context, filters ...specification.Specification) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	filters = append([]specification.Specification{specification.NoteNotDeleted{}}, filters...)
	total, err := uow.NoteRepository().Count(ctx, filters...)
	if err != nil {
		return 0, storageFault(s.logger, noteModule, "count notes", err)
	}
	return total, nil
}

func contextFilters(contextType entity.ContextType, contextId *int64) ([]specification.Specification, error) {
	if !contextType.Valid() {
		return nil, apperror.Validation("invalid context type %q", contextType)
	}
	filters := []specification.Specification{specification.ByContextType{ContextType: contextType}}
	if contextId != nil {
		filters = append(filters, specification.ByContextID{ContextID: *contextId})
	}
	return filters, nil
}

func (s *noteService) ListByContext(ctx context.Context, contextType entity.ContextType, contextId *int64, limit, offset int) (*dto.NoteListResponse, error) {
	filters, err := contextFilters(contextType, contextId)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, limit, offset, filters...)
}

func (s *noteService) ListByAuthor(ctx context.Context, authorId uuid.UUID, limit, offset int) (*dto.NoteListResponse, error) {
	return s.list(ctx, limit, offset, specification.ByAuthorID{AuthorID: authorId})
}

func (s *noteService) ListByAssignee(ctx context.Context, assigneeId uuid.UUID, limit, offset int) (*dto.NoteListResponse, error) {
	return s.list(ctx, limit, offset, specification.ByAssigneeID{AssigneeID: assigneeId})
}

func (s *noteService) ListByStage(ctx context.Context, stageId uuid.UUID, limit, offset int) (*dto.NoteListResponse, error) {
	return s.list(ctx, limit, offset, specification.ByStageID{StageID: stageId})
}

func (s *noteService) ListAll(ctx context.Context, limit, offset int) (*dto.NoteListResponse, error) {
	return s.list(ctx, limit, offset)
}

func (s *noteService) CountByContext(ctx context.Context, contextType entity.ContextType, contextId *int64) (int64, error) {
	filters, err := contextFilters(contextType, contextId)
	if err != nil {
		return 0, err
	}
	return s.count(ctx, filters...)
}

func (s *noteService) CountByAuthor(ctx context.Context, authorId uuid.UUID) (int64, error) {
	return s.count(ctx, specification.ByAuthorID{AuthorID: authorId})
}

func (s *noteService) CountByAssignee(ctx context.Context, assigneeId uuid.UUID) (int64, error) {
	return s.count(ctx, specification.ByAssigneeID{AssigneeID: assigneeId})
}

func (s *noteService) CountByStage(ctx context.Context, stageId uuid.UUID) (int64, error) {
	return s.count(ctx, specification.ByStageID{StageID: stageId})
}

func (s *noteService) CountAll(ctx context.Context) (int64, error) {
	return s.count(ctx)
}

func (s *noteService) GetStatistics(ctx context.Context) (*dto.NoteStatisticsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.NoteRepository()

	perContext, err := repo.CountByContextType(ctx, specification.NoteNotDeleted{})
	if err != nil {
		return nil, storageFault(s.logger, noteModule, "count notes by context", err)
	}
	archived, err := repo.Count(ctx, specification.ByNoteStatus{Status: entity.NoteStatusArchived})
	if err != nil {
		return nil, storageFault(s.logger, noteModule, "count archived notes", err)
	}
	recent, err := repo.Count(ctx,
		specification.NoteNotDeleted{},
		specification.CreatedAfter{Time: s.now().Add(-recentNoteWindow)},
	)
	if err != nil {
		return nil, storageFault(s.logger, noteModule, "count recent notes", err)
	}

	res := &dto.NoteStatisticsResponse{
		Dashboard: perContext[entity.ContextDashboard],
		Post:      perContext[entity.ContextPost],
		Page:      perContext[entity.ContextPage],
		Archived:  archived,
		Recent:    recent,
	}
	for _, n := range perContext {
		res.Total += n
	}
	return res, nil
}

// PurgeDeletedOlderThan hard-deletes soft-deleted notes whose last change is older than days.
func (s *noteService) PurgeDeletedOlderThan(ctx context.Context, days int) (int64, error) {
	if days < 1 {
		return 0, apperror.Validation("purge window must be at least one day")
	}
	cutoff := s.now().AddDate(0, 0, -days)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	purged, err := uow.NoteRepository().DeleteAll(ctx,
		specification.NoteOnlyDeleted{},
		specification.UpdatedBefore{Time: cutoff},
	)
	if err != nil {
		return 0, storageFault(s.logger, noteModule, "purge deleted notes", err)
	}
	if purged > 0 {
		s.logger.Info(noteModule, "Purged deleted notes", map[string]interface{}{
			"purged": purged,
			"cutoff": cutoff,
		})
	}
	return purged, nil
}

func (s *noteService) publishChanges(ctx context.Context, before, after *entity.Note, fields []string) {
	s.publish(ctx, events.NoteUpdated, after, map[string]interface{}{"fields": fields})
	if !sameUUID(before.StageId, after.StageId) {
		s.publish(ctx, events.NoteStageChanged, after, map[string]interface{}{
			"old_stage_id": before.StageId,
			"new_stage_id": after.StageId,
		})
	}
}

// publish is best effort: the audit log already recorded the change.
func (s *noteService) publish(ctx context.Context, eventType string, note *entity.Note, extra map[string]interface{}) {
	data := map[string]interface{}{
		"note_id":   note.Id,
		"title":     note.Title,
		"author_id": note.AuthorId,
	}
	if note.AssigneeId != nil {
		data["assignee_id"] = *note.AssigneeId
	}
	for k, v := range extra {
		data[k] = v
	}

	evt := events.BaseEvent{Type: eventType, Data: data, OccurredAt: s.now()}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn(noteModule, "Failed to publish event", map[string]interface{}{
			"type":    eventType,
			"note_id": note.Id,
			"error":   err.Error(),
		})
	}
}
