package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"notetrack-be/internal/dto"
	"notetrack-be/internal/entity"
	"notetrack-be/internal/mapper"
	"notetrack-be/internal/pkg/apperror"
	"notetrack-be/internal/pkg/logger"
	"notetrack-be/internal/repository/memory"
	"notetrack-be/internal/repository/scope"
	"notetrack-be/internal/repository/specification"
	"notetrack-be/internal/repository/unitofwork"
	"notetrack-be/pkg/events"

	"github.com/google/uuid"
)

const (
	stageModule        = "StageService"
	maxStageNameLength = 100
)

type IStageService interface {
	List(ctx context.Context) ([]*dto.StageResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.StageResponse, error)
	GetDefault(ctx context.Context) (*dto.StageResponse, error)
	Create(ctx context.Context, actor entity.Actor, req *dto.CreateStageRequest) (*dto.CreateStageResponse, error)
	Update(ctx context.Context, actor entity.Actor, req *dto.UpdateStageRequest) (*dto.StageResponse, error)
	Delete(ctx context.Context, actor entity.Actor, id uuid.UUID) error
	CreateDefaultStages(ctx context.Context) (int, error)
}

type stageService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *memory.StageCache
	publisher  IPublisherService
	mapper     *mapper.StageMapper
	logger     logger.ILogger
}

func NewStageService(
	uowFactory unitofwork.RepositoryFactory,
	cache *memory.StageCache,
	publisher IPublisherService,
	log logger.ILogger,
) IStageService {
	return &stageService{
		uowFactory: uowFactory,
		cache:      cache,
		publisher:  publisher,
		mapper:     mapper.NewStageMapper(),
		logger:     log,
	}
}

func (s *stageService) List(ctx context.Context) ([]*dto.StageResponse, error) {
	if stages, ok := s.cache.Get(); ok {
		return s.mapper.ToResponses(stages), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	stages, err := uow.StageRepository().FindAll(ctx, specification.Scoped(scope.StageOrder))
	if err != nil {
		return nil, storageFault(s.logger, stageModule, "list stages", err)
	}

	s.cache.Save(stages)
	return s.mapper.ToResponses(stages), nil
}

func (s *stageService) Get(ctx context.Context, id uuid.UUID) (*dto.StageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	stage, err := uow.StageRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, storageFault(s.logger, stageModule, "load stage", err)
	}
	if stage == nil {
		return nil, apperror.NotFound("stage")
	}
	return s.mapper.ToResponse(stage), nil
}

func (s *stageService) GetDefault(ctx context.Context) (*dto.StageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	stage, err := uow.StageRepository().FindOne(ctx, specification.IsDefaultStage{})
	if err != nil {
		return nil, storageFault(s.logger, stageModule, "load default stage", err)
	}
	if stage == nil {
		return nil, apperror.NotFound("default stage")
	}
	return s.mapper.ToResponse(stage), nil
}

func validateStageName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperror.Validation("stage name is required")
	}
	if utf8.RuneCountInString(name) > maxStageNameLength {
		return "", apperror.Validation("stage name must be at most %d characters", maxStageNameLength)
	}
	return name, nil
}

func validateStageColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return entity.DefaultStageColor, nil
	}
	if !entity.ValidStageColor(color) {
		return "", apperror.Validation("stage color must look like #RRGGBB")
	}
	return strings.ToLower(color), nil
}

func (s *stageService) Create(ctx context.Context, actor entity.Actor, req *dto.CreateStageRequest) (*dto.CreateStageResponse, error) {
	if !actor.IsAdmin {
		return nil, apperror.Unauthorized("only administrators can manage stages")
	}

	name, err := validateStageName(req.Name)
	if err != nil {
		return nil, err
	}
	color, err := validateStageColor(req.Color)
	if err != nil {
		return nil, err
	}

	stage := entity.Stage{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Color:       color,
		SortOrder:   req.SortOrder,
		IsDefault:   req.IsDefault,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageFault(s.logger, stageModule, "begin transaction", err)
	}
	defer uow.Rollback()

	// Clear and set happen in one transaction so readers never see two defaults.
	if stage.IsDefault {
		if err := uow.StageRepository().ClearDefault(ctx); err != nil {
			return nil, storageFault(s.logger, stageModule, "clear default stage", err)
		}
	}
	if err := uow.StageRepository().Create(ctx, &stage); err != nil {
		return nil, storageFault(s.logger, stageModule, "create stage", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, storageFault(s.logger, stageModule, "commit stage", err)
	}
	s.cache.Invalidate()

	s.logger.Info(stageModule, "Stage created", map[string]interface{}{
		"stage_id":   stage.Id,
		"name":       stage.Name,
		"is_default": stage.IsDefault,
	})

	return &dto.CreateStageResponse{Id: stage.Id}, nil
}

func (s *stageService) Update(ctx context.Context, actor entity.Actor, req *dto.UpdateStageRequest) (*dto.StageResponse, error) {
	if !actor.IsAdmin {
		return nil, apperror.Unauthorized("only administrators can manage stages")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, storageFault(s.logger, stageModule, "begin transaction", err)
	}
	defer uow.Rollback()

	stage, err := uow.StageRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, storageFault(s.logger, stageModule, "load stage", err)
	}
	if stage == nil {
		return nil, apperror.NotFound("stage")
	}

	if req.Name != nil {
		if stage.Name, err = validateStageName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Color != nil {
		if stage.Color, err = validateStageColor(*req.Color); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		stage.Description = strings.TrimSpace(*req.Description)
	}
	if req.SortOrder != nil {
		stage.SortOrder = *req.SortOrder
	}
	if req.IsDefault != nil {
		if *req.IsDefault && !stage.IsDefault {
			if err := uow.StageRepository().ClearDefault(ctx); err != nil {
				return nil, storageFault(s.logger, stageModule, "clear default stage", err)
			}
		}
		stage.IsDefault = *req.IsDefault
	}

	if err := uow.StageRepository().Update(ctx, stage); err != nil {
		return nil, storageFault(s.logger, stageModule, "update stage", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, storageFault(s.logger, stageModule, "commit stage", err)
	}
	s.cache.Invalidate()

	return s.mapper.ToResponse(stage), nil
}

// Delete moves the stage's notes to the default stage (or none) and removes it.
// Every moved note gets a stage_changed entry with reason stage_deleted.
func (s *stageService) Delete(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	if !actor.IsAdmin {
		return apperror.Unauthorized("only administrators can manage stages")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return storageFault(s.logger, stageModule, "begin transaction", err)
	}
	defer uow.Rollback()

	stageRepo := uow.StageRepository()
	stage, err := stageRepo.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return storageFault(s.logger, stageModule, "load stage", err)
	}
	if stage == nil {
		return apperror.NotFound("stage")
	}
	if stage.IsDefault {
		return apperror.Conflict("the default stage cannot be deleted; choose another default first")
	}

	defaultStage, err := stageRepo.FindOne(ctx, specification.IsDefaultStage{})
	if err != nil {
		return storageFault(s.logger, stageModule, "load default stage", err)
	}
	var target *uuid.UUID
	targetName := ""
	if defaultStage != nil {
		target = &defaultStage.Id
		targetName = defaultStage.Name
	}

	affected, err := uow.NoteRepository().FindAll(ctx, specification.ByStageID{StageID: stage.Id})
	if err != nil {
		return storageFault(s.logger, stageModule, "load stage notes", err)
	}
	if _, err := uow.NoteRepository().ReassignStage(ctx, stage.Id, target); err != nil {
		return storageFault(s.logger, stageModule, "reassign notes", err)
	}

	for _, note := range affected {
		entry, err := newAuditEntry(actor, note.Id, entity.StageChangedDetails{
			OldStageId:   &stage.Id,
			NewStageId:   target,
			OldStageName: stage.Name,
			NewStageName: targetName,
			Reason:       entity.StageChangeReasonStageDeleted,
		}, map[string]interface{}{"stage_id": stage.Id}, map[string]interface{}{"stage_id": target})
		if err != nil {
			return storageFault(s.logger, stageModule, "encode audit entry", err)
		}
		if err := uow.AuditLogRepository().Create(ctx, entry); err != nil {
			return storageFault(s.logger, stageModule, "write audit entry", err)
		}
	}

	if err := stageRepo.Delete(ctx, stage.Id); err != nil {
		return storageFault(s.logger, stageModule, "delete stage", err)
	}
	if err := uow.Commit(); err != nil {
		return storageFault(s.logger, stageModule, "commit stage deletion", err)
	}
	s.cache.Invalidate()

	s.logger.Info(stageModule, "Stage deleted", map[string]interface{}{
		"stage_id":     stage.Id,
		"reassigned":   len(affected),
		"target_stage": target,
		"deleted_by":   actor.UserId,
	})

	s.publish(ctx, events.BaseEvent{
		Type: events.StageDeleted,
		Data: map[string]interface{}{
			"stage_id":        stage.Id,
			"name":            stage.Name,
			"reassigned":      len(affected),
			"target_stage_id": target,
		},
		OccurredAt: utcNow(),
	})
	return nil
}

// CreateDefaultStages inserts the starter stages that are missing by name.
// "To Do" only becomes the default when no default exists yet.
func (s *stageService) CreateDefaultStages(ctx context.Context) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, storageFault(s.logger, stageModule, "begin transaction", err)
	}
	defer uow.Rollback()

	stageRepo := uow.StageRepository()
	existing, err := stageRepo.FindAll(ctx)
	if err != nil {
		return 0, storageFault(s.logger, stageModule, "list stages", err)
	}

	names := make(map[string]bool, len(existing))
	hasDefault := false
	for _, st := range existing {
		names[strings.ToLower(st.Name)] = true
		hasDefault = hasDefault || st.IsDefault
	}

	created := 0
	for _, seed := range entity.DefaultStageSeeds {
		if names[strings.ToLower(seed.Name)] {
			continue
		}
		stage := seed
		stage.IsDefault = seed.IsDefault && !hasDefault
		if err := stageRepo.Create(ctx, &stage); err != nil {
			return 0, storageFault(s.logger, stageModule, "seed stage", err)
		}
		created++
	}

	if err := uow.Commit(); err != nil {
		return 0, storageFault(s.logger, stageModule, "commit seed", err)
	}
	s.cache.Invalidate()

	if created > 0 {
		s.logger.Info(stageModule, "Default stages seeded", map[string]interface{}{"created": created})
	}
	return created, nil
}

func (s *stageService) publish(ctx context.Context, event events.BaseEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(stageModule, "Failed to publish event", map[string]interface{}{
			"type":  event.Type,
			"error": err.Error(),
		})
	}
}
