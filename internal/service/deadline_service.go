package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"notetrack-be/internal/dto"
	"notetrack-be/internal/entity"
	"notetrack-be/internal/mapper"
	"notetrack-be/internal/pkg/apperror"
	"notetrack-be/internal/pkg/logger"
	"notetrack-be/internal/pkg/mailer"
	"notetrack-be/internal/repository/lock"
	"notetrack-be/internal/repository/scope"
	"notetrack-be/internal/repository/specification"
	"notetrack-be/internal/repository/unitofwork"
	"notetrack-be/internal/tracer"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	deadlineModule = "DeadlineService"

	defaultUpcomingDays      = 7
	testNotificationLookback = 365
	defaultOverdueLookback   = 30
	defaultUserBatchSize     = 200
)

type IDeadlineService interface {
	RunSweep(ctx context.Context) (*dto.SweepReportResponse, error)
	SendTestNotification(ctx context.Context, userId uuid.UUID) (*dto.TestNotificationResponse, error)
	GetOverdueCount(ctx context.Context, userId uuid.UUID) (int64, error)
	GetUpcomingCount(ctx context.Context, userId uuid.UUID, daysAhead int) (int64, error)
	GetPreference(ctx context.Context, userId uuid.UUID) (*dto.DeadlinePreferenceResponse, error)
	SetPreference(ctx context.Context, userId uuid.UUID, req *dto.DeadlinePreferenceRequest) (*dto.DeadlinePreferenceResponse, error)
}

type DeadlineOptions struct {
	// OverdueLookbackDays bounds how far back overdue notes are still reported.
	OverdueLookbackDays int
	UserBatchSize       int
}

type deadlineService struct {
	uowFactory unitofwork.RepositoryFactory
	mail       mailer.MailSender
	sweepLock  lock.SweepLock
	opts       DeadlineOptions
	logger     logger.ILogger
	now        func() time.Time
}

func NewDeadlineService(
	uowFactory unitofwork.RepositoryFactory,
	mail mailer.MailSender,
	sweepLock lock.SweepLock,
	opts DeadlineOptions,
	log logger.ILogger,
) IDeadlineService {
	if opts.OverdueLookbackDays <= 0 {
		opts.OverdueLookbackDays = defaultOverdueLookback
	}
	if opts.UserBatchSize <= 0 {
		opts.UserBatchSize = defaultUserBatchSize
	}
	if sweepLock == nil {
		sweepLock = lock.NewLocalSweepLock()
	}
	return &deadlineService{
		uowFactory: uowFactory,
		mail:       mail,
		sweepLock:  sweepLock,
		opts:       opts,
		logger:     log,
		now:        utcNow,
	}
}

// RunSweep sends one digest per user with notes due soon or overdue.
// Failures for a single user are counted and logged; they never stop the sweep.
func (s *deadlineService) RunSweep(ctx context.Context) (_ *dto.SweepReportResponse, err error) {
	ctx, span := tracer.Tracer("deadline").Start(ctx, "deadline.sweep")
	defer span.End()

	now := s.now()
	report := &dto.SweepReportResponse{}

	acquired, err := s.sweepLock.Acquire(ctx, now)
	held := err == nil
	if err != nil {
		// Fail open: a missed reminder is worse than a duplicate one.
		s.logger.Warn(deadlineModule, "Sweep lock unavailable, continuing without it", map[string]interface{}{
			"error": err.Error(),
		})
		acquired = true
	}
	if !acquired {
		s.logger.Info(deadlineModule, "Sweep already running elsewhere today", nil)
		report.Locked = true
		span.SetAttributes(attribute.Bool("sweep.locked", true))
		return report, nil
	}
	defer func() {
		if err == nil || !held {
			return
		}
		// The sweep did not finish; let a retry (or another instance) run it today.
		if relErr := s.sweepLock.Release(context.WithoutCancel(ctx), now); relErr != nil {
			s.logger.Warn(deadlineModule, "Failed to release sweep lock", map[string]interface{}{
				"error": relErr.Error(),
			})
		}
	}()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	prefs, err := uow.PreferenceRepository().FindByKey(ctx, entity.PreferenceKeyDeadlines)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load preferences")
		return nil, storageFault(s.logger, deadlineModule, "load deadline preferences", err)
	}

	for offset := 0; ; offset += s.opts.UserBatchSize {
		if err := ctx.Err(); err != nil {
			s.logger.Warn(deadlineModule, "Sweep interrupted", map[string]interface{}{"error": err.Error()})
			break
		}

		users, err := uow.UserRepository().FindAll(ctx,
			specification.OrderBy{Field: "id"},
			specification.Pagination{Limit: s.opts.UserBatchSize, Offset: offset},
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "load users")
			return nil, storageFault(s.logger, deadlineModule, "load users", err)
		}

		for _, user := range users {
			report.Users++
			switch s.notifyUser(ctx, user, mapper.DecodeDeadlinePreference(prefs[user.Id]), now) {
			case outcomeSent:
				report.Sent++
			case outcomeSkipped:
				report.Skipped++
			default:
				report.Failed++
			}
		}

		if len(users) < s.opts.UserBatchSize {
			break
		}
	}

	span.SetAttributes(
		attribute.Int("sweep.users", report.Users),
		attribute.Int("sweep.sent", report.Sent),
		attribute.Int("sweep.failed", report.Failed),
	)
	s.logger.Info(deadlineModule, "Deadline sweep finished", map[string]interface{}{
		"users":   report.Users,
		"sent":    report.Sent,
		"skipped": report.Skipped,
		"failed":  report.Failed,
	})
	return report, nil
}

type sweepOutcome int

const (
	outcomeSent sweepOutcome = iota
	outcomeSkipped
	outcomeFailed
)

func (s *deadlineService) notifyUser(ctx context.Context, user *entity.User, pref entity.DeadlinePreference, now time.Time) sweepOutcome {
	if !pref.Enabled {
		return outcomeSkipped
	}
	if user.Email == "" {
		s.logger.Warn(deadlineModule, "User has no email address", map[string]interface{}{"user_id": user.Id})
		return outcomeSkipped
	}

	notes, err := s.dueNotes(ctx, user.Id, now, s.opts.OverdueLookbackDays, pref.DaysAhead)
	if err != nil {
		s.logger.Error(deadlineModule, "Failed to load due notes", map[string]interface{}{
			"user_id": user.Id,
			"error":   err.Error(),
		})
		return outcomeFailed
	}
	if len(notes) == 0 {
		return outcomeSkipped
	}

	if err := s.send(user, notes, now, false); err != nil {
		s.logger.Error(deadlineModule, "Failed to send deadline digest", map[string]interface{}{
			"user_id": user.Id,
			"notes":   len(notes),
			"error":   err.Error(),
		})
		return outcomeFailed
	}
	return outcomeSent
}

// dueNotes returns active notes the user wrote or is assigned to with a deadline
// in [now - lookbackDays, now + daysAhead], earliest first.
func (s *deadlineService) dueNotes(ctx context.Context, userId uuid.UUID, now time.Time, lookbackDays, daysAhead int) ([]*entity.Note, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.NoteRepository().FindAll(ctx,
		specification.ByNoteStatus{Status: entity.NoteStatusActive},
		specification.AuthorOrAssignee{UserID: userId},
		specification.DeadlineBetween{
			From: now.AddDate(0, 0, -lookbackDays),
			To:   now.AddDate(0, 0, daysAhead),
		},
		specification.Scoped(scope.OrderByDeadlineAsc),
	)
}

func (s *deadlineService) send(user *entity.User, notes []*entity.Note, now time.Time, test bool) error {
	digest := mailer.DeadlineDigest{
		RecipientName: user.DisplayName(),
		Items:         make([]mailer.DeadlineItem, 0, len(notes)),
		GeneratedAt:   now,
		Test:          test,
	}
	for _, n := range notes {
		digest.Items = append(digest.Items, mailer.DeadlineItem{
			Title:    n.Title,
			Priority: string(n.Priority),
			Deadline: *n.Deadline,
			Overdue:  n.IsOverdue(now),
		})
	}

	subject, body, err := mailer.RenderDeadlineDigest(digest)
	if err != nil {
		return fmt.Errorf("render digest: %w", err)
	}
	return s.mail.SendHTML(user.Email, subject, body)
}

func (s *deadlineService) SendTestNotification(ctx context.Context, userId uuid.UUID) (*dto.TestNotificationResponse, error) {
	user, err := s.findUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	pref, err := s.loadPreference(ctx, userId)
	if err != nil {
		return nil, err
	}

	now := s.now()
	notes, err := s.dueNotes(ctx, userId, now, testNotificationLookback, pref.DaysAhead)
	if err != nil {
		return nil, storageFault(s.logger, deadlineModule, "load due notes", err)
	}
	if err := s.send(user, notes, now, true); err != nil {
		s.logger.Error(deadlineModule, "Failed to send test notification", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("send test notification: %w", err)
	}

	return &dto.TestNotificationResponse{Sent: true, Notes: len(notes)}, nil
}

func (s *deadlineService) findUser(ctx context.Context, userId uuid.UUID) (*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, storageFault(s.logger, deadlineModule, "load user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user")
	}
	return user, nil
}

func (s *deadlineService) GetOverdueCount(ctx context.Context, userId uuid.UUID) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.NoteRepository().Count(ctx,
		specification.ByNoteStatus{Status: entity.NoteStatusActive},
		specification.AuthorOrAssignee{UserID: userId},
		specification.DeadlineBefore{Time: s.now()},
	)
	if err != nil {
		return 0, storageFault(s.logger, deadlineModule, "count overdue notes", err)
	}
	return count, nil
}

func (s *deadlineService) GetUpcomingCount(ctx context.Context, userId uuid.UUID, daysAhead int) (int64, error) {
	if daysAhead <= 0 {
		daysAhead = defaultUpcomingDays
	}
	now := s.now()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.NoteRepository().Count(ctx,
		specification.ByNoteStatus{Status: entity.NoteStatusActive},
		specification.AuthorOrAssignee{UserID: userId},
		specification.DeadlineBetween{From: now, To: now.AddDate(0, 0, daysAhead)},
	)
	if err != nil {
		return 0, storageFault(s.logger, deadlineModule, "count upcoming notes", err)
	}
	return count, nil
}

func (s *deadlineService) loadPreference(ctx context.Context, userId uuid.UUID) (entity.DeadlinePreference, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	raw, err := uow.PreferenceRepository().Get(ctx, userId, entity.PreferenceKeyDeadlines)
	if err != nil {
		return entity.DeadlinePreference{}, storageFault(s.logger, deadlineModule, "load preference", err)
	}
	return mapper.DecodeDeadlinePreference(raw), nil
}

func (s *deadlineService) GetPreference(ctx context.Context, userId uuid.UUID) (*dto.DeadlinePreferenceResponse, error) {
	pref, err := s.loadPreference(ctx, userId)
	if err != nil {
		return nil, err
	}
	return &dto.DeadlinePreferenceResponse{Enabled: pref.Enabled, DaysAhead: pref.DaysAhead}, nil
}

func (s *deadlineService) SetPreference(ctx context.Context, userId uuid.UUID, req *dto.DeadlinePreferenceRequest) (*dto.DeadlinePreferenceResponse, error) {
	if req.DaysAhead < entity.MinDeadlineDaysAhead || req.DaysAhead > entity.MaxDeadlineDaysAhead {
		return nil, apperror.Validation("days_ahead must be between %d and %d",
			entity.MinDeadlineDaysAhead, entity.MaxDeadlineDaysAhead)
	}

	pref := entity.DeadlinePreference{Enabled: req.Enabled, DaysAhead: req.DaysAhead}
	raw, err := json.Marshal(pref)
	if err != nil {
		return nil, apperror.Validation("invalid preference: %v", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.PreferenceRepository().Set(ctx, userId, entity.PreferenceKeyDeadlines, raw); err != nil {
		return nil, storageFault(s.logger, deadlineModule, "save preference", err)
	}
	return &dto.DeadlinePreferenceResponse{Enabled: pref.Enabled, DaysAhead: pref.DaysAhead}, nil
}
