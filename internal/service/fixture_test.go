package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"notetrack-be/internal/entity"
	"notetrack-be/internal/model"
	"notetrack-be/internal/pkg/logger"
	"notetrack-be/internal/repository/lock"
	"notetrack-be/internal/repository/memory"
	"notetrack-be/internal/repository/unitofwork"
	"notetrack-be/pkg/database"
	"notetrack-be/pkg/events"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fixedNow is the clock every fixture service runs on.
var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	mu     sync.Mutex
	sent   []sentMail
	failTo map[string]bool
}

func (m *fakeMailer) SendHTML(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTo[to] {
		return fmt.Errorf("smtp: mailbox %s unavailable", to)
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type fakeSweepLock struct {
	granted  bool
	err      error
	calls    int
	released int
}

func (l *fakeSweepLock) Acquire(context.Context, time.Time) (bool, error) {
	l.calls++
	return l.granted, l.err
}

func (l *fakeSweepLock) Release(context.Context, time.Time) error {
	l.released++
	return nil
}

// dayLock behaves like the Redis lock: the first Acquire per day wins until Release.
type dayLock struct {
	mu   sync.Mutex
	held map[string]bool
}

func (l *dayLock) Acquire(_ context.Context, day time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := lock.SweepKey(day)
	if l.held[key] {
		return false, nil
	}
	if l.held == nil {
		l.held = map[string]bool{}
	}
	l.held[key] = true
	return true, nil
}

func (l *dayLock) Release(_ context.Context, day time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, lock.SweepKey(day))
	return nil
}

type fixture struct {
	db        *gorm.DB
	factory   unitofwork.RepositoryFactory
	publisher *recordingPublisher
	mail      *fakeMailer

	notes    INoteService
	stages   IStageService
	audit    IAuditService
	deadline IDeadlineService

	author   *model.User
	other    *model.User
	admin    *model.User
	assignee *model.User
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithLock(t, lock.NewLocalSweepLock())
}

func newFixtureWithLock(t *testing.T, sweepLock lock.SweepLock) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.NewGormConfig(gormlogger.Silent))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A second connection would open a different in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db, true))

	f := &fixture{
		db:        db,
		factory:   unitofwork.NewRepositoryFactory(db),
		publisher: &recordingPublisher{},
		mail:      &fakeMailer{failTo: map[string]bool{}},
	}
	f.author = f.seedUser(t, "author@example.com", "Ada Author", "user")
	f.other = f.seedUser(t, "other@example.com", "Oscar Other", "user")
	f.admin = f.seedUser(t, "admin@example.com", "Alice Admin", "admin")
	f.assignee = f.seedUser(t, "assignee@example.com", "Sam Assignee", "user")

	log := logger.NewNopLogger()
	userNames, err := memory.NewUserNameCache(16)
	require.NoError(t, err)

	clock := func() time.Time { return fixedNow }

	notes := NewNoteService(f.factory, f.publisher, log)
	notes.(*noteService).now = clock
	f.notes = notes

	f.stages = NewStageService(f.factory, memory.NewStageCache(time.Minute), f.publisher, log)

	audit := NewAuditService(f.factory, userNames, log)
	audit.(*auditService).now = clock
	f.audit = audit

	deadline := NewDeadlineService(f.factory, f.mail, sweepLock, DeadlineOptions{
		OverdueLookbackDays: 30,
		UserBatchSize:       2,
	}, log)
	deadline.(*deadlineService).now = clock
	f.deadline = deadline

	return f
}

func (f *fixture) seedUser(t *testing.T, email, name, role string) *model.User {
	t.Helper()
	u := &model.User{Id: uuid.New(), Email: email, FullName: name, Role: role}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func actorOf(u *model.User) entity.Actor {
	return entity.Actor{
		UserId:    u.Id,
		IsAdmin:   u.Role == "admin",
		IpAddress: "203.0.113.7",
		UserAgent: "test-agent",
	}
}

func (f *fixture) adminActor() entity.Actor {
	return actorOf(f.admin)
}

func (f *fixture) auditCount(t *testing.T, noteId uuid.UUID, action entity.AuditAction) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.NoteAuditLog{}).
		Where("note_id = ? AND action = ?", noteId, string(action)).
		Count(&n).Error)
	return n
}

func nopLog() logger.ILogger {
	return logger.NewNopLogger()
}

func ptr[T any](v T) *T {
	return &v
}
