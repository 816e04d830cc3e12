package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"notetrack-be/internal/dto"
	"notetrack-be/internal/entity"
	"notetrack-be/internal/model"
	"notetrack-be/internal/pkg/apperror"
	"notetrack-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) createNote(t *testing.T, author *model.User, req dto.CreateNoteRequest) uuid.UUID {
	t.Helper()
	if req.Title == "" {
		req.Title = "Untitled"
	}
	if req.Body == "" {
		req.Body = "body"
	}
	res, err := f.notes.Create(context.Background(), actorOf(author), &req)
	require.NoError(t, err)
	return res.Id
}

func TestNoteService_CreateRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.notes.Create(ctx, actorOf(f.author), &dto.CreateNoteRequest{
		Title:       "  Fix the header  ",
		Body:        "The logo overlaps on mobile",
		Priority:    "urgent",
		ContextType: "post",
		ContextId:   ptr(int64(42)),
	})
	require.NoError(t, err)

	note, err := f.notes.Show(ctx, res.Id)
	require.NoError(t, err)
	assert.Equal(t, "Fix the header", note.Title)
	assert.Equal(t, "The logo overlaps on mobile", note.Body)
	assert.Equal(t, "urgent", note.Priority)
	assert.Equal(t, "post", note.ContextType)
	require.NotNil(t, note.ContextId)
	assert.Equal(t, int64(42), *note.ContextId)
	assert.Equal(t, f.author.Id, note.AuthorId)
	assert.Equal(t, "active", note.Status)

	assert.Equal(t, int64(1), f.auditCount(t, res.Id, entity.ActionNoteCreated))
	assert.Equal(t, []string{events.NoteCreated}, f.publisher.types())
}

func TestNoteService_CreateDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.createNote(t, f.author, dto.CreateNoteRequest{
		Title:     "Dashboard note",
		ContextId: ptr(int64(7)),
	})

	note, err := f.notes.Show(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "medium", note.Priority)
	assert.Equal(t, "dashboard", note.ContextType)
	assert.Nil(t, note.ContextId, "dashboard notes never carry a content id")
	assert.Nil(t, note.StageId, "no stages exist yet")
}

func TestNoteService_CreateUsesDefaultStage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	todo, err := f.stages.Create(ctx, f.adminActor(), &dto.CreateStageRequest{Name: "To Do", IsDefault: true})
	require.NoError(t, err)

	res, err := f.notes.Create(ctx, actorOf(f.author), &dto.CreateNoteRequest{Title: "A", Body: "B", Priority: "high"})
	require.NoError(t, err)

	note, err := f.notes.Show(ctx, res.Id)
	require.NoError(t, err)
	require.NotNil(t, note.StageId)
	assert.Equal(t, todo.Id, *note.StageId)
}

func TestNoteService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	long := make([]rune, entity.MaxNoteTitleLength+1)
	for i := range long {
		long[i] = 'x'
	}

	cases := map[string]dto.CreateNoteRequest{
		"empty title":       {Title: "  ", Body: "b"},
		"title too long":    {Title: string(long), Body: "b"},
		"empty body":        {Title: "t", Body: ""},
		"bad priority":      {Title: "t", Body: "b", Priority: "critical"},
		"bad context":       {Title: "t", Body: "b", ContextType: "comment"},
		"post without id":   {Title: "t", Body: "b", ContextType: "post"},
		"unknown stage":     {Title: "t", Body: "b", StageId: ptr(uuid.New())},
		"unknown assignee":  {Title: "t", Body: "b", AssigneeId: ptr(uuid.New())},
		"page with zero id": {Title: "t", Body: "b", ContextType: "page", ContextId: ptr(int64(0))},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.notes.Create(ctx, actorOf(f.author), &req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperror.ErrValidation), err.Error())
		})
	}

	total, err := f.notes.CountAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestNoteService_CreateStoresDeadlineInUTC(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	jakarta := time.FixedZone("WIB", 7*60*60)
	deadline := time.Date(2026, 3, 12, 15, 0, 0, 0, jakarta)
	id := f.createNote(t, f.author, dto.CreateNoteRequest{Deadline: &deadline})

	note, err := f.notes.Show(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, note.Deadline)
	assert.True(t, note.Deadline.Equal(deadline))
}

func TestNoteService_OwnershipGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createNote(t, f.author, dto.CreateNoteRequest{Title: "Mine"})

	_, err := f.notes.Update(ctx, actorOf(f.other), &dto.UpdateNoteRequest{Id: id, Title: ptr("Hijacked")})
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))

	assert.True(t, errors.Is(f.notes.Archive(ctx, actorOf(f.other), id), apperror.ErrUnauthorized))
	assert.True(t, errors.Is(f.notes.Delete(ctx, actorOf(f.other), id), apperror.ErrUnauthorized))

	note, err := f.notes.Show(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Mine", note.Title)
	assert.Equal(t, "active", note.Status)
	assert.Zero(t, f.auditCount(t, id, entity.ActionNoteUpdated))

	res, err := f.notes.Update(ctx, f.adminActor(), &dto.UpdateNoteRequest{Id: id, Title: ptr("Moderated")})
	require.NoError(t, err)
	assert.Equal(t, "Moderated", res.Title)
}

func TestNoteService_UpdateAuditsEachKindOfChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.stages.Create(ctx, f.adminActor(), &dto.CreateStageRequest{Name: "To Do", IsDefault: true})
	require.NoError(t, err)
	doing, err := f.stages.Create(ctx, f.adminActor(), &dto.CreateStageRequest{Name: "Doing", SortOrder: 1})
	require.NoError(t, err)
	id := f.createNote(t, f.author, dto.CreateNoteRequest{Title: "Plan"})

	res, err := f.notes.Update(ctx, actorOf(f.author), &dto.UpdateNoteRequest{
		Id:         id,
		Title:      ptr("Plan v2"),
		Priority:   ptr("high"),
		AssigneeId: &f.assignee.Id,
		StageId:    &doing.Id,
	})
	require.NoError(t, err)
	assert.Equal(t, "Plan v2", res.Title)
	assert.Equal(t, "high", res.Priority)
	require.NotNil(t, res.StageId)
	assert.Equal(t, doing.Id, *res.StageId)

	assert.Equal(t, int64(1), f.auditCount(t, id, entity.ActionNoteUpdated))
	assert.Equal(t, int64(1), f.auditCount(t, id, entity.ActionAssignmentChanged))
	assert.Equal(t, int64(1), f.auditCount(t, id, entity.ActionStageChanged))

	logs, err := f.audit.GetAuditLogs(ctx, &id, 10, 0)
	require.NoError(t, err)
	var descriptions []string
	for _, item := range logs.Items {
		descriptions = append(descriptions, item.Description)
	}
	assert.Contains(t, descriptions, `Moved from stage "To Do" to "Doing"`)
	assert.Contains(t, descriptions, "Changed assignee from unassigned to Sam Assignee")
	assert.Contains(t, descriptions, `Updated note "Plan v2" (title, priority)`)

	assert.Contains(t, f.publisher.types(), events.NoteStageChanged)
}

func TestNoteService_UpdateWithoutChangesWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createNote(t, f.author, dto.CreateNoteRequest{Title: "Same", Priority: "low"})

	_, err := f.notes.Update(ctx, actorOf(f.author), &dto.UpdateNoteRequest{
		Id:       id,
		Title:    ptr("Same"),
		Priority: ptr("low"),
	})
	require.NoError(t, err)

	assert.Zero(t, f.auditCount(t, id, entity.ActionNoteUpdated))
	assert.Equal(t, []string{events.NoteCreated}, f.publisher.types())
}

func TestNoteService_UpdateClearsNullableFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deadline := fixedNow.Add(48 * time.Hour)
	id := f.createNote(t, f.author, dto.CreateNoteRequest{AssigneeId: &f.assignee.Id, Deadline: &deadline})

	res, err := f.notes.Update(ctx, actorOf(f.author), &dto.UpdateNoteRequest{
		Id:    id,
		Clear: []string{"assignee_id", "deadline"},
	})
	require.NoError(t, err)
	assert.Nil(t, res.AssigneeId)
	assert.Nil(t, res.Deadline)

	logs, err := f.audit.GetAuditLogs(ctx, &id, 10, 0)
	require.NoError(t, err)
	var descriptions []string
	for _, item := range logs.Items {
		descriptions = append(descriptions, item.Description)
	}
	assert.Contains(t, descriptions, "Changed assignee from Sam Assignee to unassigned")
}

func TestNoteService_UpdateFieldsStageGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doing, err := f.stages.Create(ctx, f.adminActor(), &dto.CreateStageRequest{Name: "Doing"})
	require.NoError(t, err)

	unassigned := f.createNote(t, f.author, dto.CreateNoteRequest{Title: "Anyone can move"})
	assigned := f.createNote(t, f.author, dto.CreateNoteRequest{Title: "Assigned", AssigneeId: &f.assignee.Id})

	// Any user may move an unassigned note.
	res, err := f.notes.UpdateFields(ctx, actorOf(f.other), &dto.UpdateNoteFieldsRequest{Id: unassigned, StageId: &doing.Id})
	require.NoError(t, err)
	assert.Equal(t, doing.Id, *res.StageId)

	// Only the assignee (or author/admin) may move an assigned one.
	_, err = f.notes.UpdateFields(ctx, actorOf(f.other), &dto.UpdateNoteFieldsRequest{Id: assigned, StageId: &doing.Id})
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
	_, err = f.notes.UpdateFields(ctx, actorOf(f.assignee), &dto.UpdateNoteFieldsRequest{Id: assigned, StageId: &doing.Id})
	require.NoError(t, err)

	// Anything beyond the stage needs the full gate.
	_, err = f.notes.UpdateFields(ctx, actorOf(f.assignee), &dto.UpdateNoteFieldsRequest{Id: assigned, Priority: ptr("urgent")})
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
}

func TestNoteService_UpdateFieldsGateRunsBeforeLookups(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	assigned := f.createNote(t, f.author, dto.CreateNoteRequest{Title: "Assigned", AssigneeId: &f.assignee.Id})

	unknownUser, unknownStage := uuid.New(), uuid.New()
	cases := map[string]*dto.UpdateNoteFieldsRequest{
		"unknown assignee":        {Id: assigned, AssigneeId: &unknownUser},
		"unknown stage":           {Id: assigned, StageId: &unknownStage},
		"stage plus other change": {Id: assigned, StageId: &unknownStage, Clear: []string{"deadline"}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.notes.UpdateFields(ctx, actorOf(f.other), req)
			assert.True(t, errors.Is(err, apperror.ErrUnauthorized), "got %v", err)
			assert.False(t, errors.Is(err, apperror.ErrValidation))
		})
	}

	// The author still gets the validation error for the same request.
	_, err := f.notes.UpdateFields(ctx, actorOf(f.author), &dto.UpdateNoteFieldsRequest{Id: assigned, AssigneeId: &unknownUser})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestNoteService_DeletedNoteIsHidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	keep := f.createNote(t, f.author, dto.CreateNoteRequest{Title: "Keep"})
	gone := f.createNote(t, f.author, dto.CreateNoteRequest{Title: "Gone", AssigneeId: &f.assignee.Id})

	require.NoError(t, f.notes.Delete(ctx, actorOf(f.author), gone))

	_, err := f.notes.Show(ctx, gone)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	all, err := f.notes.ListAll(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all.Items, 1)
	assert.Equal(t, keep, all.Items[0].Id)
	assert.Equal(t, int64(1), all.Total)

	byAuthor, err := f.notes.ListByAuthor(ctx, f.author.Id, 10, 0)
	require.NoError(t, err)
	assert.Len(t, byAuthor.Items, 1)

	byAssignee, err := f.notes.CountByAssignee(ctx, f.assignee.Id)
	require.NoError(t, err)
	assert.Zero(t, byAssignee)

	byContext, err := f.notes.CountByContext(ctx, entity.ContextDashboard, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), byContext)

	_, err = f.notes.Update(ctx, actorOf(f.author), &dto.UpdateNoteRequest{Id: gone, Title: ptr("Back?")})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
	assert.True(t, errors.Is(f.notes.Restore(ctx, actorOf(f.author), gone), apperror.ErrNotFound))

	assert.Equal(t, int64(1), f.auditCount(t, gone, entity.ActionNoteDeleted))
}

func TestNoteService_ArchiveRestore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createNote(t, f.author, dto.CreateNoteRequest{Title: "Seasonal"})

	require.NoError(t, f.notes.Archive(ctx, actorOf(f.author), id))
	require.NoError(t, f.notes.Archive(ctx, actorOf(f.author), id))

	note, err := f.notes.Show(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "archived", note.Status)
	assert.Equal(t, int64(1), f.auditCount(t, id, entity.ActionNoteArchived), "archiving twice is a no-op")

	require.NoError(t, f.notes.Restore(ctx, actorOf(f.author), id))
	note, err = f.notes.Show(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "active", note.Status)
	assert.Equal(t, int64(1), f.auditCount(t, id, entity.ActionNoteRestored))

	assert.Equal(t, []string{events.NoteCreated, events.NoteArchived, events.NoteRestored}, f.publisher.types())
}

func TestNoteService_ListPagingAndOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		ids = append(ids, f.createNote(t, f.author, dto.CreateNoteRequest{Title: "Note"}))
		// Distinct creation times make the newest-first order deterministic.
		require.NoError(t, f.db.Model(&model.Note{}).Where("id = ?", ids[i]).
			Update("created_at", fixedNow.Add(time.Duration(i)*time.Minute)).Error)
	}

	page, err := f.notes.ListAll(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 2, page.Limit)
	assert.Equal(t, 1, page.Offset)
	require.Len(t, page.Items, 2)
	assert.Equal(t, ids[3], page.Items[0].Id)
	assert.Equal(t, ids[2], page.Items[1].Id)

	capped, err := f.notes.ListAll(ctx, 10000, -3)
	require.NoError(t, err)
	assert.Equal(t, 200, capped.Limit)
	assert.Zero(t, capped.Offset)
}

func TestNoteService_ListByContextAndStage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doing, err := f.stages.Create(ctx, f.adminActor(), &dto.CreateStageRequest{Name: "Doing"})
	require.NoError(t, err)

	f.createNote(t, f.author, dto.CreateNoteRequest{ContextType: "post", ContextId: ptr(int64(1))})
	f.createNote(t, f.author, dto.CreateNoteRequest{ContextType: "post", ContextId: ptr(int64(2))})
	f.createNote(t, f.author, dto.CreateNoteRequest{ContextType: "page", ContextId: ptr(int64(1)), StageId: &doing.Id})

	posts, err := f.notes.ListByContext(ctx, entity.ContextPost, nil, 0, 0)
	require.NoError(t, err)
	assert.Len(t, posts.Items, 2)

	post1, err := f.notes.ListByContext(ctx, entity.ContextPost, ptr(int64(1)), 0, 0)
	require.NoError(t, err)
	assert.Len(t, post1.Items, 1)

	_, err = f.notes.ListByContext(ctx, entity.ContextType("widget"), nil, 0, 0)
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	staged, err := f.notes.ListByStage(ctx, doing.Id, 0, 0)
	require.NoError(t, err)
	require.Len(t, staged.Items, 1)
	assert.Equal(t, "page", staged.Items[0].ContextType)

	n, err := f.notes.CountByStage(ctx, doing.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestNoteService_Statistics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.createNote(t, f.author, dto.CreateNoteRequest{})
	f.createNote(t, f.author, dto.CreateNoteRequest{ContextType: "post", ContextId: ptr(int64(3))})
	archived := f.createNote(t, f.author, dto.CreateNoteRequest{ContextType: "page", ContextId: ptr(int64(3))})
	deleted := f.createNote(t, f.author, dto.CreateNoteRequest{})
	old := f.createNote(t, f.author, dto.CreateNoteRequest{})

	require.NoError(t, f.notes.Archive(ctx, actorOf(f.author), archived))
	require.NoError(t, f.notes.Delete(ctx, actorOf(f.author), deleted))

	// created_at comes from the real clock; pin every note relative to fixedNow.
	require.NoError(t, f.db.Model(&model.Note{}).Where("1 = 1").Update("created_at", fixedNow.Add(-time.Hour)).Error)
	require.NoError(t, f.db.Model(&model.Note{}).Where("id = ?", old).
		Update("created_at", fixedNow.AddDate(0, 0, -30)).Error)

	stats, err := f.notes.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(2), stats.Dashboard)
	assert.Equal(t, int64(1), stats.Post)
	assert.Equal(t, int64(1), stats.Page)
	assert.Equal(t, int64(1), stats.Archived)
	assert.Equal(t, int64(3), stats.Recent)
}

func TestNoteService_PurgeDeletedOlderThan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stale := f.createNote(t, f.author, dto.CreateNoteRequest{Title: "Stale"})
	recent := f.createNote(t, f.author, dto.CreateNoteRequest{Title: "Recent"})
	live := f.createNote(t, f.author, dto.CreateNoteRequest{Title: "Live"})
	require.NoError(t, f.notes.Delete(ctx, actorOf(f.author), stale))
	require.NoError(t, f.notes.Delete(ctx, actorOf(f.author), recent))

	require.NoError(t, f.db.Model(&model.Note{}).Where("id = ?", stale).
		UpdateColumn("updated_at", fixedNow.AddDate(0, 0, -60)).Error)
	require.NoError(t, f.db.Model(&model.Note{}).Where("id IN ?", []uuid.UUID{recent, live}).
		UpdateColumn("updated_at", fixedNow.AddDate(0, 0, -60)).Error)
	require.NoError(t, f.db.Model(&model.Note{}).Where("id = ?", recent).
		UpdateColumn("updated_at", fixedNow.Add(-time.Hour)).Error)

	_, err := f.notes.PurgeDeletedOlderThan(ctx, 0)
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	purged, err := f.notes.PurgeDeletedOlderThan(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	var remaining int64
	require.NoError(t, f.db.Model(&model.Note{}).Count(&remaining).Error)
	assert.Equal(t, int64(2), remaining, "the recently deleted and the live note stay")
}
