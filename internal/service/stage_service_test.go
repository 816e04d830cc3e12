package service

import (
	"context"
	"errors"
	"testing"

	"notetrack-be/internal/dto"
	"notetrack-be/internal/entity"
	"notetrack-be/internal/model"
	"notetrack-be/internal/pkg/apperror"
	"notetrack-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countDefaults(t *testing.T, f *fixture) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.Stage{}).Where("is_default = ?", true).Count(&n).Error)
	return n
}

func TestStageService_DefaultMovesToNewestDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	todo, err := f.stages.Create(ctx, f.adminActor(), &dto.CreateStageRequest{Name: "To Do", IsDefault: true})
	require.NoError(t, err)
	done, err := f.stages.Create(ctx, f.adminActor(), &dto.CreateStageRequest{Name: "Done", IsDefault: true})
	require.NoError(t, err)

	def, err := f.stages.GetDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, done.Id, def.Id)
	assert.Equal(t, "Done", def.Name)

	old, err := f.stages.Get(ctx, todo.Id)
	require.NoError(t, err)
	assert.False(t, old.IsDefault)
	assert.Equal(t, int64(1), countDefaults(t, f))
}

func TestStageService_DefaultExclusivityAcrossUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for _, name := range []string{"One", "Two", "Three"} {
		res, err := f.stages.Create(ctx, f.adminActor(), &dto.CreateStageRequest{Name: name, IsDefault: true})
		require.NoError(t, err)
		ids = append(ids, res.Id)
		assert.Equal(t, int64(1), countDefaults(t, f))
	}

	for _, id := range []uuid.UUID{ids[0], ids[2], ids[1], ids[1]} {
		_, err := f.stages.Update(ctx, f.adminActor(), &dto.UpdateStageRequest{Id: id, IsDefault: ptr(true)})
		require.NoError(t, err)
		assert.Equal(t, int64(1), countDefaults(t, f))

		def, err := f.stages.GetDefault(ctx)
		require.NoError(t, err)
		assert.Equal(t, id, def.Id)
	}
}

func TestStageService_CreateRejectsEmptyName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.stages.Create(ctx, f.adminActor(), &dto.CreateStageRequest{Name: "Backlog"})
	require.NoError(t, err)
	before, err := f.stages.List(ctx)
	require.NoError(t, err)

	_, err = f.stages.Create(ctx, f.adminActor(), &dto.CreateStageRequest{Name: "   "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	after, err := f.stages.List(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestStageService_CreateValidatesColor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.stages.Create(ctx, f.adminActor(), &dto.CreateStageRequest{Name: "Red", Color: "red"})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	res, err := f.stages.Create(ctx, f.adminActor(), &dto.CreateStageRequest{Name: "Blue", Color: "#3B82F6"})
	require.NoError(t, err)
	stage, err := f.stages.Get(ctx, res.Id)
	require.NoError(t, err)
	assert.Equal(t, "#3b82f6", stage.Color)

	res, err = f.stages.Create(ctx, f.adminActor(), &dto.CreateStageRequest{Name: "Plain"})
	require.NoError(t, err)
	stage, err = f.stages.Get(ctx, res.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultStageColor, stage.Color)
}

func TestStageService_MutationsRequireAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := actorOf(f.author)

	_, err := f.stages.Create(ctx, user, &dto.CreateStageRequest{Name: "Mine"})
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))

	res, err := f.stages.Create(ctx, f.adminActor(), &dto.CreateStageRequest{Name: "Shared"})
	require.NoError(t, err)

	_, err = f.stages.Update(ctx, user, &dto.UpdateStageRequest{Id: res.Id, Name: ptr("Renamed")})
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))

	err = f.stages.Delete(ctx, user, res.Id)
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))

	stage, err := f.stages.Get(ctx, res.Id)
	require.NoError(t, err)
	assert.Equal(t, "Shared", stage.Name)
}

func TestStageService_DeleteReassignsNotesToDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	todo, err := f.stages.Create(ctx, f.adminActor(), &dto.CreateStageRequest{Name: "To Do", IsDefault: true})
	require.NoError(t, err)
	review, err := f.stages.Create(ctx, f.adminActor(), &dto.CreateStageRequest{Name: "Review", SortOrder: 2})
	require.NoError(t, err)

	var noteIds []uuid.UUID
	for i := 0; i < 3; i++ {
		res, err := f.notes.Create(ctx, actorOf(f.author), &dto.CreateNoteRequest{
			Title:   "Review me",
			Body:    "body",
			StageId: &review.Id,
		})
		require.NoError(t, err)
		noteIds = append(noteIds, res.Id)
	}

	require.NoError(t, f.stages.Delete(ctx, f.adminActor(), review.Id))

	_, err = f.stages.Get(ctx, review.Id)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	for _, id := range noteIds {
		note, err := f.notes.Show(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, note.StageId)
		assert.Equal(t, todo.Id, *note.StageId)
		assert.Equal(t, int64(1), f.auditCount(t, id, entity.ActionStageChanged))
	}

	var dangling int64
	require.NoError(t, f.db.Model(&model.Note{}).Where("stage_id = ?", review.Id).Count(&dangling).Error)
	assert.Zero(t, dangling)

	assert.Contains(t, f.publisher.types(), events.StageDeleted)
}

func TestStageService_DeleteWithoutDefaultClearsStage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	review, err := f.stages.Create(ctx, f.adminActor(), &dto.CreateStageRequest{Name: "Review"})
	require.NoError(t, err)
	res, err := f.notes.Create(ctx, actorOf(f.author), &dto.CreateNoteRequest{
		Title:   "Orphan",
		Body:    "body",
		StageId: &review.Id,
	})
	require.NoError(t, err)

	require.NoError(t, f.stages.Delete(ctx, f.adminActor(), review.Id))

	note, err := f.notes.Show(ctx, res.Id)
	require.NoError(t, err)
	assert.Nil(t, note.StageId)
}

func TestStageService_DeleteKeepsPurgeClockOfDeletedNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	review, err := f.stages.Create(ctx, f.adminActor(), &dto.CreateStageRequest{Name: "Review"})
	require.NoError(t, err)
	res, err := f.notes.Create(ctx, actorOf(f.author), &dto.CreateNoteRequest{
		Title:   "Old and gone",
		Body:    "body",
		StageId: &review.Id,
	})
	require.NoError(t, err)
	require.NoError(t, f.notes.Delete(ctx, actorOf(f.author), res.Id))

	deletedAt := fixedNow.AddDate(0, 0, -60)
	require.NoError(t, f.db.Model(&model.Note{}).Where("id = ?", res.Id).
		UpdateColumn("updated_at", deletedAt).Error)

	require.NoError(t, f.stages.Delete(ctx, f.adminActor(), review.Id))

	var row model.Note
	require.NoError(t, f.db.First(&row, "id = ?", res.Id).Error)
	assert.Nil(t, row.StageId)
	assert.True(t, row.UpdatedAt.Equal(deletedAt), "updated_at moved to %s", row.UpdatedAt)

	purged, err := f.notes.PurgeDeletedOlderThan(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestStageService_DeleteDefaultIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	todo, err := f.stages.Create(ctx, f.adminActor(), &dto.CreateStageRequest{Name: "To Do", IsDefault: true})
	require.NoError(t, err)

	err = f.stages.Delete(ctx, f.adminActor(), todo.Id)
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	err = f.stages.Delete(ctx, f.adminActor(), uuid.New())
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestStageService_SeedingIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.stages.CreateDefaultStages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, created)

	created, err = f.stages.CreateDefaultStages(ctx)
	require.NoError(t, err)
	assert.Zero(t, created)

	stages, err := f.stages.List(ctx)
	require.NoError(t, err)
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"To Do", "In Progress", "Review", "Done"}, names)

	def, err := f.stages.GetDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, "To Do", def.Name)
}

func TestStageService_SeedingKeepsExistingDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	custom, err := f.stages.Create(ctx, f.adminActor(), &dto.CreateStageRequest{Name: "Inbox", IsDefault: true, SortOrder: -1})
	require.NoError(t, err)

	created, err := f.stages.CreateDefaultStages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, created)

	def, err := f.stages.GetDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, custom.Id, def.Id)
	assert.Equal(t, int64(1), countDefaults(t, f))
}

func TestStageService_ListIsCachedUntilChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.stages.Create(ctx, f.adminActor(), &dto.CreateStageRequest{Name: "A"})
	require.NoError(t, err)
	first, err := f.stages.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A write behind the service's back is not visible until the cache is invalidated.
	require.NoError(t, f.db.Create(&model.Stage{Name: "Sneaky", Color: entity.DefaultStageColor}).Error)
	cached, err := f.stages.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	_, err = f.stages.Create(ctx, f.adminActor(), &dto.CreateStageRequest{Name: "B"})
	require.NoError(t, err)
	fresh, err := f.stages.List(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}
