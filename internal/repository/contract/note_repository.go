package contract

import (
	"context"

	"notetrack-be/internal/entity"
	"notetrack-be/internal/repository/specification"

	"github.com/google/uuid"
)

type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	Update(ctx context.Context, note *entity.Note) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.NoteStatus) error
	// ReassignStage moves every note on stage from to stage to (nil clears it) and returns the rows touched.
	// updated_at is left alone: it dates the note's own last change and drives purging of deleted notes.
	ReassignStage(ctx context.Context, from uuid.UUID, to *uuid.UUID) (int64, error)
	DeleteAll(ctx context.Context, specs ...specification.Specification) (int64, error) // Hard delete
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	CountByContextType(ctx context.Context, specs ...specification.Specification) (map[entity.ContextType]int64, error)
}
