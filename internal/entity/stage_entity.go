package entity

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

const DefaultStageColor = "#6b7280"

var stageColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func ValidStageColor(color string) bool {
	return stageColorPattern.MatchString(color)
}

type Stage struct {
	Id          uuid.UUID
	Name        string
	Description string
	Color       string
	SortOrder   int
	IsDefault   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DefaultStageSeeds is the starter workflow inserted on activation.
var DefaultStageSeeds = []Stage{
	{Name: "To Do", Description: "Notes waiting to be picked up", Color: DefaultStageColor, SortOrder: 0, IsDefault: true},
	{Name: "In Progress", Description: "Notes currently being worked on", Color: "#3b82f6", SortOrder: 1},
	{Name: "Review", Description: "Notes waiting for review", Color: "#f59e0b", SortOrder: 2},
	{Name: "Done", Description: "Completed notes", Color: "#10b981", SortOrder: 3},
}
