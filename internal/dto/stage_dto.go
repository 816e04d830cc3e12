package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateStageRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	Color       string `json:"color" validate:"omitempty,hexcolor,len=7"`
	SortOrder   int    `json:"sort_order"`
	IsDefault   bool   `json:"is_default"`
}

type CreateStageResponse struct {
	Id uuid.UUID `json:"id"`
}

type UpdateStageRequest struct {
	Id          uuid.UUID `json:"-"`
	Name        *string   `json:"name" validate:"omitempty,max=100"`
	Description *string   `json:"description"`
	Color       *string   `json:"color" validate:"omitempty,hexcolor,len=7"`
	SortOrder   *int      `json:"sort_order"`
	IsDefault   *bool     `json:"is_default"`
}

type StageResponse struct {
	Id          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	SortOrder   int       `json:"sort_order"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
}

type SeedStagesResponse struct {
	Created int `json:"created"`
}
