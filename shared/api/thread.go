package api

import (
	"github.com/BJS-kr/whatup/shared/domain"
)

// Request DTOs

type CreateThreadRequest struct {
	Title                        string `json:"title" validate:"required,max=200"`
	Description                  string `json:"description" validate:"required"`
	MaxLength                    int    `json:"max_length" validate:"required,gt=0"`
	AutoAccept                   bool   `json:"auto_accept"`
	AllowConsecutiveContribution bool   `json:"allow_consecutive_contribution"`
	InitialContent               string `json:"initial_content" validate:"required"`
}

type UpdateThreadRequest struct {
	Description                  string `json:"description" validate:"required"`
	MaxLength                    int    `json:"max_length" validate:"required,gt=0"`
	AutoAccept                   bool   `json:"auto_accept"`
	AllowConsecutiveContribution bool   `json:"allow_consecutive_contribution"`
}

// Response DTOs

type CreateThreadResponse struct {
	Id domain.ThreadId `json:"id"`
}

// ThreadResponse wraps a full thread with contents
type ThreadResponse struct {
	domain.Thread
}

type ThreadListResponse struct {
	Threads []domain.ThreadMetadata `json:"threads"`
}

type ThreadLikeResponse struct {
	domain.ThreadLike
}
