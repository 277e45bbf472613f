package api

import "github.com/BJS-kr/whatup/shared/domain"

// Request DTOs

type AddContentRequest struct {
	Content         string  `json:"content" validate:"required"`
	ParentContentId *string `json:"parent_content_id,omitempty" validate:"omitempty,min=1"`
}

type UpdateContentRequest struct {
	Content string `json:"content" validate:"required"`
}

type RequestChangesRequest struct {
	Message string `json:"message" validate:"required"`
}

// Response DTOs

type ContentResponse struct {
	domain.Content
}

type ContentListResponse struct {
	Contents []domain.Content `json:"contents"`
}

type ContentLikeResponse struct {
	Id        domain.ContentId `json:"id"`
	LikeCount int              `json:"like_count"`
}
