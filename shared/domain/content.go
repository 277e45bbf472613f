package domain

import (
	"sort"
	"time"
)

type ContentStatus string

const (
	ContentPending  ContentStatus = "PENDING"
	ContentAccepted ContentStatus = "ACCEPTED"
	ContentRejected ContentStatus = "REJECTED"
)

// IsTerminal reports whether no further transition is legal.
func (s ContentStatus) IsTerminal() bool {
	return s == ContentAccepted || s == ContentRejected
}

type Content struct {
	Id        ContentId     `json:"id"`
	ThreadId  ThreadId      `json:"thread_id"`
	Author    Author        `json:"author"`
	ParentId  *ContentId    `json:"parent_content_id,omitempty"`
	Body      ContentBody   `json:"content"`
	Status    ContentStatus `json:"status"`
	Order     int           `json:"order"`
	LikeCount int           `json:"like_count"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// SameParent reports whether c responds to the branch point parent.
func (c Content) SameParent(parent *ContentId) bool {
	if c.ParentId == nil || parent == nil {
		return c.ParentId == nil && parent == nil
	}
	return *c.ParentId == *parent
}

type ContentCreationData struct {
	ThreadId ThreadId
	Author   User
	Body     ContentBody
	ParentId *ContentId
}

// SortByOrder sorts by order, oldest first within the same order.
func SortByOrder(contents []Content) {
	sort.SliceStable(contents, func(i, j int) bool {
		if contents[i].Order != contents[j].Order {
			return contents[i].Order < contents[j].Order
		}
		return contents[i].CreatedAt.Before(contents[j].CreatedAt)
	})
}
