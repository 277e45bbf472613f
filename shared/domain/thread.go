package domain

import (
	"time"
)

// to iterate thru layers: handler -> service -> storage
type ThreadCreationData struct {
	Id                           ThreadId
	Title                        ThreadTitle
	Description                  string
	MaxLength                    int
	AutoAccept                   bool
	AllowConsecutiveContribution bool
	Author                       User
	InitialContent               ContentBody
	// SeedId is assigned by the service before storage.
	SeedId ContentId
}

// ThreadUpdateData holds the mutable settings. Title and seed are fixed.
type ThreadUpdateData struct {
	Id                           ThreadId
	Requester                    UserId
	Description                  string
	MaxLength                    int
	AutoAccept                   bool
	AllowConsecutiveContribution bool
}

type ThreadMetadata struct {
	Id                           ThreadId    `json:"id"`
	Title                        ThreadTitle `json:"title"`
	Description                  string      `json:"description"`
	MaxLength                    int         `json:"max_length"`
	AutoAccept                   bool        `json:"auto_accept"`
	AllowConsecutiveContribution bool        `json:"allow_consecutive_contribution"`
	Author                       Author      `json:"author"`
	LikeCount                    int         `json:"like_count"`
	CreatedAt                    time.Time   `json:"created_at"`
	UpdatedAt                    time.Time   `json:"updated_at"`
}

// IsOwner reports whether user owns the thread.
func (t ThreadMetadata) IsOwner(user UserId) bool {
	return t.Author.Id == user
}

type Thread struct {
	ThreadMetadata
	Contents []Content `json:"contents"`
}

// Accepted returns the accepted contents in story order.
func (t Thread) Accepted() []Content {
	accepted := make([]Content, 0, len(t.Contents))
	for _, c := range t.Contents {
		if c.Status == ContentAccepted {
			accepted = append(accepted, c)
		}
	}
	SortByOrder(accepted)
	return accepted
}

type ThreadListKind string

const (
	ThreadListAll      ThreadListKind = ""
	ThreadListMine     ThreadListKind = "my"
	ThreadListOthers   ThreadListKind = "others"
	ThreadListLiked    ThreadListKind = "liked"
	ThreadListTrending ThreadListKind = "trending"
)

type ThreadFilter struct {
	Kind ThreadListKind
	// Viewer is required by every kind except ThreadListAll and ThreadListTrending.
	Viewer UserId
	Limit  int
}

type ThreadLike struct {
	ThreadId  ThreadId `json:"thread_id"`
	LikeCount int      `json:"like_count"`
	Liked     bool     `json:"liked"`
}
