package domain

import "time"

type EventKind string

const (
	EventNewSubmission   EventKind = "content.new-submission"
	EventNewContribution EventKind = "content.new-contribution"
	EventAccepted        EventKind = "content.accepted"
	EventRejected        EventKind = "content.rejected"
	EventChangeRequest   EventKind = "content.change-request"
)

// Event records a moderation decision or submission for notification.
type Event struct {
	Kind           EventKind `json:"kind"`
	ThreadId       ThreadId  `json:"thread_id"`
	ThreadTitle    string    `json:"thread_title"`
	ContentId      ContentId `json:"content_id"`
	AuthorId       UserId    `json:"author_id"`
	AuthorNickname Nickname  `json:"author_nickname"`
	RecipientId    UserId    `json:"recipient_id"`
	Message        string    `json:"message,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
	// Attempts counts failed deliveries so far.
	Attempts int `json:"attempts"`
}
