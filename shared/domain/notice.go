package domain

import "time"

type Notice struct {
	Id        NoticeId  `json:"id"`
	UserId    UserId    `json:"user_id"`
	Kind      EventKind `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	ThreadId  ThreadId  `json:"thread_id"`
	ContentId ContentId `json:"content_id"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
