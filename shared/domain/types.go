package domain

type (
	Email    = string
	Password = string
	Nickname = string
	UserId   = string

	ThreadId    = string
	ThreadTitle = string

	ContentId   = string
	ContentBody = string

	NoticeId = string
)
