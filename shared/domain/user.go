package domain

import "time"

// User is the identity of a caller. Requests only carry Id and Nickname.
type User struct {
	Id        UserId
	Email     Email
	Nickname  Nickname
	PassHash  string
	CreatedAt time.Time
}

type Credentials struct {
	Email    Email
	Password Password
}

type SignUpData struct {
	Credentials
	Nickname Nickname
}

// Author is the public projection of a user attached to threads and contents.
type Author struct {
	Id       UserId   `json:"id"`
	Nickname Nickname `json:"nickname"`
}
