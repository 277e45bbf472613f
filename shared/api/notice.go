package api

import "github.com/BJS-kr/whatup/shared/domain"

type NoticeListResponse struct {
	Notices []domain.Notice `json:"notices"`
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}

type MarkAllReadResponse struct {
	Marked int `json:"marked"`
}
