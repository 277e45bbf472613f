package handler

import (
	"net/http"

	"github.com/BJS-kr/whatup/shared/abort"
	"github.com/BJS-kr/whatup/shared/api"
	"github.com/BJS-kr/whatup/shared/domain"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListNotices(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	tok := abort.NewToken()
	res := h.notices.List(r.Context(), tok, user.Id)
	respond(w, tok, res, http.StatusOK, func(notices []domain.Notice) any {
		return api.NoticeListResponse{Notices: notices}
	})
}

func (h *Handler) UnreadNoticeCount(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	tok := abort.NewToken()
	res := h.notices.UnreadCount(r.Context(), tok, user.Id)
	respond(w, tok, res, http.StatusOK, func(count int) any {
		return api.UnreadCountResponse{Count: count}
	})
}

func (h *Handler) MarkNoticeRead(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	tok := abort.NewToken()
	res := h.notices.MarkRead(r.Context(), tok, chi.URLParam(r, "notice"), user.Id)
	respond(w, tok, res, http.StatusOK, func(domain.NoticeId) any {
		return api.MessageResponse{Message: "notice marked as read"}
	})
}

func (h *Handler) MarkAllNoticesRead(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	tok := abort.NewToken()
	res := h.notices.MarkAllRead(r.Context(), tok, user.Id)
	respond(w, tok, res, http.StatusOK, func(marked int) any {
		return api.MarkAllReadResponse{Marked: marked}
	})
}
