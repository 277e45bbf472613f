package handler

import (
	"net/http"

	"github.com/BJS-kr/whatup/backend/internal/service"
	"github.com/BJS-kr/whatup/shared/abort"
	"github.com/BJS-kr/whatup/shared/api"
	"github.com/BJS-kr/whatup/shared/domain"
	"github.com/BJS-kr/whatup/shared/middleware"
	"github.com/BJS-kr/whatup/shared/utils"
	"github.com/go-chi/chi/v5"
)

// caller returns the authenticated user or writes 401.
func caller(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Please sign-in", http.StatusUnauthorized)
		return nil, false
	}
	return user, true
}

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var req api.CreateThreadRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	tok := abort.NewToken()
	res := h.threads.Create(r.Context(), tok, domain.ThreadCreationData{
		Title:                        req.Title,
		Description:                  req.Description,
		MaxLength:                    req.MaxLength,
		AutoAccept:                   req.AutoAccept,
		AllowConsecutiveContribution: req.AllowConsecutiveContribution,
		Author:                       *user,
		InitialContent:               req.InitialContent,
	})
	respond(w, tok, res, http.StatusCreated, func(id domain.ThreadId) any {
		return api.CreateThreadResponse{Id: id}
	})
}

func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	tok := abort.NewToken()
	res := h.threads.Get(r.Context(), tok, chi.URLParam(r, "thread"))
	respond(w, tok, res, http.StatusOK, func(thread domain.Thread) any {
		return api.ThreadResponse{Thread: thread}
	})
}

// ListThreads serves the thread lists. Every kind but the plain and
// trending lists is relative to the caller.
func (h *Handler) ListThreads(kind domain.ThreadListKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := domain.ThreadFilter{Kind: kind}
		if kind != domain.ThreadListAll && kind != domain.ThreadListTrending {
			user, ok := caller(w, r)
			if !ok {
				return
			}
			filter.Viewer = user.Id
		}

		tok := abort.NewToken()
		res := h.threads.List(r.Context(), tok, filter)
		respond(w, tok, res, http.StatusOK, func(threads []domain.ThreadMetadata) any {
			return api.ThreadListResponse{Threads: threads}
		})
	}
}

func (h *Handler) UpdateThread(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var req api.UpdateThreadRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	tok := abort.NewToken()
	res := h.threads.Update(r.Context(), tok, domain.ThreadUpdateData{
		Id:                           chi.URLParam(r, "thread"),
		Requester:                    user.Id,
		Description:                  req.Description,
		MaxLength:                    req.MaxLength,
		AutoAccept:                   req.AutoAccept,
		AllowConsecutiveContribution: req.AllowConsecutiveContribution,
	})
	respond(w, tok, res, http.StatusOK, func(thread domain.Thread) any {
		return api.ThreadResponse{Thread: thread}
	})
}

func (h *Handler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	tok := abort.NewToken()
	res := h.threads.Delete(r.Context(), tok, chi.URLParam(r, "thread"), user.Id)
	respond(w, tok, res, http.StatusOK, func(domain.ThreadId) any {
		return api.MessageResponse{Message: "thread deleted"}
	})
}

func (h *Handler) ToggleThreadLike(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	tok := abort.NewToken()
	res := h.threads.ToggleLike(r.Context(), tok, chi.URLParam(r, "thread"), user.Id)
	respond(w, tok, res, http.StatusOK, func(like domain.ThreadLike) any {
		return api.ThreadLikeResponse{ThreadLike: like}
	})
}

// Story serves the accepted text as JSON, or as plain text or sanitized
// HTML with ?format=text and ?format=html.
func (h *Handler) Story(w http.ResponseWriter, r *http.Request) {
	tok := abort.NewToken()
	res := h.threads.Story(r.Context(), tok, chi.URLParam(r, "thread"))

	format := r.URL.Query().Get("format")
	if format != "text" && format != "html" {
		respond(w, tok, res, http.StatusOK, func(story service.Story) any { return story })
		return
	}

	story, ok, err := abort.Finish(tok, res)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if format == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(story.HTML))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(story.Text))
}
