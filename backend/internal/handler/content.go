package handler

import (
	"net/http"

	"github.com/BJS-kr/whatup/shared/abort"
	"github.com/BJS-kr/whatup/shared/api"
	"github.com/BJS-kr/whatup/shared/domain"
	"github.com/BJS-kr/whatup/shared/utils"
	"github.com/go-chi/chi/v5"
)

func presentContent(c domain.Content) any {
	return api.ContentResponse{Content: c}
}

func (h *Handler) SubmitContent(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var req api.AddContentRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	tok := abort.NewToken()
	res := h.contents.Submit(r.Context(), tok, domain.ContentCreationData{
		ThreadId: chi.URLParam(r, "thread"),
		Author:   *user,
		Body:     req.Content,
		ParentId: req.ParentContentId,
	})
	respond(w, tok, res, http.StatusCreated, presentContent)
}

func (h *Handler) PendingContents(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	tok := abort.NewToken()
	res := h.contents.Pending(r.Context(), tok, chi.URLParam(r, "thread"), user.Id)
	respond(w, tok, res, http.StatusOK, func(contents []domain.Content) any {
		return api.ContentListResponse{Contents: contents}
	})
}

func (h *Handler) AcceptContent(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	tok := abort.NewToken()
	res := h.contents.Accept(r.Context(), tok, chi.URLParam(r, "content"), user.Id)
	respond(w, tok, res, http.StatusOK, presentContent)
}

func (h *Handler) RejectContent(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	tok := abort.NewToken()
	res := h.contents.Reject(r.Context(), tok, chi.URLParam(r, "content"), user.Id)
	respond(w, tok, res, http.StatusOK, presentContent)
}

func (h *Handler) RequestChanges(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var req api.RequestChangesRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	tok := abort.NewToken()
	res := h.contents.RequestChanges(r.Context(), tok, chi.URLParam(r, "content"), user.Id, req.Message)
	respond(w, tok, res, http.StatusOK, func(domain.Content) any {
		return api.MessageResponse{Message: "change request sent"}
	})
}

func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var req api.UpdateContentRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	tok := abort.NewToken()
	res := h.contents.UpdatePending(r.Context(), tok, chi.URLParam(r, "content"), user.Id, req.Content)
	respond(w, tok, res, http.StatusOK, presentContent)
}

func (h *Handler) LikeContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "content")

	tok := abort.NewToken()
	res := h.contents.Like(r.Context(), tok, id)
	respond(w, tok, res, http.StatusOK, func(likes int) any {
		return api.ContentLikeResponse{Id: id, LikeCount: likes}
	})
}
