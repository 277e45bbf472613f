package handler

import (
	"net/http"

	"github.com/BJS-kr/whatup/shared/abort"
	"github.com/BJS-kr/whatup/shared/api"
	"github.com/BJS-kr/whatup/shared/domain"
	"github.com/BJS-kr/whatup/shared/middleware"
	"github.com/BJS-kr/whatup/shared/utils"
)

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req api.SignUpRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	tok := abort.NewToken()
	res := h.auth.SignUp(r.Context(), tok, domain.SignUpData{
		Credentials: domain.Credentials{Email: req.Email, Password: req.Password},
		Nickname:    req.Nickname,
	})
	respond(w, tok, res, http.StatusCreated, func(id domain.UserId) any {
		return api.SignUpResponse{Id: id}
	})
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req api.SignInRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	tok := abort.NewToken()
	token, ok, err := abort.Finish(tok, h.auth.SignIn(r.Context(), tok, domain.Credentials{Email: req.Email, Password: req.Password}))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	middleware.SetAccessCookie(w, token, h.cfg.JwtTTL(), h.cfg.Public.Http.SecureCookies)
	writeJSON(w, http.StatusOK, api.SignInResponse{Message: "signed in", AccessToken: token})
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	middleware.ClearAccessCookie(w, h.cfg.Public.Http.SecureCookies)
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "signed out"})
}
