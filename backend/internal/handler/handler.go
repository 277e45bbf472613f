package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/BJS-kr/whatup/backend/internal/service"
	"github.com/BJS-kr/whatup/shared/abort"
	"github.com/BJS-kr/whatup/shared/config"
	"github.com/BJS-kr/whatup/shared/logger"
	"github.com/BJS-kr/whatup/shared/utils"
)

type Handler struct {
	auth     service.AuthService
	threads  service.ThreadService
	contents service.ContentService
	notices  service.NoticeService
	health   HealthChecker
	cfg      *config.Config
}

func New(auth service.AuthService, threads service.ThreadService, contents service.ContentService, notices service.NoticeService, health HealthChecker, cfg *config.Config) *Handler {
	return &Handler{
		auth:     auth,
		threads:  threads,
		contents: contents,
		notices:  notices,
		health:   health,
		cfg:      cfg,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// respond writes a request's outcome: the reason of a tripped token, 204 when
// the pipeline produced nothing, otherwise present(v) as JSON with status.
func respond[T any](w http.ResponseWriter, tok *abort.Token, res abort.Result[T], status int, present func(T) any) {
	v, ok, err := abort.Finish(tok, res)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, status, present(v))
}
