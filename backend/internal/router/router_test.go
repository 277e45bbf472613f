package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BJS-kr/whatup/backend/internal/setup"
	"github.com/BJS-kr/whatup/shared/api"
	"github.com/BJS-kr/whatup/shared/config"
	"github.com/BJS-kr/whatup/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	t      *testing.T
	router http.Handler
	ip     int
}

func (c *client) do(method, path, token string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	// auth routes are limited per IP
	c.ip++
	req.RemoteAddr = fmt.Sprintf("192.0.2.%d:1234", c.ip)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	c.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func (c *client) signUpIn(email, nickname string) string {
	c.t.Helper()
	rr := c.do(http.MethodPost, "/v1/auth/sign-up", "", api.SignUpRequest{Email: email, Nickname: nickname, Password: "password123"})
	require.Equal(c.t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = c.do(http.MethodPost, "/v1/auth/sign-in", "", api.SignInRequest{Email: email, Password: "password123"})
	require.Equal(c.t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[api.SignInResponse](c.t, rr).AccessToken
}

func newTestRouter(t *testing.T) *client {
	t.Helper()
	cfg := &config.Config{
		Public: config.Public{
			Http:          config.Http{Addr: ":0", CorsOrigins: []string{"http://localhost:3000"}},
			Storage:       "memory",
			JwtTTL:        time.Hour,
			TrendingLimit: 10,
			Events:        config.Events{Driver: "channel", Buffer: 16, Workers: 1, MaxAttempts: 2},
		},
		Private: config.Private{JwtKey: "test-key"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	deps, err := setup.SetupDependencies(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, deps.Start(ctx))
	t.Cleanup(func() {
		cancel()
		deps.Close()
	})

	return &client{t: t, router: New(deps)}
}

func TestContributionFlow(t *testing.T) {
	c := newTestRouter(t)
	alice := c.signUpIn("alice@example.com", "alice")
	bob := c.signUpIn("bob@example.com", "bob")

	rr := c.do(http.MethodPost, "/v1/threads", alice, api.CreateThreadRequest{
		Title:          "Gophers",
		Description:    "a story",
		MaxLength:      100,
		InitialContent: "Once upon a time",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	threadId := decode[api.CreateThreadResponse](t, rr).Id

	rr = c.do(http.MethodPost, "/v1/threads/"+threadId+"/content", bob, api.AddContentRequest{Content: "a gopher dug a hole."})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	submitted := decode[api.ContentResponse](t, rr)
	assert.Equal(t, domain.ContentPending, submitted.Status)

	rr = c.do(http.MethodGet, "/v1/threads/"+threadId+"/pending-contents", bob, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code, "only the owner sees pending contents")

	rr = c.do(http.MethodGet, "/v1/threads/"+threadId+"/pending-contents", alice, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, decode[api.ContentListResponse](t, rr).Contents, 1)

	rr = c.do(http.MethodPut, "/v1/content/"+submitted.Id+"/accept", alice, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	accepted := decode[api.ContentResponse](t, rr)
	assert.Equal(t, domain.ContentAccepted, accepted.Status)
	assert.Equal(t, 2, accepted.Order)

	rr = c.do(http.MethodPut, "/v1/content/"+submitted.Id+"/reject", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "accepted content is terminal")

	rr = c.do(http.MethodGet, "/v1/threads/"+threadId+"/story?format=text", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Once upon a time\n\na gopher dug a hole.", rr.Body.String())

	unread := func(token string) int {
		rr := c.do(http.MethodGet, "/v1/notices/unread-count", token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		return decode[api.UnreadCountResponse](t, rr).Count
	}
	require.Eventually(t, func() bool { return unread(bob) == 1 && unread(alice) == 1 }, 2*time.Second, 10*time.Millisecond)

	rr = c.do(http.MethodGet, "/v1/notices", bob, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	notices := decode[api.NoticeListResponse](t, rr).Notices
	require.Len(t, notices, 1)
	assert.Equal(t, "Content Accepted", notices[0].Title)

	rr = c.do(http.MethodPut, "/v1/notices/"+notices[0].Id+"/read", bob, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, unread(bob))

	rr = c.do(http.MethodPut, "/v1/notices/mark-all-read", alice, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decode[api.MarkAllReadResponse](t, rr).Marked)
}

func TestPublicAndProtectedRoutes(t *testing.T) {
	c := newTestRouter(t)

	rr := c.do(http.MethodGet, "/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))

	rr = c.do(http.MethodGet, "/v1/ready", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = c.do(http.MethodGet, "/v1/threads", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = c.do(http.MethodPost, "/v1/threads", "", api.CreateThreadRequest{Title: "x"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = c.do(http.MethodGet, "/v1/threads/my", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = c.do(http.MethodGet, "/v1/threads/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = c.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "whatup_http_requests_total")
}

func TestThreadCreationIsRateLimited(t *testing.T) {
	c := newTestRouter(t)
	alice := c.signUpIn("alice@example.com", "alice")

	create := func() int {
		return c.do(http.MethodPost, "/v1/threads", alice, api.CreateThreadRequest{
			Title:          "Gophers",
			Description:    "a story",
			MaxLength:      100,
			InitialContent: "Once upon a time",
		}).Code
	}
	assert.Equal(t, http.StatusCreated, create())
	assert.Equal(t, http.StatusTooManyRequests, create())
}
