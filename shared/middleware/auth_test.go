package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BJS-kr/whatup/shared/domain"
	jwt_internal "github.com/BJS-kr/whatup/shared/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedAuth(t *testing.T) {
	jwtService := jwt_internal.New("test_secret", time.Hour)
	user := &domain.User{Id: "u-1", Nickname: "writer"}
	token, err := jwtService.NewToken(*user)
	require.NoError(t, err)
	foreign, err := jwt_internal.New("other_secret", time.Hour).NewToken(*user)
	require.NoError(t, err)

	tests := []struct {
		name           string
		cookie         *http.Cookie
		bearer         string
		expectedStatus int
		expectedUser   *domain.User
	}{
		{
			name:           "Valid cookie",
			cookie:         &http.Cookie{Name: AccessCookieName, Value: token},
			expectedStatus: http.StatusOK,
			expectedUser:   user,
		},
		{
			name:           "Valid bearer header",
			bearer:         token,
			expectedStatus: http.StatusOK,
			expectedUser:   user,
		},
		{
			name:           "No token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid token",
			cookie:         &http.Cookie{Name: AccessCookieName, Value: "invalid_token"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Token signed with another key",
			bearer:         foreign,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "http://example.com", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			rr := httptest.NewRecorder()

			called := false
			handler := NewAuth(jwtService).NeedAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				got := GetUserFromContext(r)
				require.NotNil(t, got, "Auth should always propagate user thru context")
				assert.Equal(t, tt.expectedUser.Id, got.Id)
				assert.Equal(t, tt.expectedUser.Nickname, got.Nickname)
				w.WriteHeader(http.StatusOK)
			}))
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code, "handler returned wrong status code")
			assert.Equal(t, tt.expectedUser != nil, called)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	jwtService := jwt_internal.New("test_secret", time.Hour)
	token, err := jwtService.NewToken(domain.User{Id: "u-1", Nickname: "writer"})
	require.NoError(t, err)

	t.Run("anonymous passes through", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NewAuth(jwtService).OptionalAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Nil(t, GetUserFromContext(r))
			w.WriteHeader(http.StatusOK)
		})).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("invalid token is ignored", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessCookieName, Value: "garbage"})
		rr := httptest.NewRecorder()
		NewAuth(jwtService).OptionalAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Nil(t, GetUserFromContext(r))
			w.WriteHeader(http.StatusOK)
		})).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("valid token populates user", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessCookieName, Value: token})
		rr := httptest.NewRecorder()
		NewAuth(jwtService).OptionalAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := GetUserFromContext(r)
			require.NotNil(t, got)
			assert.Equal(t, "u-1", got.Id)
			w.WriteHeader(http.StatusOK)
		})).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestGetUserFromContext(t *testing.T) {
	t.Run("no user in context", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		assert.Nil(t, GetUserFromContext(req))
	})

	t.Run("user in context", func(t *testing.T) {
		user := &domain.User{Id: "u-1", Nickname: "writer"}
		req := httptest.NewRequest("GET", "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), UserClaimsKey, user))

		assert.Equal(t, user, GetUserFromContext(req))
	})
}

func TestAccessCookie(t *testing.T) {
	rr := httptest.NewRecorder()
	SetAccessCookie(rr, "tok", time.Hour, true)
	ClearAccessCookie(rr, true)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.Equal(t, 3600, cookies[0].MaxAge)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, "", cookies[1].Value)
	assert.Equal(t, -1, cookies[1].MaxAge)
}
