package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/BJS-kr/whatup/backend/internal/storage"
	"github.com/BJS-kr/whatup/shared/abort"
	"github.com/BJS-kr/whatup/shared/domain"
	internal_errors "github.com/BJS-kr/whatup/shared/errors"
	"github.com/BJS-kr/whatup/shared/utils"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	SignUp(ctx context.Context, tok *abort.Token, data domain.SignUpData) abort.Result[domain.UserId]
	SignIn(ctx context.Context, tok *abort.Token, creds domain.Credentials) abort.Result[string]
}

type Jwt interface {
	NewToken(user domain.User) (string, error)
}

type Auth struct {
	storage storage.UserStorage
	jwt     Jwt
	policy  abort.Policy
	cost    int
}

func NewAuth(storage storage.UserStorage, jwt Jwt, policy abort.Policy) *Auth {
	return &Auth{storage: storage, jwt: jwt, policy: policy, cost: bcrypt.DefaultCost}
}

var (
	errWrongPassword = &abort.Reason{Responsible: abort.Client, Message: "wrong id or password", Status: http.StatusUnauthorized}
	errUserNotFound  = &abort.Reason{Responsible: abort.Client, Message: "user not found", Status: http.StatusNotFound}
	errEmailTaken    = &abort.Reason{Responsible: abort.Client, Message: "user email already exists", Status: http.StatusConflict}
)

const signInFailedMsg = "error occurred while sign in"

func (a *Auth) SignUp(ctx context.Context, tok *abort.Token, data domain.SignUpData) abort.Result[domain.UserId] {
	user := domain.User{
		Id:       utils.NewId(),
		Email:    utils.NormalizeEmail(data.Email),
		Nickname: data.Nickname,
	}

	policy := a.policy.Named("auth.sign_up").
		WithMessage("error occurred while sign up").
		WithClassifier(func(err error) *abort.Reason {
			if internal_errors.IsAlreadyExists(err) {
				return errEmailTaken
			}
			return nil
		})

	return abort.Try(ctx, tok, policy, func(ctx context.Context) (domain.UserId, error) {
		hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), a.cost)
		if err != nil {
			return "", err
		}
		user.PassHash = string(hash)
		if err := a.storage.SaveUser(ctx, user); err != nil {
			return "", err
		}
		return user.Id, nil
	})
}

// SignIn checks the credentials and returns an access token.
func (a *Auth) SignIn(ctx context.Context, tok *abort.Token, creds domain.Credentials) abort.Result[string] {
	policy := a.policy.Named("auth.sign_in").
		WithMessage(signInFailedMsg).
		WithClassifier(func(err error) *abort.Reason {
			switch {
			case internal_errors.IsNotFound(err):
				return errUserNotFound
			case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
				return errWrongPassword
			}
			return nil
		})

	return abort.Try(ctx, tok, policy, func(ctx context.Context) (string, error) {
		user, err := a.storage.UserByEmail(ctx, utils.NormalizeEmail(creds.Email))
		if err != nil {
			return "", err
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(creds.Password)); err != nil {
			return "", err
		}
		return a.jwt.NewToken(user)
	})
}
