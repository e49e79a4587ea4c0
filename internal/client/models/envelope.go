package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// The backend's auth envelope changed shape over time: older deployments
// answer {user:{userName|username}, accessToken}, newer ones
// {user:{displayName}, token}. Both are decoded here, in one place, into the
// canonical AuthSession. Nothing outside this file branches on wire shape.

var ErrMissingToken = errors.New("auth response carries no token")
var ErrMissingUser = errors.New("auth response carries no usable user")

// AuthSession is a confirmed credential + identity pair.
type AuthSession struct {
	User  User
	Token string
}

type wireUser struct {
	ID          string `json:"id"`
	AltID       string `json:"_id"`
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
	UserName    string `json:"userName"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Avatar      string `json:"avatar"`
	Bio         string `json:"bio"`
	Score       int    `json:"score"`
}

func (w wireUser) canonical() User {
	u := User{
		ID:        w.ID,
		Email:     w.Email,
		AvatarURL: w.Avatar,
		Bio:       w.Bio,
		Score:     w.Score,
	}
	if u.ID == "" {
		u.ID = w.AltID
	}
	for _, name := range []string{w.DisplayName, w.Username, w.UserName, w.FullName} {
		if name != "" {
			u.DisplayName = name
			break
		}
	}
	return u
}

type authEnvelope struct {
	User        *wireUser `json:"user"`
	Token       string    `json:"token"`
	AccessToken string    `json:"accessToken"`
}

// DecodeAuthEnvelope normalizes either auth envelope version into an
// AuthSession.
func DecodeAuthEnvelope(data []byte) (*AuthSession, error) {
	var env authEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}

	token := env.Token
	if token == "" {
		token = env.AccessToken
	}
	if token == "" {
		return nil, ErrMissingToken
	}

	if env.User == nil {
		return nil, ErrMissingUser
	}
	user := env.User.canonical()
	if !user.Valid() {
		return nil, ErrMissingUser
	}

	return &AuthSession{User: user, Token: token}, nil
}

// DecodeUser normalizes a bare user payload (profile fetch, user by id).
func DecodeUser(data []byte) (User, error) {
	var w wireUser
	if err := json.Unmarshal(data, &w); err != nil {
		return User{}, fmt.Errorf("decode user: %w", err)
	}
	u := w.canonical()
	if !u.Valid() {
		return User{}, ErrMissingUser
	}
	return u, nil
}
