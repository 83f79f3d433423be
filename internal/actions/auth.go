// Package actions provides typed clients for the ticket backend, one per
// capability area. Each operation issues exactly one transport call, feeds the
// response through the envelope normalizer, and projects the payload into a
// typed value. Failed lookups degrade to empty values; the normalized outcome
// is returned alongside so callers that care can tell "no data" from "failed".
package actions

import (
	"context"

	"ticketstorm/internal/client"
	"ticketstorm/internal/envelope"
)

const (
	loginPath    = "/api/v1/users/login"
	usersPath    = "/api/v1/users"
	registerPath = "/api/v1/adminuserservice/users"
)

// Session is the ephemeral credential pair produced by a successful login.
// It lives for a single workflow invocation and is never persisted.
type Session struct {
	Token     string
	AccountID string
}

// Valid reports whether the session carries both a token and an account ID.
func (s Session) Valid() bool {
	return s.Token != "" && s.AccountID != ""
}

// User is one entry from the user listing endpoint.
type User struct {
	ID       string
	UserName string
}

// Registration is the payload for creating a user through the admin service.
type Registration struct {
	UserName     string `json:"userName"`
	Password     string `json:"password"`
	Gender       int    `json:"gender"`
	DocumentType int    `json:"documentType"`
	DocumentNum  string `json:"documentNum"`
	Email        string `json:"email"`
}

// Auth wraps the authentication and user-management endpoints.
type Auth struct {
	transport client.Transport
}

func NewAuth(t client.Transport) *Auth {
	return &Auth{transport: t}
}

// Login authenticates and returns the session extracted from the response.
// On any failure the session is zero-valued; the outcome carries the reason.
func (a *Auth) Login(ctx context.Context, username, password, verificationCode string) (Session, envelope.Outcome) {
	body := map[string]string{
		"username": username,
		"password": password,
	}
	if verificationCode != "" {
		body["verificationCode"] = verificationCode
	}

	out := do(ctx, a.transport, client.Request{
		Method: "POST",
		Path:   loginPath,
		Body:   body,
	})
	if !out.OK() {
		return Session{}, out
	}
	return Session{
		Token:     out.Field("token").String(),
		AccountID: out.Field("userId").String(),
	}, out
}

// Register creates a new user through the admin service. The admin token
// authorizes the call.
func (a *Auth) Register(ctx context.Context, adminToken string, reg Registration) envelope.Outcome {
	return do(ctx, a.transport, client.Request{
		Method:  "POST",
		Path:    registerPath,
		Body:    reg,
		Headers: bearer(adminToken),
	})
}

// Users lists all users. The endpoint returns a bare array; failures degrade
// to an empty slice.
func (a *Auth) Users(ctx context.Context) ([]User, envelope.Outcome) {
	out := do(ctx, a.transport, client.Request{
		Method: "GET",
		Path:   usersPath,
	})

	var users []User
	for _, item := range out.Array() {
		users = append(users, User{
			ID:       item.Get("userId").String(),
			UserName: item.Get("userName").String(),
		})
	}
	return users, out
}

// do issues one transport call and normalizes the response. Transport-level
// errors (connect failures, timeouts) become Failed outcomes so callers see
// the same three-way contract for every request.
func do(ctx context.Context, t client.Transport, req client.Request) envelope.Outcome {
	resp, err := t.Do(ctx, req)
	if err != nil {
		return envelope.Failed(0, err.Error())
	}
	return envelope.Normalize(resp.StatusCode, resp.Body)
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
