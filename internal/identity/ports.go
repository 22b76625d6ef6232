package identity

import (
	"context"
	"errors"
	"net/http"
)

var (
	ErrUnknownAttribute = errors.New("unknown attribute")
	ErrBackend          = errors.New("identity backend fault")
)

// User is an identity-provider user record.
type User struct {
	ID      string  `json:"id"`
	Status  string  `json:"status,omitempty"`
	Profile Profile `json:"profile"`
}

type CreateUserRequest struct {
	Profile Profile `json:"profile"`
}

// Response carries the backend's status signal for a call.
type Response struct {
	StatusCode int
	Status     string
}

func (r *Response) OK() bool {
	return r != nil && r.StatusCode == http.StatusOK
}

// Backend is the identity provider. Errors carry diagnostic detail for logs;
// success is decided by Response.OK.
type Backend interface {
	ListUsers(ctx context.Context) ([]User, *Response, error)
	GetUser(ctx context.Context, id string) (*User, *Response, error)
	UpdateUser(ctx context.Context, id string, user User) (*User, *Response, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, *Response, error)
}
