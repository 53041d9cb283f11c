package middleware

import (
	"context"
	"errors"

	"gowaay/internal/app/actor"
)

var (
	ErrUnauthenticated = errors.New("middleware: authentication required")
	ErrForbidden       = errors.New("middleware: insufficient permissions")
)

// RoleRestricted messages name the role their caller must hold.
type RoleRestricted interface {
	RequiredRole() string
}

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// RoleAuthorizer checks RoleRestricted messages against the actor in context.
type RoleAuthorizer struct{}

func (RoleAuthorizer) Authorize(ctx context.Context, message any) error {
	restricted, ok := message.(RoleRestricted)
	if !ok {
		return nil
	}
	a, ok := actor.FromContext(ctx)
	if !ok || a.UserID == "" {
		return ErrUnauthenticated
	}
	if !a.HasRole(restricted.RequiredRole()) {
		return ErrForbidden
	}
	return nil
}

func Authorization(a Authorizer) CommandMiddleware {
	return authorizerGuard(a).forCommands()
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	return authorizerGuard(a).forQueries()
}

func authorizerGuard(a Authorizer) guard {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return a.Authorize
}
