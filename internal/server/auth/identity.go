// Package auth holds the request identity and the authorization rules for
// users and messages. Nothing here touches HTTP; the middleware package adapts
// these functions to handlers.
package auth

import (
	"context"

	"github.com/iudanet/messagely/internal/server/token"
)

// Identity is the authenticated principal of a single request.
type Identity = token.Identity

type contextKey struct{}

// WithIdentity returns a copy of ctx carrying id.
// Only the identity resolver should call it, after a successful verification.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFrom извлекает identity из контекста запроса.
// Отсутствие identity - единственное неаутентифицированное состояние.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	if !ok || id.Username == "" {
		return Identity{}, false
	}
	return id, true
}

// Request is the transport-independent view a guard decides on.
type Request struct {
	Identity *Identity
	Params   map[string]string
}

// NewRequest builds a Request from the identity stored in ctx and the given
// route parameters.
func NewRequest(ctx context.Context, params map[string]string) Request {
	req := Request{Params: params}
	if id, ok := IdentityFrom(ctx); ok {
		req.Identity = &id
	}
	return req
}

// Param returns a route parameter or "".
func (r Request) Param(name string) string {
	return r.Params[name]
}
