// Package auth supplies the identity boundary: resolving a bearer credential
// to the requesting user. No identity means no query may run.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthenticated is returned when a credential is missing or invalid.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the authenticated user on whose behalf an operation runs.
// UserID is the ownership scope for every lead read and write.
type Identity struct {
	UserID string
	Email  string
}

// Authenticator resolves a bearer credential to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (*Identity, error)
}

// StaticAuthenticator maps fixed tokens to identities. Tokens are configured
// as "user_id:token" pairs (e.g. LEADS_AUTH_TOKENS="alice:s3cret,bob:hunter2").
type StaticAuthenticator struct {
	tokens []staticToken
}

type staticToken struct {
	token    string
	identity Identity
}

// NewStaticAuthenticator parses a comma-separated list of user:token pairs.
func NewStaticAuthenticator(creds string) (*StaticAuthenticator, error) {
	a := &StaticAuthenticator{}
	for _, pair := range strings.Split(creds, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		userID, token, ok := strings.Cut(pair, ":")
		if !ok || userID == "" || token == "" {
			return nil, fmt.Errorf("invalid token entry %q (expected user_id:token)", pair)
		}
		a.tokens = append(a.tokens, staticToken{
			token:    token,
			identity: Identity{UserID: userID},
		})
	}
	if len(a.tokens) == 0 {
		return nil, errors.New("no auth tokens configured")
	}
	return a, nil
}

// Authenticate compares the credential against every configured token in
// constant time and returns the matching identity.
func (a *StaticAuthenticator) Authenticate(_ context.Context, credential string) (*Identity, error) {
	var matched *Identity
	for i := range a.tokens {
		if subtle.ConstantTimeCompare([]byte(credential), []byte(a.tokens[i].token)) == 1 {
			id := a.tokens[i].identity
			matched = &id
		}
	}
	if matched == nil {
		return nil, ErrUnauthenticated
	}
	return matched, nil
}

type identityKey struct{}

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext extracts the identity set by the auth middleware.
// The second return is false when no identity is present.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}
