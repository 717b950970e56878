package api

import (
	"errors"
	"net/http"
	"strings"
)

// ErrInvalidToken is returned by verifiers for unknown or malformed
// tokens.
var ErrInvalidToken = errors.New("invalid token")

// TokenVerifier resolves a bearer token to an owner id. The identity
// provider behind it is a collaborator, not part of this core.
type TokenVerifier interface {
	Verify(token string) (ownerID string, err error)
}

// StaticVerifier maps fixed tokens to owner ids; suited to single-node
// and development runs.
type StaticVerifier struct {
	tokens map[string]string
}

func NewStaticVerifier(tokens map[string]string) *StaticVerifier {
	return &StaticVerifier{tokens: tokens}
}

func (v *StaticVerifier) Verify(token string) (string, error) {
	ownerID, ok := v.tokens[token]
	if !ok {
		return "", ErrInvalidToken
	}
	return ownerID, nil
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}
