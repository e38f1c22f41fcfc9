package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Authenticator decides whether a request may read the inspector feed.
type Authenticator interface {
	Authenticate(r *http.Request) error
}

// TokenAuth accepts a shared token from the "token" query parameter or a
// bearer Authorization header. An empty Token allows everyone.
type TokenAuth struct {
	Token string
}

func (a TokenAuth) Authenticate(r *http.Request) error {
	if a.Token == "" {
		return nil
	}
	got := r.URL.Query().Get("token")
	if got == "" {
		got, _ = strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	if subtle.ConstantTimeCompare([]byte(got), []byte(a.Token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}
