// Package auth checks the shared bearer token that guards write endpoints.
// Tokens are compared as HMAC digests under a per-process key, so the
// comparison time depends on neither the token length nor a matching prefix.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"net/http"
	"strings"

	"github.com/dharsanguruparan/PhotoDrop/internal/model"
)

const bearerPrefix = "bearer "

// Verifier validates bearer tokens against one configured secret.
type Verifier struct {
	key      []byte
	expected []byte
}

// NewVerifier creates a Verifier. An empty secret rejects every request.
func NewVerifier(secret string) *Verifier {
	key := make([]byte, sha256.Size)
	if _, err := rand.Read(key); err != nil {
		panic("auth: read random key: " + err.Error())
	}
	v := &Verifier{key: key}
	if secret != "" {
		v.expected = v.digest(secret)
	}
	return v
}

func (v *Verifier) digest(token string) []byte {
	mac := hmac.New(sha256.New, v.key)
	mac.Write([]byte(token))
	return mac.Sum(nil)
}

// Valid reports whether token matches the configured secret.
func (v *Verifier) Valid(token string) bool {
	if v == nil || v.expected == nil {
		return false
	}
	return hmac.Equal(v.digest(token), v.expected)
}

// Check validates the request's Authorization header. Every failure is
// model.ErrUnauthorized.
func (v *Verifier) Check(r *http.Request) error {
	token, ok := BearerToken(r.Header.Get("Authorization"))
	if !ok || !v.Valid(token) {
		return model.ErrUnauthorized
	}
	return nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}
