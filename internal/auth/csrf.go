package auth

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/kalissr/voting-system/internal/crypto"
)

const (
	CSRFCookieName = "csrf_token"
	CSRFHeader     = "X-CSRF-Token"
	CSRFField      = "csrfToken"
)

// CSRFGuard issues per-session anti-forgery tokens and validates the
// double-submit pair: the HTTP-only cookie against the value echoed back in
// a header or form field. Tokens are not bound to a specific form, so one
// token may back several submissions inside its TTL.
type CSRFGuard struct {
	ttl    time.Duration
	secure bool
}

func NewCSRFGuard(ttl time.Duration, secure bool) *CSRFGuard {
	return &CSRFGuard{ttl: ttl, secure: secure}
}

func (g *CSRFGuard) Issue(w http.ResponseWriter) (string, error) {
	token, err := crypto.NewRandomToken()
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(g.ttl.Seconds()),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return token, nil
}

func (g *CSRFGuard) Validate(r *http.Request) bool {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	supplied := r.Header.Get(CSRFHeader)
	if supplied == "" {
		supplied = r.PostFormValue(CSRFField)
	}
	if supplied == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(supplied)) == 1
}
