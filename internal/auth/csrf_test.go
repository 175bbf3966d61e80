package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestCSRFIssueAndValidate(t *testing.T) {
	guard := NewCSRFGuard(time.Hour, false)

	rec := httptest.NewRecorder()
	token, err := guard.Issue(rec)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	cookie := findCookie(t, rec, CSRFCookieName)
	if cookie.Value != token {
		t.Fatalf("cookie value should match returned token")
	}
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteStrictMode || cookie.Path != "/" {
		t.Fatalf("unexpected cookie attributes: %+v", cookie)
	}
	if cookie.MaxAge != 3600 {
		t.Fatalf("expected 1h max-age, got %d", cookie.MaxAge)
	}

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.AddCookie(cookie)
	req.Header.Set(CSRFHeader, token)
	if !guard.Validate(req) {
		t.Fatalf("expected matching pair to validate")
	}
}

func TestCSRFValidateFormField(t *testing.T) {
	guard := NewCSRFGuard(time.Hour, false)

	rec := httptest.NewRecorder()
	token, err := guard.Issue(rec)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	form := url.Values{CSRFField: {token}}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(findCookie(t, rec, CSRFCookieName))
	if !guard.Validate(req) {
		t.Fatalf("expected form field token to validate")
	}
}

func TestCSRFValidateFailures(t *testing.T) {
	guard := NewCSRFGuard(time.Hour, false)

	rec := httptest.NewRecorder()
	token, err := guard.Issue(rec)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	cookie := findCookie(t, rec, CSRFCookieName)

	// No cookie at all.
	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set(CSRFHeader, token)
	if guard.Validate(req) {
		t.Fatalf("expected missing cookie to fail")
	}

	// No supplied token.
	req = httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.AddCookie(cookie)
	if guard.Validate(req) {
		t.Fatalf("expected missing token to fail")
	}

	// Single altered character.
	altered := "x" + token[1:]
	if altered == token {
		altered = "y" + token[1:]
	}
	req = httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.AddCookie(cookie)
	req.Header.Set(CSRFHeader, altered)
	if guard.Validate(req) {
		t.Fatalf("expected altered token to fail")
	}

	// Token issued against another session's cookie.
	otherRec := httptest.NewRecorder()
	otherToken, err := guard.Issue(otherRec)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	req = httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.AddCookie(cookie)
	req.Header.Set(CSRFHeader, otherToken)
	if guard.Validate(req) {
		t.Fatalf("expected cross-session token to fail")
	}
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}
