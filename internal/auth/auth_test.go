package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAllowed(t *testing.T) {
	cases := []struct {
		name     string
		required []string
		actual   string
		want     bool
	}{
		{"admin in list", []string{"admin", "user"}, "admin", true},
		{"user in list", []string{"admin", "user"}, "user", true},
		{"not in list", []string{"admin"}, "user", false},
		{"empty role", []string{"admin"}, "", false},
		{"no requirement", nil, "anything", true},
	}
	for _, c := range cases {
		if got := Allowed(c.required, c.actual); got != c.want {
			t.Errorf("%s: Allowed(%v, %q) = %v, want %v", c.name, c.required, c.actual, got, c.want)
		}
	}
}

func TestIdentityRejectsAnonymous(t *testing.T) {
	h := Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without identity")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestIdentityPopulatesContext(t *testing.T) {
	var got User
	h := Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderUserID, "u-1")
	req.Header.Set(HeaderRole, "admin")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got.ID != "u-1" || got.Role != "admin" {
		t.Fatalf("user = %+v", got)
	}
}

func TestRequireRole(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := Identity(RequireRole("admin")(inner))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderUserID, "u-1")
	req.Header.Set(HeaderRole, "user")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin status = %d, want 403", rec.Code)
	}

	req.Header.Set(HeaderRole, "admin")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", rec.Code)
	}
}
