package auth

import (
	"context"
	"net/http"
)

// Identity provider di depan (reverse proxy) sudah verifikasi bearer token
// dan naruh hasilnya di header; core percaya verbatim dan tidak pernah
// inspect role sendiri.
const (
	HeaderUserID = "X-User-Id"
	HeaderRole   = "X-User-Role"
)

type User struct {
	ID   string
	Role string
}

type ctxKey struct{}

func FromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok
}

// Identity reject request tanpa identitas; sisanya masuk ke context.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderUserID)
		if id == "" {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}
		u := User{ID: id, Role: r.Header.Get(HeaderRole)}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, u)))
	})
}

// Allowed: predicate kapabilitas tunggal; required kosong = semua boleh.
func Allowed(required []string, actual string) bool {
	if len(required) == 0 {
		return true
	}
	for _, role := range required {
		if role == actual {
			return true
		}
	}
	return false
}

func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := FromContext(r.Context())
			if !ok || !Allowed(roles, u.Role) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
