package handler

import (
	"net/http"
	"s3drive/internal/auth"
)

type TokenVerifier interface {
	VerifyToken(r *http.Request) (string, error)
}

// RequireAuth пропускает только запросы с валидным токеном
func RequireAuth(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := v.VerifyToken(r)
			if err != nil {
				writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

// OptionalAuth пропускает анонимные запросы (публичные файлы),
// но отклоняет запрос с невалидным токеном.
func OptionalAuth(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			RequireAuth(v)(next).ServeHTTP(w, r)
		})
	}
}

// RequireAdmin должен стоять после RequireAuth
func RequireAdmin(admins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(admins))
	for _, id := range admins {
		allowed[id] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allowed[auth.UserIDFromContext(r.Context())] {
				fail(w, http.StatusForbidden, ErrorBody{Kind: KindForbidden, Message: "administrator access required"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
