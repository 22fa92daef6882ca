package auth

import (
	"context"
	"net/http"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// UserID returns the user id stored by Middleware.
func UserID(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(UserIDKey).(uint)
	return id, ok
}

// Middleware authenticates plain chi routes. Cookie sessions past half their
// lifetime are renewed.
func (h *AuthHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		in := AuthInput{Authorization: r.Header.Get("Authorization"), Cookie: r.Header.Get("Cookie")}
		token := in.Token()
		if token == "" {
			http.Error(w, "Unauthorized: No token found", http.StatusUnauthorized)
			return
		}

		user, err := h.resolve(r.Context(), token)
		if err != nil {
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}

		if in.Authorization == "" {
			if _, exp, err := h.tokens.Parse(token); err == nil && exp.Sub(h.tokens.now()) < h.tokens.TTL()/2 {
				if renewed, expires, err := h.tokens.Issue(user.ID); err == nil {
					cookie := h.cookie(renewed, expires)
					http.SetCookie(w, &cookie)
				}
			}
		}

		ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
