package auth

import (
	"context"
	"net/http"
	"time"
)

type contextKey string

const StudentIDKey contextKey = "student_id"

// StudentID returns the id stored in ctx by the middlewares below.
func StudentID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(StudentIDKey).(string)
	return id, ok && id != ""
}

// AuthMiddleware guards plain chi routes with the session cookie.
func (h *AuthHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil {
			if err == http.ErrNoCookie {
				http.Error(w, "Unauthorized: No token found", http.StatusUnauthorized)
				return
			}
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		studentID, exp, err := h.ParseToken(cookie.Value)
		if err != nil {
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}

		h.refresh(w, studentID, exp)
		ctx := context.WithValue(r.Context(), StudentIDKey, studentID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SlidingSession refreshes a valid session cookie on any route without
// rejecting requests that have none.
func (h *AuthHandler) SlidingSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(CookieName); err == nil {
			if studentID, exp, err := h.ParseToken(cookie.Value); err == nil {
				h.refresh(w, studentID, exp)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// refresh reissues the token once it is past half its lifetime.
func (h *AuthHandler) refresh(w http.ResponseWriter, studentID string, exp time.Time) {
	if time.Until(exp) >= TokenDuration/2 {
		return
	}
	if token, err := h.GenerateToken(studentID); err == nil {
		c := sessionCookie(token)
		http.SetCookie(w, &c)
	}
}
