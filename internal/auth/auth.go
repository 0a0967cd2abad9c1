package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/shift-booking-bot/internal/config"
	"github.com/gdg-garage/shift-booking-bot/internal/roster"
	"github.com/gdg-garage/shift-booking-bot/internal/shifts"
	"github.com/golang-jwt/jwt/v5"
)

var errNoSecret = errors.New("jwt secret is not configured")

const (
	CookieName    = "auth_token"
	TokenDuration = 24 * time.Hour
)

type AuthHandler struct {
	cfg      *config.Config
	resolver *roster.Resolver
}

func NewAuthHandler(cfg *config.Config, resolver *roster.Resolver) *AuthHandler {
	return &AuthHandler{cfg: cfg, resolver: resolver}
}

// AuthInput carries the session cookie into huma operations.
type AuthInput struct {
	Cookie string `header:"Cookie"`
}

type LoginInput struct {
	Body struct {
		StudentID string `json:"student_id" doc:"7-digit student ID" example:"1234567"`
		Name      string `json:"name" doc:"Name as it appears on the roster" example:"Alice"`
	}
}

type LoginOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Message string         `json:"message"`
		Student shifts.Student `json:"student"`
	}
}

type MeOutput struct {
	Body shifts.Student
}

// HandleLogin checks the id and name against the roster and sets the
// session cookie.
func (h *AuthHandler) HandleLogin(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	st, err := h.resolver.Authenticate(ctx, input.Body.StudentID, input.Body.Name)
	switch {
	case errors.Is(err, shifts.ErrInvalidFormat):
		return nil, huma.Error400BadRequest(err.Error())
	case errors.Is(err, shifts.ErrInvalidCredentials):
		return nil, huma.Error401Unauthorized("Invalid credentials")
	case errors.Is(err, shifts.ErrStoreUnavailable):
		return nil, huma.Error503ServiceUnavailable("Roster temporarily unavailable")
	case err != nil:
		return nil, huma.Error500InternalServerError("Login failed")
	}

	token, err := h.GenerateToken(st.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token")
	}

	out := &LoginOutput{SetCookie: sessionCookie(token)}
	out.Body.Message = fmt.Sprintf("Welcome %s! You are logged in.", st.Name)
	out.Body.Student = st
	return out, nil
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *AuthInput) (*MeOutput, error) {
	studentID, err := h.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	st, err := h.resolver.Resolve(ctx, studentID)
	if errors.Is(err, shifts.ErrUnknownStudent) {
		return nil, huma.Error401Unauthorized("Unauthorized: student no longer on the roster")
	}
	if err != nil {
		return nil, huma.Error503ServiceUnavailable("Roster temporarily unavailable")
	}
	return &MeOutput{Body: st}, nil
}

// Authorize returns the student id in the session cookie found in a raw
// Cookie header.
func (h *AuthHandler) Authorize(_ context.Context, cookieHeader string) (string, error) {
	if cookieHeader == "" {
		return "", huma.Error401Unauthorized("Unauthorized: No token found")
	}
	cookies, err := http.ParseCookie(cookieHeader)
	if err != nil {
		return "", huma.Error400BadRequest("Malformed cookie header")
	}
	for _, c := range cookies {
		if c.Name != CookieName {
			continue
		}
		studentID, _, err := h.ParseToken(c.Value)
		if err != nil {
			return "", huma.Error401Unauthorized("Unauthorized: Invalid token")
		}
		return studentID, nil
	}
	return "", huma.Error401Unauthorized("Unauthorized: No token found")
}

func (h *AuthHandler) GenerateToken(studentID string) (string, error) {
	if h.cfg.JWTSecret == "" {
		return "", errNoSecret
	}
	claims := jwt.MapClaims{
		"student_id": studentID,
		"exp":        time.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// ParseToken verifies tokenString and returns its student id and expiry.
func (h *AuthHandler) ParseToken(tokenString string) (string, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		if h.cfg.JWTSecret == "" {
			return nil, errNoSecret
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", time.Time{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", time.Time{}, errors.New("invalid token claims")
	}
	studentID, ok := claims["student_id"].(string)
	if !ok || studentID == "" {
		return "", time.Time{}, errors.New("invalid token claims")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return "", time.Time{}, errors.New("token has no expiry")
	}
	return studentID, exp.Time, nil
}

func sessionCookie(token string) http.Cookie {
	return http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  time.Now().Add(TokenDuration),
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
}
