package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gdg-garage/shift-booking-bot/internal/auth"
	"github.com/go-chi/chi/v5"
)

func TestRegisterRoutes(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.EnableCORS = true
	r := chi.NewRouter()
	RegisterRoutes(r, env.cfg, env.authHandler, env.handler)

	t.Run("Health", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))
		if rr.Code != http.StatusOK || rr.Body.String() != "OK" {
			t.Errorf("unexpected health response %d %q", rr.Code, rr.Body.String())
		}
	})

	t.Run("LoginSetsCookie", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"student_id":"0000001","name":"root"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var token string
		for _, c := range rr.Result().Cookies() {
			if c.Name == auth.CookieName {
				token = c.Value
			}
		}
		if token == "" {
			t.Fatal("expected auth_token cookie")
		}

		req = httptest.NewRequest("GET", "/admin/summary.csv", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
		rr = httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
			t.Errorf("expected CSV content type, got %q", ct)
		}
		if !strings.HasPrefix(rr.Body.String(), "Bookings\nNo bookings found.\n") {
			t.Errorf("unexpected CSV body %q", rr.Body.String())
		}
	})

	t.Run("CSVRequiresAdmin", func(t *testing.T) {
		token, _ := env.authHandler.GenerateToken("1234567")
		req := httptest.NewRequest("GET", "/admin/summary.csv", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rr.Code)
		}
	})

	t.Run("CORSPreflight", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/bookings", nil)
		req.Header.Set("Origin", "https://rota.example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://rota.example.com" {
			t.Errorf("expected allowed origin header, got %q", got)
		}
	})
}
