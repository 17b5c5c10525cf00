package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func protectedHandler(gotActor *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actor, ok := GetActor(r.Context()); ok {
			*gotActor = actor
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAdminAuthMiddleware_ValidToken(t *testing.T) {
	var actor string
	handler := AdminAuthMiddleware(testSecret)(protectedHandler(&actor))

	req := httptest.NewRequest(http.MethodPost, "/admin/points/adjust", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "ops-kim"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if actor != "ops-kim" {
		t.Errorf("actor = %q, want token subject", actor)
	}
}

func TestAdminAuthMiddleware_RejectsBadTokens(t *testing.T) {
	var actor string
	handler := AdminAuthMiddleware(testSecret)(protectedHandler(&actor))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", "ops-kim")},
		{"garbage token", "Bearer not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/points/adjust", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}
