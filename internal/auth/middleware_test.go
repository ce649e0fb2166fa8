package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ticket-marketplace/internal/auth"

	"github.com/stretchr/testify/assert"
)

const testSecret = "test-admin-secret"

func protectedHandler() http.Handler {
	return auth.AdminMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAdminTokenRoundTrip(t *testing.T) {
	token, err := auth.IssueAdminToken(testSecret, "ops@example.com", time.Hour)
	assert.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protectedHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminMiddlewareRejectsBadRequests(t *testing.T) {
	// No header at all
	req := httptest.NewRequest("GET", "/api/admin/orders", nil)
	rec := httptest.NewRecorder()
	protectedHandler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Malformed header
	req = httptest.NewRequest("GET", "/api/admin/orders", nil)
	req.Header.Set("Authorization", "Token abc")
	rec = httptest.NewRecorder()
	protectedHandler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Token signed with a different secret
	token, err := auth.IssueAdminToken("some-other-secret", "ops@example.com", time.Hour)
	assert.NoError(t, err)
	req = httptest.NewRequest("GET", "/api/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	protectedHandler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminMiddlewareRejectsExpiredToken(t *testing.T) {
	token, err := auth.IssueAdminToken(testSecret, "ops@example.com", -time.Minute)
	assert.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protectedHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminMiddlewareDisabledWithoutSecret(t *testing.T) {
	handler := auth.AdminMiddleware("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run when the admin API is disabled")
	}))

	token, _ := auth.IssueAdminToken(testSecret, "ops@example.com", time.Hour)
	req := httptest.NewRequest("GET", "/api/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
