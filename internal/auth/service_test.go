package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Token mint/validate needs no database, so the service runs store-free here.

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService(nil, "test-secret")

	token, err := svc.IssueToken("user_abc")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user_abc", userID)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	minter := NewService(nil, "secret-a")
	checker := NewService(nil, "secret-b")

	token, err := minter.IssueToken("user_abc")
	require.NoError(t, err)

	_, err = checker.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewService(nil, "test-secret")
	_, err := svc.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	svc := NewService(nil, "test-secret")
	token, err := svc.IssueToken("user_abc")
	require.NoError(t, err)

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
	})
	handler := svc.AuthMiddleware(next)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user_abc", gotUserID)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	svc := NewService(nil, "test-secret")
	handler := svc.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserIDFromContextEmptyOutsideMiddleware(t *testing.T) {
	assert.Empty(t, UserIDFromContext(context.Background()))
}
