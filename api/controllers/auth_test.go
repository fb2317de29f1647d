package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/ANANDHURAI/Amart-Marketplace/pkg/auth"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/config"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/enums"
)

type stubRefreshManager struct {
	newAccessID string
	newRefresh  string
	err         error

	gotAccessID string
	gotProvided string
}

func (s *stubRefreshManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	s.gotAccessID = oldAccessID
	s.gotProvided = provided
	if s.err != nil {
		return "", "", s.err
	}
	return s.newAccessID, s.newRefresh, nil
}

func refreshJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "refresh-test-secret",
		Issuer:                 "amart-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 1440,
	}
}

func expiredAccessToken(t *testing.T, cfg config.JWTConfig, accessID string) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now().Add(-2*time.Hour), pkgAuth.AccessTokenPayload{
		AccountID: uuid.New(),
		Role:      enums.AccountRoleCustomer,
		JTI:       accessID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthRefreshRotatesSession(t *testing.T) {
	cfg := refreshJWTConfig()
	manager := &stubRefreshManager{newAccessID: "new-access-id", newRefresh: "new-refresh-token"}
	handler := AuthRefresh(manager, cfg, nil)

	token := expiredAccessToken(t, cfg, "old-access-id")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"old-refresh-token"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if manager.gotAccessID != "old-access-id" || manager.gotProvided != "old-refresh-token" {
		t.Fatalf("rotation called with %q %q", manager.gotAccessID, manager.gotProvided)
	}

	var envelope struct {
		Data refreshResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.RefreshToken != "new-refresh-token" {
		t.Fatalf("unexpected refresh token: %q", envelope.Data.RefreshToken)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, envelope.Data.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.ID != "new-access-id" {
		t.Fatalf("minted token carries session %q", claims.ID)
	}
}

func TestAuthRefreshRejectsBadRefreshToken(t *testing.T) {
	cfg := refreshJWTConfig()
	manager := &stubRefreshManager{err: errors.New("refresh token mismatch")}
	handler := AuthRefresh(manager, cfg, nil)

	token := expiredAccessToken(t, cfg, "old-access-id")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"forged"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRefreshRequiresBearerToken(t *testing.T) {
	handler := AuthRefresh(&stubRefreshManager{}, refreshJWTConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"anything"}`))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
