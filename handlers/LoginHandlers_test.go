package handlers

import (
	"testing"

	"backend/utils"

	"github.com/golang-jwt/jwt/v5"
)

func TestNormalizeAuthHeader(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc-123", "abc-123"},
		{"abc-123", "abc-123"},
		{"  Bearer   abc-123  ", "abc-123"},
		{"Bearer ", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeAuthHeader(tt.header); got != tt.want {
			t.Errorf("normalizeAuthHeader(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestSessionIDFromToken(t *testing.T) {
	token, err := utils.GenerateJWT("mgomez", "550e8400-e29b-41d4-a716-446655440000")
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}

	sessionID, err := sessionIDFromToken(token)
	if err != nil {
		t.Fatalf("sessionIDFromToken() error = %v", err)
	}
	if sessionID != "550e8400-e29b-41d4-a716-446655440000" {
		t.Errorf("sessionIDFromToken() = %q, want the session id from the claims", sessionID)
	}
}

func TestSessionIDFromToken_RejectsGarbage(t *testing.T) {
	if _, err := sessionIDFromToken("no-es-un-token"); err == nil {
		t.Error("sessionIDFromToken() accepted a malformed token")
	}
}

func TestSessionIDFromToken_RejectsMissingClaim(t *testing.T) {
	// A structurally valid token without a sessionId claim must not pass.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": "mgomez",
		"type":     "access",
	})
	signed, err := unsigned.SignedString([]byte("tintasytecnologia"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	if _, err := sessionIDFromToken(signed); err == nil {
		t.Error("sessionIDFromToken() accepted a token with no session binding")
	}
}
