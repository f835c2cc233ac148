package utils

import (
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	token, err := GenerateJWT("mgomez", "session-abc")
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}

	parsed, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT() error = %v", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not MapClaims")
	}
	if claims["username"] != "mgomez" {
		t.Errorf("username claim = %v, want mgomez", claims["username"])
	}
	if claims["sessionId"] != "session-abc" {
		t.Errorf("sessionId claim = %v, want session-abc", claims["sessionId"])
	}
	if claims["type"] != "access" {
		t.Errorf("type claim = %v, want access", claims["type"])
	}
}

func TestValidateJWT_RejectsTampered(t *testing.T) {
	token, err := GenerateJWT("mgomez", "session-abc")
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}

	// Flip the signature segment
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d segments, want 3", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]

	if _, err := ValidateJWT(tampered); err == nil {
		t.Error("ValidateJWT() accepted a tampered signature")
	}
}

func TestValidateJWT_RejectsWrongSigningKey(t *testing.T) {
	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username":  "mgomez",
		"sessionId": "session-abc",
	})
	signed, err := other.SignedString([]byte("otra-clave"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	if _, err := ValidateJWT(signed); err == nil {
		t.Error("ValidateJWT() accepted a token signed with a different key")
	}
}

func TestValidatePassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("clave123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword() error = %v", err)
	}

	if !ValidatePassword(string(hash), "clave123") {
		t.Error("ValidatePassword() rejected the matching password")
	}
	if ValidatePassword(string(hash), "otra") {
		t.Error("ValidatePassword() accepted a wrong password")
	}
}
