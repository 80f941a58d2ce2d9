package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testCodec() *JWTCodec {
	return NewJWTCodec("test-secret-key-for-testing", 15*time.Minute)
}

func TestIssue(t *testing.T) {
	token, err := testCodec().Issue(1, "alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if token == "" {
		t.Error("Issue() returned empty token")
	}

	if len(token) < 50 {
		t.Errorf("token seems too short: %d chars", len(token))
	}
}

func TestIssue_DifferentTokens(t *testing.T) {
	codec := testCodec()
	token1, _ := codec.Issue(1, "user1@example.com", "User One")
	token2, _ := codec.Issue(2, "user2@example.com", "User Two")

	if token1 == token2 {
		t.Error("different users should produce different tokens")
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	codec := testCodec()
	token, _ := codec.Issue(42, "alice@example.com", "Alice")

	claims, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	userID, err := claims.UserID()
	if err != nil {
		t.Fatalf("UserID() error = %v", err)
	}
	if userID != 42 {
		t.Errorf("UserID = %d, expected 42", userID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("Email = %q, expected %q", claims.Email, "alice@example.com")
	}
	if claims.DisplayName != "Alice" {
		t.Errorf("DisplayName = %q, expected %q", claims.DisplayName, "Alice")
	}
	if claims.TokenType != TokenTypeAccess {
		t.Errorf("TokenType = %q, expected %q", claims.TokenType, TokenTypeAccess)
	}
}

func TestDecode_InvalidToken(t *testing.T) {
	codec := testCodec()
	invalidTokens := []string{
		"",
		"invalid",
		"not.a.token",
		"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature",
	}

	for _, token := range invalidTokens {
		if _, err := codec.Decode(token); err == nil {
			t.Errorf("Decode(%q) should return error", token)
		}
	}
}

func TestDecode_Tampered(t *testing.T) {
	codec := testCodec()
	token, _ := codec.Issue(1, "alice@example.com", "Alice")

	// Flip a character in the payload segment.
	parts := strings.Split(token, ".")
	payload := []byte(parts[1])
	if payload[3] == 'A' {
		payload[3] = 'B'
	} else {
		payload[3] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, err := codec.Decode(tampered); err == nil {
		t.Error("Decode should fail on tampered token")
	}
}

func TestDecode_WrongSecret(t *testing.T) {
	token, _ := NewJWTCodec("original-secret", 15*time.Minute).Issue(1, "a@b.c", "A")

	if _, err := NewJWTCodec("different-secret", 15*time.Minute).Decode(token); err == nil {
		t.Error("Decode should fail with wrong secret")
	}
}

func TestDecode_Expired(t *testing.T) {
	codec := NewJWTCodec("test-secret-key-for-testing", -time.Minute)
	token, _ := codec.Issue(1, "a@b.c", "A")

	if _, err := codec.Decode(token); err == nil {
		t.Error("Decode should fail on expired token")
	}
}

func TestDecode_WrongTokenType(t *testing.T) {
	codec := testCodec()

	// Sign a structurally valid token whose type is not "access".
	now := time.Now()
	claims := Claims{
		Email:       "a@b.c",
		DisplayName: "A",
		TokenType:   "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("test-secret-key-for-testing"))
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	if _, err := codec.Decode(signed); err == nil {
		t.Error("Decode should reject non-access token types")
	}
}

func TestIssue_Expiration(t *testing.T) {
	codec := NewJWTCodec("test-secret-key-for-testing", time.Hour)
	token, _ := codec.Issue(1, "a@b.c", "A")
	claims, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	expiresAt := claims.ExpiresAt.Time
	now := time.Now()

	if expiresAt.Before(now) {
		t.Error("token should not be expired immediately")
	}

	expectedExpiry := now.Add(time.Hour)
	diff := expiresAt.Sub(expectedExpiry)
	if diff < -time.Minute || diff > time.Minute {
		t.Errorf("expiration time is off by more than 1 minute: %v", diff)
	}
}

func TestClaims_UserID_Invalid(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-number"}}
	if _, err := claims.UserID(); err == nil {
		t.Error("UserID should fail on non-numeric subject")
	}
}
