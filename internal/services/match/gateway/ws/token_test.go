package ws

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/seabattle/internal/platform/errors"
	"github.com/louisbranch/seabattle/internal/services/match/domain/match"
)

var issuedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedVerifier(t *testing.T, secret string, now time.Time) *TokenVerifier {
	t.Helper()
	v, err := NewTokenVerifier(secret)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	v.now = func() time.Time { return now }
	return v
}

func TestNewTokenVerifierRequiresSecret(t *testing.T) {
	if _, err := NewTokenVerifier("  "); err == nil {
		t.Fatal("expected error for blank secret")
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	v := fixedVerifier(t, "s3cret", issuedAt)
	token, err := v.Issue(match.Player{ID: "p1", Username: "ana"}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	got, err := v.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != (match.Player{ID: "p1", Username: "ana"}) {
		t.Fatalf("player = %+v", got)
	}
}

func TestVerifyDefaultsUsernameToID(t *testing.T) {
	v := fixedVerifier(t, "s3cret", issuedAt)
	token, err := v.Issue(match.Player{ID: "p1"}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	got, err := v.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.Username != "p1" {
		t.Fatalf("username = %q, want p1", got.Username)
	}
}

func TestVerifyRejects(t *testing.T) {
	v := fixedVerifier(t, "s3cret", issuedAt)
	valid, err := v.Issue(match.Player{ID: "p1"}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	otherSecret, err := fixedVerifier(t, "other", issuedAt).Issue(match.Player{ID: "p1"}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   "p1",
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
		},
	}).SignedString([]byte("s3cret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
		},
	}).SignedString([]byte("s3cret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer, Subject: "p1"},
	}).SignedString([]byte("s3cret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tests := []struct {
		name  string
		token string
		now   time.Time
	}{
		{"empty", "", issuedAt},
		{"garbage", "not-a-token", issuedAt},
		{"expired", valid, issuedAt.Add(2 * time.Hour)},
		{"other secret", otherSecret, issuedAt},
		{"wrong alg", wrongAlg, issuedAt},
		{"no subject", noSubject, issuedAt},
		{"no expiry", noExpiry, issuedAt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v.now = func() time.Time { return tt.now }
			_, err := v.Verify(tt.token)
			if !apperrors.IsCode(err, apperrors.CodeTokenInvalid) {
				t.Fatalf("expected TOKEN_INVALID, got %v", err)
			}
		})
	}
}

func TestIssueRejectsBadInput(t *testing.T) {
	v := fixedVerifier(t, "s3cret", issuedAt)
	if _, err := v.Issue(match.Player{}, time.Hour); !apperrors.IsCode(err, apperrors.CodePlayerIDEmpty) {
		t.Fatalf("expected PLAYER_ID_EMPTY, got %v", err)
	}
	if _, err := v.Issue(match.Player{ID: "p1"}, 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws?token=from-query", nil)
	if got := tokenFromRequest(r); got != "from-query" {
		t.Fatalf("query token = %q", got)
	}
	r.Header.Set("Authorization", "Bearer from-header")
	if got := tokenFromRequest(r); got != "from-header" {
		t.Fatalf("header token = %q", got)
	}
	r.Header.Set("Authorization", "Basic abc")
	if got := tokenFromRequest(r); got != "from-query" {
		t.Fatalf("non-bearer header should fall back to query, got %q", got)
	}
}
