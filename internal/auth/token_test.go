package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokensIssueAndParse(t *testing.T) {
	tokens := NewTokens("secret-a", time.Hour)
	raw, expiresAt, err := tokens.Issue(&User{ID: "u-1", Role: RoleStudent, RollNumber: "R100"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected expiry in the future, got %v", expiresAt)
	}

	claims, err := tokens.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "u-1" || claims.Role != RoleStudent || claims.RollNumber != "R100" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokensParseFailures(t *testing.T) {
	issuer := NewTokens("secret-a", time.Hour)
	raw, _, err := issuer.Issue(&User{ID: "u-1", Role: RoleAdmin, RollNumber: "A1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	expired := NewTokens("secret-a", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredRaw, _, err := expired.Issue(&User{ID: "u-1", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}

	tests := []struct {
		name    string
		tokens  *Tokens
		raw     string
		wantErr error
	}{
		{name: "empty", tokens: issuer, raw: "", wantErr: ErrMissingToken},
		{name: "garbage", tokens: issuer, raw: "not-a-jwt", wantErr: ErrInvalidToken},
		{name: "wrong secret", tokens: NewTokens("secret-b", time.Hour), raw: raw, wantErr: ErrInvalidToken},
		{name: "expired", tokens: issuer, raw: expiredRaw, wantErr: ErrTokenExpired},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.tokens.Parse(tc.raw)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}
