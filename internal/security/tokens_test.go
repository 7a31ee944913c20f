package security

import (
	"testing"
	"time"
)

func TestTokenProvider_IssueAndValidateAccess(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	access, exp, err := p.IssueAccess("u1", "u1@example.com")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if access == "" {
		t.Fatal("access token empty")
	}
	if exp.Before(time.Now()) {
		t.Fatal("expires at in the past")
	}
	uid, err := p.ValidateAccess(access)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if uid != "u1" {
		t.Errorf("userID = %q, want %q", uid, "u1")
	}
}

func TestTokenProvider_ValidateAccessInvalid(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	if _, err := p.ValidateAccess("invalid-token"); err != ErrInvalidToken {
		t.Errorf("ValidateAccess invalid token: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_ValidateAccessExpired(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	p.now = func() time.Time { return time.Now().Add(-time.Hour) }
	access, _, err := p.IssueAccess("u1", "")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	p.now = func() time.Time { return time.Now().UTC() }
	if _, err := p.ValidateAccess(access); err != ErrInvalidToken {
		t.Errorf("ValidateAccess expired token: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_ValidateAccessWrongAudienceOrKey(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	access, _, err := p.IssueAccess("u1", "")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	other := NewTokenProvider(p.privateKey, p.publicKey, p.issuer, "other-audience", time.Minute)
	if _, err := other.ValidateAccess(access); err != ErrInvalidToken {
		t.Errorf("wrong audience: want ErrInvalidToken, got %v", err)
	}
	otherIssuer := NewTokenProvider(p.privateKey, p.publicKey, "other-issuer", p.audience, time.Minute)
	if _, err := otherIssuer.ValidateAccess(access); err != ErrInvalidToken {
		t.Errorf("wrong issuer: want ErrInvalidToken, got %v", err)
	}
	q, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	if _, err := q.ValidateAccess(access); err != ErrInvalidToken {
		t.Errorf("foreign key: want ErrInvalidToken, got %v", err)
	}
}
