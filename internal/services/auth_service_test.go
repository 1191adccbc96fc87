package services

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "atendezap/pkg/errors"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewAuthService("test-secret")

	token, err := svc.IssueToken("agent-1", time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	identityID, err := svc.IdentityFromToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if identityID != "agent-1" {
		t.Fatalf("identity = %q", identityID)
	}
}

func TestTokenRejection(t *testing.T) {
	svc := NewAuthService("test-secret")

	if _, err := svc.IdentityFromToken("garbage"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("garbage token: %v", err)
	}

	other := NewAuthService("other-secret")
	token, err := other.IssueToken("agent-1", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.IdentityFromToken(token); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("wrong-secret token: %v", err)
	}

	expired, err := svc.IssueToken("agent-1", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.IdentityFromToken(expired); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expired token: %v", err)
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := WithIdentity(context.Background(), "agent-1")
	id, ok := IdentityFromContext(ctx)
	if !ok || id != "agent-1" {
		t.Fatalf("identity from context = %q, %v", id, ok)
	}

	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Fatal("empty context reported an identity")
	}
}
