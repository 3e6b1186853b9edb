package session_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vimaec/nextcloud-notifications/internal/domain"
	"github.com/vimaec/nextcloud-notifications/internal/session"
	"github.com/vimaec/nextcloud-notifications/internal/store"
)

func setupResolver(t *testing.T) (*session.Resolver, *store.Store) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.AuthToken{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	st := store.New(db)
	return session.NewResolver(st.Tokens()), st
}

func TestResolveFailsClosedWithoutUser(t *testing.T) {
	r, _ := setupResolver(t)

	_, err := r.Resolve(context.Background(), session.Session{TokenID: 23})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestResolveRejectsMissingToken(t *testing.T) {
	r, _ := setupResolver(t)

	for _, tokenID := range []int64{0, -1} {
		_, err := r.Resolve(context.Background(), session.Session{UserID: "alice", TokenID: tokenID})
		if !errors.Is(err, domain.ErrInvalidSessionToken) {
			t.Fatalf("token id %d: expected ErrInvalidSessionToken, got %v", tokenID, err)
		}
	}
}

func TestResolveRejectsUnknownToken(t *testing.T) {
	r, _ := setupResolver(t)

	_, err := r.Resolve(context.Background(), session.Session{UserID: "alice", TokenID: 23})
	if !errors.Is(err, domain.ErrInvalidSessionToken) {
		t.Fatalf("expected ErrInvalidSessionToken, got %v", err)
	}
}

func TestResolveRejectsForeignToken(t *testing.T) {
	r, st := setupResolver(t)
	ctx := context.Background()

	if err := st.Tokens().Create(ctx, &domain.AuthToken{ID: 23, UserID: "bob"}); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	_, err := r.Resolve(ctx, session.Session{UserID: "alice", TokenID: 23})
	if !errors.Is(err, domain.ErrInvalidSessionToken) {
		t.Fatalf("expected ErrInvalidSessionToken, got %v", err)
	}
}

func TestResolveRejectsExpiredToken(t *testing.T) {
	r, st := setupResolver(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	if err := st.Tokens().Create(ctx, &domain.AuthToken{ID: 23, UserID: "alice", ExpiresAt: &past}); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	_, err := r.Resolve(ctx, session.Session{UserID: "alice", TokenID: 23})
	if !errors.Is(err, domain.ErrInvalidSessionToken) {
		t.Fatalf("expected ErrInvalidSessionToken, got %v", err)
	}
}

func TestResolveSucceeds(t *testing.T) {
	r, st := setupResolver(t)
	ctx := context.Background()

	if err := st.Tokens().Create(ctx, &domain.AuthToken{ID: 23, UserID: "alice", Name: "phone"}); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	id, err := r.Resolve(ctx, session.Session{UserID: "alice", TokenID: 23})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id.UserID != "alice" || id.Token == nil || id.Token.ID != 23 {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestTokenCodecRoundTrip(t *testing.T) {
	codec := session.NewTokenCodec([]byte("secret"), "notifications")

	raw, err := codec.Mint("alice", 23, time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	sess, err := codec.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sess.UserID != "alice" || sess.TokenID != 23 {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestTokenCodecRejectsTampering(t *testing.T) {
	codec := session.NewTokenCodec([]byte("secret"), "notifications")
	other := session.NewTokenCodec([]byte("other-secret"), "notifications")

	raw, err := other.Mint("alice", 23, time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := codec.Parse(raw); err == nil {
		t.Fatalf("expected parse to reject a foreign signature")
	}
}

func TestTokenCodecRejectsWrongIssuer(t *testing.T) {
	codec := session.NewTokenCodec([]byte("secret"), "notifications")
	other := session.NewTokenCodec([]byte("secret"), "somewhere-else")

	raw, err := other.Mint("alice", 23, time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := codec.Parse(raw); err == nil {
		t.Fatalf("expected parse to reject a foreign issuer")
	}
}

func TestTokenCodecRejectsExpired(t *testing.T) {
	codec := session.NewTokenCodec([]byte("secret"), "notifications")

	raw, err := codec.Mint("alice", 23, -time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := codec.Parse(raw); err == nil {
		t.Fatalf("expected parse to reject an expired token")
	}
}
