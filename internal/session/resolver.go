package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vimaec/nextcloud-notifications/internal/domain"
	"github.com/vimaec/nextcloud-notifications/internal/store"
)

type TokenProvider interface {
	GetByID(ctx context.Context, id int64) (*domain.AuthToken, error)
}

// Identity is a resolved caller: the user and the credential record the
// session is bound to, guaranteed to belong together.
type Identity struct {
	UserID string
	Token  *domain.AuthToken
}

type Resolver struct {
	tokens TokenProvider
}

func NewResolver(tokens TokenProvider) *Resolver { return &Resolver{tokens: tokens} }

// Resolve fails closed: no user means unauthorized before any lookup, and any
// missing, foreign, or expired token is reported as an invalid session token.
func (r *Resolver) Resolve(ctx context.Context, sess Session) (Identity, error) {
	if sess.UserID == "" {
		return Identity{}, domain.ErrUnauthorized
	}
	if sess.TokenID <= 0 {
		return Identity{}, fmt.Errorf("%w: no token bound to session", domain.ErrInvalidSessionToken)
	}
	tok, err := r.tokens.GetByID(ctx, sess.TokenID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return Identity{}, fmt.Errorf("%w: unknown token", domain.ErrInvalidSessionToken)
		}
		return Identity{}, err
	}
	if tok.UserID != sess.UserID {
		return Identity{}, fmt.Errorf("%w: token belongs to another user", domain.ErrInvalidSessionToken)
	}
	if tok.ExpiresAt != nil && time.Now().After(*tok.ExpiresAt) {
		return Identity{}, fmt.Errorf("%w: token expired", domain.ErrInvalidSessionToken)
	}
	return Identity{UserID: sess.UserID, Token: tok}, nil
}
