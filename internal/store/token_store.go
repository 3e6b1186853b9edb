package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/vimaec/nextcloud-notifications/internal/domain"
)

type TokenStore struct{ db *gorm.DB }

func (s *Store) Tokens() *TokenStore { return &TokenStore{db: s.DB} }

func (t *TokenStore) GetByID(ctx context.Context, id int64) (*domain.AuthToken, error) {
	var tok domain.AuthToken
	if err := t.db.WithContext(ctx).First(&tok, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &tok, nil
}

func (t *TokenStore) Create(ctx context.Context, tok *domain.AuthToken) error {
	return t.db.WithContext(ctx).Create(tok).Error
}
