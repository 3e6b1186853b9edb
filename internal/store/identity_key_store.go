package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vimaec/nextcloud-notifications/internal/domain"
)

type IdentityKeyStore struct{ db *gorm.DB }

func (s *Store) IdentityKeys() *IdentityKeyStore { return &IdentityKeyStore{db: s.DB} }

func (i *IdentityKeyStore) Get(ctx context.Context, userID string) (*domain.IdentityKeyPair, error) {
	var pair domain.IdentityKeyPair
	if err := i.db.WithContext(ctx).First(&pair, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &pair, nil
}

// Insert stores a freshly generated pair unless the user already has one.
// Returns false when an existing pair won; the caller must re-read it so all
// callers agree on a single pair per user.
func (i *IdentityKeyStore) Insert(ctx context.Context, pair domain.IdentityKeyPair) (bool, error) {
	res := i.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&pair)
	return res.RowsAffected > 0, res.Error
}
