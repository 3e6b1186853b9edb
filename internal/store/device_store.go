package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vimaec/nextcloud-notifications/internal/domain"
)

type DeviceStore struct{ db *gorm.DB }

func (s *Store) Devices() *DeviceStore { return &DeviceStore{db: s.DB} }

// Upsert writes the registration for (user_id, token_id), overwriting every
// other field when the row already exists. Returns true only when a new row
// was inserted; the loser of a concurrent insert race observes an update.
func (d *DeviceStore) Upsert(ctx context.Context, dev domain.PushDevice) (bool, error) {
	created := false
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "token_id"}},
			DoNothing: true,
		}).Create(&dev)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			created = true
			return nil
		}
		return tx.Model(&domain.PushDevice{}).
			Where("user_id = ? AND token_id = ?", dev.UserID, dev.TokenID).
			Updates(map[string]any{
				"device_public_key": dev.DevicePublicKey,
				"push_token_hash":   dev.PushTokenHash,
				"proxy_server":      dev.ProxyServer,
			}).Error
	})
	return created, err
}

// Delete removes the registration for (user_id, token_id). A missing row is
// not an error; the caller only learns whether anything was removed.
func (d *DeviceStore) Delete(ctx context.Context, userID string, tokenID int64) (bool, error) {
	res := d.db.WithContext(ctx).
		Where("user_id = ? AND token_id = ?", userID, tokenID).
		Delete(&domain.PushDevice{})
	return res.RowsAffected > 0, res.Error
}

func (d *DeviceStore) Get(ctx context.Context, userID string, tokenID int64) (*domain.PushDevice, error) {
	var dev domain.PushDevice
	if err := d.db.WithContext(ctx).First(&dev, "user_id = ? AND token_id = ?", userID, tokenID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &dev, nil
}
