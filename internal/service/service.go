package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vimaec/nextcloud-notifications/internal/domain"
	"github.com/vimaec/nextcloud-notifications/internal/dto"
	"github.com/vimaec/nextcloud-notifications/internal/identity"
	"github.com/vimaec/nextcloud-notifications/internal/session"
	"github.com/vimaec/nextcloud-notifications/internal/signer"
	"github.com/vimaec/nextcloud-notifications/internal/store"
	"github.com/vimaec/nextcloud-notifications/internal/validate"
)

type KeyProvider interface {
	KeyPairFor(ctx context.Context, userID string) (identity.KeyPair, error)
}

// Emitter receives registration-change signals after successful writes. It is
// best effort: failures are logged, never surfaced to the client.
type Emitter interface {
	PushNotify(ctx context.Context, userID string) error
	PushDelete(ctx context.Context, userID string) error
}

type Service struct {
	store    *store.Store
	resolver *session.Resolver
	keys     KeyProvider
	emitter  Emitter
}

func New(st *store.Store, resolver *session.Resolver, keys KeyProvider, emitter Emitter) *Service {
	return &Service{store: st, resolver: resolver, keys: keys, emitter: emitter}
}

type RegisterResult struct {
	Response dto.RegisterDeviceResponse
	Created  bool
}

// RegisterDevice runs the registration gates in fixed order: session, token
// hash, device key, proxy URL. The first failing gate decides the error and
// nothing is persisted for rejected input.
func (s *Service) RegisterDevice(ctx context.Context, sess session.Session, req dto.RegisterDeviceRequest) (RegisterResult, error) {
	id, err := s.resolver.Resolve(ctx, sess)
	if err != nil {
		return RegisterResult{}, err
	}

	if err := validate.TokenHash(req.PushTokenHash); err != nil {
		return RegisterResult{}, err
	}
	if err := validate.DevicePublicKey(req.DevicePublicKey); err != nil {
		return RegisterResult{}, err
	}
	if err := validate.ProxyServer(req.ProxyServer); err != nil {
		return RegisterResult{}, err
	}

	pair, err := s.keys.KeyPairFor(ctx, id.UserID)
	if err != nil {
		return RegisterResult{}, fmt.Errorf("identity key pair: %w", err)
	}

	created, err := s.store.Devices().Upsert(ctx, domain.PushDevice{
		UserID:          id.UserID,
		TokenID:         id.Token.ID,
		DevicePublicKey: req.DevicePublicKey,
		PushTokenHash:   req.PushTokenHash,
		ProxyServer:     req.ProxyServer,
	})
	if err != nil {
		return RegisterResult{}, fmt.Errorf("upsert device: %w", err)
	}

	signed, err := signer.Sign(pair, id.Token.ID, req.PushTokenHash)
	if err != nil {
		return RegisterResult{}, fmt.Errorf("sign registration: %w", err)
	}

	if s.emitter != nil {
		if err := s.emitter.PushNotify(ctx, id.UserID); err != nil {
			slog.Warn("push registration signal failed", "error", err, "user_id", id.UserID)
		}
	}

	return RegisterResult{
		Response: dto.RegisterDeviceResponse{
			PublicKey:        signed.PublicKey,
			DeviceIdentifier: signed.DeviceIdentifier,
			Signature:        signed.Signature,
		},
		Created: created,
	}, nil
}

// RemoveDevice deletes the registration bound to the resolved token. Removing
// a registration that does not exist is a no-op success.
func (s *Service) RemoveDevice(ctx context.Context, sess session.Session) (bool, error) {
	id, err := s.resolver.Resolve(ctx, sess)
	if err != nil {
		return false, err
	}
	deleted, err := s.store.Devices().Delete(ctx, id.UserID, id.Token.ID)
	if err != nil {
		return false, fmt.Errorf("delete device: %w", err)
	}
	if deleted && s.emitter != nil {
		if err := s.emitter.PushDelete(ctx, id.UserID); err != nil {
			slog.Warn("push removal signal failed", "error", err, "user_id", id.UserID)
		}
	}
	return deleted, nil
}
