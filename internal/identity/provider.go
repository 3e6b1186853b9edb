// Package identity supplies the per-user signing key pair used to attest
// device registrations towards the push proxy. The pair is never used for
// authentication.
package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/vimaec/nextcloud-notifications/internal/domain"
	"github.com/vimaec/nextcloud-notifications/internal/store"
)

const keyBits = 2048

type KeyPair struct {
	PrivateKeyPEM string
	PublicKeyPEM  string
}

type Provider struct {
	store *store.Store
}

func NewProvider(st *store.Store) *Provider { return &Provider{store: st} }

// KeyPairFor returns the user's signing pair, generating one on first use.
// Concurrent first calls race on a conditional insert; the loser re-reads so
// every caller sees the same pair.
func (p *Provider) KeyPairFor(ctx context.Context, userID string) (KeyPair, error) {
	rec, err := p.store.IdentityKeys().Get(ctx, userID)
	if err == nil {
		return KeyPair{PrivateKeyPEM: rec.PrivateKey, PublicKeyPEM: rec.PublicKey}, nil
	}
	if !errors.Is(err, store.ErrRecordNotFound) {
		return KeyPair{}, err
	}

	pair, err := Generate()
	if err != nil {
		return KeyPair{}, err
	}
	inserted, err := p.store.IdentityKeys().Insert(ctx, domain.IdentityKeyPair{
		UserID:     userID,
		PrivateKey: pair.PrivateKeyPEM,
		PublicKey:  pair.PublicKeyPEM,
	})
	if err != nil {
		return KeyPair{}, err
	}
	if !inserted {
		rec, err := p.store.IdentityKeys().Get(ctx, userID)
		if err != nil {
			return KeyPair{}, err
		}
		return KeyPair{PrivateKeyPEM: rec.PrivateKey, PublicKeyPEM: rec.PublicKey}, nil
	}
	return pair, nil
}

// Generate creates a fresh RSA pair, PEM-encoded as PKCS#8 private and PKIX
// public blocks.
func Generate() (KeyPair, error) {
	key, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return KeyPair{}, fmt.Errorf("generate identity key: %w", err)
	}
	privDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return KeyPair{}, fmt.Errorf("marshal private key: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return KeyPair{}, fmt.Errorf("marshal public key: %w", err)
	}
	return KeyPair{
		PrivateKeyPEM: string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER})),
		PublicKeyPEM:  string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})),
	}, nil
}
