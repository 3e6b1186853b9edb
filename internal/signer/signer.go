// Package signer produces the attested registration payload the device hands
// to the push proxy. The proxy is untrusted transport, so the device
// identifier is signed with the user's identity key; the device's own public
// key and the proxy URL are deliberately left out of the signed payload.
package signer

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha512"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/vimaec/nextcloud-notifications/internal/identity"
)

type Response struct {
	PublicKey        string
	DeviceIdentifier string
	Signature        string
}

// deviceIdentifier derives the stable identifier bytes for a registration.
// Same (token, hash) always yields the same digest; different tokens never
// collide.
func deviceIdentifier(tokenID int64, pushTokenHash string) ([]byte, error) {
	canonical, err := json.Marshal([]any{tokenID, pushTokenHash})
	if err != nil {
		return nil, err
	}
	digest := sha512.Sum512(canonical)
	return digest[:], nil
}

// Sign builds the device identifier, signs its raw bytes with the user's
// identity private key, and base64-encodes both for transport.
func Sign(pair identity.KeyPair, tokenID int64, pushTokenHash string) (Response, error) {
	raw, err := deviceIdentifier(tokenID, pushTokenHash)
	if err != nil {
		return Response{}, fmt.Errorf("device identifier: %w", err)
	}
	priv, err := parsePrivateKey(pair.PrivateKeyPEM)
	if err != nil {
		return Response{}, err
	}
	hashed := sha512.Sum512(raw)
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA512, hashed[:])
	if err != nil {
		return Response{}, fmt.Errorf("sign device identifier: %w", err)
	}
	return Response{
		PublicKey:        pair.PublicKeyPEM,
		DeviceIdentifier: base64.StdEncoding.EncodeToString(raw),
		Signature:        base64.StdEncoding.EncodeToString(sig),
	}, nil
}

func parsePrivateKey(pemStr string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, errors.New("identity private key is not PEM")
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		if rsaKey, pkcs1Err := x509.ParsePKCS1PrivateKey(block.Bytes); pkcs1Err == nil {
			return rsaKey, nil
		}
		return nil, fmt.Errorf("parse identity private key: %w", err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("identity private key is %T, want RSA", key)
	}
	return rsaKey, nil
}
