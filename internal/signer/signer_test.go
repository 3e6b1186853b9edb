package signer_test

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha512"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/vimaec/nextcloud-notifications/internal/identity"
	"github.com/vimaec/nextcloud-notifications/internal/signer"
)

func testPair(t *testing.T) identity.KeyPair {
	t.Helper()
	pair, err := identity.Generate()
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	return pair
}

func TestDeviceIdentifierIsStable(t *testing.T) {
	pair := testPair(t)
	hash := strings.Repeat("0123456789abcdef", 8)

	first, err := signer.Sign(pair, 23, hash)
	if err != nil {
		t.Fatalf("first sign: %v", err)
	}
	second, err := signer.Sign(pair, 23, hash)
	if err != nil {
		t.Fatalf("second sign: %v", err)
	}
	if first.DeviceIdentifier != second.DeviceIdentifier {
		t.Fatalf("identifier changed between registrations: %q vs %q", first.DeviceIdentifier, second.DeviceIdentifier)
	}
}

func TestDeviceIdentifierDiffersPerDevice(t *testing.T) {
	pair := testPair(t)
	hash := strings.Repeat("0123456789abcdef", 8)

	a, err := signer.Sign(pair, 23, hash)
	if err != nil {
		t.Fatalf("sign token 23: %v", err)
	}
	b, err := signer.Sign(pair, 42, hash)
	if err != nil {
		t.Fatalf("sign token 42: %v", err)
	}
	if a.DeviceIdentifier == b.DeviceIdentifier {
		t.Fatalf("different tokens produced the same identifier")
	}

	c, err := signer.Sign(pair, 23, strings.Repeat("fedcba9876543210", 8))
	if err != nil {
		t.Fatalf("sign other hash: %v", err)
	}
	if a.DeviceIdentifier == c.DeviceIdentifier {
		t.Fatalf("different hashes produced the same identifier")
	}
}

func TestSignatureVerifiesAgainstReturnedKey(t *testing.T) {
	pair := testPair(t)

	res, err := signer.Sign(pair, 23, strings.Repeat("0123456789abcdef", 8))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if res.PublicKey != pair.PublicKeyPEM {
		t.Fatalf("response must carry the user's identity public key")
	}

	raw, err := base64.StdEncoding.DecodeString(res.DeviceIdentifier)
	if err != nil {
		t.Fatalf("decode identifier: %v", err)
	}
	if len(raw) != sha512.Size {
		t.Fatalf("identifier is %d bytes, want %d", len(raw), sha512.Size)
	}
	sig, err := base64.StdEncoding.DecodeString(res.Signature)
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}

	block, _ := pem.Decode([]byte(res.PublicKey))
	if block == nil {
		t.Fatalf("public key is not PEM")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		t.Fatalf("parse public key: %v", err)
	}

	hashed := sha512.Sum512(raw)
	if err := rsa.VerifyPKCS1v15(pub.(*rsa.PublicKey), crypto.SHA512, hashed[:], sig); err != nil {
		t.Fatalf("signature does not verify: %v", err)
	}
}

func TestSignRejectsGarbageKey(t *testing.T) {
	_, err := signer.Sign(identity.KeyPair{PrivateKeyPEM: "garbage"}, 23, strings.Repeat("ab", 64))
	if err == nil {
		t.Fatalf("expected an error for a non-PEM private key")
	}
}
