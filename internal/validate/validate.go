// Package validate holds the pure input checks for client-supplied
// registration fields. All input is attacker-controlled; every check fails
// closed with a specific domain error.
package validate

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/vimaec/nextcloud-notifications/internal/domain"
)

const (
	pemHeader = "-----BEGIN PUBLIC KEY-----\n"
	pemFooter = "-----END PUBLIC KEY-----\n"
)

var tokenHashRE = regexp.MustCompile(`^[0-9a-f]{128}$`)

// TokenHash accepts exactly 128 lowercase hex characters (a SHA-512 digest of
// the vendor push token, never the token itself).
func TokenHash(s string) error {
	if !tokenHashRE.MatchString(s) {
		return fmt.Errorf("%w: expected 128 lowercase hex characters", domain.ErrInvalidPushTokenHash)
	}
	return nil
}

// DevicePublicKey accepts a single well-formed PEM public key block: the
// standard header at offset zero, the standard footer followed by exactly one
// trailing newline, and DER contents that parse as a PKIX public key.
func DevicePublicKey(s string) error {
	if !strings.HasPrefix(s, pemHeader) {
		return fmt.Errorf("%w: missing PEM header", domain.ErrInvalidDeviceKey)
	}
	if !strings.HasSuffix(s, pemFooter) {
		return fmt.Errorf("%w: key must end with the PEM footer and a single newline", domain.ErrInvalidDeviceKey)
	}
	block, rest := pem.Decode([]byte(s))
	if block == nil || block.Type != "PUBLIC KEY" || len(rest) != 0 {
		return fmt.Errorf("%w: not a single public key block", domain.ErrInvalidDeviceKey)
	}
	if _, err := x509.ParsePKIXPublicKey(block.Bytes); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidDeviceKey, err)
	}
	return nil
}

// ProxyServer accepts an absolute https URL. The proxy has to be reachable by
// the vendor push infrastructure, so plain http and localhost are rejected.
func ProxyServer(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidProxyServer, err)
	}
	if u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("%w: absolute https URL required", domain.ErrInvalidProxyServer)
	}
	if strings.EqualFold(u.Hostname(), "localhost") {
		return fmt.Errorf("%w: localhost is not a reachable proxy", domain.ErrInvalidProxyServer)
	}
	return nil
}
