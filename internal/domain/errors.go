package domain

import "errors"

var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidSessionToken  = errors.New("invalid session token")
	ErrInvalidPushTokenHash = errors.New("invalid push token hash")
	ErrInvalidDeviceKey     = errors.New("invalid device key")
	ErrInvalidProxyServer   = errors.New("invalid proxy server")
)
