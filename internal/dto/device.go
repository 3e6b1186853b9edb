package dto

type RegisterDeviceRequest struct {
	PushTokenHash   string `json:"pushTokenHash"`
	DevicePublicKey string `json:"devicePublicKey"`
	ProxyServer     string `json:"proxyServer"`
}

// RegisterDeviceResponse carries the user's identity public key and the
// signed device identifier. The caller forwards publicKey and
// deviceIdentifier to the push proxy out of band.
type RegisterDeviceResponse struct {
	PublicKey        string `json:"publicKey"`
	DeviceIdentifier string `json:"deviceIdentifier"`
	Signature        string `json:"signature"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}
