package models

// AuthClient is the caller identified by a validated access token.
type AuthClient struct {
	ClientID string `json:"client_id"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}
