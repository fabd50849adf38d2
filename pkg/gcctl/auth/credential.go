package auth

import (
	"strings"
	"time"
)

const defaultTokenType = "Bearer"

// Credential is the access token returned by the client-credentials grant.
type Credential struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	AcquiredAt  time.Time `json:"acquired_at,omitempty"`
}

// AuthorizationHeader returns the value for the Authorization header in the
// "{token_type} {access_token}" form the platform expects.
func (c Credential) AuthorizationHeader() string {
	tokenType := strings.TrimSpace(c.TokenType)
	if tokenType == "" {
		tokenType = defaultTokenType
	}
	return tokenType + " " + c.AccessToken
}

// ExpiresAt estimates the expiry from the acquisition time. It is only used
// for display; expiry is detected from 401 responses.
func (c Credential) ExpiresAt() time.Time {
	if c.AcquiredAt.IsZero() || c.ExpiresIn <= 0 {
		return time.Time{}
	}
	return c.AcquiredAt.Add(time.Duration(c.ExpiresIn) * time.Second)
}

// Redacted returns a prefix of the access token that is safe to print.
func (c Credential) Redacted() string {
	const visible = 12
	if len(c.AccessToken) <= visible {
		return strings.Repeat("*", len(c.AccessToken))
	}
	return c.AccessToken[:visible] + "..."
}
