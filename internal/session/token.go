package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what can be read from a JWT-shaped token without a key. It is
// informational only and never consulted by the gate.
type TokenInfo struct {
	Subject   string     `json:"subject,omitempty"`
	Name      string     `json:"name,omitempty"`
	Email     string     `json:"email,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
}

// Inspect decodes token claims without verifying the signature. ok is false
// when the token is not a JWT.
func Inspect(token string, now time.Time) (TokenInfo, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}, false
	}

	info := TokenInfo{}
	info.Subject, _ = claims.GetSubject()
	if v, ok := claims["name"].(string); ok {
		info.Name = v
	}
	if v, ok := claims["email"].(string); ok {
		info.Email = v
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
		info.Expired = now.After(t)
	}
	return info, true
}
