package model

import "github.com/golang-jwt/jwt/v5"

// SessionClaims identify one browser session. AccountID is stable across
// sessions from the same client as long as it keeps the token, and keys
// the durable profile.
type SessionClaims struct {
	SessionID string `json:"sessionId"`
	AccountID string `json:"accountId"`
	jwt.RegisteredClaims
}

// SessionResponse is returned when a new session is opened.
type SessionResponse struct {
	Token     string `json:"token"`
	SessionID string `json:"sessionId"`
}
