package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Role identifies the kind of account behind a token.
type Role string

const (
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
	RoleAdmin   Role = "admin"
)

// Principal is the resolved identity of the caller. It is built exactly once,
// when the access token is verified, and carried through the request context.
type Principal struct {
	ID   string
	Role Role
}

// TokenClaims is the JWT payload for access tokens. Student and mentor tokens
// carry the discriminant in "type"; admin tokens carry role:"admin". Both forms
// are kept for wire compatibility with existing clients.
type TokenClaims struct {
	Type string `json:"type,omitempty"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Discriminant returns the role tag encoded in the claims.
func (c *TokenClaims) Discriminant() string {
	if c.Role != "" {
		return c.Role
	}
	return c.Type
}

// LoginRequest holds credentials for authenticating any account type.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Type     Role   `json:"type" validate:"required,oneof=student mentor admin"`
}

// AuthUser describes the authenticated account in auth responses.
type AuthUser struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Email              string             `json:"email"`
	Type               Role               `json:"type"`
	VerificationStatus VerificationStatus `json:"verificationStatus,omitempty"`
}

// AuthResponse returns the issued token and account summary.
type AuthResponse struct {
	Token   string   `json:"token"`
	User    AuthUser `json:"user"`
	Message string   `json:"message,omitempty"`
}
