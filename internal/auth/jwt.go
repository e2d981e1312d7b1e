// Package auth issues and checks the session token and guards routes.
//
// SESSION FLOW:
//  1. POST /auth/login (or /auth/admin/login, /auth/register) signs the user in
//  2. The server puts a signed JWT in the HttpOnly "token" cookie
//  3. RequireAuth reads the cookie on every protected request, validates the
//     JWT and confirms the user still has an open session
//  4. RequireAdmin additionally checks the role carried in the token
//
// The token alone is not enough: logging out closes the session on the
// server, so a copied cookie stops working right away instead of at expiry.
//
// JWT STRUCTURE:
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Payload: {"sub":"<userID>","role":"admin","name":"Admin User","iss":"civic-sync","exp":...}
//	- Signature: HMAC-SHA256 over header and payload with the server secret
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/civic-sync/internal/model"
)

const (
	// Issuer is stamped into every token and required on validation.
	Issuer = "civic-sync"

	// DefaultTokenTTL is used when NewTokenService is given no lifetime.
	DefaultTokenTTL = 24 * time.Hour
)

// Identity is who a request is acting as, as recorded in the token.
type Identity struct {
	UserID string
	Role   model.Role
	Name   string
}

// IsAdmin reports whether the identity may use the admin routes.
func (id Identity) IsAdmin() bool {
	return id.Role == model.RoleAdmin
}

// Author returns the name stamped on things this identity writes.
func (id Identity) Author() model.Author {
	return model.Author{ID: id.UserID, Name: id.Name}
}

// IdentityOf returns the token identity for u.
func IdentityOf(u model.User) Identity {
	return Identity{UserID: u.ID, Role: u.Role, Name: u.Name}
}

// TokenService signs and verifies session tokens with an HMAC secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService. The secret must be at least 16
// characters; a ttl <= 0 selects DefaultTokenTTL.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL is how long issued tokens stay valid. The session cookie uses the
// same lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// claims is the JWT payload. The user id travels in "sub".
type claims struct {
	Role model.Role `json:"role"`
	Name string     `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Generate signs a token for id with the service's lifetime.
func (s *TokenService) Generate(id Identity) (string, error) {
	return s.GenerateWithDuration(id, s.ttl)
}

// GenerateWithDuration signs a token that expires after d. A negative d
// yields an already expired token, which tests rely on.
func (s *TokenService) GenerateWithDuration(id Identity, d time.Duration) (string, error) {
	if id.UserID == "" {
		return "", errors.New("auth: token needs a user id")
	}

	now := time.Now()
	c := claims{
		Role: id.Role,
		Name: id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies tokenStr and returns the identity inside.
//
// CHECKS (done by the jwt library):
//   - signature matches the secret
//   - algorithm is HS256, so a token claiming "none" is rejected
//   - issuer is civic-sync
//   - the token has an expiry and it is in the future
func (s *TokenService) Validate(tokenStr string) (Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, fmt.Errorf("auth: token expired")
		}
		return Identity{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return Identity{}, fmt.Errorf("auth: token has no subject")
	}

	return Identity{UserID: c.Subject, Role: c.Role, Name: c.Name}, nil
}
