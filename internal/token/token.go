// Package token signs and verifies the two bearer token classes: identity
// tokens carrying the verified user triple, and reset tokens scoped to a
// single password change. Both share one HS256 signer and are told apart by
// the purpose claim, checked at parse time so one class can never be accepted
// where the other is required.
package token

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const purposeResetPassword = "reset_password"

var (
	// ErrExpired means the token was well formed but its expiry has passed.
	ErrExpired = errors.New("token expired")
	// ErrInvalid covers bad signatures, malformed tokens and purpose mismatches.
	ErrInvalid = errors.New("invalid token")
)

// Identity is the verified user triple embedded in an identity token.
type Identity struct {
	UserID   string
	Email    string
	FullName string
}

type claims struct {
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Purpose  string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// Service issues and verifies tokens. Verification is stateless; session
// cross-checks live in the auth middleware.
type Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewService(secret, issuer string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

func (s *Service) sign(c claims) (string, error) {
	now := time.Now()
	c.Issuer = s.issuer
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	// unique jti: two logins in the same second must still mint distinct
	// tokens, or the session fingerprint cutover would be a no-op
	c.ID = uuid.NewString()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, &c).SignedString(s.secret)
}

// SignIdentity mints an identity token for a verified user.
func (s *Service) SignIdentity(id Identity) (string, error) {
	return s.sign(claims{
		Email:            id.Email,
		FullName:         id.FullName,
		RegisteredClaims: jwt.RegisteredClaims{Subject: id.UserID},
	})
}

// SignReset mints a reset-purpose token for the given user.
func (s *Service) SignReset(userID string) (string, error) {
	return s.sign(claims{
		Purpose:          purposeResetPassword,
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
	})
}

func (s *Service) parse(tokenStr string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(tokenStr, &c, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	return &c, nil
}

// ParseIdentity verifies an identity token. Reset tokens are rejected with
// ErrInvalid regardless of signature validity.
func (s *Service) ParseIdentity(tokenStr string) (Identity, error) {
	c, err := s.parse(tokenStr)
	if err != nil {
		return Identity{}, err
	}
	if c.Purpose != "" || c.Subject == "" {
		return Identity{}, ErrInvalid
	}
	return Identity{UserID: c.Subject, Email: c.Email, FullName: c.FullName}, nil
}

// Hash returns the hex sha256 fingerprint of a raw token. The fingerprint is
// what the session row stores; the token itself is never persisted.
func Hash(tokenStr string) string {
	sum := sha256.Sum256([]byte(tokenStr))
	return hex.EncodeToString(sum[:])
}

// ParseReset verifies a reset-purpose token and returns the user id. Identity
// tokens are rejected with ErrInvalid.
func (s *Service) ParseReset(tokenStr string) (string, error) {
	c, err := s.parse(tokenStr)
	if err != nil {
		return "", err
	}
	if c.Purpose != purposeResetPassword || c.Subject == "" {
		return "", ErrInvalid
	}
	return c.Subject, nil
}
