package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordRequired   = errors.New("password is required")
	ErrNoPasswordSet      = errors.New("no password has been configured")
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "auth-token"

// DefaultSessionMaxAge is the session lifetime when none is configured.
const DefaultSessionMaxAge = 7 * 24 * time.Hour

// Service handles the shared-password authentication scheme: one configured
// password, one HTTP-only session cookie carrying a signed token.
type Service struct {
	passwordHash []byte
	jwtSecret    []byte
	maxAge       time.Duration
}

// Claims represents session token claims.
type Claims struct {
	jwt.RegisteredClaims
}

// NewService creates an auth service for the configured shared password. The
// password is bcrypt-hashed immediately so the plaintext is not retained. A
// random signing secret is generated when none is provided.
func NewService(password, jwtSecret string, maxAge time.Duration) (*Service, error) {
	if password == "" {
		return nil, ErrNoPasswordSet
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	secret := []byte(jwtSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
	}

	if maxAge <= 0 {
		maxAge = DefaultSessionMaxAge
	}

	return &Service{
		passwordHash: hash,
		jwtSecret:    secret,
		maxAge:       maxAge,
	}, nil
}

// SessionMaxAge returns the configured session lifetime.
func (s *Service) SessionMaxAge() time.Duration {
	return s.maxAge
}

// ValidatePassword checks the provided password against the configured one.
func (s *Service) ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateToken creates a new session token.
func (s *Service) GenerateToken() (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.maxAge)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "watchdeck",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates a session token and returns its claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
