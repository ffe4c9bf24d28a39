package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

const issuer = "todo-web"

// Claims identify one browser session.
type Claims struct {
	SessionID string    `json:"sid"`
	ExpiresAt time.Time `json:"-"`
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type Manager struct {
	Secret []byte
	Now    func() time.Time
	TTL    time.Duration
}

func NewManager(secret string, ttl time.Duration) Manager {
	return Manager{
		Secret: []byte(secret),
		Now:    func() time.Time { return time.Now().UTC() },
		TTL:    ttl,
	}
}

// Sign issues an HS256 token for sessionID valid for TTL.
func (m Manager) Sign(sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrInvalidToken
	}
	now := m.Now()
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.TTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.Secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (m Manager) Parse(token string) (Claims, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, ErrInvalidToken
	}
	if !parsed.Valid || claims.SessionID == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{SessionID: claims.SessionID, ExpiresAt: claims.ExpiresAt.Time}, nil
}
