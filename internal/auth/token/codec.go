package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/blogsphere/backend/internal/common/clock"
	"github.com/blogsphere/backend/internal/common/constants"
	"github.com/blogsphere/backend/internal/observability/metrics"
)

type Class string

const (
	ClassAccess  Class = "access"
	ClassRefresh Class = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrEmptySubject = errors.New("token subject is empty")
)

// Codec signs and verifies HS256 tokens. Each class has its own secret, so a
// token of one class never verifies as the other.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	clock         clock.Clock
}

func NewCodec(accessSecret, refreshSecret string, clk clock.Clock) *Codec {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		clock:         clk,
	}
}

func (c *Codec) SignAccess(subject string, ttl time.Duration) (string, error) {
	tokenString, err := c.sign(ClassAccess, subject, ttl, "")
	if err != nil {
		return "", err
	}
	metrics.AccessTokensIssued.Inc()
	return tokenString, nil
}

// SignRefresh adds a random jti so two refresh tokens minted for the same
// subject within one second still differ.
func (c *Codec) SignRefresh(subject string, ttl time.Duration) (string, error) {
	jti, err := newTokenID()
	if err != nil {
		return "", fmt.Errorf("failed to generate token id: %w", err)
	}
	tokenString, err := c.sign(ClassRefresh, subject, ttl, jti)
	if err != nil {
		return "", err
	}
	metrics.RefreshTokensIssued.Inc()
	return tokenString, nil
}

func (c *Codec) sign(class Class, subject string, ttl time.Duration, jti string) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}

	now := c.clock.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"typ": string(class),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if jti != "" {
		claims["jti"] = jti
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := t.SignedString(c.secretFor(class))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", class, err)
	}
	return tokenString, nil
}

// Verify returns the subject of a valid token of the given class.
func (c *Codec) Verify(tokenString string, class Class) (string, error) {
	metrics.JWTValidationsTotal.Inc()

	subject, err := c.verify(tokenString, class)
	if err != nil {
		reason := "invalid"
		if errors.Is(err, ErrExpiredToken) {
			reason = "expired"
		}
		metrics.JWTValidationsFailed.WithLabelValues(string(class), reason).Inc()
		return "", err
	}
	return subject, nil
}

func (c *Codec) verify(tokenString string, class Class) (string, error) {
	if tokenString == "" {
		return "", ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.clock.Now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)

	parsed, err := parser.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return c.secretFor(class), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: invalid claims type", ErrInvalidToken)
	}

	if typ, _ := claims["typ"].(string); typ != string(class) {
		return "", fmt.Errorf("%w: unexpected token class %q", ErrInvalidToken, typ)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}

	return sub, nil
}

func (c *Codec) secretFor(class Class) []byte {
	if class == ClassRefresh {
		return c.refreshSecret
	}
	return c.accessSecret
}

func newTokenID() (string, error) {
	b := make([]byte, constants.RefreshTokenIDSize)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
