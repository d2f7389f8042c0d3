package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultIssuer = "sporthub"

var ErrInvalidToken = errors.New("invalid token")

type TokenMaker struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokenMaker(secret, issuer string) *TokenMaker {
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &TokenMaker{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (t *TokenMaker) New(userID, username, role string, ttl time.Duration) (string, error) {
	now := t.now()

	claims := Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Source mints tokens for one identity and reuses each until less than a
// fifth of ttl remains.
func (t *TokenMaker) Source(userID, username, role string, ttl time.Duration) func() (string, error) {
	var (
		mu  sync.Mutex
		tok string
		exp time.Time
	)
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()

		now := t.now()
		if tok != "" && now.Before(exp.Add(-ttl/5)) {
			return tok, nil
		}
		next, err := t.New(userID, username, role, ttl)
		if err != nil {
			return "", err
		}
		tok, exp = next, now.Add(ttl)
		return tok, nil
	}
}

func (t *TokenMaker) Parse(tokenStr string) (Claims, error) {
	var c Claims

	token, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer), jwt.WithExpirationRequired())
	if err != nil || token == nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if c.UserID == "" {
		return Claims{}, ErrInvalidToken
	}

	return c, nil
}
