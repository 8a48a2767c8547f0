// Package token は署名付きの本人確認トークンを発行・検証します。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken は署名不一致・形式不正・期限切れのいずれかを表します。
var ErrInvalidToken = errors.New("invalid token")

// Codec はプロセス共通の秘密鍵でトークンを扱います。
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New は Codec を作成します。ttl が 0 の場合は exp を付与しません。
func New(secret []byte, ttl time.Duration) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret is empty")
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &Codec{secret: key, ttl: ttl, now: time.Now}, nil
}

// Issue はユーザーIDを subject とするトークンを発行します。
func (c *Codec) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("userID is required")
	}
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:  userID,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if c.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証し、subject のユーザーIDを返します。
// 失敗は常に ErrInvalidToken でラップされます。
func (c *Codec) Verify(raw string) (string, error) {
	if raw == "" {
		return "", ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
