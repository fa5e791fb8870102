// Package token issues and verifies the bearer tokens that carry an
// authenticated user ID to the ledger API.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/kuberx/portfolio-ledger/internal/apperrors"
)

type claims struct {
	UserID   string `json:"uid"`
	IssuedAt int64  `json:"iat"`
}

// Authority signs tokens with the first key and accepts any configured key,
// so keys can be rotated without invalidating live sessions.
type Authority struct {
	keys []*fernet.Key
	ttl  time.Duration
}

// NewAuthority decodes base64 Fernet keys.
func NewAuthority(encodedKeys []string, ttl time.Duration) (*Authority, error) {
	if len(encodedKeys) == 0 {
		return nil, errors.New("at least one fernet key is required")
	}
	keys, err := fernet.DecodeKeys(encodedKeys...)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fernet keys: %w", err)
	}
	return &Authority{keys: keys, ttl: ttl}, nil
}

// GenerateKey returns a new base64 encoded Fernet key.
func GenerateKey() (string, error) {
	var k fernet.Key
	if err := k.Generate(); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return k.Encode(), nil
}

// Issue creates a token for userID.
func (a *Authority) Issue(userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", apperrors.ErrInvalidUserID
	}

	payload, err := json.Marshal(claims{UserID: userID, IssuedAt: time.Now().Unix()})
	if err != nil {
		return "", fmt.Errorf("failed to encode token claims: %w", err)
	}

	tok, err := fernet.EncryptAndSign(payload, a.keys[0])
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(tok), nil
}

// Verify returns the user ID carried by tok.
// Returns ErrInvalidToken for tampered, expired or malformed tokens.
func (a *Authority) Verify(tok string) (string, error) {
	msg := fernet.VerifyAndDecrypt([]byte(tok), a.ttl, a.keys)
	if msg == nil {
		return "", apperrors.ErrInvalidToken
	}

	var c claims
	if err := json.Unmarshal(msg, &c); err != nil || c.UserID == "" {
		return "", apperrors.ErrInvalidToken
	}
	return c.UserID, nil
}
