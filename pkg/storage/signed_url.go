package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignedURLSigner creates and validates signed download tokens for report files.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl}
}

// Generate returns a signed token referencing the stored file path.
func (s *SignedURLSigner) Generate(relPath string) (string, time.Time, error) {
	if relPath == "" {
		return "", time.Time{}, fmt.Errorf("relPath required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := time.Now().Add(s.ttl)
	encodedPath := base64.RawURLEncoding.EncodeToString([]byte(relPath))
	token := strings.Join([]string{strconv.FormatInt(expiresAt.Unix(), 10), encodedPath, s.sign(expiresAt.Unix(), encodedPath)}, ".")
	return token, expiresAt, nil
}

// Parse validates a token and returns the embedded file path.
func (s *SignedURLSigner) Parse(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("malformed token")
	}
	expUnix, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return "", fmt.Errorf("malformed expiry: %w", err)
	}
	if !hmac.Equal([]byte(s.sign(expUnix, parts[1])), []byte(parts[2])) {
		return "", fmt.Errorf("invalid signature")
	}
	if time.Now().After(time.Unix(expUnix, 0)) {
		return "", fmt.Errorf("token expired")
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("malformed path: %w", err)
	}
	return string(raw), nil
}

func (s *SignedURLSigner) sign(expUnix int64, encodedPath string) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%d|%s", expUnix, encodedPath)
	return hex.EncodeToString(mac.Sum(nil))
}
