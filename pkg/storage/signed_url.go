package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid download token")
	ErrTokenExpired = errors.New("download token expired")
)

// DownloadGrant is what a verified token allows the bearer to fetch.
type DownloadGrant struct {
	DocumentID string
	Key        string
	ExpiresAt  time.Time
}

// SignedURLSigner issues HMAC-signed, time-limited document download tokens.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token of the form id.expiry.key.signature.
func (s *SignedURLSigner) Sign(documentID, key string) (string, time.Time, error) {
	if documentID == "" || key == "" {
		return "", time.Time{}, fmt.Errorf("document id and key required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).UTC()
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	encodedKey := base64.RawURLEncoding.EncodeToString([]byte(key))
	token := strings.Join([]string{documentID, exp, encodedKey, s.mac(documentID, exp, encodedKey)}, ".")
	return token, time.Unix(expiresAt.Unix(), 0).UTC(), nil
}

// Verify checks signature and expiry.
func (s *SignedURLSigner) Verify(token string) (*DownloadGrant, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return nil, ErrInvalidToken
	}
	documentID, exp, encodedKey, signature := parts[0], parts[1], parts[2], parts[3]
	if !hmac.Equal([]byte(s.mac(documentID, exp, encodedKey)), []byte(signature)) {
		return nil, ErrInvalidToken
	}
	unix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	key, err := base64.RawURLEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, ErrInvalidToken
	}
	expiresAt := time.Unix(unix, 0).UTC()
	if s.now().After(expiresAt) {
		return nil, ErrTokenExpired
	}
	return &DownloadGrant{DocumentID: documentID, Key: string(key), ExpiresAt: expiresAt}, nil
}

func (s *SignedURLSigner) mac(documentID, exp, encodedKey string) string {
	h := hmac.New(sha256.New, s.secret)
	_, _ = h.Write([]byte(documentID + "|" + exp + "|" + encodedKey))
	return hex.EncodeToString(h.Sum(nil))
}
