package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Signer issues and verifies self-contained download tokens. A token binds
// a storage key to an expiry and is valid only under the same secret.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{
		secret: []byte(secret),
	}
}

func (s *Signer) Sign(key string, expires time.Duration) string {
	expiresAt := time.Now().UTC().Add(expires).Unix()

	// base64 keeps the key's characters out of the token structure
	payload := base64.URLEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%d", key, expiresAt)))

	return payload + "." + s.signature(payload)
}

// Verify checks the signature and expiry and returns the embedded key.
func (s *Signer) Verify(token string) (string, error) {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return "", ErrInvalidToken
	}
	payload, providedSig := parts[0], parts[1]

	if !hmac.Equal([]byte(providedSig), []byte(s.signature(payload))) {
		return "", ErrInvalidToken
	}

	decoded, err := base64.URLEncoding.DecodeString(payload)
	if err != nil {
		return "", ErrInvalidToken
	}

	keyAndExpiry := strings.SplitN(string(decoded), ":", 2)
	if len(keyAndExpiry) != 2 {
		return "", ErrInvalidToken
	}

	expiresAt, err := strconv.ParseInt(keyAndExpiry[1], 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}
	if time.Now().UTC().Unix() > expiresAt {
		return "", ErrTokenExpired
	}

	return keyAndExpiry[0], nil
}

func (s *Signer) signature(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))
}
