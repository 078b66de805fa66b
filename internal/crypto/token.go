package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/scrypt"
)

const (
	// scrypt parameters for the session token key.
	// Derived once at startup, so a heavier work factor than seed derivation.
	tokenN      = 1 << 15
	tokenR      = 8
	tokenP      = 1
	tokenKeyLen = 32

	nonceLen = 12

	// context string separating the token key from other salt-derived keys
	tokenKeyContext = "timevault-session-token"
)

// ErrTokenInvalid is returned when a session token fails to authenticate,
// is malformed, or is bound to a different username.
var ErrTokenInvalid = errors.New("invalid session token")

// ErrTokenExpired is returned when a session token authenticated correctly
// but its expiry has passed.
var ErrTokenExpired = errors.New("session token expired")

// tokenEnvelope is the sealed plaintext carried inside the seed cookie.
type tokenEnvelope struct {
	Seed      string `json:"seed"`
	IssuedAt  int64  `json:"issuedAt"`
	ExpiresAt int64  `json:"expiresAt"`
}

// SessionKey derives the AEAD key protecting session tokens from the
// server-side salt. Call once at startup.
func SessionKey(salt string) ([]byte, error) {
	key, err := scrypt.Key([]byte(salt), []byte(tokenKeyContext), tokenN, tokenR, tokenP, tokenKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive token key: %w", err)
	}
	return key, nil
}

// SealSeed encrypts the seed into a base64 token bound to username (as AEAD
// additional data) and carrying an issued-at/expiry window.
func SealSeed(key []byte, username, seed string, ttl time.Duration) (string, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := time.Now()
	plaintext, err := json.Marshal(tokenEnvelope{
		Seed:      seed,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal token envelope: %w", err)
	}
	defer clear(plaintext) // wipe seed bytes from memory

	ciphertext := aesGCM.Seal(nil, nonce, plaintext, []byte(username))
	return base64.URLEncoding.EncodeToString(append(nonce, ciphertext...)), nil
}

// OpenSeed authenticates and decrypts a token produced by SealSeed. The
// username must match the one the token was sealed for.
func OpenSeed(key []byte, username, token string) (string, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil || len(raw) < nonceLen {
		return "", ErrTokenInvalid
	}

	aesGCM, err := newGCM(key)
	if err != nil {
		return "", err
	}

	plaintext, err := aesGCM.Open(nil, raw[:nonceLen], raw[nonceLen:], []byte(username))
	if err != nil {
		return "", ErrTokenInvalid
	}
	defer clear(plaintext)

	var env tokenEnvelope
	if err := json.Unmarshal(plaintext, &env); err != nil {
		return "", ErrTokenInvalid
	}
	if time.Now().Unix() >= env.ExpiresAt {
		return "", ErrTokenExpired
	}
	return env.Seed, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
