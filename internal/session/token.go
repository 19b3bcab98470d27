// Package session implements the authenticated session token codec:
// sealing a session into a confidentiality- and integrity-protected,
// self-describing byte string, and opening one back up. Grounded in the
// teacher's internal/system/jwe package (per-payload content key, AEAD
// encrypt/decrypt, compact wire envelope), generalized from a JWE
// compact-serialization envelope to the simpler single-recipient
// JSON-in-Base64URL envelope spec.md §4.I calls for: there is no
// recipient public key here, only a symmetric token_secret the relying
// party holds.
package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"time"

	"github.com/asgardeo/webauthncore/internal/encoding"
	"github.com/asgardeo/webauthncore/internal/hash"
	"github.com/asgardeo/webauthncore/internal/log"
	"github.com/asgardeo/webauthncore/internal/serviceerror"
)

const (
	saltSize = 32
	ivSize   = 16
)

// Claims is the opaque payload a token carries. The codec does not
// interpret Data beyond round-tripping it through JSON; callers (the root
// package's orchestrator) define its shape.
type Claims struct {
	SessionID string          `json:"session_id"`
	Data      json.RawMessage `json:"data"`
	CreatedAt string          `json:"created_at"`
}

// envelope is the outer, Base64URL-wrapped JSON object every token
// serialises to. Each field is itself Base64URL of raw bytes, per
// spec.md §6.2.
type envelope struct {
	Salt string `json:"salt"`
	IV   string `json:"iv"`
	Data string `json:"data"`
	Tag  string `json:"tag"`
}

var logger = log.GetLogger().With(log.String(log.LoggerKeyComponentName, "SessionTokenCodec"))

// Seal derives a per-token content-encryption key from a fresh salt and
// secret, encrypts payload under AES-256-GCM with a fresh 16-byte IV, and
// returns the Base64URL envelope. It fails if payload cannot be marshalled
// to JSON or if entropy runs out generating the salt or IV.
func Seal(sessionID string, payload interface{}, createdAt time.Time, secret []byte) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal session payload")
		return "", &tokenError{serviceerror.ErrorTokenCreationFailed}
	}

	claims := Claims{
		SessionID: sessionID,
		Data:      data,
		CreatedAt: createdAt.UTC().Format(time.RFC3339),
	}
	plaintext, err := json.Marshal(claims)
	if err != nil {
		logger.Error("Failed to marshal session claims")
		return "", &tokenError{serviceerror.ErrorTokenCreationFailed}
	}

	salt, err := hash.RandomBytes(saltSize)
	if err != nil {
		logger.Error("Failed to generate token salt")
		return "", &tokenError{serviceerror.ErrorTokenCreationFailed}
	}
	iv, err := hash.RandomBytes(ivSize)
	if err != nil {
		logger.Error("Failed to generate token IV")
		return "", &tokenError{serviceerror.ErrorTokenCreationFailed}
	}

	gcm, err := newAEAD(deriveKey(salt, secret))
	if err != nil {
		logger.Error("Failed to construct AEAD cipher")
		return "", &tokenError{serviceerror.ErrorTokenCreationFailed}
	}

	sealed := gcm.Seal(nil, iv, plaintext, nil)
	ciphertext, tag := splitTag(sealed, gcm.Overhead())

	env := envelope{
		Salt: encoding.EncodeToString(salt),
		IV:   encoding.EncodeToString(iv),
		Data: encoding.EncodeToString(ciphertext),
		Tag:  encoding.EncodeToString(tag),
	}
	envJSON, err := json.Marshal(env)
	if err != nil {
		logger.Error("Failed to marshal token envelope")
		return "", &tokenError{serviceerror.ErrorTokenCreationFailed}
	}

	return encoding.EncodeToString(envJSON), nil
}

// Opened is what Open recovers from a valid token.
type Opened struct {
	SessionID string
	Data      json.RawMessage
	CreatedAt time.Time
}

// Open reverses Seal. Any failure — malformed envelope, wrong secret,
// tampered ciphertext or tag — collapses to a single InvalidToken error so
// no internal detail about why a token failed is observable to a caller.
func Open(token string, secret []byte) (*Opened, error) {
	envJSON, err := encoding.DecodeString(token)
	if err != nil {
		return nil, invalidToken()
	}

	var env envelope
	if err := json.Unmarshal(envJSON, &env); err != nil {
		return nil, invalidToken()
	}

	salt, err := encoding.DecodeString(env.Salt)
	if err != nil {
		return nil, invalidToken()
	}
	iv, err := encoding.DecodeString(env.IV)
	if err != nil {
		return nil, invalidToken()
	}
	ciphertext, err := encoding.DecodeString(env.Data)
	if err != nil {
		return nil, invalidToken()
	}
	tag, err := encoding.DecodeString(env.Tag)
	if err != nil {
		return nil, invalidToken()
	}

	gcm, err := newAEAD(deriveKey(salt, secret))
	if err != nil {
		return nil, invalidToken()
	}
	if len(iv) != gcm.NonceSize() {
		return nil, invalidToken()
	}

	sealed := append(append([]byte{}, ciphertext...), tag...)
	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, invalidToken()
	}

	var claims Claims
	if err := json.Unmarshal(plaintext, &claims); err != nil {
		return nil, invalidToken()
	}
	createdAt, err := time.Parse(time.RFC3339, claims.CreatedAt)
	if err != nil {
		return nil, invalidToken()
	}

	return &Opened{SessionID: claims.SessionID, Data: claims.Data, CreatedAt: createdAt}, nil
}

// GenerateSessionID returns a fresh 32-byte CSPRNG session identifier,
// Base64URL-encoded.
func GenerateSessionID() (string, error) {
	b, err := hash.RandomBytes(32)
	if err != nil {
		return "", &tokenError{serviceerror.ErrorTokenCreationFailed}
	}
	return encoding.EncodeToString(b), nil
}

// deriveKey computes K = HMAC-SHA-256(salt, token_secret), binding the
// content-encryption key to this one token. Open derives K from the secret
// it is given, so a token sealed under a previous token_secret does not
// open once the secret is rotated.
func deriveKey(salt, secret []byte) []byte {
	mac := hmac.New(sha256.New, salt)
	mac.Write(secret)
	return mac.Sum(nil)
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, ivSize)
}

func splitTag(sealed []byte, tagSize int) (ciphertext, tag []byte) {
	n := len(sealed) - tagSize
	return sealed[:n], sealed[n:]
}

func invalidToken() error {
	return &tokenError{serviceerror.ErrorInvalidToken}
}

type tokenError struct {
	svc serviceerror.ServiceError
}

func (e *tokenError) Error() string { return e.svc.ErrorDescription }

// ServiceError exposes the structured error so the root package can wrap
// it without string matching.
func (e *tokenError) ServiceError() serviceerror.ServiceError { return e.svc }
