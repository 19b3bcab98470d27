// Package hash provides the hashing and random-byte primitives the core
// needs: SHA-256/384/512 and a CSPRNG source for challenges, user handles,
// session IDs, and token salts/IVs.
package hash

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
)

// Algorithm names a generic hash algorithm independent of any COSE or TLS
// identifier scheme.
type Algorithm string

// Supported hash algorithms.
const (
	SHA256 Algorithm = "SHA-256"
	SHA384 Algorithm = "SHA-384"
	SHA512 Algorithm = "SHA-512"
)

// Sum hashes data with the named algorithm.
func Sum(data []byte, alg Algorithm) ([]byte, error) {
	switch alg {
	case SHA256:
		h := sha256.Sum256(data)
		return h[:], nil
	case SHA384:
		h := sha512.Sum384(data)
		return h[:], nil
	case SHA512:
		h := sha512.Sum512(data)
		return h[:], nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", alg)
	}
}

// SHA256Sum is a convenience wrapper for the single algorithm every
// ceremony step uses for RP-ID and client-data hashing.
func SHA256Sum(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// RandomBytes returns n cryptographically secure random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return b, nil
}
