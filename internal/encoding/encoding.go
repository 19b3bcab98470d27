// Package encoding provides the byte-level primitives shared by every
// other component: Base64URL with WebAuthn's padding rules, fixed-width
// big-endian integers, and constant-time comparison for secret or
// signature-like byte strings.
package encoding

import (
	"crypto/subtle"
	"encoding/base64"
	"regexp"
)

var base64URLPattern = regexp.MustCompile(`^[A-Za-z0-9_-]*$`)

// IsBase64URL reports whether s contains only the unpadded Base64URL
// alphabet (RFC 4648 §5): letters, digits, '-', and '_'.
func IsBase64URL(s string) bool {
	return base64URLPattern.MatchString(s)
}

// EncodeToString encodes b as Base64URL with padding stripped, the wire
// form every WebAuthn JSON field uses.
func EncodeToString(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeString decodes a Base64URL string, tolerating both the unpadded
// form this package emits and a padded one a lenient client might send.
func DecodeString(s string) ([]byte, error) {
	if n := len(s) % 4; n != 0 {
		s += strPad(4 - n)
	}
	return base64.URLEncoding.DecodeString(s)
}

func strPad(n int) string {
	pad := make([]byte, n)
	for i := range pad {
		pad[i] = '='
	}
	return string(pad)
}

// ConstantTimeCompare reports whether a and b are byte-for-byte equal,
// without leaking timing information about where they first differ.
// Unequal lengths return false immediately: that is a safe short-circuit
// because length is not secret-dependent for any caller in this module.
func ConstantTimeCompare(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// PutUint16BE writes n into a fresh 2-byte big-endian slice.
func PutUint16BE(n uint16) []byte {
	return []byte{byte(n >> 8), byte(n)}
}

// PutUint32BE writes n into a fresh 4-byte big-endian slice.
func PutUint32BE(n uint32) []byte {
	return []byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
}

// Uint16BE reads a 2-byte big-endian unsigned integer from the front of b.
func Uint16BE(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

// Uint32BE reads a 4-byte big-endian unsigned integer from the front of b.
func Uint32BE(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
