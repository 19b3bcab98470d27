package protocol

import (
	"github.com/asgardeo/webauthncore/internal/encoding"
	"github.com/asgardeo/webauthncore/internal/protocol/cbor"
	"github.com/asgardeo/webauthncore/internal/serviceerror"
)

// AuthenticatorFlags is the single flags byte of authenticator data.
type AuthenticatorFlags byte

// Authenticator data flag bits.
const (
	FlagUserPresent       AuthenticatorFlags = 0x01
	FlagUserVerified      AuthenticatorFlags = 0x04
	FlagBackupEligible    AuthenticatorFlags = 0x08
	FlagBackupState       AuthenticatorFlags = 0x10
	FlagAttestedData      AuthenticatorFlags = 0x40
	FlagExtensionDataFlag AuthenticatorFlags = 0x80
)

// HasUserPresent reports whether the UP bit is set.
func (f AuthenticatorFlags) HasUserPresent() bool { return f&FlagUserPresent != 0 }

// HasUserVerified reports whether the UV bit is set.
func (f AuthenticatorFlags) HasUserVerified() bool { return f&FlagUserVerified != 0 }

// HasBackupEligible reports whether the BE bit is set.
func (f AuthenticatorFlags) HasBackupEligible() bool { return f&FlagBackupEligible != 0 }

// HasBackupState reports whether the BS bit is set.
func (f AuthenticatorFlags) HasBackupState() bool { return f&FlagBackupState != 0 }

// HasAttestedCredentialData reports whether the AT bit is set.
func (f AuthenticatorFlags) HasAttestedCredentialData() bool { return f&FlagAttestedData != 0 }

// HasExtensionData reports whether the ED bit is set.
func (f AuthenticatorFlags) HasExtensionData() bool { return f&FlagExtensionDataFlag != 0 }

// AttestedCredentialData is the optional, variable-length block present
// when AT is set: authenticator AAGUID, credential ID, and COSE public key.
type AttestedCredentialData struct {
	AAGUID              []byte
	CredentialID        []byte
	CredentialPublicKey []byte
	ParsedPublicKey     *COSEKey
}

// AuthenticatorData is the fully parsed fixed-layout authData byte string.
type AuthenticatorData struct {
	RPIDHash   []byte
	Flags      AuthenticatorFlags
	Counter    uint32
	Attested   *AttestedCredentialData
	Extensions []byte
}

const authDataMinLength = 37

// ParseAuthenticatorData parses the fixed header, and when AT is set, the
// attested credential data. Trailing bytes after the COSE key are treated
// as extensions only if ED is set; this mirrors the "simplified CBOR codec
// does not return consumed length" note by using DecodeFirst's remainder.
func ParseAuthenticatorData(data []byte) (*AuthenticatorData, error) {
	if len(data) < authDataMinLength {
		return nil, wrapErr(serviceerror.ErrorAuthenticatorDataTooShort)
	}

	a := &AuthenticatorData{
		RPIDHash: data[:32],
		Flags:    AuthenticatorFlags(data[32]),
		Counter:  encoding.Uint32BE(data[33:37]),
	}

	rest := data[37:]
	if a.Flags.HasAttestedCredentialData() {
		attested, tail, err := parseAttestedCredentialData(rest)
		if err != nil {
			return nil, err
		}
		a.Attested = attested
		rest = tail
	}

	if a.Flags.HasExtensionData() {
		a.Extensions = rest
	} else if len(rest) > 0 && a.Attested == nil {
		// No attested data and no extension flag, but bytes remain: still
		// not an error per the fixed layout, just unread trailing data.
		a.Extensions = nil
	}

	return a, nil
}

func parseAttestedCredentialData(data []byte) (*AttestedCredentialData, []byte, error) {
	if len(data) < 16+2 {
		return nil, nil, wrapErr(serviceerror.ErrorAuthenticatorDataInvalidCredentialData)
	}
	aaguid := data[:16]
	credIDLen := encoding.Uint16BE(data[16:18])
	offset := 18 + int(credIDLen)
	if len(data) < offset {
		return nil, nil, wrapErr(serviceerror.ErrorAuthenticatorDataInvalidCredentialData)
	}
	credentialID := data[18:offset]

	keyBytes := data[offset:]
	keyVal, rest, err := cbor.DecodeFirst(keyBytes)
	if err != nil {
		return nil, nil, wrapErr(serviceerror.ErrorAuthenticatorDataInvalidCredentialData)
	}
	consumed := len(keyBytes) - len(rest)
	coseKeyBytes := keyBytes[:consumed]

	parsedKey, err := coseKeyFromValue(keyVal)
	if err != nil {
		return nil, nil, err
	}

	return &AttestedCredentialData{
		AAGUID:              aaguid,
		CredentialID:        credentialID,
		CredentialPublicKey: coseKeyBytes,
		ParsedPublicKey:     parsedKey,
	}, rest, nil
}

// FlagRequirements expresses which ceremony flags a caller insists on.
type FlagRequirements struct {
	RequireUserPresence     bool
	RequireUserVerification bool
}

// Validate checks the parsed flags against the requirements, returning the
// stable errors the spec names for each violated bit.
func (a *AuthenticatorData) Validate(req FlagRequirements) error {
	if req.RequireUserPresence && !a.Flags.HasUserPresent() {
		return wrapErr(serviceerror.ErrorUserPresenceRequired)
	}
	if req.RequireUserVerification && !a.Flags.HasUserVerified() {
		return wrapErr(serviceerror.ErrorUserVerificationRequired)
	}
	return nil
}
