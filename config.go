// Package webauthn implements the cryptographic verification core of a
// WebAuthn (FIDO2) relying-party server: options generation, response
// verification, session tokens, and ceremony state. HTTP transport,
// persistent storage backends, and full attestation-chain validation are
// left to the caller; see internal/store for the storage adapter contract.
package webauthn

import (
	"time"

	"github.com/asgardeo/webauthncore/internal/protocol"
	"github.com/asgardeo/webauthncore/internal/serviceerror"
	"github.com/asgardeo/webauthncore/internal/store"
)

// Default configuration values, applied by New when the caller leaves the
// corresponding Config field at its zero value.
const (
	DefaultChallengeSizeBytes = 32
	DefaultOperationTimeout   = 60 * time.Second
	DefaultSessionDuration    = 24 * time.Hour

	minChallengeSizeBytes = 16
	maxChallengeSizeBytes = 64
	minOperationTimeout   = 10 * time.Second
	minTokenSecretBytes   = 32
)

// Config is the relying party's immutable configuration.
type Config struct {
	// RPName is the human-readable relying party name shown to the user.
	RPName string
	// RPID is the relying party's domain label, e.g. "example.com".
	RPID string
	// Origins is the set of origins a client-reported clientData.origin
	// must belong to.
	Origins []string

	// SupportedAlgorithms is the ordered list of COSE algorithm identifiers
	// offered to the client, highest priority first. Defaults to
	// {ES256, RS256} when empty.
	SupportedAlgorithms []int64

	// AttestationPreference is the default conveyance preference. Defaults
	// to protocol.PreferNoAttestation.
	AttestationPreference protocol.ConveyancePreference
	// UserVerificationPolicy is the default UV policy. Defaults to
	// protocol.VerificationPreferred.
	UserVerificationPolicy protocol.UserVerificationRequirement
	// AuthenticatorSelection carries default authenticator-selection hints;
	// nil means only the built-in defaults apply: residentKey "preferred"
	// and userVerification from UserVerificationPolicy.
	AuthenticatorSelection *protocol.AuthenticatorSelectionCriteria

	// ChallengeSizeBytes is the number of random bytes in each issued
	// challenge, in [16, 64]. Defaults to 32.
	ChallengeSizeBytes int
	// OperationTimeout bounds how long the client is told a ceremony may
	// take. Must be at least 10 seconds. Defaults to 60 seconds.
	OperationTimeout time.Duration
	// SessionDuration is how long a created session remains valid.
	// Defaults to 24 hours.
	SessionDuration time.Duration
	// TokenSecret is the key material the session token codec derives
	// per-token keys from. Must be at least 32 bytes and is never logged.
	TokenSecret []byte

	// Store is the optional storage adapter backing the ceremony
	// orchestrator (component J): challenge persistence between options
	// and verify, and credential counter/last-used updates after a
	// successful authentication. A nil Store (or a nil sub-store within
	// it) means that capability is simply not backed, per spec.md §4.J;
	// BeginRegistration/FinishRegistration and BeginLogin/
	// FinishAuthentication work standalone without one.
	Store *store.Adapter
}

// WebAuthn is the entry point bundling a validated Config with the
// ceremony operations that depend on it.
type WebAuthn struct {
	Config Config
}

// New validates config and, on success, returns a WebAuthn ready to run
// ceremonies. Zero-valued optional fields are filled with their defaults.
func New(config Config) (*WebAuthn, error) {
	config = applyDefaults(config)
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return &WebAuthn{Config: config}, nil
}

func applyDefaults(c Config) Config {
	if c.ChallengeSizeBytes == 0 {
		c.ChallengeSizeBytes = DefaultChallengeSizeBytes
	}
	if c.OperationTimeout == 0 {
		c.OperationTimeout = DefaultOperationTimeout
	}
	if c.SessionDuration == 0 {
		c.SessionDuration = DefaultSessionDuration
	}
	if c.AttestationPreference == "" {
		c.AttestationPreference = protocol.PreferNoAttestation
	}
	if c.UserVerificationPolicy == "" {
		c.UserVerificationPolicy = protocol.VerificationPreferred
	}
	if len(c.SupportedAlgorithms) == 0 {
		c.SupportedAlgorithms = []int64{protocol.AlgES256, protocol.AlgRS256}
	}
	return c
}

// validateConfig enforces the invariants spec.md §8 names as testable
// configuration boundaries.
func validateConfig(c Config) error {
	if c.RPID == "" || c.RPName == "" || len(c.Origins) == 0 {
		return configError("rp_id, rp_name, and at least one origin are required")
	}
	if c.ChallengeSizeBytes < minChallengeSizeBytes || c.ChallengeSizeBytes > maxChallengeSizeBytes {
		return configError("challenge_size_bytes must be between 16 and 64")
	}
	if c.OperationTimeout < minOperationTimeout {
		return configError("operation_timeout_ms must be at least 10000")
	}
	if len(c.TokenSecret) < minTokenSecretBytes {
		return configError("token_secret must be at least 32 bytes")
	}
	return nil
}

func configError(description string) error {
	err := serviceerror.ErrorConfigurationError
	err.ErrorDescription = description
	return &Error{Svc: err}
}
