package webauthn

import (
	"time"

	"github.com/asgardeo/webauthncore/internal/protocol"
)

// User is the application-side identity a registration or authentication
// ceremony is performed for. ID is the application's user identifier, not
// the WebAuthn user handle (which is generated fresh at registration and
// stored on the credential).
type User struct {
	ID          string
	Username    string
	DisplayName string
}

// DeviceType classifies whether a credential can exist on more than one
// device (a synced passkey) or is bound to a single authenticator.
type DeviceType string

// Device type values.
const (
	DeviceTypeSingleDevice DeviceType = "singleDevice"
	DeviceTypeMultiDevice  DeviceType = "multiDevice"
)

// WebAuthnCredential is the persisted record of a successful registration.
// The core never stores this itself: FinishRegistration returns a
// VerifiedRegistrationInfo, and the caller owns persistence through the
// storage adapter (internal/store).
type WebAuthnCredential struct {
	CredentialID   []byte
	PublicKeyCOSE  []byte
	Counter        uint32
	Transports     []string
	DeviceType     DeviceType
	BackedUp       bool
	UserID         string
	WebAuthnUserID []byte
	AAGUID         []byte
	CreatedAt      time.Time
	LastUsedAt     *time.Time
	CloneWarning   bool
}

// ChallengeData is the transient, TTL-bound record issued for one ceremony.
type ChallengeData struct {
	Challenge string
	UserID    string
	Operation ChallengeOperation
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ChallengeOperation names which ceremony a challenge was issued for.
type ChallengeOperation string

// Ceremony kinds a challenge may be scoped to.
const (
	OperationRegistration   ChallengeOperation = "registration"
	OperationAuthentication ChallengeOperation = "authentication"
)

// Session is the claims a sealed token carries, or that a session store
// persists keyed by SessionID.
type Session struct {
	SessionID    string                 `json:"session_id"`
	UserID       string                 `json:"user_id"`
	CredentialID []byte                 `json:"credential_id,omitempty"`
	UserVerified bool                   `json:"user_verified"`
	ExpiresAt    time.Time              `json:"expires_at"`
	Extra        map[string]interface{} `json:"extra,omitempty"`
}

// VerifiedRegistrationInfo is what a successful FinishRegistration call
// returns: everything the caller needs to persist a new credential.
type VerifiedRegistrationInfo struct {
	CredentialID  []byte
	PublicKeyCOSE []byte
	Counter       uint32
	Transports    []string
	DeviceType    DeviceType
	BackedUp      bool
	Origin        string
	RPID          string
	UserVerified  bool
	AAGUID        []byte
}

// VerifiedAuthenticationInfo is what a successful FinishAuthentication call
// returns: the new counter value and ceremony context the orchestrator
// needs to update storage.
type VerifiedAuthenticationInfo struct {
	CredentialID []byte
	NewCounter   uint32
	Origin       string
	RPID         string
	UserVerified bool
}

// RegistrationOption customises a single BeginRegistration call.
type RegistrationOption func(*registrationConfig)

// LoginOption customises a single BeginLogin call.
type LoginOption func(*loginConfig)

// registrationConfig holds the per-call overrides RegistrationOptions
// apply; it is unexported because options are the only supported way to
// populate it.
type registrationConfig struct {
	excludeCredentials     []protocol.CredentialDescriptor
	authenticatorSelection *protocol.AuthenticatorSelectionCriteria
	attestation            protocol.ConveyancePreference
	extensions             protocol.AuthenticationExtensions
	timeout                time.Duration
}

// loginConfig holds the per-call overrides LoginOptions apply.
type loginConfig struct {
	allowCredentials []protocol.CredentialDescriptor
	userVerification protocol.UserVerificationRequirement
	rpID             string
	extensions       protocol.AuthenticationExtensions
	timeout          time.Duration
}
