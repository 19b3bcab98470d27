package webauthn

import (
	"time"

	"github.com/asgardeo/webauthncore/internal/protocol"
)

// WithExcludeCredentials sets the excludeCredentials list so a client
// already holding one of these credentials declines to create another.
func WithExcludeCredentials(creds []protocol.CredentialDescriptor) RegistrationOption {
	return func(c *registrationConfig) {
		c.excludeCredentials = creds
	}
}

// WithAuthenticatorSelection overrides the authenticator-selection hints
// for a single registration.
func WithAuthenticatorSelection(selection protocol.AuthenticatorSelectionCriteria) RegistrationOption {
	return func(c *registrationConfig) {
		c.authenticatorSelection = &selection
	}
}

// WithConveyancePreference overrides the attestation conveyance preference
// for a single registration.
func WithConveyancePreference(preference protocol.ConveyancePreference) RegistrationOption {
	return func(c *registrationConfig) {
		c.attestation = preference
	}
}

// WithRegistrationExtensions attaches client extension inputs to a single
// registration's options.
func WithRegistrationExtensions(ext protocol.AuthenticationExtensions) RegistrationOption {
	return func(c *registrationConfig) {
		c.extensions = ext
	}
}

// WithRegistrationTimeout overrides the operation timeout communicated to
// the client for a single registration.
func WithRegistrationTimeout(d time.Duration) RegistrationOption {
	return func(c *registrationConfig) {
		c.timeout = d
	}
}

// PreferredAuthenticatorType maps to an authenticatorAttachment hint, per
// spec.md §4.G: security_key -> cross-platform, local_device -> platform,
// remote_device -> attachment left unset.
type PreferredAuthenticatorType string

// Preferred authenticator types a caller may request.
const (
	SecurityKey   PreferredAuthenticatorType = "security_key"
	LocalDevice   PreferredAuthenticatorType = "local_device"
	RemoteDevice  PreferredAuthenticatorType = "remote_device"
)

// WithPreferredAuthenticatorType sets the authenticatorAttachment hint
// from a higher-level preference rather than the raw attachment value.
func WithPreferredAuthenticatorType(pref PreferredAuthenticatorType) RegistrationOption {
	return func(c *registrationConfig) {
		if c.authenticatorSelection == nil {
			c.authenticatorSelection = &protocol.AuthenticatorSelectionCriteria{}
		}
		switch pref {
		case SecurityKey:
			c.authenticatorSelection.AuthenticatorAttachment = protocol.CrossPlatform
		case LocalDevice:
			c.authenticatorSelection.AuthenticatorAttachment = protocol.Platform
		case RemoteDevice:
			c.authenticatorSelection.AuthenticatorAttachment = ""
		}
	}
}

// WithAllowCredentials restricts a login ceremony to the given credentials.
func WithAllowCredentials(creds []protocol.CredentialDescriptor) LoginOption {
	return func(c *loginConfig) {
		c.allowCredentials = creds
	}
}

// WithUserVerification overrides the user verification requirement for a
// single login.
func WithUserVerification(verification protocol.UserVerificationRequirement) LoginOption {
	return func(c *loginConfig) {
		c.userVerification = verification
	}
}

// WithRPID overrides the RP ID communicated to the client for a single
// login, for relying parties that serve more than one RP ID.
func WithRPID(rpID string) LoginOption {
	return func(c *loginConfig) {
		c.rpID = rpID
	}
}

// WithLoginExtensions attaches client extension inputs to a single login's
// options.
func WithLoginExtensions(ext protocol.AuthenticationExtensions) LoginOption {
	return func(c *loginConfig) {
		c.extensions = ext
	}
}

// WithLoginTimeout overrides the operation timeout communicated to the
// client for a single login.
func WithLoginTimeout(d time.Duration) LoginOption {
	return func(c *loginConfig) {
		c.timeout = d
	}
}
