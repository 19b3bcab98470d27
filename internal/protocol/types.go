// Package protocol implements the WebAuthn wire types and the CBOR/COSE/
// authenticator-data parsing and signature verification that sit beneath
// them.
package protocol

import (
	"encoding/json"

	"github.com/asgardeo/webauthncore/internal/encoding"
)

// URLEncodedBytes marshals to and from JSON as unpadded Base64URL, the
// form every byte-string field of the WebAuthn wire formats uses. The
// standard library's []byte JSON marshaling uses padded standard Base64,
// which is the wrong alphabet here, so every byte-carrying wire field uses
// this type instead of a bare []byte.
type URLEncodedBytes []byte

// MarshalJSON implements json.Marshaler.
func (b URLEncodedBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(encoding.EncodeToString(b))
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *URLEncodedBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := encoding.DecodeString(s)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

// CredentialType identifies the kind of public-key credential; WebAuthn
// defines exactly one value today.
type CredentialType string

// ConveyancePreference is the relying party's attestation preference.
type ConveyancePreference string

// UserVerificationRequirement is the relying party's UV preference.
type UserVerificationRequirement string

// AuthenticatorAttachment constrains which authenticators may respond.
type AuthenticatorAttachment string

// ResidentKeyRequirement is the relying party's resident-key preference.
type ResidentKeyRequirement string

// AuthenticationExtensions carries opaque WebAuthn extension inputs or
// outputs; the core passes these through without interpreting them.
type AuthenticationExtensions map[string]interface{}

// RelyingPartyEntity is the `rp` field of creation options.
type RelyingPartyEntity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserEntity is the `user` field of creation options.
type UserEntity struct {
	ID          URLEncodedBytes `json:"id"`
	Name        string          `json:"name"`
	DisplayName string          `json:"displayName"`
}

// CredentialParameter pairs a credential type with a COSE algorithm
// identifier, one entry per algorithm the relying party is willing to
// accept, in priority order.
type CredentialParameter struct {
	Type      CredentialType `json:"type"`
	Algorithm int64          `json:"alg"`
}

// AuthenticatorSelectionCriteria narrows which authenticators are
// acceptable for a registration ceremony.
type AuthenticatorSelectionCriteria struct {
	AuthenticatorAttachment AuthenticatorAttachment     `json:"authenticatorAttachment,omitempty"`
	ResidentKey             ResidentKeyRequirement      `json:"residentKey,omitempty"`
	RequireResidentKey      *bool                       `json:"requireResidentKey,omitempty"`
	UserVerification        UserVerificationRequirement `json:"userVerification,omitempty"`
}

// CredentialDescriptor identifies one credential by ID, with optional
// transport hints, used in exclude/allow lists.
type CredentialDescriptor struct {
	Type       CredentialType  `json:"type"`
	ID         URLEncodedBytes `json:"id"`
	Transports []string        `json:"transports,omitempty"`
}

// CredentialCreationOptions is PublicKeyCredentialCreationOptions.
type CredentialCreationOptions struct {
	Challenge              URLEncodedBytes                 `json:"challenge"`
	RelyingParty           RelyingPartyEntity              `json:"rp"`
	User                   UserEntity                      `json:"user"`
	PubKeyCredParams       []CredentialParameter           `json:"pubKeyCredParams"`
	Timeout                uint32                          `json:"timeout,omitempty"`
	ExcludeCredentials     []CredentialDescriptor          `json:"excludeCredentials,omitempty"`
	AuthenticatorSelection *AuthenticatorSelectionCriteria `json:"authenticatorSelection,omitempty"`
	Attestation            ConveyancePreference            `json:"attestation,omitempty"`
	Extensions             AuthenticationExtensions        `json:"extensions,omitempty"`
}

// CredentialRequestOptions is PublicKeyCredentialRequestOptions.
type CredentialRequestOptions struct {
	Challenge        URLEncodedBytes             `json:"challenge"`
	Timeout          uint32                      `json:"timeout,omitempty"`
	RelyingPartyID   string                      `json:"rpId,omitempty"`
	AllowCredentials []CredentialDescriptor      `json:"allowCredentials,omitempty"`
	UserVerification UserVerificationRequirement `json:"userVerification,omitempty"`
	Extensions       AuthenticationExtensions    `json:"extensions,omitempty"`
}

// CollectedClientData is the JSON payload embedded (Base64URL-encoded) in
// clientDataJSON.
type CollectedClientData struct {
	Type        string `json:"type"`
	Challenge   string `json:"challenge"`
	Origin      string `json:"origin"`
	CrossOrigin bool   `json:"crossOrigin,omitempty"`
}

// AuthenticatorAttestationResponse is the `response` field of a
// registration credential envelope, still Base64URL-encoded.
type AuthenticatorAttestationResponse struct {
	ClientDataJSON    URLEncodedBytes `json:"clientDataJSON"`
	AttestationObject URLEncodedBytes `json:"attestationObject"`
	Transports        []string        `json:"transports,omitempty"`
}

// RegistrationCredential is the client's full registration envelope.
type RegistrationCredential struct {
	ID                      string                           `json:"id"`
	RawID                   URLEncodedBytes                  `json:"rawId"`
	Response                AuthenticatorAttestationResponse `json:"response"`
	AuthenticatorAttachment string                           `json:"authenticatorAttachment,omitempty"`
	ClientExtensionResults  AuthenticationExtensions         `json:"clientExtensionResults,omitempty"`
	Type                    CredentialType                   `json:"type"`
}

// AuthenticatorAssertionResponse is the `response` field of an
// authentication credential envelope, still Base64URL-encoded.
type AuthenticatorAssertionResponse struct {
	ClientDataJSON    URLEncodedBytes `json:"clientDataJSON"`
	AuthenticatorData URLEncodedBytes `json:"authenticatorData"`
	Signature         URLEncodedBytes `json:"signature"`
	UserHandle        URLEncodedBytes `json:"userHandle,omitempty"`
}

// AuthenticationCredential is the client's full authentication envelope.
type AuthenticationCredential struct {
	ID                      string                         `json:"id"`
	RawID                   URLEncodedBytes                `json:"rawId"`
	Response                AuthenticatorAssertionResponse `json:"response"`
	AuthenticatorAttachment string                         `json:"authenticatorAttachment,omitempty"`
	ClientExtensionResults  AuthenticationExtensions       `json:"clientExtensionResults,omitempty"`
	Type                    CredentialType                 `json:"type"`
}

// AttestationObject is the decoded `{fmt, attStmt, authData}` CBOR map.
type AttestationObject struct {
	Format       string
	AttStatement map[string]interface{}
	AuthData     []byte
}

// ParsedRegistrationResponse bundles a RegistrationCredential with its
// decoded clientData and attestation object.
type ParsedRegistrationResponse struct {
	Raw               RegistrationCredential
	ClientData        CollectedClientData
	AttestationObject AttestationObject
	AuthenticatorData *AuthenticatorData
}

// ParsedAuthenticationResponse bundles an AuthenticationCredential with its
// decoded clientData and authenticator data.
type ParsedAuthenticationResponse struct {
	Raw               AuthenticationCredential
	ClientData        CollectedClientData
	AuthenticatorData *AuthenticatorData
}
