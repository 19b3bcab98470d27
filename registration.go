package webauthn

import (
	"github.com/asgardeo/webauthncore/internal/encoding"
	"github.com/asgardeo/webauthncore/internal/hash"
	"github.com/asgardeo/webauthncore/internal/log"
	"github.com/asgardeo/webauthncore/internal/protocol"
	"github.com/asgardeo/webauthncore/internal/serviceerror"
)

const webAuthnUserIDBytes = 32

var registrationLogger = log.GetLogger().With(log.String(log.LoggerKeyComponentName, "Registration"))

// BeginRegistration builds PublicKeyCredentialCreationOptions for user and
// returns the Base64URL-encoded challenge alongside them, for the caller (or the
// orchestrator) to persist through the challenge store. The challenge and
// the WebAuthn user handle are freshly generated CSPRNG output on every
// call.
func (w *WebAuthn) BeginRegistration(user User, opts ...RegistrationOption) (*protocol.CredentialCreationOptions, string, error) {
	cfg := registrationConfig{
		attestation: w.Config.AttestationPreference,
		timeout:     w.Config.OperationTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	challenge, err := hash.RandomBytes(w.Config.ChallengeSizeBytes)
	if err != nil {
		return nil, "", newError(serviceerror.InternalServerError)
	}
	webAuthnUserID, err := hash.RandomBytes(webAuthnUserIDBytes)
	if err != nil {
		return nil, "", newError(serviceerror.InternalServerError)
	}

	selection := mergeAuthenticatorSelection(w.Config.AuthenticatorSelection, cfg.authenticatorSelection, w.Config.UserVerificationPolicy)

	params := make([]protocol.CredentialParameter, 0, len(w.Config.SupportedAlgorithms))
	for _, alg := range w.Config.SupportedAlgorithms {
		params = append(params, protocol.CredentialParameter{Type: protocol.PublicKeyCredentialType, Algorithm: alg})
	}

	options := &protocol.CredentialCreationOptions{
		Challenge: protocol.URLEncodedBytes(challenge),
		RelyingParty: protocol.RelyingPartyEntity{
			ID:   w.Config.RPID,
			Name: w.Config.RPName,
		},
		User: protocol.UserEntity{
			ID:          protocol.URLEncodedBytes(webAuthnUserID),
			Name:        user.Username,
			DisplayName: user.DisplayName,
		},
		PubKeyCredParams:       params,
		Timeout:                uint32(cfg.timeout.Milliseconds()),
		ExcludeCredentials:     cfg.excludeCredentials,
		AuthenticatorSelection: selection,
		Attestation:            cfg.attestation,
		Extensions:             cfg.extensions,
	}

	return options, encoding.EncodeToString(challenge), nil
}

// mergeAuthenticatorSelection layers {default residentKey=preferred,
// userVerification=policy} under the config-level hints under the
// per-call override, per spec.md §4.G step 3.
func mergeAuthenticatorSelection(
	fromConfig, fromCall *protocol.AuthenticatorSelectionCriteria,
	policy protocol.UserVerificationRequirement,
) *protocol.AuthenticatorSelectionCriteria {
	merged := protocol.AuthenticatorSelectionCriteria{
		ResidentKey:      protocol.ResidentKeyPreferred,
		UserVerification: policy,
	}
	if fromConfig != nil {
		overlayAuthenticatorSelection(&merged, fromConfig)
	}
	if fromCall != nil {
		overlayAuthenticatorSelection(&merged, fromCall)
	}
	return &merged
}

func overlayAuthenticatorSelection(dst *protocol.AuthenticatorSelectionCriteria, src *protocol.AuthenticatorSelectionCriteria) {
	if src.AuthenticatorAttachment != "" {
		dst.AuthenticatorAttachment = src.AuthenticatorAttachment
	}
	if src.ResidentKey != "" {
		dst.ResidentKey = src.ResidentKey
	}
	if src.RequireResidentKey != nil {
		dst.RequireResidentKey = src.RequireResidentKey
	}
	if src.UserVerification != "" {
		dst.UserVerification = src.UserVerification
	}
}

// FinishRegistration verifies a client's registration response against the
// ceremony context and returns the information the caller needs to
// persist a new credential. It does not validate the attestation statement
// of any format, and it does not check the attestation format (`fmt`)
// either: the resulting security model is trust-on-first-use, bound to the
// public key in the authenticator data.
func (w *WebAuthn) FinishRegistration(
	responseJSON []byte,
	expectedChallenge string,
	expectedOrigins []string,
	expectedRPIDs []string,
	requireUserVerification bool,
) (*VerifiedRegistrationInfo, error) {
	parsed, err := protocol.ParseRegistrationResponse(responseJSON)
	if err != nil {
		registrationLogger.Debug("Failed to parse registration response")
		return nil, newError(serviceerror.ErrorCborDecode)
	}

	if parsed.ClientData.Type != "webauthn.create" {
		return nil, newError(serviceerror.ErrorInvalidClientDataType)
	}
	if !encoding.ConstantTimeCompare([]byte(parsed.ClientData.Challenge), []byte(expectedChallenge)) {
		return nil, newError(serviceerror.ErrorChallengeMismatch)
	}
	if !originAllowed(parsed.ClientData.Origin, expectedOrigins) {
		return nil, newError(serviceerror.ErrorOriginMismatch)
	}

	authData, err := protocol.ParseAuthenticatorData(parsed.AttestationObject.AuthData)
	if err != nil {
		return nil, wrapProtocolErr(err)
	}

	matchedRPID, ok := matchRPIDHash(authData.RPIDHash, expectedRPIDs)
	if !ok {
		return nil, newError(serviceerror.ErrorRpidMismatch)
	}

	if err := authData.Validate(protocol.FlagRequirements{
		RequireUserPresence:     true,
		RequireUserVerification: requireUserVerification,
	}); err != nil {
		return nil, wrapProtocolErr(err)
	}

	if !authData.Flags.HasAttestedCredentialData() || authData.Attested == nil {
		return nil, newError(serviceerror.ErrorMissingCredentialData)
	}
	if len(authData.Attested.CredentialID) == 0 || len(authData.Attested.CredentialPublicKey) == 0 {
		return nil, newError(serviceerror.ErrorMissingCredentialData)
	}

	// Parsing already validated the COSE key's shape; nothing further to
	// extract from it here beyond the raw bytes we persist.

	deviceType := DeviceTypeSingleDevice
	if authData.Flags.HasBackupEligible() {
		deviceType = DeviceTypeMultiDevice
	}

	registrationLogger.Info("Registration ceremony verified", log.String("rp_id", matchedRPID))

	return &VerifiedRegistrationInfo{
		CredentialID:  authData.Attested.CredentialID,
		PublicKeyCOSE: authData.Attested.CredentialPublicKey,
		Counter:       authData.Counter,
		Transports:    parsed.Raw.Response.Transports,
		DeviceType:    deviceType,
		BackedUp:      authData.Flags.HasBackupState(),
		Origin:        parsed.ClientData.Origin,
		RPID:          matchedRPID,
		UserVerified:  authData.Flags.HasUserVerified(),
		AAGUID:        authData.Attested.AAGUID,
	}, nil
}

func originAllowed(origin string, expected []string) bool {
	for _, e := range expected {
		if origin == e {
			return true
		}
	}
	return false
}

func matchRPIDHash(rpIDHash []byte, expectedRPIDs []string) (string, bool) {
	for _, rpID := range expectedRPIDs {
		sum := hash.SHA256Sum([]byte(rpID))
		if encoding.ConstantTimeCompare(sum[:], rpIDHash) {
			return rpID, true
		}
	}
	return "", false
}
