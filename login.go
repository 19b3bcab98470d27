package webauthn

import (
	"github.com/asgardeo/webauthncore/internal/encoding"
	"github.com/asgardeo/webauthncore/internal/hash"
	"github.com/asgardeo/webauthncore/internal/log"
	"github.com/asgardeo/webauthncore/internal/protocol"
	"github.com/asgardeo/webauthncore/internal/serviceerror"
)

var loginLogger = log.GetLogger().With(log.String(log.LoggerKeyComponentName, "Authentication"))

// BeginLogin builds PublicKeyCredentialRequestOptions. When no allow-list
// is supplied via WithAllowCredentials, allowCredentials is omitted from
// the resulting JSON entirely, which is what enables a discoverable
// (usernameless) ceremony on the client.
func (w *WebAuthn) BeginLogin(opts ...LoginOption) (*protocol.CredentialRequestOptions, string, error) {
	cfg := loginConfig{
		userVerification: w.Config.UserVerificationPolicy,
		rpID:             w.Config.RPID,
		timeout:          w.Config.OperationTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	challenge, err := hash.RandomBytes(w.Config.ChallengeSizeBytes)
	if err != nil {
		return nil, "", newError(serviceerror.InternalServerError)
	}

	options := &protocol.CredentialRequestOptions{
		Challenge:        protocol.URLEncodedBytes(challenge),
		Timeout:          uint32(cfg.timeout.Milliseconds()),
		RelyingPartyID:   cfg.rpID,
		AllowCredentials: cfg.allowCredentials,
		UserVerification: cfg.userVerification,
		Extensions:       cfg.extensions,
	}

	return options, encoding.EncodeToString(challenge), nil
}

// BeginDiscoverableLogin is BeginLogin under a name for callers that want
// to make the usernameless flow explicit at the call site. It applies opts
// exactly as BeginLogin does, so the options carry no allow-list unless
// one is passed through WithAllowCredentials.
func (w *WebAuthn) BeginDiscoverableLogin(opts ...LoginOption) (*protocol.CredentialRequestOptions, string, error) {
	return w.BeginLogin(opts...)
}

// FinishAuthentication verifies a client's authentication response against
// the ceremony context and the stored credential, enforcing the
// cloned-authenticator counter rule from spec.md §4.H.
func (w *WebAuthn) FinishAuthentication(
	responseJSON []byte,
	expectedChallenge string,
	credential *WebAuthnCredential,
	expectedOrigins []string,
	expectedRPIDs []string,
	requireUserVerification bool,
) (*VerifiedAuthenticationInfo, error) {
	parsed, err := protocol.ParseAuthenticationResponse(responseJSON)
	if err != nil {
		return nil, newError(serviceerror.ErrorInvalidClientDataType)
	}

	if !encoding.ConstantTimeCompare(parsed.Raw.RawID, credential.CredentialID) {
		return nil, newError(serviceerror.ErrorCredentialIDMismatch)
	}

	if parsed.ClientData.Type != "webauthn.get" {
		return nil, newError(serviceerror.ErrorInvalidClientDataType)
	}
	if !encoding.ConstantTimeCompare([]byte(parsed.ClientData.Challenge), []byte(expectedChallenge)) {
		return nil, newError(serviceerror.ErrorChallengeMismatch)
	}
	if !originAllowed(parsed.ClientData.Origin, expectedOrigins) {
		return nil, newError(serviceerror.ErrorOriginMismatch)
	}

	rawAuthData := []byte(parsed.Raw.Response.AuthenticatorData)
	authData, err := protocol.ParseAuthenticatorData(rawAuthData)
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

	newCounter := authData.Counter
	oldCounter := credential.Counter
	if !(newCounter == 0 && oldCounter == 0) && newCounter <= oldCounter {
		// Mark the credential before returning: a regressed counter is the
		// cloned-authenticator signal, and callers that only inspect the
		// error lose that signal unless it is also on the record they
		// already hold a pointer to.
		credential.CloneWarning = true
		loginLogger.Warn("Signature counter did not strictly increase")
		return nil, newError(serviceerror.ErrorCounterError)
	}

	coseKey, err := protocol.ParseCOSEKey(credential.PublicKeyCOSE)
	if err != nil {
		return nil, wrapProtocolErr(err)
	}

	clientDataHash := hash.SHA256Sum([]byte(parsed.Raw.Response.ClientDataJSON))
	signingInput := append(append([]byte{}, rawAuthData...), clientDataHash[:]...)

	valid, err := protocol.VerifySignature(coseKey, signingInput, parsed.Raw.Response.Signature)
	if err != nil {
		return nil, wrapProtocolErr(err)
	}
	if !valid {
		return nil, newError(serviceerror.ErrorSignatureVerificationFailed)
	}

	return &VerifiedAuthenticationInfo{
		CredentialID: credential.CredentialID,
		NewCounter:   newCounter,
		Origin:       parsed.ClientData.Origin,
		RPID:         matchedRPID,
		UserVerified: authData.Flags.HasUserVerified(),
	}, nil
}
