package webauthn

import (
	"time"

	"github.com/asgardeo/webauthncore/internal/log"
	"github.com/asgardeo/webauthncore/internal/protocol"
	"github.com/asgardeo/webauthncore/internal/serviceerror"
	"github.com/asgardeo/webauthncore/internal/store"
)

var orchestratorLogger = log.GetLogger().With(log.String(log.LoggerKeyComponentName, "CeremonyOrchestrator"))

// RegisterOptions is component J's registration entry point: it builds the
// options exactly as BeginRegistration does and, when a challenge store is
// configured, places the issued challenge into it so RegisterVerify can
// retrieve and delete it later, per spec.md §4.J.
func (w *WebAuthn) RegisterOptions(user User, opts ...RegistrationOption) (*protocol.CredentialCreationOptions, error) {
	options, challenge, err := w.BeginRegistration(user, opts...)
	if err != nil {
		return nil, err
	}
	if err := w.putChallenge(challenge, user.ID, OperationRegistration); err != nil {
		return nil, err
	}
	return options, nil
}

// RegisterVerify is component J's registration verify entry point. It
// looks the ceremony's challenge up by the value the client echoed back
// (rather than requiring the caller to have kept it separately), delegates
// to FinishRegistration, and on success deletes the challenge from the
// store so it cannot be replayed, per spec.md §4.G "Ceremony side-effects".
func (w *WebAuthn) RegisterVerify(
	responseJSON []byte,
	expectedOrigins []string,
	expectedRPIDs []string,
	requireUserVerification bool,
) (*VerifiedRegistrationInfo, error) {
	parsed, err := protocol.ParseRegistrationResponse(responseJSON)
	if err != nil {
		return nil, newError(serviceerror.ErrorCborDecode)
	}

	expectedChallenge, err := w.takeChallenge(parsed.ClientData.Challenge, OperationRegistration)
	if err != nil {
		return nil, err
	}

	info, err := w.FinishRegistration(responseJSON, expectedChallenge, expectedOrigins, expectedRPIDs, requireUserVerification)
	if err != nil {
		return nil, err
	}
	w.deleteChallenge(expectedChallenge)
	return info, nil
}

// LoginOptions is component J's authentication entry point, mirroring
// RegisterOptions.
func (w *WebAuthn) LoginOptions(opts ...LoginOption) (*protocol.CredentialRequestOptions, error) {
	options, challenge, err := w.BeginLogin(opts...)
	if err != nil {
		return nil, err
	}
	if err := w.putChallenge(challenge, "", OperationAuthentication); err != nil {
		return nil, err
	}
	return options, nil
}

// LoginVerify looks the asserted credential up by response.id, looks the
// ceremony's challenge up by the client-echoed value, delegates to
// FinishAuthentication, and on success advances the stored counter,
// updates last-used, and deletes the challenge, per spec.md §4.H "On
// success, the orchestrator updates...".
func (w *WebAuthn) LoginVerify(
	responseJSON []byte,
	expectedOrigins []string,
	expectedRPIDs []string,
	requireUserVerification bool,
) (*VerifiedAuthenticationInfo, error) {
	if w.Config.Store == nil || w.Config.Store.Credentials == nil {
		return nil, newError(serviceerror.ErrorConfigurationError)
	}

	parsed, err := protocol.ParseAuthenticationResponse(responseJSON)
	if err != nil {
		return nil, newError(serviceerror.ErrorInvalidClientDataType)
	}

	stored, err := w.Config.Store.Credentials.FindByID(parsed.Raw.RawID)
	if err != nil {
		return nil, storageOrNotFound(err, serviceerror.ErrorCredentialNotFound)
	}
	if stored == nil {
		return nil, newError(serviceerror.ErrorCredentialNotFound)
	}

	expectedChallenge, err := w.takeChallenge(parsed.ClientData.Challenge, OperationAuthentication)
	if err != nil {
		return nil, err
	}

	credential := credentialFromStore(*stored)
	info, err := w.FinishAuthentication(responseJSON, expectedChallenge, credential, expectedOrigins, expectedRPIDs, requireUserVerification)
	if err != nil {
		if credential.CloneWarning {
			orchestratorLogger.Warn("Possible cloned authenticator detected",
				log.String("credential_id", string(credential.CredentialID)))
		}
		return nil, err
	}

	if err := w.Config.Store.Credentials.UpdateCounter(credential.CredentialID, info.NewCounter); err != nil {
		return nil, storageError(err)
	}
	if err := w.Config.Store.Credentials.UpdateLastUsed(credential.CredentialID, time.Now()); err != nil {
		return nil, storageError(err)
	}
	w.deleteChallenge(expectedChallenge)

	return info, nil
}

// putChallenge persists a freshly issued challenge, a no-op when no
// challenge store is configured.
func (w *WebAuthn) putChallenge(challenge, userID string, op ChallengeOperation) error {
	if w.Config.Store == nil || w.Config.Store.Challenges == nil {
		return nil
	}
	now := time.Now()
	err := w.Config.Store.Challenges.Create(store.ChallengeData{
		Challenge: challenge,
		UserID:    userID,
		Operation: string(op),
		CreatedAt: now,
		ExpiresAt: now.Add(w.Config.OperationTimeout),
	})
	if err != nil {
		return storageError(err)
	}
	return nil
}

// takeChallenge resolves the expected challenge string a verify call
// should use against the value the client echoed back. With a challenge
// store configured, the lookup also enforces that the challenge exists,
// has not expired, and was issued for the right operation — a challenge
// found for the wrong ceremony is rejected rather than silently reused.
// Without a store, the client-echoed value is trusted as-is and
// FinishRegistration/FinishAuthentication's own comparison is the only
// check (the caller is then responsible for supplying the right
// expectedChallenge through some side channel of their own).
func (w *WebAuthn) takeChallenge(challenge string, op ChallengeOperation) (string, error) {
	if w.Config.Store == nil || w.Config.Store.Challenges == nil {
		return challenge, nil
	}
	data, err := w.Config.Store.Challenges.Find(challenge)
	if err != nil {
		return "", storageError(err)
	}
	if data == nil || data.Operation != string(op) {
		return "", newError(serviceerror.ErrorChallengeMismatch)
	}
	return data.Challenge, nil
}

func (w *WebAuthn) deleteChallenge(challenge string) {
	if w.Config.Store == nil || w.Config.Store.Challenges == nil {
		return
	}
	if err := w.Config.Store.Challenges.Delete(challenge); err != nil {
		orchestratorLogger.Warn("Failed to delete consumed challenge")
	}
}

// Cleanup sweeps expired challenges and sessions, per spec.md §4.J.
func (w *WebAuthn) Cleanup() error {
	if w.Config.Store == nil {
		return nil
	}
	now := time.Now()
	if w.Config.Store.Challenges != nil {
		if err := w.Config.Store.Challenges.DeleteExpired(now); err != nil {
			return storageError(err)
		}
	}
	if w.Config.Store.Sessions != nil {
		if err := w.Config.Store.Sessions.DeleteExpired(now); err != nil {
			return storageError(err)
		}
	}
	return nil
}

func credentialFromStore(c store.Credential) *WebAuthnCredential {
	return &WebAuthnCredential{
		CredentialID:   c.CredentialID,
		PublicKeyCOSE:  c.PublicKeyCOSE,
		Counter:        c.Counter,
		Transports:     c.Transports,
		DeviceType:     DeviceType(c.DeviceType),
		BackedUp:       c.BackedUp,
		UserID:         c.UserID,
		WebAuthnUserID: c.WebAuthnUserID,
		AAGUID:         c.AAGUID,
		CreatedAt:      c.CreatedAt,
		LastUsedAt:     c.LastUsedAt,
		CloneWarning:   c.CloneWarning,
	}
}

func storageError(err error) *Error {
	orchestratorLogger.Error("Storage adapter error", log.Error(err))
	return newError(serviceerror.ErrorStorageError)
}

func storageOrNotFound(err error, notFound serviceerror.ServiceError) *Error {
	if err == store.ErrNotFound {
		return newError(notFound)
	}
	return storageError(err)
}
