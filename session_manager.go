package webauthn

import (
	"encoding/json"
	"time"

	"github.com/asgardeo/webauthncore/internal/log"
	"github.com/asgardeo/webauthncore/internal/serviceerror"
	"github.com/asgardeo/webauthncore/internal/session"
	"github.com/asgardeo/webauthncore/internal/store"
)

var sessionLogger = log.GetLogger().With(log.String(log.LoggerKeyComponentName, "SessionManager"))

// CreateSession builds a Session good for Config.SessionDuration, persists
// it through the session store when one is configured, and returns it
// sealed as an opaque token, per spec.md §4.J "create_session".
func (w *WebAuthn) CreateSession(userID string, credentialID []byte, userVerified bool, extra map[string]interface{}) (string, error) {
	sessionID, err := session.GenerateSessionID()
	if err != nil {
		return "", wrapSessionErr(err)
	}

	now := time.Now()
	sess := Session{
		SessionID:    sessionID,
		UserID:       userID,
		CredentialID: credentialID,
		UserVerified: userVerified,
		ExpiresAt:    now.Add(w.Config.SessionDuration),
		Extra:        extra,
	}

	if w.Config.Store != nil && w.Config.Store.Sessions != nil {
		if err := w.Config.Store.Sessions.Create(sessionID, toStoreSession(sess)); err != nil {
			return "", storageError(err)
		}
	}

	token, err := session.Seal(sessionID, sess, now, w.Config.TokenSecret)
	if err != nil {
		return "", wrapSessionErr(err)
	}
	return token, nil
}

// ValidateSession opens token, rejects it if expired, and — when a session
// store is configured — prefers the stored session over the token-embedded
// copy, per spec.md §4.J "validate_session": "stored wins in case of stale
// token".
func (w *WebAuthn) ValidateSession(token string) (*Session, error) {
	opened, err := session.Open(token, w.Config.TokenSecret)
	if err != nil {
		return nil, wrapSessionErr(err)
	}

	var sess Session
	if err := json.Unmarshal(opened.Data, &sess); err != nil {
		return nil, newError(serviceerror.ErrorInvalidToken)
	}

	if w.Config.Store != nil && w.Config.Store.Sessions != nil {
		rec, err := w.Config.Store.Sessions.Find(opened.SessionID)
		if err != nil {
			return nil, storageError(err)
		}
		if rec == nil {
			return nil, newError(serviceerror.ErrorSessionNotFound)
		}
		sess = fromStoreSession(*rec)
	}

	if sess.ExpiresAt.Before(time.Now()) {
		return nil, newError(serviceerror.ErrorSessionExpired)
	}

	return &sess, nil
}

// RefreshSession validates token, resets its expiry to now plus
// Config.SessionDuration, persists the change, and reseals it, per
// spec.md §4.J "refresh_session".
func (w *WebAuthn) RefreshSession(token string) (string, error) {
	sess, err := w.ValidateSession(token)
	if err != nil {
		return "", err
	}

	now := time.Now()
	sess.ExpiresAt = now.Add(w.Config.SessionDuration)

	if w.Config.Store != nil && w.Config.Store.Sessions != nil {
		if err := w.Config.Store.Sessions.Update(sess.SessionID, toStoreSession(*sess)); err != nil {
			return "", storageError(err)
		}
	}

	newToken, err := session.Seal(sess.SessionID, *sess, now, w.Config.TokenSecret)
	if err != nil {
		return "", wrapSessionErr(err)
	}
	return newToken, nil
}

// RevokeSession opens token just far enough to obtain the session id and
// deletes it from the store. It never raises for an invalid or already
// expired token — revocation of something that is already gone is treated
// as success, per spec.md §4.J "revoke_session" and §7's swallowed-error
// list.
func (w *WebAuthn) RevokeSession(token string) {
	opened, err := session.Open(token, w.Config.TokenSecret)
	if err != nil {
		sessionLogger.Debug("Ignoring revoke of an unparsable token")
		return
	}
	if w.Config.Store == nil || w.Config.Store.Sessions == nil {
		return
	}
	if err := w.Config.Store.Sessions.Delete(opened.SessionID); err != nil {
		sessionLogger.Warn("Failed to delete revoked session", log.String("session_id", opened.SessionID))
	}
}

func toStoreSession(s Session) store.SessionRecord {
	return store.SessionRecord{
		SessionID:    s.SessionID,
		UserID:       s.UserID,
		CredentialID: s.CredentialID,
		UserVerified: s.UserVerified,
		ExpiresAt:    s.ExpiresAt,
		Extra:        s.Extra,
	}
}

func fromStoreSession(r store.SessionRecord) Session {
	return Session{
		SessionID:    r.SessionID,
		UserID:       r.UserID,
		CredentialID: r.CredentialID,
		UserVerified: r.UserVerified,
		ExpiresAt:    r.ExpiresAt,
		Extra:        r.Extra,
	}
}

// wrapSessionErr adapts an internal/session error (which carries a
// serviceerror.ServiceError) into this package's Error.
func wrapSessionErr(err error) *Error {
	if se, ok := err.(interface{ ServiceError() serviceerror.ServiceError }); ok {
		return newError(se.ServiceError())
	}
	return newError(serviceerror.InternalServerError)
}
