package webauthn

import (
	"github.com/asgardeo/webauthncore/internal/protocol"
	"github.com/asgardeo/webauthncore/internal/serviceerror"
)

// Error is the error type every public operation in this module returns.
// It carries the stable taxonomy code from internal/serviceerror so a
// caller can branch on Code without string-matching a message.
type Error struct {
	Svc serviceerror.ServiceError
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Svc.ErrorDescription != "" {
		return e.Svc.ErrorDescription
	}
	return e.Svc.Error
}

// Code returns the stable error code, e.g. "WAC-1401" (challenge mismatch).
func (e *Error) Code() string { return e.Svc.Code }

// ServiceError exposes the full structured error.
func (e *Error) ServiceError() serviceerror.ServiceError { return e.Svc }

func newError(svc serviceerror.ServiceError) *Error {
	return &Error{Svc: svc}
}

// wrapProtocolErr adapts an error surfaced from internal/protocol (which
// already carries a serviceerror.ServiceError) into this package's Error.
func wrapProtocolErr(err error) *Error {
	return newError(protocol.AsServiceError(err))
}
