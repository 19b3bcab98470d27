package protocol

import "github.com/asgardeo/webauthncore/internal/serviceerror"

// serviceError adapts a serviceerror.ServiceError value to the error
// interface so internal parsing code can return it through a normal Go
// error return while callers that care can unwrap it with AsServiceError.
type serviceError struct {
	svc serviceerror.ServiceError
}

func (e *serviceError) Error() string { return e.svc.ErrorDescription }

// ServiceError returns the underlying structured error.
func (e *serviceError) ServiceError() serviceerror.ServiceError { return e.svc }

// AsServiceError unwraps err into a serviceerror.ServiceError if it (or
// something it wraps) carries one, falling back to InternalServerError.
func AsServiceError(err error) serviceerror.ServiceError {
	if err == nil {
		return serviceerror.ServiceError{}
	}
	if se, ok := err.(*serviceError); ok {
		return se.svc
	}
	if u, ok := err.(interface{ Unwrap() error }); ok {
		return AsServiceError(u.Unwrap())
	}
	return serviceerror.InternalServerError
}

// wrapErr builds a serviceError from a taxonomy entry.
func wrapErr(svc serviceerror.ServiceError) error {
	return &serviceError{svc: svc}
}
