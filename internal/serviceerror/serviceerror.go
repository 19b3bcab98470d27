// Package serviceerror defines the structured error type carried to callers
// of the webauthncore verification core, and the stable error codes each
// component returns.
package serviceerror

// ErrorType distinguishes errors caused by bad caller input from errors
// internal to the core or its storage adapter.
type ErrorType string

const (
	// ClientErrorType marks an error caused by the caller or by a client's
	// ceremony response (mismatched challenge, bad signature, and so on).
	ClientErrorType ErrorType = "CLIENT_ERROR"
	// ServerErrorType marks an error internal to the core or a storage fault.
	ServerErrorType ErrorType = "SERVER_ERROR"
)

// ServiceError is a structured error with a stable code, carried across
// every public operation of this module. Error and ErrorDescription never
// echo secret material: no token_secret, challenge, key, or signature bytes
// appear in either field.
type ServiceError struct {
	Type             ErrorType
	Code             string
	Error            string
	ErrorDescription string
}

// InternalServerError is returned whenever a failure does not map to one of
// the named client-facing codes below and should not leak further detail.
var InternalServerError = ServiceError{
	Type:             ServerErrorType,
	Code:             "WAC-5000",
	Error:            "Internal server error",
	ErrorDescription: "An unexpected error occurred while processing the request",
}

// Configuration errors.
var (
	ErrorConfigurationError = ServiceError{
		Type: ServerErrorType, Code: "WAC-1000",
		Error:            "Configuration error",
		ErrorDescription: "The relying party configuration is invalid",
	}
)

// CBOR and COSE errors.
var (
	ErrorCborDecode = ServiceError{
		Type: ClientErrorType, Code: "WAC-1100",
		Error:            "CBOR decode error",
		ErrorDescription: "The supplied bytes are not well-formed CBOR",
	}
	ErrorCborEncode = ServiceError{
		Type: ServerErrorType, Code: "WAC-1101",
		Error:            "CBOR encode error",
		ErrorDescription: "The value could not be encoded as CBOR",
	}
	ErrorCoseMissingKty = ServiceError{
		Type: ClientErrorType, Code: "WAC-1200",
		Error:            "COSE key missing kty",
		ErrorDescription: "The COSE key map has no key type field",
	}
	ErrorCoseEC2Invalid = ServiceError{
		Type: ClientErrorType, Code: "WAC-1201",
		Error:            "Invalid EC2 COSE key",
		ErrorDescription: "The EC2 COSE key is missing a required field or has a malformed one",
	}
	ErrorCoseRSAInvalid = ServiceError{
		Type: ClientErrorType, Code: "WAC-1202",
		Error:            "Invalid RSA COSE key",
		ErrorDescription: "The RSA COSE key is missing a required field or has a malformed one",
	}
	ErrorCoseOKPInvalid = ServiceError{
		Type: ClientErrorType, Code: "WAC-1203",
		Error:            "Invalid OKP COSE key",
		ErrorDescription: "The OKP COSE key is missing a required field or has a malformed one",
	}
	ErrorCoseUnsupportedKeyType = ServiceError{
		Type: ClientErrorType, Code: "WAC-1204",
		Error:            "Unsupported COSE key type",
		ErrorDescription: "The COSE key type is not one of EC2, RSA, or OKP",
	}
	ErrorCoseUnknownAlgorithm = ServiceError{
		Type: ClientErrorType, Code: "WAC-1205",
		Error:            "Unknown COSE algorithm",
		ErrorDescription: "The COSE key has no usable algorithm and none could be inferred",
	}
)

// Authenticator-data errors.
var (
	ErrorAuthenticatorDataTooShort = ServiceError{
		Type: ClientErrorType, Code: "WAC-1300",
		Error:            "Authenticator data too short",
		ErrorDescription: "The authenticator data is shorter than the fixed header",
	}
	ErrorAuthenticatorDataInvalidCredentialData = ServiceError{
		Type: ClientErrorType, Code: "WAC-1301",
		Error:            "Invalid attested credential data",
		ErrorDescription: "The attested credential data in authenticator data is malformed",
	}
	ErrorUserPresenceRequired = ServiceError{
		Type: ClientErrorType, Code: "WAC-1302",
		Error:            "User presence required",
		ErrorDescription: "The authenticator data does not have the user present flag set",
	}
	ErrorUserVerificationRequired = ServiceError{
		Type: ClientErrorType, Code: "WAC-1303",
		Error:            "User verification required",
		ErrorDescription: "The authenticator data does not have the user verified flag set",
	}
)

// Ceremony verification errors.
var (
	ErrorInvalidClientDataType = ServiceError{
		Type: ClientErrorType, Code: "WAC-1400",
		Error:            "Invalid client data type",
		ErrorDescription: "clientData.type does not match the expected ceremony",
	}
	ErrorChallengeMismatch = ServiceError{
		Type: ClientErrorType, Code: "WAC-1401",
		Error:            "Challenge mismatch",
		ErrorDescription: "clientData.challenge does not match the issued challenge",
	}
	ErrorOriginMismatch = ServiceError{
		Type: ClientErrorType, Code: "WAC-1402",
		Error:            "Origin mismatch",
		ErrorDescription: "clientData.origin is not among the relying party's expected origins",
	}
	ErrorRpidMismatch = ServiceError{
		Type: ClientErrorType, Code: "WAC-1403",
		Error:            "RP ID mismatch",
		ErrorDescription: "The authenticator data RP-ID hash does not match any expected RP ID",
	}
	ErrorMissingCredentialData = ServiceError{
		Type: ClientErrorType, Code: "WAC-1404",
		Error:            "Missing credential data",
		ErrorDescription: "The authenticator data has the attested-credential-data flag set but no credential data",
	}
	ErrorCredentialIDMismatch = ServiceError{
		Type: ClientErrorType, Code: "WAC-1405",
		Error:            "Credential ID mismatch",
		ErrorDescription: "response.id does not match the stored credential's ID",
	}
	ErrorCounterError = ServiceError{
		Type: ClientErrorType, Code: "WAC-1406",
		Error:            "Signature counter error",
		ErrorDescription: "The authenticator's signature counter did not strictly increase",
	}
	ErrorSignatureVerificationFailed = ServiceError{
		Type: ClientErrorType, Code: "WAC-1407",
		Error:            "Signature verification failed",
		ErrorDescription: "The ceremony signature does not verify against the stored public key",
	}
	ErrorUnsupportedAlgorithm = ServiceError{
		Type: ClientErrorType, Code: "WAC-1408",
		Error:            "Unsupported algorithm",
		ErrorDescription: "The signing algorithm is not one this core can verify",
	}
	ErrorCredentialNotFound = ServiceError{
		Type: ClientErrorType, Code: "WAC-1409",
		Error:            "Credential not found",
		ErrorDescription: "No stored credential matches the asserted credential ID",
	}
)

// Session token errors.
var (
	ErrorTokenCreationFailed = ServiceError{
		Type: ServerErrorType, Code: "WAC-1500",
		Error:            "Token creation failed",
		ErrorDescription: "The session token could not be sealed",
	}
	ErrorInvalidToken = ServiceError{
		Type: ClientErrorType, Code: "WAC-1501",
		Error:            "Invalid token",
		ErrorDescription: "The session token could not be opened",
	}
	ErrorSessionExpired = ServiceError{
		Type: ClientErrorType, Code: "WAC-1502",
		Error:            "Session expired",
		ErrorDescription: "The session referenced by the token has expired",
	}
	ErrorSessionNotFound = ServiceError{
		Type: ClientErrorType, Code: "WAC-1503",
		Error:            "Session not found",
		ErrorDescription: "No stored session matches the session id carried by the token",
	}
)

// Storage adapter errors.
var (
	ErrorStorageError = ServiceError{
		Type: ServerErrorType, Code: "WAC-1600",
		Error:            "Storage error",
		ErrorDescription: "The storage adapter returned an error",
	}
)
