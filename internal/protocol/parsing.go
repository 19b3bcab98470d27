package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/asgardeo/webauthncore/internal/protocol/cbor"
)

// ParseRegistrationResponse decodes a RegistrationCredential JSON envelope,
// its embedded clientDataJSON, and its CBOR attestation object.
func ParseRegistrationResponse(data []byte) (*ParsedRegistrationResponse, error) {
	var cred RegistrationCredential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("failed to unmarshal registration credential: %w", err)
	}

	var clientData CollectedClientData
	if err := json.Unmarshal(cred.Response.ClientDataJSON, &clientData); err != nil {
		return nil, fmt.Errorf("failed to parse clientDataJSON: %w", err)
	}

	attObj, err := decodeAttestationObject(cred.Response.AttestationObject)
	if err != nil {
		return nil, err
	}

	return &ParsedRegistrationResponse{
		Raw:               cred,
		ClientData:        clientData,
		AttestationObject: attObj,
	}, nil
}

// ParseAuthenticationResponse decodes an AuthenticationCredential JSON
// envelope and its embedded clientDataJSON.
func ParseAuthenticationResponse(data []byte) (*ParsedAuthenticationResponse, error) {
	var cred AuthenticationCredential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("failed to unmarshal authentication credential: %w", err)
	}

	var clientData CollectedClientData
	if err := json.Unmarshal(cred.Response.ClientDataJSON, &clientData); err != nil {
		return nil, fmt.Errorf("failed to parse clientDataJSON: %w", err)
	}

	return &ParsedAuthenticationResponse{
		Raw:        cred,
		ClientData: clientData,
	}, nil
}

// decodeAttestationObject decodes the CBOR attestation object, tolerating
// either text-keyed (the standard form) or integer-keyed top-level maps.
func decodeAttestationObject(data []byte) (AttestationObject, error) {
	val, err := cbor.Decode(data)
	if err != nil {
		return AttestationObject{}, fmt.Errorf("failed to decode attestation object: %w", err)
	}
	if val.Kind != cbor.KindMap {
		return AttestationObject{}, fmt.Errorf("attestation object is not a CBOR map")
	}

	var obj AttestationObject
	if v, ok := mapGetEither(val, "fmt", 1); ok && v.Kind == cbor.KindText {
		obj.Format = v.Text
	}
	if v, ok := mapGetEither(val, "authData", 3); ok && v.Kind == cbor.KindBytes {
		obj.AuthData = v.Bytes
	}
	if v, ok := mapGetEither(val, "attStmt", 2); ok && v.Kind == cbor.KindMap {
		obj.AttStatement = attStatementToMap(v)
	}

	return obj, nil
}

func mapGetEither(v cbor.Value, textKey string, intKey int64) (cbor.Value, bool) {
	if found, ok := v.MapGetText(textKey); ok {
		return found, true
	}
	return v.MapGetInt(intKey)
}

// attStatementToMap renders an attestation statement's CBOR map as a
// string-keyed map of opaque values. No attestation format beyond `none`
// is validated by this core, so the statement is carried through only for
// callers that add their own format-specific verifier.
func attStatementToMap(v cbor.Value) map[string]interface{} {
	m := make(map[string]interface{}, len(v.Map))
	for _, pair := range v.Map {
		if pair.Key.Kind != cbor.KindText {
			continue
		}
		m[pair.Key.Text] = cborValueToGo(pair.Value)
	}
	return m
}

func cborValueToGo(v cbor.Value) interface{} {
	switch v.Kind {
	case cbor.KindUint:
		return v.Uint
	case cbor.KindNegInt:
		return v.Int
	case cbor.KindBytes:
		return v.Bytes
	case cbor.KindText:
		return v.Text
	case cbor.KindBool:
		return v.Bool
	case cbor.KindArray:
		arr := make([]interface{}, len(v.Array))
		for i, item := range v.Array {
			arr[i] = cborValueToGo(item)
		}
		return arr
	case cbor.KindMap:
		return attStatementToMap(v)
	case cbor.KindFloat:
		return v.Float
	default:
		return nil
	}
}
