package protocol

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"math/big"

	"github.com/asgardeo/webauthncore/internal/protocol/cbor"
	"github.com/asgardeo/webauthncore/internal/serviceerror"
)

// COSE key type values (map key 1).
const (
	coseKtyOKP int64 = 1
	coseKtyEC2 int64 = 2
	coseKtyRSA int64 = 3
)

// COSE general key map keys.
const (
	coseKeyKty = 1
	coseKeyAlg = 3
)

// COSE EC2/OKP key map keys.
const (
	coseKeyCrv = -1
	coseKeyX   = -2
	coseKeyY   = -3
)

// COSE RSA key map keys.
const (
	coseKeyN = -1
	coseKeyE = -2
)

// COSE curve identifiers (map key -1 for EC2/OKP).
const (
	CurveP256    int64 = 1
	CurveP384    int64 = 2
	CurveP521    int64 = 3
	CurveEd25519 int64 = 6
)

// COSE algorithm identifiers, per RFC 8152 §8 and RFC 8230.
const (
	AlgES256 int64 = -7
	AlgES384 int64 = -35
	AlgES512 int64 = -36
	AlgRS256 int64 = -257
	AlgRS384 int64 = -258
	AlgRS512 int64 = -259
	AlgPS256 int64 = -37
	AlgPS384 int64 = -38
	AlgPS512 int64 = -39
	AlgEdDSA int64 = -8
)

// COSEKeyVariant tags which of the three public-key shapes a COSEKey holds.
type COSEKeyVariant int

// Recognised COSE key variants.
const (
	VariantEC2 COSEKeyVariant = iota
	VariantRSA
	VariantOKP
)

// EC2PublicKey is an elliptic-curve key in (x, y) affine coordinates.
type EC2PublicKey struct {
	Curve int64
	X, Y  []byte
}

// RSAPublicKey is an RSA key as big-endian modulus and exponent.
type RSAPublicKey struct {
	N, E []byte
}

// OKPPublicKey is an octet key pair (Ed25519 in practice).
type OKPPublicKey struct {
	Curve int64
	X     []byte
}

// COSEKey is a parsed COSE_Key map, tagged by variant rather than by an
// inheritance hierarchy so callers switch on Variant once.
type COSEKey struct {
	Variant   COSEKeyVariant
	Algorithm int64
	EC2       EC2PublicKey
	RSA       RSAPublicKey
	OKP       OKPPublicKey
}

// ParseCOSEKey decodes a CBOR-encoded COSE_Key map into a tagged COSEKey,
// inferring the algorithm when the map omits it.
func ParseCOSEKey(data []byte) (*COSEKey, error) {
	val, err := cbor.Decode(data)
	if err != nil {
		return nil, &serviceError{serviceerror.ErrorCborDecode}
	}
	return coseKeyFromValue(val)
}

// coseKeyFromValue parses an already-decoded CBOR map into a COSEKey, so
// callers that parse a COSE key as a prefix of a larger buffer (attested
// credential data) don't need to re-decode.
func coseKeyFromValue(val cbor.Value) (*COSEKey, error) {
	if val.Kind != cbor.KindMap {
		return nil, &serviceError{serviceerror.ErrorCoseMissingKty}
	}

	ktyVal, ok := val.MapGetInt(coseKeyKty)
	if !ok {
		return nil, &serviceError{serviceerror.ErrorCoseMissingKty}
	}
	kty, ok := ktyVal.Int64()
	if !ok {
		return nil, &serviceError{serviceerror.ErrorCoseMissingKty}
	}

	var declaredAlg int64
	if algVal, ok := val.MapGetInt(coseKeyAlg); ok {
		declaredAlg, _ = algVal.Int64()
	}

	switch kty {
	case coseKtyEC2:
		return parseEC2(val, declaredAlg)
	case coseKtyRSA:
		return parseRSA(val, declaredAlg)
	case coseKtyOKP:
		return parseOKP(val, declaredAlg)
	default:
		return nil, &serviceError{serviceerror.ErrorCoseUnsupportedKeyType}
	}
}

func parseEC2(m cbor.Value, declaredAlg int64) (*COSEKey, error) {
	crvVal, ok := m.MapGetInt(coseKeyCrv)
	if !ok {
		return nil, &serviceError{serviceerror.ErrorCoseEC2Invalid}
	}
	crv, ok := crvVal.Int64()
	if !ok {
		return nil, &serviceError{serviceerror.ErrorCoseEC2Invalid}
	}
	xVal, ok := m.MapGetInt(coseKeyX)
	if !ok || xVal.Kind != cbor.KindBytes {
		return nil, &serviceError{serviceerror.ErrorCoseEC2Invalid}
	}
	yVal, ok := m.MapGetInt(coseKeyY)
	if !ok || yVal.Kind != cbor.KindBytes {
		return nil, &serviceError{serviceerror.ErrorCoseEC2Invalid}
	}

	alg := declaredAlg
	if alg == 0 {
		switch crv {
		case CurveP256:
			alg = AlgES256
		case CurveP384:
			alg = AlgES384
		case CurveP521:
			alg = AlgES512
		default:
			return nil, &serviceError{serviceerror.ErrorCoseUnknownAlgorithm}
		}
	}

	return &COSEKey{
		Variant:   VariantEC2,
		Algorithm: alg,
		EC2:       EC2PublicKey{Curve: crv, X: xVal.Bytes, Y: yVal.Bytes},
	}, nil
}

func parseRSA(m cbor.Value, declaredAlg int64) (*COSEKey, error) {
	nVal, ok := m.MapGetInt(coseKeyN)
	if !ok || nVal.Kind != cbor.KindBytes {
		return nil, &serviceError{serviceerror.ErrorCoseRSAInvalid}
	}
	eVal, ok := m.MapGetInt(coseKeyE)
	if !ok || eVal.Kind != cbor.KindBytes {
		return nil, &serviceError{serviceerror.ErrorCoseRSAInvalid}
	}

	alg := declaredAlg
	if alg == 0 {
		alg = AlgRS256
	}

	return &COSEKey{
		Variant:   VariantRSA,
		Algorithm: alg,
		RSA:       RSAPublicKey{N: nVal.Bytes, E: eVal.Bytes},
	}, nil
}

func parseOKP(m cbor.Value, declaredAlg int64) (*COSEKey, error) {
	crvVal, ok := m.MapGetInt(coseKeyCrv)
	if !ok {
		return nil, &serviceError{serviceerror.ErrorCoseOKPInvalid}
	}
	crv, ok := crvVal.Int64()
	if !ok {
		return nil, &serviceError{serviceerror.ErrorCoseOKPInvalid}
	}
	xVal, ok := m.MapGetInt(coseKeyX)
	if !ok || xVal.Kind != cbor.KindBytes {
		return nil, &serviceError{serviceerror.ErrorCoseOKPInvalid}
	}

	alg := declaredAlg
	if alg == 0 {
		switch crv {
		case CurveEd25519:
			alg = AlgEdDSA
		default:
			return nil, &serviceError{serviceerror.ErrorCoseUnknownAlgorithm}
		}
	}

	return &COSEKey{
		Variant:   VariantOKP,
		Algorithm: alg,
		OKP:       OKPPublicKey{Curve: crv, X: xVal.Bytes},
	}, nil
}

// PublicKey converts the tagged COSEKey into a concrete crypto.PublicKey
// usable with the standard library's verification functions.
func (k *COSEKey) PublicKey() (crypto.PublicKey, error) {
	switch k.Variant {
	case VariantEC2:
		curve, err := ellipticCurve(k.EC2.Curve)
		if err != nil {
			return nil, err
		}
		return &ecdsa.PublicKey{
			Curve: curve,
			X:     new(big.Int).SetBytes(k.EC2.X),
			Y:     new(big.Int).SetBytes(k.EC2.Y),
		}, nil
	case VariantRSA:
		e := new(big.Int).SetBytes(k.RSA.E)
		return &rsa.PublicKey{
			N: new(big.Int).SetBytes(k.RSA.N),
			E: int(e.Int64()),
		}, nil
	case VariantOKP:
		if len(k.OKP.X) != ed25519.PublicKeySize {
			return nil, &serviceError{serviceerror.ErrorCoseOKPInvalid}
		}
		return ed25519.PublicKey(k.OKP.X), nil
	default:
		return nil, &serviceError{serviceerror.ErrorCoseUnsupportedKeyType}
	}
}

func ellipticCurve(crv int64) (elliptic.Curve, error) {
	switch crv {
	case CurveP256:
		return elliptic.P256(), nil
	case CurveP384:
		return elliptic.P384(), nil
	case CurveP521:
		return elliptic.P521(), nil
	default:
		return nil, &serviceError{serviceerror.ErrorCoseEC2Invalid}
	}
}
