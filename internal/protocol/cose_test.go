package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asgardeo/webauthncore/internal/protocol/cbor"
)

func encodeCBOR(t *testing.T, v cbor.Value) []byte {
	t.Helper()
	b, err := cbor.Encode(v)
	require.NoError(t, err)
	return b
}

func ec2KeyCBOR(t *testing.T, crv, alg int64, withAlg bool) []byte {
	t.Helper()
	pairs := []cbor.Pair{
		{Key: cbor.Uint(coseKeyKty), Value: cbor.Uint(uint64(coseKtyEC2))},
		{Key: cbor.NegInt(coseKeyCrv), Value: cbor.Uint(uint64(crv))},
		{Key: cbor.NegInt(coseKeyX), Value: cbor.Bytes(make([]byte, 32))},
		{Key: cbor.NegInt(coseKeyY), Value: cbor.Bytes(make([]byte, 32))},
	}
	if withAlg {
		pairs = append(pairs, cbor.Pair{Key: cbor.Uint(coseKeyAlg), Value: cbor.NegInt(alg)})
	}
	return encodeCBOR(t, cbor.Map(pairs...))
}

func TestParseCOSEKeyEC2InfersAlgorithm(t *testing.T) {
	testCases := []struct {
		name    string
		crv     int64
		wantAlg int64
	}{
		{"P-256", CurveP256, AlgES256},
		{"P-384", CurveP384, AlgES384},
		{"P-521", CurveP521, AlgES512},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data := ec2KeyCBOR(t, tc.crv, 0, false)
			key, err := ParseCOSEKey(data)
			require.NoError(t, err)
			assert.Equal(t, VariantEC2, key.Variant)
			assert.Equal(t, tc.wantAlg, key.Algorithm)
		})
	}
}

func TestParseCOSEKeyEC2DeclaredAlgorithmWins(t *testing.T) {
	data := ec2KeyCBOR(t, CurveP256, AlgES384, true)
	key, err := ParseCOSEKey(data)
	require.NoError(t, err)
	assert.Equal(t, AlgES384, key.Algorithm)
}

func TestParseCOSEKeyEC2MissingField(t *testing.T) {
	data := encodeCBOR(t, cbor.Map(
		cbor.Pair{Key: cbor.Uint(coseKeyKty), Value: cbor.Uint(uint64(coseKtyEC2))},
		cbor.Pair{Key: cbor.NegInt(coseKeyCrv), Value: cbor.Uint(uint64(CurveP256))},
		// x missing
	))
	_, err := ParseCOSEKey(data)
	assert.Error(t, err)
}

func TestParseCOSEKeyRSA(t *testing.T) {
	data := encodeCBOR(t, cbor.Map(
		cbor.Pair{Key: cbor.Uint(coseKeyKty), Value: cbor.Uint(uint64(coseKtyRSA))},
		cbor.Pair{Key: cbor.NegInt(coseKeyN), Value: cbor.Bytes(make([]byte, 256))},
		cbor.Pair{Key: cbor.NegInt(coseKeyE), Value: cbor.Bytes([]byte{0x01, 0x00, 0x01})},
	))
	key, err := ParseCOSEKey(data)
	require.NoError(t, err)
	assert.Equal(t, VariantRSA, key.Variant)
	assert.Equal(t, AlgRS256, key.Algorithm)
}

func TestParseCOSEKeyOKPEd25519(t *testing.T) {
	data := encodeCBOR(t, cbor.Map(
		cbor.Pair{Key: cbor.Uint(coseKeyKty), Value: cbor.Uint(uint64(coseKtyOKP))},
		cbor.Pair{Key: cbor.NegInt(coseKeyCrv), Value: cbor.Uint(uint64(CurveEd25519))},
		cbor.Pair{Key: cbor.NegInt(coseKeyX), Value: cbor.Bytes(make([]byte, 32))},
	))
	key, err := ParseCOSEKey(data)
	require.NoError(t, err)
	assert.Equal(t, VariantOKP, key.Variant)
	assert.Equal(t, AlgEdDSA, key.Algorithm)
}

func TestParseCOSEKeyUnsupportedKeyType(t *testing.T) {
	data := encodeCBOR(t, cbor.Map(
		cbor.Pair{Key: cbor.Uint(coseKeyKty), Value: cbor.Uint(99)},
	))
	_, err := ParseCOSEKey(data)
	assert.Error(t, err)
}

func TestParseCOSEKeyMissingKty(t *testing.T) {
	data := encodeCBOR(t, cbor.Map())
	_, err := ParseCOSEKey(data)
	assert.Error(t, err)
}

func TestParseCOSEKeyUnknownCurve(t *testing.T) {
	data := ec2KeyCBOR(t, 99, 0, false)
	_, err := ParseCOSEKey(data)
	assert.Error(t, err)
}

func TestCOSEKeyPublicKeyConversion(t *testing.T) {
	data := ec2KeyCBOR(t, CurveP256, 0, false)
	key, err := ParseCOSEKey(data)
	require.NoError(t, err)

	pub, err := key.PublicKey()
	require.NoError(t, err)
	assert.NotNil(t, pub)
}

func TestCOSEKeyPublicKeyOKPRejectsShortX(t *testing.T) {
	key := &COSEKey{Variant: VariantOKP, Algorithm: AlgEdDSA, OKP: OKPPublicKey{X: make([]byte, 16)}}
	_, err := key.PublicKey()
	assert.Error(t, err)
}
