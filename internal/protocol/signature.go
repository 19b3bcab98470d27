package protocol

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"github.com/asgardeo/webauthncore/internal/serviceerror"
)

// VerifySignature checks signature over message against the given COSE
// public key, dispatching on the key's resolved algorithm. It returns
// (true, nil) on a valid signature, (false, nil) on an invalid one, and a
// non-nil error only for configuration problems (unsupported algorithm or
// key shape) — a failing cryptographic check never surfaces its cause.
func VerifySignature(key *COSEKey, message, signature []byte) (bool, error) {
	pub, err := key.PublicKey()
	if err != nil {
		return false, err
	}

	switch key.Algorithm {
	case AlgES256, AlgES384, AlgES512:
		ecdsaKey, ok := pub.(*ecdsa.PublicKey)
		if !ok {
			return false, wrapErr(serviceerror.ErrorUnsupportedAlgorithm)
		}
		h, err := hasherFor(key.Algorithm)
		if err != nil {
			return false, err
		}
		digest := sumHash(h, message)
		return ecdsa.VerifyASN1(ecdsaKey, digest, signature), nil

	case AlgRS256, AlgRS384, AlgRS512:
		rsaKey, ok := pub.(*rsa.PublicKey)
		if !ok {
			return false, wrapErr(serviceerror.ErrorUnsupportedAlgorithm)
		}
		cryptoHash, h, err := cryptoHasherFor(key.Algorithm)
		if err != nil {
			return false, err
		}
		digest := sumHash(h, message)
		err = rsa.VerifyPKCS1v15(rsaKey, cryptoHash, digest, signature)
		return err == nil, nil

	case AlgPS256, AlgPS384, AlgPS512:
		rsaKey, ok := pub.(*rsa.PublicKey)
		if !ok {
			return false, wrapErr(serviceerror.ErrorUnsupportedAlgorithm)
		}
		cryptoHash, h, err := cryptoHasherFor(pssBaseAlg(key.Algorithm))
		if err != nil {
			return false, err
		}
		digest := sumHash(h, message)
		err = rsa.VerifyPSS(rsaKey, cryptoHash, digest, signature, &rsa.PSSOptions{
			SaltLength: rsa.PSSSaltLengthEqualsHash,
			Hash:       cryptoHash,
		})
		return err == nil, nil

	case AlgEdDSA:
		edKey, ok := pub.(ed25519.PublicKey)
		if !ok || len(edKey) != ed25519.PublicKeySize {
			return false, wrapErr(serviceerror.ErrorUnsupportedAlgorithm)
		}
		return ed25519.Verify(edKey, message, signature), nil

	default:
		return false, wrapErr(serviceerror.ErrorUnsupportedAlgorithm)
	}
}

// pssBaseAlg maps a PS-family identifier to its RS-family counterpart so
// cryptoHasherFor can be shared between PKCS#1 v1.5 and PSS.
func pssBaseAlg(alg int64) int64 {
	switch alg {
	case AlgPS256:
		return AlgRS256
	case AlgPS384:
		return AlgRS384
	case AlgPS512:
		return AlgRS512
	default:
		return alg
	}
}

func hasherFor(alg int64) (hash.Hash, error) {
	switch alg {
	case AlgES256:
		return sha256.New(), nil
	case AlgES384:
		return sha512.New384(), nil
	case AlgES512:
		return sha512.New(), nil
	default:
		return nil, wrapErr(serviceerror.ErrorUnsupportedAlgorithm)
	}
}

func cryptoHasherFor(alg int64) (crypto.Hash, hash.Hash, error) {
	switch alg {
	case AlgRS256:
		return crypto.SHA256, sha256.New(), nil
	case AlgRS384:
		return crypto.SHA384, sha512.New384(), nil
	case AlgRS512:
		return crypto.SHA512, sha512.New(), nil
	default:
		return 0, nil, wrapErr(serviceerror.ErrorUnsupportedAlgorithm)
	}
}

func sumHash(h hash.Hash, message []byte) []byte {
	h.Write(message)
	return h.Sum(nil)
}
