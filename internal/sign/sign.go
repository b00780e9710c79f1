// Package sign implements GXT's content addressing and domain-separated
// signature: the BLAKE3 id hash and Ed25519 signature computed over a
// record's canonical preimage.
package sign

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"

	"lukechampine.com/blake3"
)

// DomainPrefix is prepended to the canonical preimage before signing so
// that a GXT signing key can never be coaxed into producing a signature
// interpretable by another protocol that happens to share the same key.
const DomainPrefix = "GXT"

var (
	// ErrIdMismatch is returned when a token's recomputed content hash
	// differs from its carried id field.
	ErrIdMismatch = errors.New("gxt/sign: content hash does not match id")

	// ErrBadSignature is returned when Ed25519 verification fails.
	ErrBadSignature = errors.New("gxt/sign: signature verification failed")
)

// ContentAddress computes the 32-byte BLAKE3 content address of a
// preimage.
func ContentAddress(preimage []byte) [32]byte {
	return blake3.Sum256(preimage)
}

// SignPreimage signs "GXT" || preimage with an Ed25519 private key built
// from a 32-byte seed.
func SignPreimage(signingSecretSeed [32]byte, preimage []byte) [64]byte {
	priv := ed25519.NewKeyFromSeed(signingSecretSeed[:])
	sig := ed25519.Sign(priv, domainSeparated(preimage))

	var out [64]byte
	copy(out[:], sig)
	return out
}

// VerifySignature checks an Ed25519 signature over "GXT" || preimage
// against a verification key.
func VerifySignature(verificationKey []byte, preimage []byte, signature []byte) bool {
	return ed25519.Verify(verificationKey, domainSeparated(preimage), signature)
}

// VerifyContentAddress recomputes the BLAKE3 digest of preimage and
// compares it with id, returning ErrIdMismatch on any difference.
func VerifyContentAddress(id []byte, preimage []byte) error {
	want := ContentAddress(preimage)
	if !bytes.Equal(id, want[:]) {
		return fmt.Errorf("%w: got %x, want %x", ErrIdMismatch, id, want)
	}
	return nil
}

func domainSeparated(preimage []byte) []byte {
	out := make([]byte, 0, len(DomainPrefix)+len(preimage))
	out = append(out, DomainPrefix...)
	out = append(out, preimage...)
	return out
}
