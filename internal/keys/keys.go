// Package keys implements GXT's key primitives: generating a signing
// secret and deterministically deriving the matching X25519 encryption
// keypair from it, so a holder only ever manages one secret.
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/curve25519"
	"lukechampine.com/blake3"
)

const (
	// SigningSecretSize is the size of an Ed25519 seed in bytes.
	SigningSecretSize = 32

	// VerificationKeySize is the size of an Ed25519 public key in bytes.
	VerificationKeySize = 32

	// EncryptionSecretSize is the size of a derived X25519 scalar in bytes.
	EncryptionSecretSize = 32

	// EncryptionKeySize is the size of an X25519 public key in bytes.
	EncryptionKeySize = 32

	// encryptionKeyContext domain-separates the encryption secret derived
	// from a signing secret from any other use of BLAKE3.derive_key on the
	// same key material.
	encryptionKeyContext = "GXT-ENC-X25519-FROM-ED25519"
)

// ErrRandomnessUnavailable is returned when the system randomness source
// fails while generating a signing secret.
var ErrRandomnessUnavailable = errors.New("gxt/keys: randomness source unavailable")

// ErrInvalidKeyLength is returned when a hex-decoded key is the wrong size.
var ErrInvalidKeyLength = errors.New("gxt/keys: invalid key length")

// SigningSecret is the sole long-term secret a GXT identity holds. The
// matching verification key is standard Ed25519 public-key derivation; the
// matching encryption keypair is a pure function of this secret (see
// DeriveEncryptionSecret) so holders never manage a second independent key.
type SigningSecret [SigningSecretSize]byte

// EncryptionSecret is an X25519 scalar deterministically derived from a
// SigningSecret. It has no independent existence: it is recomputed from the
// signing secret every time it is needed, never generated or stored on its
// own.
type EncryptionSecret [EncryptionSecretSize]byte

// GenerateSigningSecret samples a fresh 32-byte signing secret from a
// cryptographic random source.
func GenerateSigningSecret() (SigningSecret, error) {
	var s SigningSecret
	if _, err := io.ReadFull(rand.Reader, s[:]); err != nil {
		return SigningSecret{}, fmt.Errorf("%w: %v", ErrRandomnessUnavailable, err)
	}
	return s, nil
}

// ParseSigningSecret parses a signing secret from a hex string, tolerating
// a leading "0x"/"0X" and surrounding whitespace, for interop with tools
// that hand around raw key hex instead of a full token.
func ParseSigningSecret(s string) (SigningSecret, error) {
	b, err := decodeHexKey(s, SigningSecretSize)
	if err != nil {
		return SigningSecret{}, err
	}
	var out SigningSecret
	copy(out[:], b)
	return out, nil
}

// Hex returns the lowercase hex encoding of the signing secret. Callers
// export this deliberately (e.g. to build a gxk key bundle); it is not
// produced implicitly by String/logging paths.
func (s SigningSecret) Hex() string {
	return hex.EncodeToString(s[:])
}

// IsZero reports whether the secret is all zero bytes (uninitialized).
func (s SigningSecret) IsZero() bool {
	var zero SigningSecret
	return s == zero
}

// Zero overwrites the secret with zero bytes. Callers that hold a signing
// secret beyond a single call are responsible for zeroizing it; the core
// never retains a copy across calls.
func (s *SigningSecret) Zero() {
	for i := range s {
		s[i] = 0
	}
}

// VerificationPublicKey derives the Ed25519 verification (public) key for
// this signing secret.
func (s SigningSecret) VerificationPublicKey() [VerificationKeySize]byte {
	priv := ed25519.NewKeyFromSeed(s[:])
	pub := priv.Public().(ed25519.PublicKey)

	var out [VerificationKeySize]byte
	copy(out[:], pub)
	return out
}

// ed25519PrivateKey expands the 32-byte seed into the 64-byte form
// crypto/ed25519 signs with.
func (s SigningSecret) ed25519PrivateKey() ed25519.PrivateKey {
	return ed25519.NewKeyFromSeed(s[:])
}

// Sign produces an Ed25519 signature over message using this signing
// secret. Ed25519 signing is itself deterministic given (key, message), so
// this is pure and safe to call concurrently from multiple goroutines on
// the same secret.
func (s SigningSecret) Sign(message []byte) [64]byte {
	sig := ed25519.Sign(s.ed25519PrivateKey(), message)
	var out [64]byte
	copy(out[:], sig)
	return out
}

// DeriveEncryptionSecret computes the X25519 scalar bound to this signing
// secret: BLAKE3.derive_key(context, signingSecret), clamped per the X25519
// spec (clear bits 0/1/2 of byte 0, clear bit 7 and set bit 6 of byte 31).
// The domain string prevents the derived key from being reinterpreted
// under any other protocol, even if the signing secret is reused there.
func (s SigningSecret) DeriveEncryptionSecret() EncryptionSecret {
	var out EncryptionSecret
	blake3.DeriveKey(out[:], encryptionKeyContext, s[:])

	out[0] &= 248
	out[31] &= 127
	out[31] |= 64

	return out
}

// PublicKey computes the X25519 public key for this encryption secret via
// scalar multiplication with the standard base point.
func (e EncryptionSecret) PublicKey() [EncryptionKeySize]byte {
	var pub [EncryptionKeySize]byte
	curve25519.ScalarBaseMult(&pub, (*[32]byte)(&e))
	return pub
}

// Zero overwrites the encryption secret with zero bytes.
func (e *EncryptionSecret) Zero() {
	for i := range e {
		e[i] = 0
	}
}

// decodeHexKey trims whitespace and an optional 0x/0X prefix, then decodes
// exactly wantLen bytes of hex.
func decodeHexKey(s string, wantLen int) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")

	if len(s) != wantLen*2 {
		return nil, fmt.Errorf("%w: got %d hex chars, want %d", ErrInvalidKeyLength, len(s), wantLen*2)
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyLength, err)
	}
	return b, nil
}
