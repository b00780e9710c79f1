// Package envelope implements GXT's hybrid AEAD: an X25519 Diffie-Hellman
// exchange between sender and recipient, a BLAKE3-derived symmetric key, and
// XChaCha20-Poly1305 sealing/opening of a single opaque payload.
//
// Both sides use their long-term derived encryption keys rather than an
// ephemeral sender keypair: only the nonce is generated fresh per call.
package envelope

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
	"lukechampine.com/blake3"
)

const (
	// KeySize is the size of an X25519 key in bytes.
	KeySize = 32

	// NonceSize is the size of an XChaCha20-Poly1305 nonce in bytes.
	NonceSize = 24

	// Algorithm is the constant algorithm tag carried in every envelope.
	Algorithm = "xchacha20poly1305"

	aeadKeyContext = "GXT-ENC-XCHACHA20POLY1305"
)

var (
	// ErrInvalidEnvelope is returned when a decoded payload does not match
	// the {to, from, alg, n24, ct} shape or carries an unrecognized alg.
	ErrInvalidEnvelope = errors.New("gxt/envelope: payload is not a valid encryption envelope")

	// ErrDecryptionFailed is returned when the AEAD tag fails to verify.
	ErrDecryptionFailed = errors.New("gxt/envelope: AEAD authentication failed")

	// ErrWrongRecipient is returned when the caller's encryption public key
	// does not match the envelope's "to" field.
	ErrWrongRecipient = errors.New("gxt/envelope: recipient key does not match envelope")

	errLowOrderPoint = errors.New("gxt/envelope: low-order X25519 point")
)

// Envelope is the wire shape that replaces a Message's payload field.
type Envelope struct {
	To   []byte `cbor:"to"`
	From []byte `cbor:"from"`
	Alg  string `cbor:"alg"`
	N24  []byte `cbor:"n24"`
	CT   []byte `cbor:"ct"`
}

// Seal encrypts plaintext from senderSecret to recipientPublic, generating a
// fresh random nonce. The caller supplies senderPublic (the sender's own
// long-term encryption public key) so it can be recorded in the envelope's
// "from" field without recomputing it here.
func Seal(senderSecret [KeySize]byte, senderPublic [KeySize]byte, recipientPublic [KeySize]byte, plaintext []byte) (*Envelope, error) {
	shared, err := computeECDH(senderSecret, recipientPublic)
	if err != nil {
		return nil, err
	}

	key := deriveAEADKey(shared)

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("gxt/envelope: generate nonce: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, fmt.Errorf("gxt/envelope: build cipher: %w", err)
	}

	ct := aead.Seal(nil, nonce, plaintext, nil)

	return &Envelope{
		To:   append([]byte(nil), recipientPublic[:]...),
		From: append([]byte(nil), senderPublic[:]...),
		Alg:  Algorithm,
		N24:  nonce,
		CT:   ct,
	}, nil
}

// Open decrypts env using recipientSecret. recipientPublic must be the
// recipient's own long-term encryption public key; if it does not match
// env.To, Open fails with ErrWrongRecipient without attempting the AEAD
// open, so a wrong-recipient decrypt never exercises the cipher at all.
func Open(recipientSecret [KeySize]byte, recipientPublic [KeySize]byte, env *Envelope) ([]byte, error) {
	if err := ValidateShape(env); err != nil {
		return nil, err
	}

	if !bytesEqual(env.To, recipientPublic[:]) {
		return nil, ErrWrongRecipient
	}

	var senderPublic [KeySize]byte
	copy(senderPublic[:], env.From)

	shared, err := computeECDH(recipientSecret, senderPublic)
	if err != nil {
		return nil, err
	}

	key := deriveAEADKey(shared)

	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, fmt.Errorf("gxt/envelope: build cipher: %w", err)
	}

	plaintext, err := aead.Open(nil, env.N24, env.CT, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// ValidateShape checks the length/value invariants of an envelope's fields.
func ValidateShape(env *Envelope) error {
	if env == nil {
		return ErrInvalidEnvelope
	}
	if len(env.To) != KeySize || len(env.From) != KeySize {
		return fmt.Errorf("%w: to/from must be %d bytes", ErrInvalidEnvelope, KeySize)
	}
	if env.Alg != Algorithm {
		return fmt.Errorf("%w: unsupported alg %q", ErrInvalidEnvelope, env.Alg)
	}
	if len(env.N24) != NonceSize {
		return fmt.Errorf("%w: n24 must be %d bytes", ErrInvalidEnvelope, NonceSize)
	}
	if len(env.CT) == 0 {
		return fmt.Errorf("%w: ct is empty", ErrInvalidEnvelope)
	}
	return nil
}

// FromValue reinterprets a generically-decoded payload (a
// map[string]interface{}, as produced by codec.DecodeValue) as an Envelope,
// failing with ErrInvalidEnvelope on any shape mismatch.
func FromValue(v interface{}) (*Envelope, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, ErrInvalidEnvelope
	}

	env := &Envelope{}
	var ok2 bool

	if env.To, ok2 = m["to"].([]byte); !ok2 {
		return nil, fmt.Errorf("%w: missing or malformed \"to\"", ErrInvalidEnvelope)
	}
	if env.From, ok2 = m["from"].([]byte); !ok2 {
		return nil, fmt.Errorf("%w: missing or malformed \"from\"", ErrInvalidEnvelope)
	}
	if env.Alg, ok2 = m["alg"].(string); !ok2 {
		return nil, fmt.Errorf("%w: missing or malformed \"alg\"", ErrInvalidEnvelope)
	}
	if env.N24, ok2 = m["n24"].([]byte); !ok2 {
		return nil, fmt.Errorf("%w: missing or malformed \"n24\"", ErrInvalidEnvelope)
	}
	if env.CT, ok2 = m["ct"].([]byte); !ok2 {
		return nil, fmt.Errorf("%w: missing or malformed \"ct\"", ErrInvalidEnvelope)
	}

	if err := ValidateShape(env); err != nil {
		return nil, err
	}
	return env, nil
}

// computeECDH performs X25519 and rejects all-zero inputs/outputs, the same
// low-order-point guard internal/crypto/crypto.go's ComputeECDH used.
func computeECDH(secret, public [KeySize]byte) ([KeySize]byte, error) {
	var shared [KeySize]byte

	var zero [KeySize]byte
	if public == zero {
		return shared, fmt.Errorf("%w: zero public key", errLowOrderPoint)
	}

	curve25519.ScalarMult(&shared, &secret, &public)

	if shared == zero {
		return shared, fmt.Errorf("%w: zero shared secret", errLowOrderPoint)
	}
	return shared, nil
}

// deriveAEADKey derives the symmetric AEAD key from an ECDH shared secret
// via BLAKE3's keyed derive-key mode, domain-separated from other uses of
// the same shared secret.
func deriveAEADKey(shared [KeySize]byte) [KeySize]byte {
	var key [KeySize]byte
	blake3.DeriveKey(key[:], aeadKeyContext, shared[:])
	return key
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
