// Package codec implements GXT's canonical binary encoding: a deterministic,
// bit-exact serialization of the eight-field token record, plus the outer
// prefix/compress/base58 string form tokens are transported as.
package codec

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

const (
	// CurrentVersion is the only record version this implementation emits
	// or accepts outside of decode-time version checks.
	CurrentVersion = 1

	// MaxCanonicalSize is the pre-compression canonical size ceiling.
	MaxCanonicalSize = 64 * 1024

	// KeySize is the length in bytes of every public key and the id field.
	KeySize = 32

	// SignatureSize is the length in bytes of an Ed25519 signature.
	SignatureSize = 64
)

// Kind discriminates an ID card from a Message.
const (
	KindIDCard  = "id"
	KindMessage = "msg"
)

var (
	// ErrTokenTooLarge is returned when a canonical record exceeds
	// MaxCanonicalSize, at encode or decode time.
	ErrTokenTooLarge = errors.New("gxt/codec: canonical record exceeds 64 KiB")

	// ErrBadCanonical is returned when the canonical binary form fails to
	// decode, or decodes to the wrong arity.
	ErrBadCanonical = errors.New("gxt/codec: malformed canonical record")

	// ErrBadShape is returned when a decoded record violates one of the
	// field length/value invariants from spec section 3.
	ErrBadShape = errors.New("gxt/codec: record field fails shape invariant")

	// ErrVersionUnsupported is returned when a record's version field is
	// not CurrentVersion.
	ErrVersionUnsupported = errors.New("gxt/codec: unsupported record version")
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("gxt/codec: building canonical encoder: %v", err))
	}
	encMode = em

	dm, err := cbor.DecOptions{
		DupMapKey:      cbor.DupMapKeyEnforcedAPF,
		DefaultMapType: reflect.TypeOf(map[string]interface{}(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("gxt/codec: building decoder: %v", err))
	}
	decMode = dm
}

// EncodeValue canonically encodes an arbitrary opaque value -- a JSON-like
// map/array/string/number/bool/null, or a concrete wire struct such as the
// encryption envelope. This is the same canonical encoding used for AEAD
// plaintext, separate from the eight-field record it also applies to.
func EncodeValue(v interface{}) ([]byte, error) {
	b, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("gxt/codec: encode value: %w", err)
	}
	return b, nil
}

// DecodeValue decodes canonical bytes produced by EncodeValue into a
// generic value (map[string]interface{}/[]interface{}/string/number/bool/nil).
func DecodeValue(b []byte) (interface{}, error) {
	var v interface{}
	if err := decMode.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCanonical, err)
	}
	return v, nil
}

// Record is the eight-field GXT token tuple. The `,toarray` tag makes
// fxamacker/cbor emit it as a fixed-arity CBOR array keyed by field order,
// not a map, so the wire form never depends on key ordering -- the
// remaining source of non-determinism canonical CBOR has to rule out is
// map-key order, and arrays have none.
type Record struct {
	_ struct{} `cbor:",toarray"`

	Version         uint64
	VerificationKey []byte
	EncryptionKey   []byte
	Kind            string
	Payload         interface{}
	Parent          []byte
	ID              []byte
	Signature       []byte
}

// EncodeCanonical serializes r to its canonical binary form.
func EncodeCanonical(r *Record) ([]byte, error) {
	b, err := encMode.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("gxt/codec: encode record: %w", err)
	}
	if len(b) > MaxCanonicalSize {
		return nil, ErrTokenTooLarge
	}
	return b, nil
}

// DecodeCanonical parses the canonical binary form of a record.
func DecodeCanonical(b []byte) (*Record, error) {
	if len(b) > MaxCanonicalSize {
		return nil, ErrTokenTooLarge
	}
	var r Record
	if err := decMode.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCanonical, err)
	}
	return &r, nil
}

// Preimage returns the canonical encoding of r with ID and Signature
// blanked -- the bytes that get content-addressed and signed. Parent is
// preserved as-is: it is part of the signed preimage, so a signature
// commits to the chain link along with everything else.
func Preimage(r *Record) ([]byte, error) {
	clone := *r
	clone.ID = nil
	clone.Signature = nil
	return EncodeCanonical(&clone)
}

// ValidateShape checks the length/value invariants of a fully-populated
// record (post-signing): version, key sizes, kind, and parent/id/signature
// lengths.
func ValidateShape(r *Record) error {
	if r.Version != CurrentVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrVersionUnsupported, r.Version, CurrentVersion)
	}
	if len(r.VerificationKey) != KeySize {
		return fmt.Errorf("%w: verification_key: want %d bytes, got %d", ErrBadShape, KeySize, len(r.VerificationKey))
	}
	if len(r.EncryptionKey) != KeySize {
		return fmt.Errorf("%w: encryption_key: want %d bytes, got %d", ErrBadShape, KeySize, len(r.EncryptionKey))
	}
	if r.Kind != KindIDCard && r.Kind != KindMessage {
		return fmt.Errorf("%w: kind: unrecognized value %q", ErrBadShape, r.Kind)
	}
	if len(r.Parent) != 0 && len(r.Parent) != KeySize {
		return fmt.Errorf("%w: parent: want 0 or %d bytes, got %d", ErrBadShape, KeySize, len(r.Parent))
	}
	if len(r.ID) != KeySize {
		return fmt.Errorf("%w: id: want %d bytes, got %d", ErrBadShape, KeySize, len(r.ID))
	}
	if len(r.Signature) != SignatureSize {
		return fmt.Errorf("%w: signature: want %d bytes, got %d", ErrBadShape, SignatureSize, len(r.Signature))
	}
	return nil
}

// KeyBundle is the one-element tuple `[signing_secret]` used by the `gxk`
// prefix, letting a signing key itself round-trip through the token
// pipeline.
type KeyBundle struct {
	_             struct{} `cbor:",toarray"`
	SigningSecret []byte
}

// EncodeKeyBundleCanonical serializes a key bundle to its canonical form.
func EncodeKeyBundleCanonical(secret []byte) ([]byte, error) {
	b, err := encMode.Marshal(&KeyBundle{SigningSecret: secret})
	if err != nil {
		return nil, fmt.Errorf("gxt/codec: encode key bundle: %w", err)
	}
	return b, nil
}

// DecodeKeyBundleCanonical parses a canonical key bundle and validates its
// single field is exactly 32 bytes.
func DecodeKeyBundleCanonical(b []byte) ([]byte, error) {
	var kb KeyBundle
	if err := decMode.Unmarshal(b, &kb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCanonical, err)
	}
	if len(kb.SigningSecret) != KeySize {
		return nil, fmt.Errorf("%w: signing_secret: want %d bytes, got %d", ErrBadShape, KeySize, len(kb.SigningSecret))
	}
	return kb.SigningSecret, nil
}
