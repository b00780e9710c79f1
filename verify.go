package gxt

import (
	"fmt"

	"github.com/game-exchange-token/gxt/internal/codec"
	"github.com/game-exchange-token/gxt/internal/envelope"
	"github.com/game-exchange-token/gxt/internal/sign"
)

// Verify parses a token string, enforces every shape invariant, and checks
// its content address and signature. It never decrypts: for a Message the
// returned payload is the opaque encryption envelope.
//
// This is the one-way state machine of the token grammar: strip prefix,
// decompress, base58-decode, decode the tuple, check shape, recompute id,
// verify signature. Each step's failure carries its own error discriminant.
func Verify(token string) (*EnvelopeView, error) {
	view, _, err := verifyToRecord(token)
	return view, err
}

// Decrypt verifies token, then opens its encryption envelope using
// recipientKeyToken's derived encryption secret, replacing payload in the
// returned view with the decoded plaintext. Signature verification always
// precedes decryption: a caller never observes decrypted bytes unless the
// outer signature already checked out.
func Decrypt(token string, recipientKeyToken string) (*EnvelopeView, error) {
	view, r, err := verifyToRecord(token)
	if err != nil {
		return nil, err
	}
	if r.Kind != codec.KindMessage {
		return nil, fmt.Errorf("%w: token has kind %q, want %q", ErrWrongKind, r.Kind, codec.KindMessage)
	}

	secret, err := parseKeyToken(recipientKeyToken)
	if err != nil {
		return nil, err
	}

	env, err := envelope.FromValue(r.Payload)
	if err != nil {
		return nil, err
	}

	recipientEncSecret := secret.DeriveEncryptionSecret()
	recipientEK := recipientEncSecret.PublicKey()

	plaintext, err := envelope.Open([32]byte(recipientEncSecret), recipientEK, env)
	if err != nil {
		return nil, err
	}

	payload, err := codec.DecodeValue(plaintext)
	if err != nil {
		return nil, err
	}

	view.Payload = payload
	return view, nil
}

// verifyToRecord runs the full decode/verify pipeline and returns both the
// hex-rendered view and the underlying record, so callers that need raw
// key bytes (Decrypt, recipientEncryptionKey) don't have to re-decode hex.
func verifyToRecord(token string) (*EnvelopeView, *codec.Record, error) {
	prefix, canonical, err := codec.DecodeToken(token)
	if err != nil {
		return nil, nil, err
	}
	if prefix == codec.PrefixKeyBundle {
		return nil, nil, fmt.Errorf("%w: %q is a key bundle token, not a record", ErrWrongKind, prefix)
	}

	r, err := codec.DecodeCanonical(canonical)
	if err != nil {
		return nil, nil, err
	}

	if err := codec.ValidateShape(r); err != nil {
		return nil, nil, err
	}

	preimage, err := codec.Preimage(r)
	if err != nil {
		return nil, nil, err
	}

	if err := sign.VerifyContentAddress(r.ID, preimage); err != nil {
		return nil, nil, err
	}
	if !sign.VerifySignature(r.VerificationKey, preimage, r.Signature) {
		return nil, nil, sign.ErrBadSignature
	}

	return viewFromRecord(r), r, nil
}
