package gxt

import (
	"fmt"

	"github.com/game-exchange-token/gxt/internal/codec"
	"github.com/game-exchange-token/gxt/internal/envelope"
	"github.com/game-exchange-token/gxt/internal/keys"
	"github.com/game-exchange-token/gxt/internal/sign"
)

// MakeKey samples a fresh signing secret and returns it wrapped as a
// `gxk` key bundle token.
func MakeKey() (string, error) {
	secret, err := keys.GenerateSigningSecret()
	if err != nil {
		return "", err
	}
	return encodeKeyToken(secret)
}

// MakeIDCard builds an unencrypted ID card token: kind "id", payload meta
// (any JSON-like value, including nil), no parent.
func MakeIDCard(keyToken string, meta interface{}) (string, error) {
	secret, err := parseKeyToken(keyToken)
	if err != nil {
		return "", err
	}

	vk := secret.VerificationPublicKey()
	ek := secret.DeriveEncryptionSecret().PublicKey()

	r := &codec.Record{
		Version:         codec.CurrentVersion,
		VerificationKey: vk[:],
		EncryptionKey:   ek[:],
		Kind:            codec.KindIDCard,
		Payload:         meta,
	}

	token, err := signAndEncode(r, secret, codec.PrefixIDCard)
	if err != nil {
		return "", err
	}
	return token, nil
}

// MakeMessage builds an encrypted Message token addressed to the holder of
// recipientIDCard. parent is optional; pass nil for none.
func MakeMessage(keyToken string, recipientIDCard string, payload interface{}, parent []byte) (string, error) {
	secret, err := parseKeyToken(keyToken)
	if err != nil {
		return "", err
	}

	recipientEK, err := recipientEncryptionKey(recipientIDCard)
	if err != nil {
		return "", err
	}

	plaintext, err := codec.EncodeValue(payload)
	if err != nil {
		return "", err
	}

	senderEncSecret := secret.DeriveEncryptionSecret()
	senderEK := senderEncSecret.PublicKey()

	env, err := envelope.Seal([32]byte(senderEncSecret), senderEK, recipientEK, plaintext)
	if err != nil {
		return "", err
	}

	vk := secret.VerificationPublicKey()

	r := &codec.Record{
		Version:         codec.CurrentVersion,
		VerificationKey: vk[:],
		EncryptionKey:   senderEK[:],
		Kind:            codec.KindMessage,
		Payload:         env,
		Parent:          parent,
	}

	return signAndEncode(r, secret, codec.PrefixMessage)
}

// signAndEncode fills id and signature on r via CS, then emits it through
// CC with the given scheme prefix.
func signAndEncode(r *codec.Record, secret keys.SigningSecret, prefix string) (string, error) {
	preimage, err := codec.Preimage(r)
	if err != nil {
		return "", err
	}

	id := sign.ContentAddress(preimage)
	sig := sign.SignPreimage([32]byte(secret), preimage)

	r.ID = id[:]
	r.Signature = sig[:]

	canonical, err := codec.EncodeCanonical(r)
	if err != nil {
		return "", err
	}

	return codec.EncodeToken(prefix, canonical)
}

// encodeKeyToken wraps a signing secret as a `gxk` token.
func encodeKeyToken(secret keys.SigningSecret) (string, error) {
	canonical, err := codec.EncodeKeyBundleCanonical(secret[:])
	if err != nil {
		return "", err
	}
	return codec.EncodeToken(codec.PrefixKeyBundle, canonical)
}

// parseKeyToken accepts either a `gxk` key bundle token or raw 32-byte hex,
// per section 6's interop allowance.
func parseKeyToken(s string) (keys.SigningSecret, error) {
	if secret, err := keys.ParseSigningSecret(s); err == nil {
		return secret, nil
	}

	prefix, canonical, err := codec.DecodeToken(s)
	if err != nil {
		return keys.SigningSecret{}, err
	}
	if prefix != codec.PrefixKeyBundle {
		return keys.SigningSecret{}, fmt.Errorf("%w: %q is not a key bundle token", ErrWrongKind, prefix)
	}

	raw, err := codec.DecodeKeyBundleCanonical(canonical)
	if err != nil {
		return keys.SigningSecret{}, err
	}

	var secret keys.SigningSecret
	copy(secret[:], raw)
	return secret, nil
}

// recipientEncryptionKey decodes and verifies an ID card token and returns
// its encryption_key.
func recipientEncryptionKey(idToken string) ([32]byte, error) {
	var ek [32]byte

	view, r, err := verifyToRecord(idToken)
	if err != nil {
		return ek, err
	}
	if view.Kind != codec.KindIDCard {
		return ek, fmt.Errorf("%w: recipient token has kind %q, want %q", ErrWrongKind, view.Kind, codec.KindIDCard)
	}

	copy(ek[:], r.EncryptionKey)
	return ek, nil
}
