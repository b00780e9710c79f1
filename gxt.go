// Package gxt implements the Game Exchange Token format: a compact,
// signed, content-addressed token for sharing public keys (an ID card) or
// an end-to-end encrypted payload (a Message) between two parties over any
// out-of-band channel.
//
// The package is a pure library: every operation is a function of its
// inputs and, for key generation and message encryption, the system
// randomness source. Nothing here touches a filesystem, clock, or network.
package gxt

import (
	"encoding/hex"

	"github.com/game-exchange-token/gxt/internal/codec"
)

// EnvelopeView is the structured result of Verify and Decrypt: every
// byte field surfaced as lowercase hex, payload left as-decoded (the
// opaque encryption envelope for an unopened Message, the plaintext
// value once Decrypt has run).
type EnvelopeView struct {
	Version         uint64      `json:"version"`
	VerificationKey string      `json:"verification_key"`
	EncryptionKey   string      `json:"encryption_key"`
	Kind            string      `json:"kind"`
	Payload         interface{} `json:"payload"`
	Parent          *string     `json:"parent"`
	ID              string      `json:"id"`
	Signature       string      `json:"signature"`
}

// Kind constants mirror the token record's `kind` discriminant.
const (
	KindIDCard  = codec.KindIDCard
	KindMessage = codec.KindMessage
)

func viewFromRecord(r *codec.Record) *EnvelopeView {
	v := &EnvelopeView{
		Version:         r.Version,
		VerificationKey: hex.EncodeToString(r.VerificationKey),
		EncryptionKey:   hex.EncodeToString(r.EncryptionKey),
		Kind:            r.Kind,
		Payload:         r.Payload,
		ID:              hex.EncodeToString(r.ID),
		Signature:       hex.EncodeToString(r.Signature),
	}
	if len(r.Parent) > 0 {
		p := hex.EncodeToString(r.Parent)
		v.Parent = &p
	}
	return v
}
