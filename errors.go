package gxt

import (
	"errors"

	"github.com/game-exchange-token/gxt/internal/codec"
	"github.com/game-exchange-token/gxt/internal/envelope"
	"github.com/game-exchange-token/gxt/internal/keys"
	"github.com/game-exchange-token/gxt/internal/sign"
)

// The 13 error discriminants of the token state machine. Each aliases the
// sentinel a lower layer already defines rather than redeclaring it, so
// errors.Is works against either the root package or the internal package
// that actually detected the failure.
var (
	ErrRandomnessUnavailable = keys.ErrRandomnessUnavailable
	ErrTokenTooLarge         = codec.ErrTokenTooLarge
	ErrBadPrefix             = codec.ErrBadPrefix
	ErrBadBase58             = codec.ErrBadBase58
	ErrBadCompression        = codec.ErrBadCompression
	ErrBadCanonical          = codec.ErrBadCanonical
	ErrBadShape              = codec.ErrBadShape
	ErrVersionUnsupported    = codec.ErrVersionUnsupported
	ErrIdMismatch            = sign.ErrIdMismatch
	ErrBadSignature          = sign.ErrBadSignature
	ErrWrongRecipient        = envelope.ErrWrongRecipient
	ErrInvalidEnvelope       = envelope.ErrInvalidEnvelope
	ErrDecryptionFailed      = envelope.ErrDecryptionFailed

	// ErrWrongKind is returned when decrypt is requested on a token whose
	// kind is not "msg", or when a builder is handed a token of the wrong
	// kind (e.g. make_message given a non-ID-card recipient token).
	ErrWrongKind = errors.New("gxt: token kind does not match the requested operation")
)
