package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/mr-tron/base58"
)

// Scheme prefixes. Encoders only ever emit the kind-specific tags; the
// legacy unified tag is accepted on decode for backward compatibility.
const (
	PrefixKeyBundle = "gxk"
	PrefixIDCard    = "gxi"
	PrefixMessage   = "gxm"
	PrefixLegacy    = "gxt"
)

const (
	brotliQuality  = 5
	brotliWindow   = 20
)

var (
	// ErrBadPrefix is returned when a token is missing its scheme prefix or
	// carries one this implementation does not recognize.
	ErrBadPrefix = errors.New("gxt/codec: missing or unrecognized token prefix")

	// ErrBadBase58 is returned when the token body fails to base58-decode.
	ErrBadBase58 = errors.New("gxt/codec: invalid base58 body")

	// ErrBadCompression is returned when the decoded body fails to
	// decompress as a Brotli stream.
	ErrBadCompression = errors.New("gxt/codec: invalid brotli stream")
)

// validPrefixes is the set of scheme tags DecodeToken accepts.
var validPrefixes = map[string]bool{
	PrefixKeyBundle: true,
	PrefixIDCard:    true,
	PrefixMessage:   true,
	PrefixLegacy:    true,
}

// EncodeToken wraps canonical bytes as `prefix ":" base58btc(brotli(canonical))`.
func EncodeToken(prefix string, canonical []byte) (string, error) {
	compressed, err := compress(canonical)
	if err != nil {
		return "", fmt.Errorf("gxt/codec: compress token: %w", err)
	}
	return prefix + ":" + base58.Encode(compressed), nil
}

// DecodeToken splits a token string into its scheme prefix and decompressed
// canonical bytes. It does not interpret the canonical bytes.
func DecodeToken(token string) (prefix string, canonical []byte, err error) {
	idx := strings.IndexByte(token, ':')
	if idx <= 0 {
		return "", nil, ErrBadPrefix
	}

	prefix = token[:idx]
	if !validPrefixes[prefix] {
		return "", nil, fmt.Errorf("%w: %q", ErrBadPrefix, prefix)
	}

	body := token[idx+1:]
	if body == "" {
		return "", nil, ErrBadBase58
	}

	compressed, err := base58.Decode(body)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadBase58, err)
	}

	canonical, err = decompress(compressed)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadCompression, err)
	}
	if len(canonical) > MaxCanonicalSize {
		return "", nil, ErrTokenTooLarge
	}

	return prefix, canonical, nil
}

func compress(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterOptions(&buf, brotli.WriterOptions{
		Quality: brotliQuality,
		LGWin:   brotliWindow,
	})
	if _, err := w.Write(b); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(b []byte) ([]byte, error) {
	out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	return out, nil
}
