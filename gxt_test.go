package gxt

import (
	"encoding/hex"
	"errors"
	"reflect"
	"testing"
)

func TestIDCardRoundTrip(t *testing.T) {
	k, err := MakeKey()
	if err != nil {
		t.Fatalf("MakeKey() error = %v", err)
	}

	tok, err := MakeIDCard(k, map[string]interface{}{"name": "Bob"})
	if err != nil {
		t.Fatalf("MakeIDCard() error = %v", err)
	}

	view, err := Verify(tok)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if view.Kind != KindIDCard {
		t.Errorf("Kind = %q, want %q", view.Kind, KindIDCard)
	}
	want := map[string]interface{}{"name": "Bob"}
	if !reflect.DeepEqual(view.Payload, want) {
		t.Errorf("Payload = %#v, want %#v", view.Payload, want)
	}
	if view.Parent != nil {
		t.Errorf("Parent = %v, want nil", view.Parent)
	}
}

func TestIDCardAcceptsNilMeta(t *testing.T) {
	k, err := MakeKey()
	if err != nil {
		t.Fatalf("MakeKey() error = %v", err)
	}
	tok, err := MakeIDCard(k, nil)
	if err != nil {
		t.Fatalf("MakeIDCard() error = %v", err)
	}
	view, err := Verify(tok)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if view.Payload != nil {
		t.Errorf("Payload = %#v, want nil", view.Payload)
	}
}

func TestEncryptedMessageRoundTrip(t *testing.T) {
	a, err := MakeKey()
	if err != nil {
		t.Fatalf("MakeKey() error = %v", err)
	}
	b, err := MakeKey()
	if err != nil {
		t.Fatalf("MakeKey() error = %v", err)
	}

	idb, err := MakeIDCard(b, map[string]interface{}{"name": "Bob"})
	if err != nil {
		t.Fatalf("MakeIDCard() error = %v", err)
	}

	m, err := MakeMessage(a, idb, map[string]interface{}{"hello": "world"}, nil)
	if err != nil {
		t.Fatalf("MakeMessage() error = %v", err)
	}

	if _, err := Verify(m); err != nil {
		t.Fatalf("Verify(m) error = %v", err)
	}

	view, err := Decrypt(m, b)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	want := map[string]interface{}{"hello": "world"}
	if !reflect.DeepEqual(view.Payload, want) {
		t.Errorf("Payload = %#v, want %#v", view.Payload, want)
	}
}

func TestDecryptWrongRecipientFails(t *testing.T) {
	a, _ := MakeKey()
	b, _ := MakeKey()
	c, _ := MakeKey()

	idb, err := MakeIDCard(b, map[string]interface{}{"name": "Bob"})
	if err != nil {
		t.Fatalf("MakeIDCard() error = %v", err)
	}
	m, err := MakeMessage(a, idb, map[string]interface{}{"hello": "world"}, nil)
	if err != nil {
		t.Fatalf("MakeMessage() error = %v", err)
	}

	if _, err := Decrypt(m, c); err == nil {
		t.Error("Decrypt() with wrong recipient = nil error, want WrongRecipient/DecryptionFailed")
	} else if !errors.Is(err, ErrWrongRecipient) && !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Decrypt() error = %v, want ErrWrongRecipient or ErrDecryptionFailed", err)
	}
}

func TestParentChain(t *testing.T) {
	a, _ := MakeKey()
	b, _ := MakeKey()
	idb, err := MakeIDCard(b, map[string]interface{}{"name": "Bob"})
	if err != nil {
		t.Fatalf("MakeIDCard() error = %v", err)
	}

	m1, err := MakeMessage(a, idb, map[string]interface{}{"i": int64(1)}, nil)
	if err != nil {
		t.Fatalf("MakeMessage() #1 error = %v", err)
	}
	v1, err := Verify(m1)
	if err != nil {
		t.Fatalf("Verify(m1) error = %v", err)
	}

	parentHex := v1.ID
	parentBytes, err := hex.DecodeString(parentHex)
	if err != nil {
		t.Fatalf("hex.DecodeString(parent) error = %v", err)
	}

	m2, err := MakeMessage(a, idb, map[string]interface{}{"i": int64(2)}, parentBytes)
	if err != nil {
		t.Fatalf("MakeMessage() #2 error = %v", err)
	}
	v2, err := Verify(m2)
	if err != nil {
		t.Fatalf("Verify(m2) error = %v", err)
	}
	if v2.Parent == nil || *v2.Parent != parentHex {
		t.Errorf("Parent = %v, want %q", v2.Parent, parentHex)
	}
}

func TestTamperSingleCharacterBreaksVerify(t *testing.T) {
	a, _ := MakeKey()
	b, _ := MakeKey()
	idb, err := MakeIDCard(b, map[string]interface{}{"name": "Bob"})
	if err != nil {
		t.Fatalf("MakeIDCard() error = %v", err)
	}
	m, err := MakeMessage(a, idb, map[string]interface{}{"hello": "world"}, nil)
	if err != nil {
		t.Fatalf("MakeMessage() error = %v", err)
	}

	body := []byte(m[len("gxm:"):])
	mid := len(body) / 2
	orig := body[mid]
	for _, c := range []byte("123456789") {
		if c != orig {
			body[mid] = c
			break
		}
	}
	tampered := "gxm:" + string(body)

	if _, err := Verify(tampered); err == nil {
		t.Error("Verify() on tampered token = nil error, want a decode or verification error")
	}
}

func TestLegacyPrefixAcceptedOnDecode(t *testing.T) {
	k, err := MakeKey()
	if err != nil {
		t.Fatalf("MakeKey() error = %v", err)
	}
	tok, err := MakeIDCard(k, map[string]interface{}{"name": "Bob"})
	if err != nil {
		t.Fatalf("MakeIDCard() error = %v", err)
	}

	legacy := "gxt:" + tok[len("gxi:"):]
	if _, err := Verify(legacy); err != nil {
		t.Errorf("Verify() on legacy-prefixed token error = %v, want nil", err)
	}
}

func TestNonceFreshnessSamePlaintext(t *testing.T) {
	a, _ := MakeKey()
	b, _ := MakeKey()
	idb, err := MakeIDCard(b, map[string]interface{}{"name": "Bob"})
	if err != nil {
		t.Fatalf("MakeIDCard() error = %v", err)
	}

	payload := map[string]interface{}{"hello": "world"}
	m1, err := MakeMessage(a, idb, payload, nil)
	if err != nil {
		t.Fatalf("MakeMessage() #1 error = %v", err)
	}
	m2, err := MakeMessage(a, idb, payload, nil)
	if err != nil {
		t.Fatalf("MakeMessage() #2 error = %v", err)
	}
	if m1 == m2 {
		t.Error("two MakeMessage() calls with identical inputs produced the same token")
	}

	v1, err := Decrypt(m1, b)
	if err != nil {
		t.Fatalf("Decrypt(m1) error = %v", err)
	}
	v2, err := Decrypt(m2, b)
	if err != nil {
		t.Fatalf("Decrypt(m2) error = %v", err)
	}
	if !reflect.DeepEqual(v1.Payload, v2.Payload) {
		t.Errorf("decrypted payloads differ: %#v vs %#v", v1.Payload, v2.Payload)
	}
}

func TestIDDeterminesOnLogicalFields(t *testing.T) {
	k, err := MakeKey()
	if err != nil {
		t.Fatalf("MakeKey() error = %v", err)
	}
	t1, err := MakeIDCard(k, map[string]interface{}{"name": "Bob"})
	if err != nil {
		t.Fatalf("MakeIDCard() #1 error = %v", err)
	}
	t2, err := MakeIDCard(k, map[string]interface{}{"name": "Bob"})
	if err != nil {
		t.Fatalf("MakeIDCard() #2 error = %v", err)
	}

	v1, err := Verify(t1)
	if err != nil {
		t.Fatalf("Verify() #1 error = %v", err)
	}
	v2, err := Verify(t2)
	if err != nil {
		t.Fatalf("Verify() #2 error = %v", err)
	}
	if v1.ID != v2.ID {
		t.Errorf("id differs across re-encodes of the same logical record: %q vs %q", v1.ID, v2.ID)
	}
}

func TestMakeMessageWrongKindRecipient(t *testing.T) {
	a, _ := MakeKey()
	b, _ := MakeKey()
	// A key bundle token is not a valid ID card.
	if _, err := MakeMessage(a, b, map[string]interface{}{"x": 1}, nil); err == nil {
		t.Error("MakeMessage() with a key bundle as recipient = nil error, want a decode/kind error")
	}
}
