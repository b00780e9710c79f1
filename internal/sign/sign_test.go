package sign

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
)

func generateKey(t *testing.T) (ed25519.PublicKey, [32]byte) {
	t.Helper()
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		t.Fatalf("rand.Read() error = %v", err)
	}
	priv := ed25519.NewKeyFromSeed(seed[:])
	return priv.Public().(ed25519.PublicKey), seed
}

func TestContentAddressDeterministic(t *testing.T) {
	preimage := []byte("some canonical bytes")
	a1 := ContentAddress(preimage)
	a2 := ContentAddress(preimage)
	if a1 != a2 {
		t.Error("ContentAddress() is not deterministic")
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	pub, seed := generateKey(t)
	preimage := []byte("canonical preimage bytes")

	sig := SignPreimage(seed, preimage)
	if !VerifySignature(pub, preimage, sig[:]) {
		t.Error("VerifySignature() rejected a signature produced by SignPreimage()")
	}
}

func TestVerifySignatureRejectsTamperedMessage(t *testing.T) {
	pub, seed := generateKey(t)
	sig := SignPreimage(seed, []byte("original"))

	if VerifySignature(pub, []byte("tampered"), sig[:]) {
		t.Error("VerifySignature() accepted a signature over a different message")
	}
}

func TestVerifyContentAddress(t *testing.T) {
	preimage := []byte("preimage")
	id := ContentAddress(preimage)

	if err := VerifyContentAddress(id[:], preimage); err != nil {
		t.Errorf("VerifyContentAddress() error = %v, want nil", err)
	}

	var wrong [32]byte
	wrong[0] = 0xFF
	if err := VerifyContentAddress(wrong[:], preimage); err == nil {
		t.Error("VerifyContentAddress() = nil, want ErrIdMismatch")
	}
}

func TestDomainSeparationChangesSignature(t *testing.T) {
	_, seed := generateKey(t)
	preimage := []byte("preimage")

	withDomain := SignPreimage(seed, preimage)

	priv := ed25519.NewKeyFromSeed(seed[:])
	rawSig := ed25519.Sign(priv, preimage) // no "GXT" prefix

	if string(withDomain[:]) == string(rawSig) {
		t.Error("domain-separated signature is identical to an undomained signature")
	}
}
