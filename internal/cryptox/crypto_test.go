package cryptox

import (
	"bytes"
	"errors"
	"testing"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	secret := []byte("device-secret")
	salt := []byte("fixed-salt-16byt")

	key1 := DeriveKey(secret, salt)
	key2 := DeriveKey(secret, salt)

	if !bytes.Equal(key1, key2) {
		t.Fatalf("expected same key for same inputs")
	}
	if len(key1) != KeySize {
		t.Fatalf("expected %d-byte key, got %d", KeySize, len(key1))
	}
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	secret := []byte("device-secret")

	if bytes.Equal(DeriveKey(secret, []byte("salt-1")), DeriveKey(secret, []byte("salt-2"))) {
		t.Fatalf("different salts must give different keys")
	}
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := DeriveKey([]byte("s"), []byte("salt"))
	plain := []byte(`{"isAuthenticated":true}`)

	ct, nonce, err := Seal(plain, key, []byte("auth-storage"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if bytes.Contains(ct, []byte("isAuthenticated")) {
		t.Fatalf("ciphertext contains plaintext")
	}

	got, err := Open(ct, nonce, key, []byte("auth-storage"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(plain, got) {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestOpen_WrongKeyOrAdditionalData(t *testing.T) {
	key := DeriveKey([]byte("right"), []byte("salt"))
	ct, nonce, err := Seal([]byte("payload"), key, []byte("a"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	if _, err := Open(ct, nonce, DeriveKey([]byte("wrong"), []byte("salt")), []byte("a")); err == nil {
		t.Fatalf("expected error for wrong key")
	}
	if _, err := Open(ct, nonce, key, []byte("b")); err == nil {
		t.Fatalf("expected error for different additional data")
	}
	if _, err := Open(ct, nonce[:4], key, []byte("a")); err == nil {
		t.Fatalf("expected error for short nonce")
	}
}

func TestSeal_InvalidKey(t *testing.T) {
	_, _, err := Seal([]byte("x"), []byte("short"), nil)
	if !errors.Is(err, ErrKeySize) {
		t.Fatalf("expected ErrKeySize, got %v", err)
	}
}
