package snapshot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestDeriveKeyDeterminism(t *testing.T) {
	salt := []byte("1234567890abcdef")

	key1 := deriveKey("mypassphrase", salt)
	key2 := deriveKey("mypassphrase", salt)
	if !bytes.Equal(key1, key2) {
		t.Error("same passphrase+salt should produce same key")
	}
	if len(key1) != keySize {
		t.Errorf("key length = %d, want %d", len(key1), keySize)
	}

	key3 := deriveKey("otherpassphrase", salt)
	if bytes.Equal(key1, key3) {
		t.Error("different passphrases should produce different keys")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "source.db")
	encPath := filepath.Join(dir, "encrypted.db.enc")
	decPath := filepath.Join(dir, "decrypted.db")

	original := []byte("check-in history is precious; round-trip it faithfully")
	if err := os.WriteFile(srcPath, original, 0600); err != nil {
		t.Fatalf("write source: %v", err)
	}

	if err := EncryptFile(srcPath, encPath, "correct horse"); err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	encrypted, err := os.ReadFile(encPath)
	if err != nil {
		t.Fatalf("read encrypted: %v", err)
	}
	if bytes.Contains(encrypted, original) {
		t.Error("ciphertext contains plaintext")
	}
	if len(encrypted) <= saltSize+nonceSize {
		t.Errorf("encrypted file too small: %d bytes", len(encrypted))
	}

	if err := DecryptFile(encPath, decPath, "correct horse"); err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	decrypted, err := os.ReadFile(decPath)
	if err != nil {
		t.Fatalf("read decrypted: %v", err)
	}
	if !bytes.Equal(decrypted, original) {
		t.Errorf("round trip mismatch: %q vs %q", decrypted, original)
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "source.db")
	encPath := filepath.Join(dir, "encrypted.db.enc")
	decPath := filepath.Join(dir, "decrypted.db")

	if err := os.WriteFile(srcPath, []byte("secret"), 0600); err != nil {
		t.Fatalf("write source: %v", err)
	}
	if err := EncryptFile(srcPath, encPath, "right"); err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if err := DecryptFile(encPath, decPath, "wrong"); err == nil {
		t.Fatal("decrypt with wrong passphrase should fail")
	}
}

func TestEncryptFreshSaltPerFile(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "source.db")
	if err := os.WriteFile(srcPath, []byte("same content"), 0600); err != nil {
		t.Fatalf("write source: %v", err)
	}

	enc1 := filepath.Join(dir, "a.enc")
	enc2 := filepath.Join(dir, "b.enc")
	if err := EncryptFile(srcPath, enc1, "pass"); err != nil {
		t.Fatalf("encrypt 1: %v", err)
	}
	if err := EncryptFile(srcPath, enc2, "pass"); err != nil {
		t.Fatalf("encrypt 2: %v", err)
	}

	d1, _ := os.ReadFile(enc1)
	d2, _ := os.ReadFile(enc2)
	if bytes.Equal(d1[:saltSize], d2[:saltSize]) {
		t.Error("each encryption must use a fresh salt")
	}
}
