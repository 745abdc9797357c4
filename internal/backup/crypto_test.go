package backup

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := []byte(`{"expenses":[],"parking":[],"settings":[]}`)

	sealed, err := encrypt("correct horse", plaintext)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Contains(sealed, plaintext) {
		t.Fatal("ciphertext must not contain the plaintext")
	}

	opened, err := decrypt("correct horse", sealed)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Errorf("round trip = %q, want %q", opened, plaintext)
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	sealed, err := encrypt("right", []byte("secret"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if _, err := decrypt("wrong", sealed); !errors.Is(err, ErrDecryptFailed) {
		t.Errorf("decrypt with wrong passphrase = %v, want ErrDecryptFailed", err)
	}
}

func TestDecryptRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte("tiny")},
		{"salt only", make([]byte, saltSize)},
		{"salt and nonce only", make([]byte, saltSize+12)},
		{"random bytes", bytes.Repeat([]byte{0xAB}, 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decrypt("pass", tt.data); !errors.Is(err, ErrDecryptFailed) {
				t.Errorf("decrypt(%s) = %v, want ErrDecryptFailed", tt.name, err)
			}
		})
	}
}

func TestEncryptUsesFreshSalt(t *testing.T) {
	a, err := encrypt("pass", []byte("same input"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	b, err := encrypt("pass", []byte("same input"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Error("two encryptions of the same input must differ")
	}
}
