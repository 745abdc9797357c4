package backup

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// ErrDecryptFailed covers every way decryption can go wrong: wrong
// passphrase, truncated payload, corrupted ciphertext. Callers report it
// distinctly from a parse failure.
var ErrDecryptFailed = errors.New("decryption failed")

const (
	saltSize         = 16
	pbkdf2Iterations = 100_000
	keySize          = 32
)

// deriveKey stretches the passphrase into an AES-256 key with PBKDF2.
func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, keySize, sha256.New)
}

// encrypt seals the plaintext with AES-256-GCM under a key derived from
// the passphrase. The output is salt + nonce + ciphertext.
func encrypt(passphrase string, plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	sealed := aesgcm.Seal(nil, nonce, plaintext, nil)
	out := make([]byte, 0, len(salt)+len(nonce)+len(sealed))
	out = append(out, salt...)
	out = append(out, nonce...)
	return append(out, sealed...), nil
}

// decrypt reverses encrypt. Any failure collapses into ErrDecryptFailed
// so callers cannot distinguish a wrong passphrase from tampering.
func decrypt(passphrase string, data []byte) ([]byte, error) {
	if len(data) < saltSize {
		return nil, ErrDecryptFailed
	}
	salt, rest := data[:saltSize], data[saltSize:]

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, ErrDecryptFailed
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrDecryptFailed
	}

	ns := aesgcm.NonceSize()
	if len(rest) < ns {
		return nil, ErrDecryptFailed
	}

	plaintext, err := aesgcm.Open(nil, rest[:ns], rest[ns:], nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}
