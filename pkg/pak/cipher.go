package pak

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the only accepted archive key length.
const KeySize = chacha20poly1305.KeySize

// newAEAD validates the key and builds the cipher used for the index
// section and, when enabled, entry payloads.
func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	return chacha20poly1305.New(key)
}

// sealBlob encrypts plaintext and prepends the random nonce, so the
// stored blob is self-contained: nonce || ciphertext || tag.
func sealBlob(aead cipher.AEAD, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("pak: generate nonce: %w", err)
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, nil), nil
}

// openBlob reverses sealBlob. Any failure, including a wrong key, is
// reported as ErrAuthenticationFailed; garbage is never returned.
func openBlob(aead cipher.AEAD, blob []byte) ([]byte, error) {
	ns := aead.NonceSize()
	if len(blob) < ns+aead.Overhead() {
		return nil, ErrAuthenticationFailed
	}
	plaintext, err := aead.Open(nil, blob[:ns], blob[ns:], nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}
