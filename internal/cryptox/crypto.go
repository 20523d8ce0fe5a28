// Package cryptox holds the crypto primitives used by the server: bcrypt
// password hashing and AES-GCM encryption for device credentials at rest.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword produces a salted bcrypt digest of the given password.
// The plaintext is never stored or logged anywhere.
func HashPassword(password []byte) ([]byte, error) {
	return bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
}

// VerifyPassword reports whether password matches the bcrypt digest.
// It fails closed: any comparison or parse error yields false.
func VerifyPassword(password, digest []byte) bool {
	return bcrypt.CompareHashAndPassword(digest, password) == nil
}

// EncryptSecret encrypts plaintext using AES-GCM under the given key.
//
// The key must be a valid AES key length (16, 24, or 32 bytes). A new
// random 12-byte nonce is generated for each encryption; ciphertext and
// nonce are returned separately.
func EncryptSecret(plaintext, key []byte) (ciphertext, nonce []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	ciphertext = aesgcm.Seal(nil, nonce, plaintext, nil)

	return ciphertext, nonce, nil
}

// DecryptSecret reverses EncryptSecret. The key and nonce must be the ones
// used during encryption; any tampering with the ciphertext fails the GCM
// authentication check.
func DecryptSecret(ciphertext, nonce, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return aesgcm.Open(nil, nonce, ciphertext, nil)
}
