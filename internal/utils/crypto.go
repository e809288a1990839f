// internal/utils/crypto.go
package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// encryptedPrefix marks secrets that were sealed by EncryptSecret.
const encryptedPrefix = "enc:"

// newGCM derives a 256-bit key from the passphrase.
func newGCM(passphrase string) (cipher.AEAD, error) {
	key := sha256.Sum256([]byte(passphrase))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext with AES-GCM and returns base64(nonce|ciphertext).
func Encrypt(plaintext, passphrase string) (string, error) {
	gcm, err := newGCM(passphrase)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(gcm.Seal(nonce, nonce, []byte(plaintext), nil)), nil
}

// Decrypt opens a value produced by Encrypt.
func Decrypt(ciphertext, passphrase string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}
	gcm, err := newGCM(passphrase)
	if err != nil {
		return "", err
	}
	if len(raw) < gcm.NonceSize() {
		return "", fmt.Errorf("ciphertext too short")
	}
	nonce, body := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, body, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// EncryptSecret seals a secret for storage on disk. Empty values and an empty
// passphrase leave the value as is.
func EncryptSecret(value, passphrase string) (string, error) {
	if value == "" || passphrase == "" || IsEncryptedSecret(value) {
		return value, nil
	}
	sealed, err := Encrypt(value, passphrase)
	if err != nil {
		return "", err
	}
	return encryptedPrefix + sealed, nil
}

// DecryptSecret reverses EncryptSecret; plain values pass through.
func DecryptSecret(value, passphrase string) (string, error) {
	if !IsEncryptedSecret(value) {
		return value, nil
	}
	if passphrase == "" {
		return "", fmt.Errorf("secret is encrypted but no passphrase is configured")
	}
	return Decrypt(strings.TrimPrefix(value, encryptedPrefix), passphrase)
}

// IsEncryptedSecret reports whether value carries the encrypted-secret prefix.
func IsEncryptedSecret(value string) bool {
	return strings.HasPrefix(value, encryptedPrefix)
}

// MaskSecret keeps the last four characters of a secret for display.
func MaskSecret(value string) string {
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", 8) + value[len(value)-4:]
}
