package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

const (
	nonceSize    = 12
	tagSize      = aes.BlockSize
	versionMagic = byte('R')
	// KeySize is the data key length in bytes.
	KeySize = 32
)

var (
	ErrShortCiphertext = errors.New("sealed data is too short")
	ErrUnknownVersion  = errors.New("sealed data has an unknown version")
)

// Cipher seals and opens byte slices bound to additional authenticated data.
type Cipher interface {
	Seal(aad, plainText []byte) ([]byte, error)
	Open(aad, sealed []byte) ([]byte, error)
}

type gcm struct {
	aead cipher.AEAD
}

// New returns an AES-GCM Cipher for a KeySize byte key.
func New(key []byte) (Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("data key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &gcm{aead: aead}, nil
}

// KeyFromBase64 decodes a standard base64 data key.
func KeyFromBase64(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode data key: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("data key must be %d bytes, got %d", KeySize, len(key))
	}
	return key, nil
}

// RandomBytes returns size bytes from crypto/rand.
func RandomBytes(size int) ([]byte, error) {
	value := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, value); err != nil {
		return nil, err
	}
	return value, nil
}

func (g *gcm) Seal(aad, plainText []byte) ([]byte, error) {
	// Never use more than 2^32 random nonces with a given key.
	nonce, err := RandomBytes(nonceSize)
	if err != nil {
		return nil, err
	}
	return g.seal(aad, plainText, nonce), nil
}

func (g *gcm) seal(aad, plainText, nonce []byte) []byte {
	out := make([]byte, 1+nonceSize, 1+nonceSize+len(plainText)+tagSize)
	out[0] = versionMagic
	copy(out[1:], nonce)
	return g.aead.Seal(out, nonce, plainText, aad)
}

func (g *gcm) Open(aad, sealed []byte) ([]byte, error) {
	if len(sealed) < 1+nonceSize+tagSize {
		return nil, ErrShortCiphertext
	}
	if sealed[0] != versionMagic {
		return nil, ErrUnknownVersion
	}
	nonce := sealed[1 : 1+nonceSize]
	return g.aead.Open(nil, nonce, sealed[1+nonceSize:], aad)
}
