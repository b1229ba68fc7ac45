package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
)

const nonceLength = 16

// Vault seals and opens mailbox passwords with AES-256-CBC. The cipher text
// and nonce are stored hex-encoded; a fresh 16-byte nonce is generated per
// Seal call. Empty input yields empty output on both directions.
type Vault struct {
	key []byte
}

func NewVault(key string) (*Vault, error) {
	// A hex key of 32 bytes is the common deployment practice; fall back to
	// the raw value for local setups.
	if decoded, err := hex.DecodeString(key); err == nil && len(decoded) == 32 {
		return &Vault{key: decoded}, nil
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	return &Vault{key: []byte(key)}, nil
}

func (v *Vault) Seal(plaintext string) (string, string, error) {
	if plaintext == "" {
		return "", "", nil
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to create cipher")
	}

	nonce := make([]byte, nonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return "", "", errors.Wrap(err, "failed to generate nonce")
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	sealed := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, nonce).CryptBlocks(sealed, padded)

	return hex.EncodeToString(sealed), hex.EncodeToString(nonce), nil
}

func (v *Vault) Open(cipherHex, nonceHex string) (string, error) {
	if cipherHex == "" || nonceHex == "" {
		return "", nil
	}

	sealed, err := hex.DecodeString(cipherHex)
	if err != nil {
		return "", errors.Wrap(err, "invalid cipher text")
	}
	nonce, err := hex.DecodeString(nonceHex)
	if err != nil {
		return "", errors.Wrap(err, "invalid nonce")
	}
	if len(nonce) != nonceLength {
		return "", fmt.Errorf("nonce must be %d bytes, got %d", nonceLength, len(nonce))
	}
	if len(sealed) == 0 || len(sealed)%aes.BlockSize != 0 {
		return "", errors.New("cipher text is not block aligned")
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", errors.Wrap(err, "failed to create cipher")
	}

	plain := make([]byte, len(sealed))
	cipher.NewCBCDecrypter(block, nonce).CryptBlocks(plain, sealed)

	plain, err = pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", err
	}

	return string(plain), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padding)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padding)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty payload")
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return nil, errors.New("invalid padding")
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, errors.New("invalid padding")
		}
	}
	return data[:len(data)-padding], nil
}
