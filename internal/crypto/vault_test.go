package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "12345678901234567890123456789012"

func TestVault_SealOpenRoundTrip(t *testing.T) {
	vault, err := NewVault(testKey)
	require.NoError(t, err)

	cipherText, nonce, err := vault.Seal("imap-app-password")
	require.NoError(t, err)
	assert.NotEmpty(t, cipherText)
	assert.Len(t, nonce, 32) // 16 bytes, hex encoded

	plain, err := vault.Open(cipherText, nonce)
	require.NoError(t, err)
	assert.Equal(t, "imap-app-password", plain)
}

func TestVault_FreshNoncePerSeal(t *testing.T) {
	vault, err := NewVault(testKey)
	require.NoError(t, err)

	c1, n1, err := vault.Seal("same input")
	require.NoError(t, err)
	c2, n2, err := vault.Seal("same input")
	require.NoError(t, err)

	assert.NotEqual(t, n1, n2)
	assert.NotEqual(t, c1, c2)
}

func TestVault_EmptyInput(t *testing.T) {
	vault, err := NewVault(testKey)
	require.NoError(t, err)

	cipherText, nonce, err := vault.Seal("")
	require.NoError(t, err)
	assert.Empty(t, cipherText)
	assert.Empty(t, nonce)

	plain, err := vault.Open("", "")
	require.NoError(t, err)
	assert.Empty(t, plain)
}

func TestVault_HexKey(t *testing.T) {
	// 32 bytes, hex encoded
	_, err := NewVault("000102030405060708090a0b0c0d0e0f000102030405060708090a0b0c0d0e0f")
	assert.NoError(t, err)
}

func TestVault_RejectsBadKey(t *testing.T) {
	_, err := NewVault("too-short")
	assert.Error(t, err)
}

func TestVault_RejectsTamperedCipher(t *testing.T) {
	vault, err := NewVault(testKey)
	require.NoError(t, err)

	_, err = vault.Open("not-hex", "00112233445566778899aabbccddeeff")
	assert.Error(t, err)

	_, err = vault.Open("abcd", "00112233445566778899aabbccddeeff")
	assert.Error(t, err)
}
