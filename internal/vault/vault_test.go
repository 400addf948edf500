package vault

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresKey(t *testing.T) {
	v, err := New("")
	assert.Nil(t, v)
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	v, err := New("test-secret-key")
	require.NoError(t, err)

	cases := []string{
		"mastodon-access-token-abc123",
		"",
		"token có ký tự unicode ✓",
	}

	for _, plaintext := range cases {
		encrypted, err := v.EncryptString(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, encrypted)

		decrypted, err := v.DecryptString(encrypted)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	}
}

func TestEncryptProducesDifferentCiphertexts(t *testing.T) {
	v, err := New("test-secret-key")
	require.NoError(t, err)

	// Nonce ngẫu nhiên nên hai lần mã hóa cùng một plaintext phải khác nhau
	first, err := v.EncryptString("same-token")
	require.NoError(t, err)
	second, err := v.EncryptString("same-token")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestDecryptRejectsInvalidBase64(t *testing.T) {
	v, err := New("test-secret-key")
	require.NoError(t, err)

	_, err = v.DecryptString("not-valid-base64!!!")
	assert.Error(t, err)
}

func TestDecryptRejectsShortCiphertext(t *testing.T) {
	v, err := New("test-secret-key")
	require.NoError(t, err)

	short := base64.StdEncoding.EncodeToString([]byte("abc"))
	_, err = v.DecryptString(short)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ciphertext too short")
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	v, err := New("test-secret-key")
	require.NoError(t, err)

	encrypted, err := v.EncryptString("platform-token")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encrypted)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF
	tampered := base64.StdEncoding.EncodeToString(raw)

	_, err = v.DecryptString(tampered)
	assert.Error(t, err)
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	v1, err := New("key-one")
	require.NoError(t, err)
	v2, err := New("key-two")
	require.NoError(t, err)

	encrypted, err := v1.EncryptString("secret-token")
	require.NoError(t, err)

	_, err = v2.DecryptString(encrypted)
	assert.Error(t, err)
}
