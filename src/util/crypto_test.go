package util

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialBox_RoundTrip(t *testing.T) {
	box, err := NewCredentialBox("test-secret")
	require.NoError(t, err)

	enc, err := box.Encrypt("my-banking-password")
	require.NoError(t, err)
	assert.NotEqual(t, "my-banking-password", enc)

	plain, err := box.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "my-banking-password", plain)
}

func TestCredentialBox_EncryptIsRandomized(t *testing.T) {
	box, err := NewCredentialBox("test-secret")
	require.NoError(t, err)

	a, err := box.Encrypt("same-plaintext")
	require.NoError(t, err)
	b, err := box.Encrypt("same-plaintext")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "nonce must differ per encryption")
}

func TestCredentialBox_WrongSecret(t *testing.T) {
	box, err := NewCredentialBox("secret-one")
	require.NoError(t, err)
	other, err := NewCredentialBox("secret-two")
	require.NoError(t, err)

	enc, err := box.Encrypt("password")
	require.NoError(t, err)

	_, err = other.Decrypt(enc)
	assert.Error(t, err)
}

func TestCredentialBox_TamperedCiphertext(t *testing.T) {
	box, err := NewCredentialBox("test-secret")
	require.NoError(t, err)

	enc, err := box.Encrypt("password")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(enc)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff

	_, err = box.Decrypt(base64.StdEncoding.EncodeToString(raw))
	assert.Error(t, err)
}

func TestCredentialBox_EmptySecret(t *testing.T) {
	_, err := NewCredentialBox("")
	assert.Error(t, err)
}

func TestProviderKey_Encrypt(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	key, err := ParseProviderKey(base64.StdEncoding.EncodeToString(der))
	require.NoError(t, err)

	enc, err := key.Encrypt("account-password")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(enc)
	require.NoError(t, err)
	plain, err := rsa.DecryptPKCS1v15(rand.Reader, priv, raw)
	require.NoError(t, err)
	assert.Equal(t, "account-password", string(plain))
}

func TestParseProviderKey_Invalid(t *testing.T) {
	_, err := ParseProviderKey("not-base64!!!")
	assert.Error(t, err)

	_, err = ParseProviderKey(base64.StdEncoding.EncodeToString([]byte("not-der")))
	assert.Error(t, err)
}
