package util

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// keyDerivationSalt is fixed: the same CREDENTIAL_SECRET must always derive the
// same key, or previously stored ciphertexts become unreadable.
var keyDerivationSalt = []byte("jandon-credential-v1")

const keyDerivationIters = 4096

// CredentialBox encrypts and decrypts banking credentials at rest with a
// symmetric key derived from the configured secret (AES-256-GCM).
type CredentialBox struct {
	aead cipher.AEAD
}

func NewCredentialBox(secret string) (*CredentialBox, error) {
	if secret == "" {
		return nil, errors.New("credential secret is empty")
	}
	key := pbkdf2.Key([]byte(secret), keyDerivationSalt, keyDerivationIters, 32, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return &CredentialBox{aead: aead}, nil
}

// Encrypt returns base64(nonce || ciphertext).
func (b *CredentialBox) Encrypt(plain string) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	sealed := b.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (b *CredentialBox) Decrypt(cipherB64 string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(cipherB64)
	if err != nil {
		return "", fmt.Errorf("decoding ciphertext: %w", err)
	}
	if len(sealed) < b.aead.NonceSize() {
		return "", errors.New("ciphertext too short")
	}
	nonce, data := sealed[:b.aead.NonceSize()], sealed[b.aead.NonceSize():]
	plain, err := b.aead.Open(nil, nonce, data, nil)
	if err != nil {
		return "", fmt.Errorf("decrypting credential: %w", err)
	}
	return string(plain), nil
}

// ProviderKey wraps the provider's RSA public key. Sensitive request fields are
// re-encrypted with it per call before transmission.
type ProviderKey struct {
	key *rsa.PublicKey
}

// ParseProviderKey parses a base64-encoded DER (PKIX) public key.
func ParseProviderKey(b64 string) (*ProviderKey, error) {
	der, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decoding public key: %w", err)
	}
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}
	rsaKey, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is %T, want *rsa.PublicKey", pub)
	}
	return &ProviderKey{key: rsaKey}, nil
}

// Encrypt RSA-encrypts plain (PKCS#1 v1.5, the scheme the provider expects)
// and returns it base64-encoded.
func (p *ProviderKey) Encrypt(plain string) (string, error) {
	enc, err := rsa.EncryptPKCS1v15(rand.Reader, p.key, []byte(plain))
	if err != nil {
		return "", fmt.Errorf("rsa encrypt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(enc), nil
}
