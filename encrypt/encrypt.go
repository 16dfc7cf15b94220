// Package encrypt implements the one at-rest encryption method factors may
// declare (AES) plus the last-chars masking transform used to render an
// encrypted factor's value in an alarm message without leaking plaintext.
package encrypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"

	"github.com/evalgo-labs/pipeflow/pipeflowerr"
)

// pbkdfIterations and salt are fixed: the key/IV material comes from an
// operator-managed environment variable, not a user-chosen password, so
// there is no per-value salt to store and retrieve later.
const pbkdfIterations = 4096

var pbkdfSalt = []byte("pipeflow-aes-factor-encryption")

// AESCipher encrypts and decrypts factor values with AES-CBC. Key/IV
// material is derived from ENCRYPT_AES_KEY/ENCRYPT_AES_IV via PBKDF2 so
// operators can supply any length secret, not exactly 32/16 raw bytes.
type AESCipher struct {
	key []byte
	iv  []byte
}

// NewAESCipher derives a 32-byte key and 16-byte IV from the given secrets.
func NewAESCipher(keySecret, ivSecret string) *AESCipher {
	return &AESCipher{
		key: pbkdf2.Key([]byte(keySecret), pbkdfSalt, pbkdfIterations, 32, sha256.New),
		iv:  pbkdf2.Key([]byte(ivSecret), pbkdfSalt, pbkdfIterations, aes.BlockSize, sha256.New),
	}
}

// Encrypt PKCS7-pads plaintext to the AES block size and encrypts it under
// CBC, returning the ciphertext bytes.
func (c *AESCipher) Encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, pipeflowerr.Wrap(pipeflowerr.CodeInfrastructure, err)
	}
	padded := pkcs7Pad(plaintext, block.BlockSize())
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, c.iv).CryptBlocks(ciphertext, padded)
	return ciphertext, nil
}

// Decrypt reverses Encrypt.
func (c *AESCipher) Decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, pipeflowerr.Wrap(pipeflowerr.CodeInfrastructure, err)
	}
	if len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return nil, pipeflowerr.New(pipeflowerr.CodeInfrastructure, "ciphertext is not a multiple of the AES block size")
	}
	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, c.iv).CryptBlocks(plain, ciphertext)
	return pkcs7Unpad(plain)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padding := bytes.Repeat([]byte{byte(padLen)}, padLen)
	return append(append([]byte{}, data...), padding...)
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, pipeflowerr.New(pipeflowerr.CodeInfrastructure, "cannot unpad empty data")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > len(data) {
		return nil, pipeflowerr.New(pipeflowerr.CodeInfrastructure, "invalid PKCS7 padding")
	}
	return data[:len(data)-padLen], nil
}
