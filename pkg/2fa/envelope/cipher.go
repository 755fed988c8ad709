// Package envelope 使用 AES-256-GCM 加密静态存储的 TOTP 密钥
//
// 密文信封格式为 base64(iv):base64(tag):base64(ciphertext)，
// iv 为每次加密随机生成的12字节 nonce，tag 为16字节认证标签。
package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"
)

const (
	IVSize    = 12
	TagSize   = 16
	separator = ":"
)

// Cipher 持有派生后的密钥，创建后不可变，可并发使用
type Cipher struct {
	aead cipher.AEAD
	rand io.Reader
}

// Option 配置 Cipher
type Option func(*Cipher)

// WithRandom 替换 IV 随机源，只应在测试中使用
func WithRandom(r io.Reader) Option {
	return func(c *Cipher) {
		if r != nil {
			c.rand = r
		}
	}
}

// NewCipher 使用32字节密钥创建 Cipher
func NewCipher(key []byte, opts ...Option) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCMWithNonceSize(block, IVSize)
	if err != nil {
		return nil, err
	}

	c := &Cipher{aead: aead, rand: rand.Reader}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewCipherFromConfig 派生密钥并创建 Cipher，应在进程启动时调用一次
func NewCipherFromConfig(cfg KeyConfig, opts ...Option) (*Cipher, error) {
	key, _, err := DeriveKey(cfg)
	if err != nil {
		return nil, err
	}
	return NewCipher(key, opts...)
}

// Encrypt 加密明文密钥，每次调用使用新的随机 IV
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(c.rand, iv); err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	sealed := c.aead.Seal(nil, iv, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-TagSize], sealed[len(sealed)-TagSize:]

	enc := base64.StdEncoding
	return enc.EncodeToString(iv) + separator +
		enc.EncodeToString(tag) + separator +
		enc.EncodeToString(ct), nil
}

// Decrypt 解密信封；格式错误返回 ErrInvalidEnvelope，认证失败返回 ErrDecryptionFailed
func (c *Cipher) Decrypt(envelope string) (string, error) {
	parts := strings.Split(envelope, separator)
	if len(parts) != 3 {
		return "", ErrInvalidEnvelope
	}

	enc := base64.StdEncoding
	iv, err := enc.DecodeString(parts[0])
	if err != nil || len(iv) != IVSize {
		return "", ErrInvalidEnvelope
	}
	tag, err := enc.DecodeString(parts[1])
	if err != nil || len(tag) != TagSize {
		return "", ErrInvalidEnvelope
	}
	ct, err := enc.DecodeString(parts[2])
	if err != nil {
		return "", ErrInvalidEnvelope
	}

	sealed := make([]byte, 0, len(ct)+len(tag))
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plaintext, err := c.aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}
	return string(plaintext), nil
}
