package envelope

import "errors"

var (
	ErrInvalidEnvelope   = errors.New("invalid encrypted envelope format")
	ErrDecryptionFailed  = errors.New("failed to decrypt secret")
	ErrEncryptionFailed  = errors.New("failed to encrypt secret")
	ErrInvalidKeyLength  = errors.New("invalid encryption key length")
	ErrKeyNotConfigured  = errors.New("2FA encryption key not configured")
	ErrGenerateKeyFailed = errors.New("failed to generate encryption key")
)
