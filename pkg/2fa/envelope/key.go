package envelope

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/iceymoss/go-2fa/pkg/logger"

	"go.uber.org/zap"
)

// KeySize AES-256 需要的密钥长度
const KeySize = 32

// DevDefaultKeyMaterial 非生产环境在没有任何配置时使用的开发密钥
const DevDefaultKeyMaterial = "go-2fa-dev-encryption-key-do-not-use-in-production"

// KeyConfig 派生加密密钥所需的配置，由调用方在启动时显式传入
type KeyConfig struct {
	// Material 配置的密钥材料：64位hex、32字节的base64，或任意口令
	Material string
	// FallbackSecret 非生产环境下没有 Material 时的备用密钥（通常是 JWT 签名密钥）
	FallbackSecret string
	// Production 生产环境不允许任何回退
	Production bool
	// Strict 为 true 时，Material 解码后不是32字节即报错，不再按口令做 SHA-256
	Strict bool
}

// keyStrategy 按顺序尝试的密钥派生策略
// ok 为 false 表示该策略不适用，交给下一个
type keyStrategy struct {
	name   string
	derive func(cfg KeyConfig) (key []byte, ok bool, err error)
}

var keyStrategies = []keyStrategy{
	{name: "hex", derive: hexKey},
	{name: "base64", derive: base64Key},
	{name: "passphrase", derive: passphraseKey},
	{name: "fallback-secret", derive: fallbackSecretKey},
	{name: "dev-default", derive: devDefaultKey},
}

// DeriveKey 按 hex → base64 → 口令SHA-256 → 备用密钥 → 开发默认值 的顺序派生32字节密钥
//
// 返回:
//   - []byte: 32字节密钥
//   - string: 命中的策略名称
//   - error: 生产环境未配置密钥时返回 ErrKeyNotConfigured；Strict 模式下长度不对返回 ErrInvalidKeyLength
func DeriveKey(cfg KeyConfig) ([]byte, string, error) {
	for _, s := range keyStrategies {
		key, ok, err := s.derive(cfg)
		if err != nil {
			return nil, s.name, err
		}
		if !ok {
			continue
		}

		switch s.name {
		case "passphrase":
			logger.Warn("2FA encryption key is not 32 raw bytes, derived from passphrase with SHA-256",
				zap.String("strategy", s.name))
		case "fallback-secret", "dev-default":
			logger.Warn("2FA encryption key not configured, using non-production fallback",
				zap.String("strategy", s.name))
		default:
			logger.Debug("2FA encryption key loaded", zap.String("strategy", s.name))
		}
		return key, s.name, nil
	}

	return nil, "", ErrKeyNotConfigured
}

func hexKey(cfg KeyConfig) ([]byte, bool, error) {
	if cfg.Material == "" {
		return nil, false, nil
	}
	key, err := hex.DecodeString(cfg.Material)
	if err != nil || len(key) != KeySize {
		return nil, false, nil
	}
	return key, true, nil
}

func base64Key(cfg KeyConfig) ([]byte, bool, error) {
	if cfg.Material == "" {
		return nil, false, nil
	}
	key, err := base64.StdEncoding.DecodeString(cfg.Material)
	if err != nil || len(key) != KeySize {
		return nil, false, nil
	}
	return key, true, nil
}

func passphraseKey(cfg KeyConfig) ([]byte, bool, error) {
	if cfg.Material == "" {
		return nil, false, nil
	}
	if cfg.Strict {
		return nil, false, ErrInvalidKeyLength
	}
	return sha256Key(cfg.Material), true, nil
}

func fallbackSecretKey(cfg KeyConfig) ([]byte, bool, error) {
	if cfg.Material != "" || cfg.Production || cfg.FallbackSecret == "" {
		return nil, false, nil
	}
	return sha256Key(cfg.FallbackSecret), true, nil
}

func devDefaultKey(cfg KeyConfig) ([]byte, bool, error) {
	if cfg.Material != "" || cfg.Production {
		return nil, false, nil
	}
	return sha256Key(DevDefaultKeyMaterial), true, nil
}

func sha256Key(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}

// GenerateKey 生成随机的32字节密钥
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Join(ErrGenerateKeyFailed, err)
	}
	return key, nil
}

// GenerateEncodedKey 生成 base64 编码的随机密钥，可直接写入 TWOFA_ENCRYPTION_KEY
func GenerateEncodedKey() (string, error) {
	key, err := GenerateKey()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// IsProductionEnv 判断环境名称是否为生产环境
func IsProductionEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod":
		return true
	}
	return false
}
