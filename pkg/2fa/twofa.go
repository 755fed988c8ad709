// Package twofa 组合密钥生成、otpauth URI、TOTP 验证和密钥加密，
// 是认证子系统接入双因素认证时唯一需要依赖的入口。
//
// 典型流程：
//
//	cipher, err := envelope.NewCipherFromConfig(cfg.KeyConfig())
//	svc := twofa.New(cipher, twofa.WithIssuer(cfg.TwoFA.Issuer))
//
//	secret, _ := svc.GenerateSecret()
//	uri := svc.BuildOtpAuthURL(provision.Params{Email: "alice@example.com", Secret: secret})
//	stored, _ := svc.EncryptSecret(secret)
//
//	// 登录时
//	secret, err = svc.DecryptSecret(stored)
//	ok := svc.VerifyCode(twofa.VerifyParams{Code: "123456", Secret: secret})
package twofa

import (
	stderrors "errors"

	"github.com/iceymoss/go-2fa/pkg/2fa/envelope"
	"github.com/iceymoss/go-2fa/pkg/2fa/provision"
	"github.com/iceymoss/go-2fa/pkg/2fa/totp"
	"github.com/iceymoss/go-2fa/pkg/errors"
	"github.com/iceymoss/go-2fa/pkg/logger"
	"github.com/iceymoss/go-2fa/pkg/xerr"

	"go.uber.org/zap"
)

// VerifyParams 验证请求
type VerifyParams struct {
	Code   string // 用户提交的6位验证码
	Secret string // Base32 编码的共享密钥（已解密）
}

// Service 双因素认证门面，自身不保存任何密钥
type Service struct {
	cipher *envelope.Cipher
	totp   *totp.Service
	issuer string
}

// Option 配置 Service
type Option func(*Service)

// WithTOTP 替换 TOTP 服务（时钟、窗口）
func WithTOTP(t *totp.Service) Option {
	return func(s *Service) {
		if t != nil {
			s.totp = t
		}
	}
}

// WithIssuer 设置默认发行者名称
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		s.issuer = issuer
	}
}

// New 创建门面；cipher 为 nil 时加解密一律失败
func New(cipher *envelope.Cipher, opts ...Option) *Service {
	s := &Service{
		cipher: cipher,
		totp:   totp.New(totp.WithWindow(totp.DefaultWindow)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateSecret 生成新的 Base32 共享密钥
func (s *Service) GenerateSecret() (string, error) {
	secret, err := provision.GenerateSecret()
	if err != nil {
		return "", errors.Wrap(xerr.TWOFA_SECRET_GENERATE_ERROR, err)
	}
	return secret, nil
}

// BuildOtpAuthURL 生成认证器绑定 URI，Issuer 为空时使用默认发行者
func (s *Service) BuildOtpAuthURL(p provision.Params) string {
	if p.Issuer == "" {
		p.Issuer = s.issuer
	}
	return provision.BuildOtpAuthURL(p)
}

// EncryptSecret 加密共享密钥用于持久化
func (s *Service) EncryptSecret(secret string) (string, error) {
	if s.cipher == nil {
		return "", errors.Wrap(xerr.TWOFA_KEY_CONFIG_ERROR, envelope.ErrKeyNotConfigured)
	}
	out, err := s.cipher.Encrypt(secret)
	if err != nil {
		logger.Error("encrypt 2FA secret failed", zap.Error(err))
		return "", errors.Wrap(xerr.TWOFA_ENCRYPT_ERROR, err)
	}
	return out, nil
}

// DecryptSecret 解密持久化的共享密钥
//
// 返回的错误为 *errors.CodeMsg，可用 errors.Is 判断
// envelope.ErrInvalidEnvelope / envelope.ErrDecryptionFailed。
func (s *Service) DecryptSecret(env string) (string, error) {
	if s.cipher == nil {
		return "", errors.Wrap(xerr.TWOFA_KEY_CONFIG_ERROR, envelope.ErrKeyNotConfigured)
	}
	secret, err := s.cipher.Decrypt(env)
	if err == nil {
		return secret, nil
	}

	code := xerr.TWOFA_DECRYPT_ERROR
	if stderrors.Is(err, envelope.ErrInvalidEnvelope) {
		code = xerr.TWOFA_ENVELOPE_FORMAT_ERROR
	}
	logger.Warn("decrypt 2FA secret failed", zap.Int("code", code), zap.Error(err))
	return "", errors.Wrap(code, err)
}

// VerifyCode 以默认窗口（±1个周期）验证验证码
func (s *Service) VerifyCode(p VerifyParams) bool {
	return s.totp.ValidateCode(p.Secret, p.Code)
}
