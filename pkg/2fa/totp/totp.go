// Package totp 提供基于时间的一次性密码(TOTP, RFC 6238)的验证与生成
// 主要功能包括：
//   - 按30秒时间步长计算计数器并委托 HOTP 计算验证码
//   - 在对称时间窗口内比对验证码（补偿客户端与服务器的时钟漂移）
//   - 恒定时间比较，避免通过响应耗时泄露部分匹配信息
//
// 对用户提交的验证码只返回 true/false，从不返回错误。
package totp

import (
	"crypto/subtle"
	"regexp"
	"strings"
	"time"

	"github.com/iceymoss/go-2fa/pkg/2fa/base32"
	"github.com/iceymoss/go-2fa/pkg/2fa/hotp"
)

const (
	Period        = 30 // 时间步长（秒）
	Digits        = hotp.DefaultDigits
	DefaultWindow = 1 // 前后各允许1个周期
)

var tokenRegex = regexp.MustCompile(`^[0-9]{6}$`)

// Counter 计算时间 t 所在的时间步计数器 floor(unix / Period)
func Counter(t time.Time) int64 {
	sec := t.Unix()
	c := sec / Period
	if sec%Period < 0 {
		c--
	}
	return c
}

// Verify 验证 TOTP 验证码
//
// 参数:
//   - token: 用户提交的验证码，首尾空白会被去掉，必须恰好是6位数字
//   - secret: Base32 编码的共享密钥
//   - now: 验证时刻
//   - window: 允许的前后偏移周期数，负数按0处理
//
// 返回:
//   - bool: 窗口内任一计数器匹配时为 true
func Verify(token, secret string, now time.Time, window int) bool {
	token = strings.TrimSpace(token)
	if !tokenRegex.MatchString(token) {
		return false
	}

	key := base32.Decode(secret)
	if len(key) == 0 {
		return false
	}

	if window < 0 {
		window = 0
	}

	counter := Counter(now)
	matched := 0
	// 遍历整个窗口，不提前返回
	for w := -window; w <= window; w++ {
		c := counter + int64(w)
		if c < 0 {
			continue
		}
		code := hotp.Generate(key, uint64(c), Digits)
		matched |= subtle.ConstantTimeCompare([]byte(code), []byte(token))
	}

	return matched == 1
}

// GenerateAt 生成时刻 t 对应的验证码；密钥解码为空时返回空串
func GenerateAt(secret string, t time.Time) string {
	key := base32.Decode(secret)
	if len(key) == 0 {
		return ""
	}
	counter := Counter(t)
	if counter < 0 {
		counter = 0
	}
	return hotp.Generate(key, uint64(counter), Digits)
}

// Service 提供双因素认证的TOTP功能
type Service struct {
	// TimeOffset 用于模拟客户端设备与服务器之间的时钟漂移，只作用于生成验证码
	TimeOffset time.Duration

	window int
	now    func() time.Time
}

// Option 配置 Service
type Option func(*Service)

// WithClock 替换时钟，便于测试
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithWindow 设置默认验证窗口
func WithWindow(window int) Option {
	return func(s *Service) {
		if window >= 0 {
			s.window = window
		}
	}
}

// New 创建新的TOTP服务实例
func New(opts ...Option) *Service {
	s := &Service{
		window: DefaultWindow,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Window 返回默认验证窗口
func (s *Service) Window() int {
	return s.window
}

// ValidateCode 以当前时间和默认窗口验证验证码
func (s *Service) ValidateCode(secret, code string) bool {
	return Verify(code, secret, s.now(), s.window)
}

// ValidateCodeAt 以指定时间和窗口验证验证码
func (s *Service) ValidateCodeAt(secret, code string, t time.Time, window int) bool {
	return Verify(code, secret, t, window)
}

// GenerateCode 为给定密钥生成当前时间（含偏移）的验证码
func (s *Service) GenerateCode(secret string) string {
	return GenerateAt(secret, s.now().Add(s.TimeOffset))
}

// GenerateCodeAt 为给定密钥生成指定时间的验证码
func (s *Service) GenerateCodeAt(secret string, t time.Time) string {
	return GenerateAt(secret, t)
}

// SecureCompare 安全比较两个字符串（防止时序攻击）
func (s *Service) SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// RemainingSeconds 计算当前TOTP周期的剩余秒数
func (s *Service) RemainingSeconds() int {
	now := s.now().Add(s.TimeOffset).Unix()
	rem := int(now % Period)
	if rem < 0 {
		rem += Period
	}
	return Period - rem
}

// SetTimeOffset 设置时间偏移补偿值
func (s *Service) SetTimeOffset(offset time.Duration) {
	s.TimeOffset = offset
}
