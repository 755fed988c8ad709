// Package provision 负责生成 TOTP 共享密钥以及认证器应用使用的 otpauth:// URI
package provision

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/iceymoss/go-2fa/pkg/2fa/base32"
)

const (
	SecretSize = 20 // 160位密钥（RFC 4226 推荐长度）
	Algorithm  = "SHA1"
	Digits     = 6
	Period     = 30
)

var ErrGenerateSecret = errors.New("failed to generate TOTP secret")

// Params otpauth URI 的可变部分
type Params struct {
	Issuer string // 认证器中显示的服务名称
	Email  string // 账户标识
	Secret string // Base32 编码的共享密钥
}

// GenerateSecret 从 crypto/rand 读取20字节并进行 Base32 编码
func GenerateSecret() (string, error) {
	return GenerateSecretFrom(rand.Reader)
}

// GenerateSecretFrom 从指定随机源生成密钥，调用方必须传入密码学安全的随机源
func GenerateSecretFrom(r io.Reader) (string, error) {
	secret := make([]byte, SecretSize)
	if _, err := io.ReadFull(r, secret); err != nil {
		return "", errors.Join(ErrGenerateSecret, err)
	}
	return base32.Encode(secret), nil
}

// BuildOtpAuthURL 组装认证器绑定用的 URI
//
// 格式:
//
//	otpauth://totp/{issuer}:{account}?secret={secret}&issuer={issuer}&algorithm=SHA1&digits=6&period=30
//
// 所有可变部分都按 RFC 3986 做百分号编码（空格编码为 %20）。
func BuildOtpAuthURL(p Params) string {
	issuer := escape(p.Issuer)
	return fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s&algorithm=%s&digits=%d&period=%d",
		issuer,
		escape(p.Email),
		escape(p.Secret),
		issuer,
		Algorithm,
		Digits,
		Period,
	)
}

// escape 除 RFC 3986 非保留字符外全部编码
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
