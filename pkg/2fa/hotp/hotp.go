// Package hotp 实现 RFC 4226 基于 HMAC 的一次性密码算法
package hotp

import (
	"crypto/hmac"
	// RFC 4226 / RFC 6238 规定使用 HMAC-SHA1
	"crypto/sha1"
	"encoding/binary"
	"fmt"
)

// DefaultDigits 验证码位数
const DefaultDigits = 6

var pow10 = [...]uint32{1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000, 1000000000}

// Generate 计算给定密钥和计数器的 HOTP 验证码
//
// 参数:
//   - secret: 原始共享密钥（已解码的字节）
//   - counter: 移动因子，按8字节大端序参与 HMAC
//   - digits: 验证码位数，取值 1~9，超出范围时按 DefaultDigits 处理
//
// 返回:
//   - string: 左侧补零到 digits 位的十进制验证码
func Generate(secret []byte, counter uint64, digits int) string {
	if digits < 1 || digits >= len(pow10) {
		digits = DefaultDigits
	}

	msg := make([]byte, 8)
	binary.BigEndian.PutUint64(msg, counter)

	mac := hmac.New(sha1.New, secret)
	mac.Write(msg)
	sum := mac.Sum(nil)

	// 动态截断 (RFC 4226 §5.3)
	offset := sum[len(sum)-1] & 0x0f
	value := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return fmt.Sprintf("%0*d", digits, value%pow10[digits])
}
