// Package base32 实现 TOTP 共享密钥使用的 RFC 4648 Base32 编解码
//
// 编码输出不带 '=' 填充；解码是宽松的：忽略大小写、去掉尾部填充、
// 跳过字母表以外的字符（例如用户手动输入时夹带的空格和连字符）。
// 解码结果的长度需要由调用方自行校验。
package base32

import (
	"strings"
)

// Alphabet RFC 4648 标准字母表
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// decodeMap 字符到5位值的映射，-1 表示不在字母表中
var decodeMap = func() [256]int8 {
	var m [256]int8
	for i := range m {
		m[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		m[Alphabet[i]] = int8(i)
	}
	return m
}()

// Encode 将字节序列编码为无填充的 Base32 文本
func Encode(src []byte) string {
	if len(src) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow((len(src)*8 + 4) / 5)

	var buffer uint32
	bits := 0
	for _, b := range src {
		buffer = buffer<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			sb.WriteByte(Alphabet[(buffer>>uint(bits))&0x1f])
		}
	}
	// 最后不足5位的部分左移补零
	if bits > 0 {
		sb.WriteByte(Alphabet[(buffer<<uint(5-bits))&0x1f])
	}

	return sb.String()
}

// Decode 宽松解码 Base32 文本
//
// 不会返回错误：非法字符被跳过，末尾不足8位的比特被丢弃，
// 空串或全部非法时返回长度为0的结果。
func Decode(s string) []byte {
	s = strings.TrimRight(strings.ToUpper(s), "=")

	out := make([]byte, 0, len(s)*5/8)
	var buffer uint32
	bits := 0
	for i := 0; i < len(s); i++ {
		v := decodeMap[s[i]]
		if v < 0 {
			continue
		}
		buffer = buffer<<5 | uint32(v)
		bits += 5
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(buffer>>uint(bits)))
		}
	}

	return out
}
