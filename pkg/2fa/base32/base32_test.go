package base32_test

import (
	"crypto/rand"
	stdbase32 "encoding/base32"
	"testing"

	"github.com/iceymoss/go-2fa/pkg/2fa/base32"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RFC 4648 §10 测试向量（去掉填充）
func TestEncodeRFC4648Vectors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"f", "MY"},
		{"fo", "MZXQ"},
		{"foo", "MZXW6"},
		{"foob", "MZXW6YQ"},
		{"fooba", "MZXW6YTB"},
		{"foobar", "MZXW6YTBOI"},
		{"12345678901234567890", "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, base32.Encode([]byte(tt.in)))
			assert.Equal(t, []byte(tt.in), base32.Decode(tt.want))
		})
	}
}

func TestEncodeEmpty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", base32.Encode(nil))
	assert.Equal(t, "", base32.Encode([]byte{}))
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	noPad := stdbase32.StdEncoding.WithPadding(stdbase32.NoPadding)

	for n := 1; n <= 64; n++ {
		b := make([]byte, n)
		_, err := rand.Read(b)
		require.NoError(t, err)

		encoded := base32.Encode(b)
		assert.Equal(t, noPad.EncodeToString(b), encoded, "长度 %d 的编码应与标准库一致", n)
		assert.Equal(t, b, base32.Decode(encoded), "长度 %d 应能往返", n)
	}
}

func TestDecodeLenient(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want []byte
	}{
		{name: "小写", in: "mzxw6ytboi", want: []byte("foobar")},
		{name: "尾部填充", in: "MZXW6YTBOI======", want: []byte("foobar")},
		{name: "空格和连字符", in: "MZXW 6YTB-OI", want: []byte("foobar")},
		{name: "前后空白", in: "  MZXW6YTBOI\n", want: []byte("foobar")},
		{name: "空串", in: "", want: []byte{}},
		{name: "全部非法", in: "0189!@#", want: []byte{}},
		{name: "只有填充", in: "========", want: []byte{}},
		{name: "不足一个字节", in: "M", want: []byte{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := base32.Decode(tt.in)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeDiscardsTrailingBits(t *testing.T) {
	t.Parallel()
	// "MZX" = 15 位，只能产出 1 个完整字节
	assert.Equal(t, []byte("f"), base32.Decode("MZX"))
}
