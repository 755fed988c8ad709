package xerr

const (
	SERVER_COMMON_ERROR = 100001
	REQUEST_PARAM_ERROR = 100002

	// 双因素认证 2001xx
	TWOFA_SECRET_GENERATE_ERROR = 200101 // 生成共享密钥失败
	TWOFA_ENCRYPT_ERROR         = 200102 // 加密共享密钥失败
	TWOFA_ENVELOPE_FORMAT_ERROR = 200103 // 密文信封格式错误
	TWOFA_DECRYPT_ERROR         = 200104 // 认证标签校验失败或密钥错误
	TWOFA_KEY_CONFIG_ERROR      = 200105 // 加密密钥配置错误（生产环境必须配置）
)

var codeMsg = map[int]string{
	SERVER_COMMON_ERROR:         "服务器内部错误",
	REQUEST_PARAM_ERROR:         "请求参数错误",
	TWOFA_SECRET_GENERATE_ERROR: "生成两步验证密钥失败",
	TWOFA_ENCRYPT_ERROR:         "加密两步验证密钥失败",
	TWOFA_ENVELOPE_FORMAT_ERROR: "两步验证密钥密文格式错误",
	TWOFA_DECRYPT_ERROR:         "解密两步验证密钥失败",
	TWOFA_KEY_CONFIG_ERROR:      "两步验证加密密钥未正确配置",
}

// MapErrMsg 返回错误码对应的默认提示
func MapErrMsg(code int) string {
	if msg, ok := codeMsg[code]; ok {
		return msg
	}
	return codeMsg[SERVER_COMMON_ERROR]
}
