package errors

import (
	"fmt"

	"github.com/iceymoss/go-2fa/pkg/xerr"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type CodeMsg struct {
	Code int    // 错误码
	Msg  string // 错误消息
	Err  error  // 原始错误
}

// 实现 error 接口
func (e *CodeMsg) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("code=%d, msg=%s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("code=%d, msg=%s", e.Code, e.Msg)
}

// Unwrap 支持 errors.Is / errors.As 穿透到原始错误
func (e *CodeMsg) Unwrap() error {
	return e.Err
}

// GRPCStatus 实现 gRPC 状态转换接口
func (e *CodeMsg) GRPCStatus() *status.Status {
	return status.New(grpcCode(e.Code), e.Msg)
}

func grpcCode(code int) codes.Code {
	switch code {
	case xerr.REQUEST_PARAM_ERROR, xerr.TWOFA_ENVELOPE_FORMAT_ERROR:
		return codes.InvalidArgument
	case xerr.TWOFA_DECRYPT_ERROR:
		return codes.Unauthenticated
	case xerr.TWOFA_KEY_CONFIG_ERROR:
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}

// New 构造函数
func New(code int, msg string) error {
	return &CodeMsg{Code: code, Msg: msg}
}

// Wrap 使用错误码的默认提示包装原始错误
func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}
	return &CodeMsg{Code: code, Msg: xerr.MapErrMsg(code), Err: err}
}
