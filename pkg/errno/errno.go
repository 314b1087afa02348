// pkg/errno/errno.go
package errno

import "errors"

// Errno 业务错误码
type Errno struct {
	Code    int
	Message string
}

// Error 实现 error 接口
func (e *Errno) Error() string {
	return e.Message
}

// WithMessage 返回带具体描述的错误副本，错误码不变
func (e *Errno) WithMessage(msg string) *Errno {
	return &Errno{Code: e.Code, Message: msg}
}

// Is 支持 errors.Is 按错误码匹配
func (e *Errno) Is(target error) bool {
	var t *Errno
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

var (
	OK = &Errno{Code: 200, Message: "success"}

	ErrInvalidParameter = &Errno{Code: 400, Message: "invalid parameter"}
	ErrForbidden        = &Errno{Code: 403, Message: "forbidden"}
	ErrNotFound         = &Errno{Code: 404, Message: "not found"}
	ErrConflict         = &Errno{Code: 409, Message: "conflict"}

	ErrInternalServer = &Errno{Code: 500, Message: "internal server error"}
	ErrDatabase       = &Errno{Code: 501, Message: "database error"}
)

// HTTPStatus 业务错误码映射到HTTP状态码
func (e *Errno) HTTPStatus() int {
	switch e.Code {
	case 400:
		return 400
	case 403:
		return 403
	case 404:
		return 404
	case 409:
		return 409
	default:
		return 500
	}
}
