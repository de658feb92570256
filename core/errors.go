package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 只有两类错误会越过组件边界到达调用方：
//   - INVALID_INPUT：请求字段缺失/非法（客户端错误，不做任何后端调用）
//   - INTERNAL_ERROR：存储读失败（对外统一为 internal_error，不暴露内部信息）
//
// UNAVAILABLE 只在 cache / embedding 组件内部使用，在各自边界被吸收并降级。
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "INVALID_INPUT"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "recall", "request"）
	Err     error  // 底层错误（可选）
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// Is 按 Module + Code 匹配，使 errors.Is(err, ErrStoreNotFound) 对包装后的错误同样成立。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && (t.Module == "" || e.Module == t.Module)
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链上的 DomainError，如果没有则返回 nil
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// WrapDomainError 创建携带底层错误的领域错误
func WrapDomainError(module, code, message string, err error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 上游不可用（降级）
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
)

// 模块名称常量
const (
	ModuleStore   = "store"   // 缓存存储
	ModuleStorage = "storage" // 地点/评论存储
	ModuleService = "service" // 外部服务
	ModuleRequest = "request" // 请求校验
)

var (
	// ErrInvalidInput 表示请求字段缺失或非法
	ErrInvalidInput = NewDomainError(ModuleRequest, ErrorCodeInvalidInput, "userId, lat and lon required")

	// ErrStorage 表示地点/评论存储读失败
	ErrStorage = NewDomainError(ModuleStorage, ErrorCodeInternalError, "storage failure")

	// ErrUnavailable 表示上游服务不可用
	ErrUnavailable = NewDomainError(ModuleService, ErrorCodeUnavailable, "upstream unavailable")
)

// InvalidInput 构造一个携带原因的校验错误
func InvalidInput(err error) error {
	return WrapDomainError(ModuleRequest, ErrorCodeInvalidInput, ErrInvalidInput.Message, err)
}

// StorageFailure 构造一个存储失败错误
func StorageFailure(op string, err error) error {
	return WrapDomainError(ModuleStorage, ErrorCodeInternalError, "storage: "+op, err)
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	return hasCode(err, ErrorCodeInvalidInput)
}

// IsStorageFailure 检查错误是否为存储失败
func IsStorageFailure(err error) bool {
	domainErr := GetDomainError(err)
	return domainErr != nil && domainErr.Module == ModuleStorage && domainErr.Code == ErrorCodeInternalError
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	return hasCode(err, ErrorCodeUnavailable)
}

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}
