package errors

import (
	"errors"
	"fmt"
)

// ErrorType은 에러의 종류를 나타냅니다
type ErrorType string

const (
	// ErrorTypeValidation은 카탈로그나 설정의 유효성 검증 실패를 나타냅니다
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeToolNotFound는 sysctl/ethtool/tc 등 외부 도구가 없음을 나타냅니다
	ErrorTypeToolNotFound ErrorType = "TOOL_NOT_FOUND"

	// ErrorTypePermissionDenied는 권한 부족으로 도구가 실패했음을 나타냅니다
	ErrorTypePermissionDenied ErrorType = "PERMISSION_DENIED"

	// ErrorTypeInterfaceNotFound는 대상 NIC가 존재하지 않음을 나타냅니다
	ErrorTypeInterfaceNotFound ErrorType = "INTERFACE_NOT_FOUND"

	// ErrorTypeValueRejected는 도구는 실행되었으나 값이 반영되지 않았음을 나타냅니다
	ErrorTypeValueRejected ErrorType = "VALUE_REJECTED"

	// ErrorTypeRead는 현재 값을 읽거나 해석하지 못했음을 나타냅니다
	ErrorTypeRead ErrorType = "READ"

	// ErrorTypeSystem은 시스템 레벨 에러를 나타냅니다
	ErrorTypeSystem ErrorType = "SYSTEM"

	// ErrorTypeTimeout은 타임아웃 에러를 나타냅니다
	ErrorTypeTimeout ErrorType = "TIMEOUT"
)

// DomainError는 도메인 레벨의 에러를 나타냅니다
type DomainError struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error는 error 인터페이스를 구현합니다
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap은 내부 에러를 반환합니다
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is는 에러 비교를 위한 메서드입니다
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// 생성자 함수들

// NewValidationError는 유효성 검증 에러를 생성합니다
func NewValidationError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeValidation,
		Message: message,
		Cause:   cause,
	}
}

// NewToolNotFoundError는 외부 도구를 찾을 수 없는 에러를 생성합니다
func NewToolNotFoundError(tool string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeToolNotFound,
		Message: fmt.Sprintf("tool not found: %s", tool),
		Cause:   cause,
	}
}

// NewPermissionDeniedError는 권한 에러를 생성합니다
func NewPermissionDeniedError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypePermissionDenied,
		Message: message,
		Cause:   cause,
	}
}

// NewInterfaceNotFoundError는 인터페이스 부재 에러를 생성합니다
func NewInterfaceNotFoundError(iface string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeInterfaceNotFound,
		Message: fmt.Sprintf("interface not found: %s", iface),
		Cause:   cause,
	}
}

// NewValueRejectedError는 설정 값이 반영되지 않은 에러를 생성합니다
func NewValueRejectedError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeValueRejected,
		Message: message,
		Cause:   cause,
	}
}

// NewReadError는 현재 값 조회 실패 에러를 생성합니다
func NewReadError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeRead,
		Message: message,
		Cause:   cause,
	}
}

// NewSystemError는 시스템 에러를 생성합니다
func NewSystemError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeSystem,
		Message: message,
		Cause:   cause,
	}
}

// NewTimeoutError는 타임아웃 에러를 생성합니다
func NewTimeoutError(message string) *DomainError {
	return &DomainError{
		Type:    ErrorTypeTimeout,
		Message: message,
	}
}

// 에러 타입 확인 헬퍼 함수들

// TypeOf는 에러 체인에서 가장 바깥쪽 DomainError 중 분류에 의미 있는 타입을 반환합니다.
// READ 에러가 더 구체적인 원인(TOOL_NOT_FOUND 등)을 감싸고 있으면 원인의 타입을 돌려줍니다.
func TypeOf(err error) ErrorType {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return ""
	}
	if domainErr.Type == ErrorTypeRead || domainErr.Type == ErrorTypeSystem {
		if inner := TypeOf(domainErr.Cause); inner != "" && inner != ErrorTypeSystem {
			return inner
		}
	}
	return domainErr.Type
}

func hasType(err error, errType ErrorType) bool {
	for err != nil {
		var domainErr *DomainError
		if !errors.As(err, &domainErr) {
			return false
		}
		if domainErr.Type == errType {
			return true
		}
		err = domainErr.Cause
	}
	return false
}

// IsValidationError는 유효성 검증 에러인지 확인합니다
func IsValidationError(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

// IsToolNotFoundError는 도구 부재 에러인지 확인합니다
func IsToolNotFoundError(err error) bool {
	return hasType(err, ErrorTypeToolNotFound)
}

// IsPermissionDeniedError는 권한 에러인지 확인합니다
func IsPermissionDeniedError(err error) bool {
	return hasType(err, ErrorTypePermissionDenied)
}

// IsInterfaceNotFoundError는 인터페이스 부재 에러인지 확인합니다
func IsInterfaceNotFoundError(err error) bool {
	return hasType(err, ErrorTypeInterfaceNotFound)
}

// IsValueRejectedError는 값 거부 에러인지 확인합니다
func IsValueRejectedError(err error) bool {
	return hasType(err, ErrorTypeValueRejected)
}

// IsReadError는 조회 에러인지 확인합니다
func IsReadError(err error) bool {
	return hasType(err, ErrorTypeRead)
}

// IsSystemError는 시스템 에러인지 확인합니다
func IsSystemError(err error) bool {
	return hasType(err, ErrorTypeSystem)
}

// IsTimeoutError는 타임아웃 에러인지 확인합니다
func IsTimeoutError(err error) bool {
	return hasType(err, ErrorTypeTimeout)
}
