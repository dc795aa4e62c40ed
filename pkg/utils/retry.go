package utils

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RetryConfig는 재시도 설정
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryConfig는 적용 후 확인(re-read)에 쓰이는 기본 재시도 설정
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:  3,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     5 * time.Second,
	Multiplier:   2.0,
}

// permanentError는 재시도해도 결과가 바뀌지 않는 에러를 표시
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent는 err을 재시도 중단 에러로 감쌉니다
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// RetryWithBackoff는 지수 백오프를 사용한 재시도.
// operation이 Permanent 에러를 반환하면 즉시 중단하고 감싼 에러를 돌려줍니다.
func RetryWithBackoff(ctx context.Context, config RetryConfig, operation func(attempt int) error) error {
	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	multiplier := config.Multiplier
	if multiplier <= 1 {
		multiplier = 2.0
	}
	delay := config.InitialDelay

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = operation(attempt)
		if lastErr == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			// 다음 재시도를 위한 지연 시간 계산
			delay = time.Duration(float64(delay) * multiplier)
			if config.MaxDelay > 0 && delay > config.MaxDelay {
				delay = config.MaxDelay
			}
		}
	}

	return fmt.Errorf("최대 재시도 횟수 초과 (%d회): %w", attempts, lastErr)
}
