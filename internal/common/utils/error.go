package utils

import (
	"fmt"
	"runtime/debug"
)

// GetStackWithError는 오류에 스택 트레이스를 붙여 반환합니다
func GetStackWithError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w\nStack trace:\n%s", err, debug.Stack())
}
