package utils

import (
	"context"
	"fmt"
	"time"
)

// 지정된 타임아웃 안에서 배치 처리를 실행합니다
// 타임아웃을 넘기면 컨텍스트를 취소하고 오류를 반환합니다
func RunWithTimeout(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	errChan := make(chan error, 1)

	go func() {
		errChan <- fn(ctx)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return fmt.Errorf("batch process timed out after %v", timeout)
	}
}
