package repository

import "fmt"

// 원격 호출 실패는 "상대가 거부했는가"와 "상대에 닿지 못했는가"를
// 구분해서 타입으로 노출합니다. 거부는 재시도해도 소용이 없고,
// 도달 실패는 운영자가 네트워크/타임아웃을 의심해야 하기 때문입니다.

// SourceRejectedError는 소스 API가 응답했지만 success=false로
// 액션을 거부했음을 나타냅니다
type SourceRejectedError struct {
	Action  string
	Message string
}

func (e *SourceRejectedError) Error() string {
	return fmt.Sprintf("source rejected action=%s: %s", e.Action, e.Message)
}

// SourceUnreachableError는 소스 API에 대한 전송 실패입니다
// 타임아웃, 2xx가 아닌 상태 코드, 해석 불가능한 본문을 모두 포함합니다
type SourceUnreachableError struct {
	Action string
	Err    error
}

func (e *SourceUnreachableError) Error() string {
	return fmt.Sprintf("source unreachable for action=%s: %v", e.Action, e.Err)
}

func (e *SourceUnreachableError) Unwrap() error { return e.Err }

// LoadRejectedError는 타깃 스토어가 배치 쓰기를 거부했음을 나타냅니다
// 거부된 청크는 통째로 실패하며, 해당 테이블의 남은 청크는 시도하지 않습니다
type LoadRejectedError struct {
	Table      string
	StatusCode int
	Body       string
}

func (e *LoadRejectedError) Error() string {
	return fmt.Sprintf("load rejected for table=%s: status=%d body=%s", e.Table, e.StatusCode, e.Body)
}

// LoadUnreachableError는 타깃 스토어에 대한 전송 실패입니다
type LoadUnreachableError struct {
	Table string
	Err   error
}

func (e *LoadUnreachableError) Error() string {
	return fmt.Sprintf("load unreachable for table=%s: %v", e.Table, e.Err)
}

func (e *LoadUnreachableError) Unwrap() error { return e.Err }
