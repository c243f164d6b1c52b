package repository

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/go-resty/resty/v2"
)

// 타깃 스토어 쪽 쓰기 타임아웃. 청크 하나가 수백 행까지 갈 수 있어
// 읽기보다 길게 잡습니다.
const targetWriteTimeout = 60 * time.Second

// DefaultBatchSize는 업서트 청크의 기본 크기입니다
const DefaultBatchSize = 500

// TargetRepository는 타깃 스토어(PostgREST) 쓰기를 담당하는 인터페이스입니다
type TargetRepository interface {
	Upsert(ctx context.Context, table string, rows []any, conflictKey string, batchSize int) (UpsertResult, error)
	PatchPasswordHash(ctx context.Context, reservationID, passwordHash string) error
}

// UpsertResult는 테이블 하나에 대한 업서트 실행 결과입니다
// Skipped는 "쓸 행이 없어 요청 자체를 보내지 않았음"을 뜻하며,
// 0건 영향의 성공 쓰기와 구분하기 위해 별도로 노출합니다
type UpsertResult struct {
	Table   string
	Rows    int
	Chunks  int
	Skipped bool
}

// TargetRepositoryImpl은 PostgREST 엔드포인트에 대한 REST 호출로
// TargetRepository를 구현합니다
type TargetRepositoryImpl struct {
	http *resty.Client
}

// NewTargetRepository는 새로운 TargetRepositoryImpl을 작성합니다
// serviceKey는 최종 사용자에게 노출되지 않는 서비스 수준 자격입니다
func NewTargetRepository(baseURL, serviceKey string) *TargetRepositoryImpl {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(targetWriteTimeout).
		SetHeader("apikey", serviceKey).
		SetHeader("Authorization", "Bearer "+serviceKey).
		SetHeader("Content-Type", "application/json")

	return &TargetRepositoryImpl{http: client}
}

// Client는 하부의 resty 클라이언트를 반환합니다. 테스트용입니다.
func (r *TargetRepositoryImpl) Client() *resty.Client {
	return r.http
}

// Upsert는 rows를 batchSize 이하의 연속 청크로 나누어 순서대로 업서트합니다
// 각 청크는 conflictKey 충돌 시 병합(merge-duplicates)으로 처리되므로
// 같은 스냅샷으로 재실행해도 중복 행이 생기지 않습니다
// 청크 하나가 거부되면 남은 청크는 시도하지 않고 바로 실패를 돌려줍니다
func (r *TargetRepositoryImpl) Upsert(ctx context.Context, table string, rows []any, conflictKey string, batchSize int) (UpsertResult, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "TargetRepository.Upsert")
	if seg != nil {
		defer seg.Close(nil)
		if err := seg.AddMetadata("table", table); err != nil {
			log.Printf("Failed to add table metadata: %v", err)
		}
	}

	result := UpsertResult{Table: table}
	if len(rows) == 0 {
		result.Skipped = true
		return result, nil
	}

	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}

	for _, chunk := range chunkRows(rows, batchSize) {
		resp, err := r.http.R().
			SetContext(ctx).
			SetQueryParam("on_conflict", conflictKey).
			// 큰 응답 본문을 받지 않도록 return=minimal을 요청합니다
			SetHeader("Prefer", "resolution=merge-duplicates,return=minimal").
			SetBody(chunk).
			Post("/rest/v1/" + table)
		if err != nil {
			return result, &LoadUnreachableError{Table: table, Err: err}
		}
		if resp.IsError() {
			return result, &LoadRejectedError{
				Table:      table,
				StatusCode: resp.StatusCode(),
				Body:       string(resp.Body()),
			}
		}

		result.Rows += len(chunk)
		result.Chunks++
	}

	return result, nil
}

// PatchPasswordHash는 예약 하나의 password_hash 컬럼만 갱신합니다
// backfill 단계에서 행 단위로 독립 호출됩니다
func (r *TargetRepositoryImpl) PatchPasswordHash(ctx context.Context, reservationID, passwordHash string) error {
	ctx, seg := xray.BeginSubsegment(ctx, "TargetRepository.PatchPasswordHash")
	if seg != nil {
		defer seg.Close(nil)
	}

	resp, err := r.http.R().
		SetContext(ctx).
		SetQueryParam("id", "eq."+reservationID).
		SetHeader("Prefer", "return=minimal").
		SetBody(map[string]string{"password_hash": passwordHash}).
		Patch("/rest/v1/reservations")
	if err != nil {
		return &LoadUnreachableError{Table: "reservations", Err: err}
	}
	if resp.IsError() {
		return &LoadRejectedError{
			Table:      "reservations",
			StatusCode: resp.StatusCode(),
			Body:       string(resp.Body()),
		}
	}

	return nil
}

// chunkRows는 입력 순서를 보존하면서 rows를 size 이하의 연속 청크로 나눕니다
func chunkRows(rows []any, size int) [][]any {
	chunks := make([][]any, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}

// AsRows는 타입이 있는 행 목록을 Upsert가 받는 형태로 변환합니다
func AsRows[T any](rows []T) []any {
	out := make([]any, len(rows))
	for i := range rows {
		out[i] = rows[i]
	}
	return out
}
