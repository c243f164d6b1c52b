package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/go-resty/resty/v2"

	"github.com/meetroom-app/meetroom-batch/internal/model"
)

// 소스(Apps Script) API의 읽기 타임아웃. 조회 전용이므로 쓰기보다 짧게 잡습니다.
const sourceReadTimeout = 30 * time.Second

// SourceRepository는 레거시 소스 API 읽기를 담당하는 인터페이스입니다
type SourceRepository interface {
	FetchRooms(ctx context.Context, includeInactive bool) ([]map[string]any, error)
	FetchReservations(ctx context.Context) ([]map[string]any, error)
	ExportReservationHashes(ctx context.Context) ([]model.HashExportRow, error)
}

// sourceEnvelope는 소스 API의 공통 응답 봉투입니다
type sourceEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// SourceRepositoryImpl은 Apps Script 웹앱 엔드포인트에 대한 GET 호출로
// SourceRepository를 구현합니다. 읽기 전용이며 재시도는 하지 않습니다.
type SourceRepositoryImpl struct {
	http        *resty.Client
	adminToken  string
	proxySecret string
}

// NewSourceRepository는 새로운 SourceRepositoryImpl을 작성합니다
// adminToken과 proxySecret은 비어 있을 수 있으며, 비어 있으면 쿼리에 붙지 않습니다
func NewSourceRepository(baseURL, adminToken, proxySecret string) *SourceRepositoryImpl {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(sourceReadTimeout).
		SetHeader("Accept", "application/json")

	return &SourceRepositoryImpl{
		http:        client,
		adminToken:  adminToken,
		proxySecret: proxySecret,
	}
}

// Client는 하부의 resty 클라이언트를 반환합니다. 테스트에서 transport를
// 바꿔 끼우기 위한 용도입니다.
func (r *SourceRepositoryImpl) Client() *resty.Client {
	return r.http
}

// fetch는 action과 파라미터를 쿼리 스트링으로 붙여 GET을 실행하고
// 응답 봉투를 검증한 뒤 data 부분만 돌려줍니다
func (r *SourceRepositoryImpl) fetch(ctx context.Context, action string, params map[string]string) (json.RawMessage, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "SourceRepository.fetch")
	if seg != nil {
		defer seg.Close(nil)
		if err := seg.AddMetadata("action", action); err != nil {
			log.Printf("Failed to add action metadata: %v", err)
		}
	}

	req := r.http.R().
		SetContext(ctx).
		SetQueryParam("action", action)
	for k, v := range params {
		req.SetQueryParam(k, v)
	}
	if r.proxySecret != "" {
		req.SetQueryParam("proxySecret", r.proxySecret)
	}

	resp, err := req.Get("")
	if err != nil {
		return nil, &SourceUnreachableError{Action: action, Err: err}
	}
	if resp.IsError() {
		return nil, &SourceUnreachableError{
			Action: action,
			Err:    fmt.Errorf("unexpected status %d", resp.StatusCode()),
		}
	}

	var envelope sourceEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, &SourceUnreachableError{
			Action: action,
			Err:    fmt.Errorf("malformed response body: %w", err),
		}
	}
	if !envelope.Success {
		return nil, &SourceRejectedError{Action: action, Message: envelope.Error}
	}

	return envelope.Data, nil
}

// FetchRooms는 회의실 원본 행을 조회합니다
// includeInactive가 true이면 관리자 토큰과 함께 비활성 회의실까지 요청합니다
func (r *SourceRepositoryImpl) FetchRooms(ctx context.Context, includeInactive bool) ([]map[string]any, error) {
	params := map[string]string{}
	if includeInactive {
		params["includeInactive"] = "1"
		params["adminToken"] = r.adminToken
	}

	data, err := r.fetch(ctx, "getRooms", params)
	if err != nil {
		return nil, err
	}

	return decodeRows(data, "getRooms")
}

// FetchReservations는 예약 원본 행을 조회합니다
func (r *SourceRepositoryImpl) FetchReservations(ctx context.Context) ([]map[string]any, error) {
	data, err := r.fetch(ctx, "getReservations", nil)
	if err != nil {
		return nil, err
	}

	return decodeRows(data, "getReservations")
}

// ExportReservationHashes는 예약 비밀번호 해시 export를 조회합니다
// 벌크 조회용 자격으로는 호출할 수 없는 액션이므로 관리자 토큰이 필수입니다
func (r *SourceRepositoryImpl) ExportReservationHashes(ctx context.Context) ([]model.HashExportRow, error) {
	if r.adminToken == "" {
		return nil, fmt.Errorf("admin token is required for exportReservationHashes")
	}

	data, err := r.fetch(ctx, "exportReservationHashes", map[string]string{
		"adminToken": r.adminToken,
	})
	if err != nil {
		return nil, err
	}

	var rows []model.HashExportRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, &SourceUnreachableError{
			Action: "exportReservationHashes",
			Err:    fmt.Errorf("malformed data payload: %w", err),
		}
	}

	return rows, nil
}

// decodeRows는 data 배열을 느슨한 맵의 목록으로 해석합니다
func decodeRows(data json.RawMessage, action string) ([]map[string]any, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, &SourceUnreachableError{
			Action: action,
			Err:    fmt.Errorf("malformed data payload: %w", err),
		}
	}

	return rows, nil
}
