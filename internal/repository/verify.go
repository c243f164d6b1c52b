package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/jmoiron/sqlx"
)

// VerifyRepository는 타깃 DB 직접 조회로 적재 결과를 검증하는 인터페이스입니다
type VerifyRepository interface {
	CountRows(ctx context.Context, table string) (int, error)
	CountPlaceholderReservations(ctx context.Context, placeholder string) (int, error)
	ListPlaceholderReservationIDs(ctx context.Context, placeholder string, limit int) ([]string, error)
}

// VerifyRepositoryImpl은 VerifyRepository의 구현입니다
type VerifyRepositoryImpl struct {
	db *sqlx.DB
}

// NewVerifyRepository는 새로운 VerifyRepositoryImpl을 작성합니다
func NewVerifyRepository(db *sqlx.DB) *VerifyRepositoryImpl {
	return &VerifyRepositoryImpl{db: db}
}

// 검증 대상 테이블은 이 두 개뿐입니다. 테이블명을 쿼리에 직접
// 이어 붙이므로 외부 입력을 그대로 받지 않도록 화이트리스트로 막습니다.
var verifiableTables = map[string]bool{
	"rooms":        true,
	"reservations": true,
}

// CountRows는 지정한 테이블의 행 수를 반환합니다
func (r *VerifyRepositoryImpl) CountRows(ctx context.Context, table string) (int, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "VerifyRepository.CountRows")
	if seg != nil {
		defer seg.Close(nil)
	}

	if !verifiableTables[table] {
		return 0, fmt.Errorf("table %q is not verifiable", table)
	}

	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}

	return count, nil
}

// CountPlaceholderReservations는 아직 placeholder 해시를 가진 예약 수를 반환합니다
// 0이 아니면 Phase C(타깃 단독 비밀번호 검증) 전환 조건이 충족되지 않은 상태입니다
func (r *VerifyRepositoryImpl) CountPlaceholderReservations(ctx context.Context, placeholder string) (int, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "VerifyRepository.CountPlaceholderReservations")
	if seg != nil {
		defer seg.Close(nil)
	}

	query := `
		SELECT COUNT(*)
		FROM reservations
		WHERE password_hash = $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, placeholder).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count placeholder reservations: %w", err)
	}

	return count, nil
}

// ListPlaceholderReservationIDs는 placeholder 해시가 남아 있는 예약 ID를
// limit 개까지 반환합니다. 운영자가 backfill 누락을 추적할 때 씁니다.
func (r *VerifyRepositoryImpl) ListPlaceholderReservationIDs(ctx context.Context, placeholder string, limit int) ([]string, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "VerifyRepository.ListPlaceholderReservationIDs")
	if seg != nil {
		defer seg.Close(nil)
	}

	query := `
		SELECT id
		FROM reservations
		WHERE password_hash = $1
		ORDER BY id
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, placeholder, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query placeholder reservations: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan reservation id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating placeholder reservations: %w", err)
	}

	return ids, nil
}
