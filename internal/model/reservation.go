package model

import (
	"fmt"
	"strings"
)

// PlaceholderPasswordHash는 벌크 마이그레이션 단계에서 reservations.password_hash에
// 채워 넣는 예약 상수입니다. 공개 조회 API는 실제 해시를 내려주지 않으므로
// Phase B에서는 이 값을 넣고, Phase C 전환 전에 backfill 배치로 교체합니다.
// 실제 해시와 형태가 겹치지 않는 값이어야 합니다.
const PlaceholderPasswordHash = "__PHASE_B_PLACEHOLDER__"

// Reservation은 타깃 스토어 reservations 테이블의 한 행입니다
// CreatedAt이 nil이면 컬럼을 생략하여 스토어의 기본값 생성에 맡깁니다
type Reservation struct {
	ID           string  `json:"id"`
	Date         string  `json:"date"`
	Floor        string  `json:"floor"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	TeamName     string  `json:"team_name"`
	UserName     string  `json:"user_name"`
	PasswordHash string  `json:"password_hash"`
	CreatedAt    *string `json:"created_at,omitempty"`
}

// 예약 행의 필수 필드입니다. 하나라도 비어 있으면 그 행은 손상된 것으로
// 간주하여 적재에서 제외합니다(null로 채워 넣지 않습니다).
var requiredReservationFields = []struct {
	legacyKey string
	name      string
}{
	{legacyKeyReservationID, "id"},
	{legacyKeyDate, "date"},
	{legacyKeyFloor, "floor"},
	{legacyKeyStartTime, "start_time"},
	{legacyKeyEndTime, "end_time"},
}

// MapReservations는 레거시 예약 행을 정규화된 Reservation 목록으로 변환합니다
// 필수 필드가 트림 후 비어 있는 행은 오류 없이 제외하고 DroppedRow로만 보고합니다
// password_hash에는 항상 placeholder가 들어갑니다
func MapReservations(raw []map[string]any) ([]Reservation, []DroppedRow) {
	reservations := make([]Reservation, 0, len(raw))
	var dropped []DroppedRow

rows:
	for i, row := range raw {
		for _, f := range requiredReservationFields {
			if stringField(row, f.legacyKey) == "" {
				dropped = append(dropped, DroppedRow{Index: i, Reason: fmt.Sprintf("missing %s", f.name)})
				continue rows
			}
		}

		var createdAt *string
		if v := stringField(row, legacyKeyCreatedAt); v != "" {
			createdAt = &v
		}

		reservations = append(reservations, Reservation{
			ID:           stringField(row, legacyKeyReservationID),
			Date:         stringField(row, legacyKeyDate),
			Floor:        strings.ToUpper(stringField(row, legacyKeyFloor)),
			StartTime:    stringField(row, legacyKeyStartTime),
			EndTime:      stringField(row, legacyKeyEndTime),
			TeamName:     stringField(row, legacyKeyTeamName),
			UserName:     stringField(row, legacyKeyUserName),
			PasswordHash: PlaceholderPasswordHash,
			CreatedAt:    createdAt,
		})
	}

	return reservations, dropped
}

// HashExportRow는 exportReservationHashes 액션이 내려주는 한 행입니다
type HashExportRow struct {
	ReservationID string `json:"reservationId"`
	PasswordHash  string `json:"passwordHash"`
}

// IsBackfillCandidate는 이 행이 backfill 대상인지 판정합니다
// 소스 쪽에서 아직 placeholder인 행은 업스트림에서 해시가 만들어진 적이
// 없다는 뜻이므로 그대로 옮기지 않고 건너뜁니다
func (r HashExportRow) IsBackfillCandidate() bool {
	return r.ReservationID != "" &&
		r.PasswordHash != "" &&
		r.PasswordHash != PlaceholderPasswordHash
}
