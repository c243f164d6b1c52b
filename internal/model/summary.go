package model

// TableSummary는 테이블 하나에 대한 fetch/map/load 집계입니다
type TableSummary struct {
	Fetched int `json:"fetched"`
	Mapped  int `json:"mapped"`
	Dropped int `json:"dropped"`
	Loaded  int `json:"loaded"`
	Chunks  int `json:"chunks"`
}

// MigrationSummary는 마이그레이션 1회 실행의 집계 결과입니다
// Step Functions 태스크 출력으로도 그대로 직렬화됩니다
type MigrationSummary struct {
	Rooms        TableSummary `json:"rooms"`
	Reservations TableSummary `json:"reservations"`
	// ActiveRoomsOnly는 관리자 토큰 없이 실행되어 비활성 회의실이
	// 이관 대상에서 빠졌음을 나타냅니다. 실패는 아니지만 구조적으로
	// 불완전한 이관이므로 운영자에게 반드시 노출해야 합니다.
	ActiveRoomsOnly bool `json:"active_rooms_only"`
}

// BackfillSummary는 해시 backfill 1회 실행의 집계 결과입니다
// Failed가 0보다 크면 부분 실패이며 프로세스는 종료 코드 2로 끝납니다
type BackfillSummary struct {
	Fetched    int  `json:"fetched"`
	Candidates int  `json:"candidates"`
	Updated    int  `json:"updated"`
	Failed     int  `json:"failed"`
	DryRun     bool `json:"dry_run"`
}

// VerifySummary는 타깃 DB 직접 조회로 얻은 검증 결과입니다
type VerifySummary struct {
	Rooms                   int      `json:"rooms"`
	Reservations            int      `json:"reservations"`
	PlaceholderReservations int      `json:"placeholder_reservations"`
	PlaceholderSampleIDs    []string `json:"placeholder_sample_ids,omitempty"`
}
