package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/meetroom-app/meetroom-batch/internal/common/config"
	"github.com/meetroom-app/meetroom-batch/internal/model"
	"github.com/meetroom-app/meetroom-batch/internal/repository"
)

// MockSourceRepository는 테스트용 소스 리포지토리입니다
type MockSourceRepository struct {
	rooms           []map[string]any
	roomsErr        error
	reservations    []map[string]any
	reservationsErr error
	hashRows        []model.HashExportRow
	hashErr         error

	fetchRoomsCalled        bool
	includeInactive         bool
	fetchReservationsCalled bool
	exportCalled            bool
}

func (m *MockSourceRepository) FetchRooms(ctx context.Context, includeInactive bool) ([]map[string]any, error) {
	m.fetchRoomsCalled = true
	m.includeInactive = includeInactive
	return m.rooms, m.roomsErr
}

func (m *MockSourceRepository) FetchReservations(ctx context.Context) ([]map[string]any, error) {
	m.fetchReservationsCalled = true
	return m.reservations, m.reservationsErr
}

func (m *MockSourceRepository) ExportReservationHashes(ctx context.Context) ([]model.HashExportRow, error) {
	m.exportCalled = true
	return m.hashRows, m.hashErr
}

type upsertCall struct {
	table       string
	rows        []any
	conflictKey string
	batchSize   int
}

type patchCall struct {
	reservationID string
	passwordHash  string
}

// MockTargetRepository는 테스트용 타깃 리포지토리입니다
type MockTargetRepository struct {
	upserts    []upsertCall
	upsertErrs map[string]error // 테이블명 -> 오류
	patches    []patchCall
	patchErrs  map[string]error // 예약ID -> 오류
}

func (m *MockTargetRepository) Upsert(ctx context.Context, table string, rows []any, conflictKey string, batchSize int) (repository.UpsertResult, error) {
	m.upserts = append(m.upserts, upsertCall{table: table, rows: rows, conflictKey: conflictKey, batchSize: batchSize})

	if err := m.upsertErrs[table]; err != nil {
		return repository.UpsertResult{Table: table}, err
	}
	if len(rows) == 0 {
		return repository.UpsertResult{Table: table, Skipped: true}, nil
	}
	return repository.UpsertResult{Table: table, Rows: len(rows), Chunks: 1}, nil
}

func (m *MockTargetRepository) PatchPasswordHash(ctx context.Context, reservationID, passwordHash string) error {
	if err := m.patchErrs[reservationID]; err != nil {
		return err
	}
	m.patches = append(m.patches, patchCall{reservationID: reservationID, passwordHash: passwordHash})
	return nil
}

func newTestMigrationBatchService(source *MockSourceRepository, target *MockTargetRepository, cfg *config.Config) *MigrationBatchService {
	return &MigrationBatchService{
		source: source,
		target: target,
		cfg:    cfg,
	}
}

func TestMigrationBatchService_Run(t *testing.T) {
	source := &MockSourceRepository{
		rooms: []map[string]any{
			{"층": "6F", "활성화": true},
			{"층": ""}, // 매핑에서 제외되는 행
		},
		reservations: []map[string]any{
			{"예약ID": "r1", "날짜": "2024-01-01", "층": "6f", "시작시간": "09:00", "종료시간": "10:00"},
			{"예약ID": "r2"}, // 필수 필드 누락
		},
	}
	target := &MockTargetRepository{}
	cfg := &config.Config{BatchSize: 500}

	service := newTestMigrationBatchService(source, target, cfg)
	if err := service.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !source.fetchRoomsCalled || !source.fetchReservationsCalled {
		t.Error("expected both fetch stages to run")
	}
	if source.includeInactive {
		t.Error("includeInactive should be false without an admin token")
	}

	// 업서트는 rooms, reservations 순서로 한 번씩
	if len(target.upserts) != 2 {
		t.Fatalf("expected 2 upserts, got %d", len(target.upserts))
	}
	if target.upserts[0].table != "rooms" || target.upserts[1].table != "reservations" {
		t.Errorf("unexpected upsert order: %s, %s", target.upserts[0].table, target.upserts[1].table)
	}
	for _, call := range target.upserts {
		if call.conflictKey != "id" {
			t.Errorf("conflictKey = %q, want %q", call.conflictKey, "id")
		}
		if call.batchSize != 500 {
			t.Errorf("batchSize = %d, want 500", call.batchSize)
		}
	}

	// 매핑된 예약에는 placeholder가 들어 있어야 합니다
	reservationRows := target.upserts[1].rows
	if len(reservationRows) != 1 {
		t.Fatalf("expected 1 mapped reservation, got %d", len(reservationRows))
	}
	reservation, ok := reservationRows[0].(model.Reservation)
	if !ok {
		t.Fatalf("unexpected row type %T", reservationRows[0])
	}
	if reservation.PasswordHash != model.PlaceholderPasswordHash {
		t.Errorf("PasswordHash = %q, want placeholder", reservation.PasswordHash)
	}

	summary := service.Summary()
	if summary == nil {
		t.Fatal("Summary() is nil after Run")
	}
	if summary.Rooms.Fetched != 2 || summary.Rooms.Mapped != 1 || summary.Rooms.Dropped != 1 {
		t.Errorf("rooms summary = %+v", summary.Rooms)
	}
	if summary.Reservations.Fetched != 2 || summary.Reservations.Mapped != 1 || summary.Reservations.Dropped != 1 {
		t.Errorf("reservations summary = %+v", summary.Reservations)
	}
	if !summary.ActiveRoomsOnly {
		t.Error("ActiveRoomsOnly should be true without an admin token")
	}
}

func TestMigrationBatchService_RunWithAdminToken(t *testing.T) {
	source := &MockSourceRepository{}
	target := &MockTargetRepository{}
	cfg := &config.Config{BatchSize: 500}
	cfg.Source.AdminToken = "admin-token"

	service := newTestMigrationBatchService(source, target, cfg)
	if err := service.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !source.includeInactive {
		t.Error("includeInactive should be true with an admin token")
	}
	if service.Summary().ActiveRoomsOnly {
		t.Error("ActiveRoomsOnly should be false with an admin token")
	}
}

func TestMigrationBatchService_FetchFailureShortCircuits(t *testing.T) {
	source := &MockSourceRepository{
		roomsErr: &repository.SourceUnreachableError{Action: "getRooms", Err: errors.New("timeout")},
	}
	target := &MockTargetRepository{}

	service := newTestMigrationBatchService(source, target, &config.Config{BatchSize: 500})
	err := service.Run(context.Background())
	if err == nil {
		t.Fatal("expected Run() to fail")
	}

	// 회의실 조회가 실패하면 이후 단계는 실행되지 않습니다
	if source.fetchReservationsCalled {
		t.Error("reservations fetch should not run after rooms fetch failure")
	}
	if len(target.upserts) != 0 {
		t.Errorf("expected no upserts, got %d", len(target.upserts))
	}
	if service.Summary() != nil {
		t.Error("Summary() should stay nil after a failed run")
	}
}

func TestMigrationBatchService_LoadFailureShortCircuits(t *testing.T) {
	source := &MockSourceRepository{
		rooms: []map[string]any{{"층": "6F"}},
		reservations: []map[string]any{
			{"예약ID": "r1", "날짜": "2024-01-01", "층": "6F", "시작시간": "09:00", "종료시간": "10:00"},
		},
	}
	target := &MockTargetRepository{
		upsertErrs: map[string]error{
			"rooms": &repository.LoadRejectedError{Table: "rooms", StatusCode: 400},
		},
	}

	service := newTestMigrationBatchService(source, target, &config.Config{BatchSize: 500})
	err := service.Run(context.Background())
	if err == nil {
		t.Fatal("expected Run() to fail")
	}

	var rejected *repository.LoadRejectedError
	if !errors.As(err, &rejected) {
		t.Errorf("expected LoadRejectedError in chain, got %v", err)
	}

	// rooms 적재가 실패하면 reservations 적재는 시도하지 않습니다
	if len(target.upserts) != 1 {
		t.Errorf("expected 1 upsert attempt, got %d", len(target.upserts))
	}
}
