package batch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-xray-sdk-go/xray"

	"github.com/meetroom-app/meetroom-batch/internal/common/config"
	"github.com/meetroom-app/meetroom-batch/internal/common/utils"
	"github.com/meetroom-app/meetroom-batch/internal/model"
	"github.com/meetroom-app/meetroom-batch/internal/repository"
)

// MigrationBatchService는 Phase B 벌크 마이그레이션을 담당합니다
// 소스에서 회의실/예약 스냅샷을 읽어 정규화한 뒤 타깃 스토어에
// 멱등 업서트합니다. 단계는 선형이며 실패한 단계 이후는 실행하지 않습니다.
type MigrationBatchService struct {
	source    repository.SourceRepository
	target    repository.TargetRepository
	sfnClient *sfn.Client
	cfg       *config.Config
	summary   *model.MigrationSummary
}

// NewMigrationBatchService는 새로운 MigrationBatchService를 작성합니다
func NewMigrationBatchService(cfg *config.Config, sfnClient *sfn.Client) *MigrationBatchService {
	return &MigrationBatchService{
		source:    repository.NewSourceRepository(cfg.Source.URL, cfg.Source.AdminToken, cfg.Source.ProxySecret),
		target:    repository.NewTargetRepository(cfg.Target.URL, cfg.Target.ServiceKey),
		sfnClient: sfnClient,
		cfg:       cfg,
	}
}

// Summary는 마지막 실행의 집계 결과를 반환합니다. Run 전에는 nil입니다.
func (s *MigrationBatchService) Summary() *model.MigrationSummary {
	return s.summary
}

// Run은 마이그레이션 배치를 실행합니다
func (s *MigrationBatchService) Run(ctx context.Context) error {
	ctx, seg := xray.BeginSubsegment(ctx, "MigrationBatchService.Run")
	if seg != nil {
		defer seg.Close(nil)
	}

	startTime := time.Now()

	// 관리자 토큰이 없으면 소스는 활성 회의실만 내려줍니다
	includeInactive := s.cfg.Source.AdminToken != ""
	summary := &model.MigrationSummary{ActiveRoomsOnly: !includeInactive}

	log.Printf("[step] fetch rooms from source")
	roomsRaw, err := s.source.FetchRooms(ctx, includeInactive)
	if err != nil {
		return utils.GetStackWithError(fmt.Errorf("failed to fetch rooms: %w", err))
	}

	rooms, droppedRooms := model.MapRooms(roomsRaw)
	logDroppedRows("rooms", droppedRooms)
	summary.Rooms.Fetched = len(roomsRaw)
	summary.Rooms.Mapped = len(rooms)
	summary.Rooms.Dropped = len(droppedRooms)
	log.Printf("[info] rooms fetched=%d mapped=%d", len(roomsRaw), len(rooms))

	log.Printf("[step] fetch reservations from source")
	reservationsRaw, err := s.source.FetchReservations(ctx)
	if err != nil {
		return utils.GetStackWithError(fmt.Errorf("failed to fetch reservations: %w", err))
	}

	reservations, droppedReservations := model.MapReservations(reservationsRaw)
	logDroppedRows("reservations", droppedReservations)
	summary.Reservations.Fetched = len(reservationsRaw)
	summary.Reservations.Mapped = len(reservations)
	summary.Reservations.Dropped = len(droppedReservations)
	log.Printf("[info] reservations fetched=%d mapped=%d", len(reservationsRaw), len(reservations))

	log.Printf("[step] upsert rooms to target")
	roomResult, err := s.target.Upsert(ctx, "rooms", repository.AsRows(rooms), "id", s.cfg.BatchSize)
	if err != nil {
		return utils.GetStackWithError(fmt.Errorf("failed to upsert rooms: %w", err))
	}
	logUpsertResult(roomResult)
	summary.Rooms.Loaded = roomResult.Rows
	summary.Rooms.Chunks = roomResult.Chunks

	log.Printf("[step] upsert reservations to target")
	reservationResult, err := s.target.Upsert(ctx, "reservations", repository.AsRows(reservations), "id", s.cfg.BatchSize)
	if err != nil {
		return utils.GetStackWithError(fmt.Errorf("failed to upsert reservations: %w", err))
	}
	logUpsertResult(reservationResult)
	summary.Reservations.Loaded = reservationResult.Rows
	summary.Reservations.Chunks = reservationResult.Chunks

	s.summary = summary

	log.Printf("[done] migration completed")
	if summary.ActiveRoomsOnly {
		// 실패는 아니지만 구조적으로 불완전한 이관이므로 반드시 알립니다
		log.Printf("[warn] ADMIN_TOKEN not set: only active rooms were migrated")
	}
	// backfill을 잊는 것이 이 이관의 가장 큰 운영 리스크라 매번 다시 알립니다
	log.Printf("[warn] reservations.password_hash is a placeholder; run the hash backfill batch before the Phase C cutover")

	if err := sendTaskSuccess(ctx, s.sfnClient, s.cfg.SFN.TaskToken, summary); err != nil {
		return utils.GetStackWithError(fmt.Errorf("failed to send task success: %w", err))
	}

	duration := time.Since(startTime)
	if seg != nil {
		if err := seg.AddMetadata("duration", duration.String()); err != nil {
			log.Printf("Failed to add duration metadata: %v", err)
		}
	}

	log.Printf("Migration batch process completed successfully. Duration: %v", duration)
	return nil
}

// logDroppedRows는 매핑에서 제외된 행을 이유와 함께 남깁니다
// 제외는 실패가 아니므로 감사용 로그만 남기고 계속 진행합니다
func logDroppedRows(table string, dropped []model.DroppedRow) {
	for _, d := range dropped {
		log.Printf("[info] %s row %d dropped: %s", table, d.Index, d.Reason)
	}
}

func logUpsertResult(result repository.UpsertResult) {
	if result.Skipped {
		log.Printf("[skip] %s: no rows", result.Table)
		return
	}
	log.Printf("[info] %s loaded=%d chunks=%d", result.Table, result.Rows, result.Chunks)
}
