package batch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-xray-sdk-go/xray"

	"github.com/meetroom-app/meetroom-batch/internal/common/config"
	"github.com/meetroom-app/meetroom-batch/internal/common/database"
	"github.com/meetroom-app/meetroom-batch/internal/common/utils"
	"github.com/meetroom-app/meetroom-batch/internal/model"
	"github.com/meetroom-app/meetroom-batch/internal/repository"
)

// placeholder 잔존 예약 ID를 몇 개까지 로그에 보여줄지
const placeholderSampleLimit = 20

// VerifyBatchService는 마이그레이션/backfill 이후의 검증 배치입니다
// 타깃 Postgres에 직접 접속해 테이블 행 수와 placeholder 잔존 수를
// 집계하고, Phase C 전환 조건이 충족되지 않았으면 경고를 남깁니다
type VerifyBatchService struct {
	db         *database.DB
	verifyRepo repository.VerifyRepository
	sfnClient  *sfn.Client
	cfg        *config.Config
	summary    *model.VerifySummary
}

// NewVerifyBatchService는 새로운 VerifyBatchService를 작성합니다
func NewVerifyBatchService(cfg *config.Config, sfnClient *sfn.Client) (*VerifyBatchService, error) {
	db, err := database.NewDB(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	return &VerifyBatchService{
		db:         db,
		verifyRepo: repository.NewVerifyRepository(db.DB),
		sfnClient:  sfnClient,
		cfg:        cfg,
	}, nil
}

// Close는 종료 처리를 합니다
func (s *VerifyBatchService) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Summary는 마지막 실행의 집계 결과를 반환합니다. Run 전에는 nil입니다.
func (s *VerifyBatchService) Summary() *model.VerifySummary {
	return s.summary
}

// Run은 검증 배치를 실행합니다
func (s *VerifyBatchService) Run(ctx context.Context) error {
	ctx, seg := xray.BeginSubsegment(ctx, "VerifyBatchService.Run")
	if seg != nil {
		defer seg.Close(nil)
	}

	startTime := time.Now()
	summary := &model.VerifySummary{}

	log.Printf("[step] count migrated rows in target")
	rooms, err := s.verifyRepo.CountRows(ctx, "rooms")
	if err != nil {
		return utils.GetStackWithError(fmt.Errorf("failed to count rooms: %w", err))
	}
	summary.Rooms = rooms

	reservations, err := s.verifyRepo.CountRows(ctx, "reservations")
	if err != nil {
		return utils.GetStackWithError(fmt.Errorf("failed to count reservations: %w", err))
	}
	summary.Reservations = reservations

	log.Printf("[info] rooms=%d reservations=%d", rooms, reservations)

	log.Printf("[step] count reservations still carrying the placeholder hash")
	placeholders, err := s.verifyRepo.CountPlaceholderReservations(ctx, model.PlaceholderPasswordHash)
	if err != nil {
		return utils.GetStackWithError(fmt.Errorf("failed to count placeholder reservations: %w", err))
	}
	summary.PlaceholderReservations = placeholders

	if placeholders > 0 {
		ids, err := s.verifyRepo.ListPlaceholderReservationIDs(ctx, model.PlaceholderPasswordHash, placeholderSampleLimit)
		if err != nil {
			return utils.GetStackWithError(fmt.Errorf("failed to list placeholder reservations: %w", err))
		}
		summary.PlaceholderSampleIDs = ids

		log.Printf("[warn] %d reservations still carry the placeholder hash; Phase C cutover is not safe yet", placeholders)
		log.Printf("[warn] sample ids: %v", ids)
	} else {
		log.Printf("[info] no placeholder hashes remain; Phase C prerequisites are met")
	}

	s.summary = summary

	if err := sendTaskSuccess(ctx, s.sfnClient, s.cfg.SFN.TaskToken, summary); err != nil {
		return utils.GetStackWithError(fmt.Errorf("failed to send task success: %w", err))
	}

	duration := time.Since(startTime)
	if seg != nil {
		if err := seg.AddMetadata("duration", duration.String()); err != nil {
			log.Printf("Failed to add duration metadata: %v", err)
		}
	}

	log.Printf("Verify batch process completed successfully. Duration: %v", duration)
	return nil
}
