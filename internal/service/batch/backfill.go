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

// BackfillBatchService는 예약 비밀번호 해시 backfill을 담당합니다
// 소스의 관리자 전용 export에서 실제 해시를 받아 행 단위 PATCH로
// placeholder를 교체합니다. 행 하나의 실패가 나머지 행을 막지 않습니다.
type BackfillBatchService struct {
	source    repository.SourceRepository
	target    repository.TargetRepository
	sfnClient *sfn.Client
	cfg       *config.Config
	summary   *model.BackfillSummary
}

// NewBackfillBatchService는 새로운 BackfillBatchService를 작성합니다
// backfill은 벌크 조회 자격으로는 실행할 수 없으므로 관리자 토큰이 필수입니다
func NewBackfillBatchService(cfg *config.Config, sfnClient *sfn.Client) (*BackfillBatchService, error) {
	if cfg.Source.AdminToken == "" {
		return nil, &config.ConfigError{Key: "ADMIN_TOKEN", Reason: "required for the hash backfill batch"}
	}

	return &BackfillBatchService{
		source:    repository.NewSourceRepository(cfg.Source.URL, cfg.Source.AdminToken, cfg.Source.ProxySecret),
		target:    repository.NewTargetRepository(cfg.Target.URL, cfg.Target.ServiceKey),
		sfnClient: sfnClient,
		cfg:       cfg,
	}, nil
}

// Summary는 마지막 실행의 집계 결과를 반환합니다. Run 전에는 nil입니다.
func (s *BackfillBatchService) Summary() *model.BackfillSummary {
	return s.summary
}

// Run은 backfill 배치를 실행합니다
// 행 단위 실패는 여기서 흡수되어 카운트로만 남으므로, 부분 실패 여부는
// 반환 오류가 아니라 Summary().Failed로 판정해야 합니다
func (s *BackfillBatchService) Run(ctx context.Context) error {
	ctx, seg := xray.BeginSubsegment(ctx, "BackfillBatchService.Run")
	if seg != nil {
		defer seg.Close(nil)
	}

	startTime := time.Now()

	log.Printf("[step] export reservation hashes from source")
	rows, err := s.source.ExportReservationHashes(ctx)
	if err != nil {
		return utils.GetStackWithError(fmt.Errorf("failed to export reservation hashes: %w", err))
	}

	// 식별자나 해시가 비어 있는 행, 소스 쪽에서 아직 placeholder인 행은
	// backfill 대상이 아닙니다
	candidates := make([]model.HashExportRow, 0, len(rows))
	for _, row := range rows {
		if row.IsBackfillCandidate() {
			candidates = append(candidates, row)
		}
	}

	summary := &model.BackfillSummary{
		Fetched:    len(rows),
		Candidates: len(candidates),
		DryRun:     s.cfg.DryRun,
	}

	log.Printf("[info] fetched hashes: %d", len(rows))
	log.Printf("[info] backfill candidates: %d", len(candidates))

	if s.cfg.DryRun {
		s.summary = summary
		log.Printf("[done] DRY_RUN=true, no updates were sent")
		if err := sendTaskSuccess(ctx, s.sfnClient, s.cfg.SFN.TaskToken, summary); err != nil {
			return utils.GetStackWithError(fmt.Errorf("failed to send task success: %w", err))
		}
		return nil
	}

	for _, row := range candidates {
		if err := s.target.PatchPasswordHash(ctx, row.ReservationID, row.PasswordHash); err != nil {
			summary.Failed++
			log.Printf("[warn] failed id=%s: %v", row.ReservationID, err)
			continue
		}
		summary.Updated++
	}

	s.summary = summary
	log.Printf("[done] updated=%d, failed=%d", summary.Updated, summary.Failed)

	if err := sendTaskSuccess(ctx, s.sfnClient, s.cfg.SFN.TaskToken, summary); err != nil {
		return utils.GetStackWithError(fmt.Errorf("failed to send task success: %w", err))
	}

	duration := time.Since(startTime)
	if seg != nil {
		if err := seg.AddMetadata("duration", duration.String()); err != nil {
			log.Printf("Failed to add duration metadata: %v", err)
		}
	}

	log.Printf("Backfill batch process completed. Duration: %v", duration)
	return nil
}
