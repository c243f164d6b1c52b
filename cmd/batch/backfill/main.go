package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-xray-sdk-go/xray"

	"github.com/meetroom-app/meetroom-batch/internal/common/config"
	"github.com/meetroom-app/meetroom-batch/internal/common/utils"
	"github.com/meetroom-app/meetroom-batch/internal/service/batch"
)

const (
	projectName = "meetroom-batch"
)

// 종료 코드: 0 = 전체 성공, 1 = 설정/치명적 오류, 2 = 부분 실패
// (일부 행은 갱신되고 일부는 실패). 운영 절차가 이 구분에 의존합니다.
func main() {
	// 커맨드라인 인자 파싱
	timeout := flag.Duration("timeout", 5*time.Minute, "배치 처리 타임아웃")
	flag.Parse()

	// 마지막 인자로 전달된 태스크 토큰을 가져옵니다
	// ENV=LOCAL이면 태스크 토큰 없이 실행합니다
	taskToken := "DUMMY_TASK_TOKEN"
	if os.Getenv("ENV") != "LOCAL" {
		taskToken = flag.Arg(len(flag.Args()) - 1)
		if taskToken == "" {
			log.Fatalf("Task token is required")
		}
	}

	// 설정 읽기
	cfg, err := config.Load(taskToken)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// X-Ray 설정
	if cfg.EnableTracing {
		if err := xray.Configure(xray.Config{
			DaemonAddr:     "127.0.0.1:2000", // X-Ray 데몬 주소
			ServiceVersion: "1.0.0",
		}); err != nil {
			log.Printf("Failed to configure X-Ray: %v", err)
			// X-Ray 설정 실패 시 기본 설정을 사용합니다
			if configErr := xray.Configure(xray.Config{}); configErr != nil {
				log.Fatalf("Failed to configure default X-Ray settings: %v", configErr)
			}
		}
		os.Setenv("AWS_XRAY_CONTEXT_MISSING", "LOG_ERROR")
	}

	// Step Functions 클라이언트 초기화
	var sfnClient *sfn.Client
	if os.Getenv("ENV") != "LOCAL" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			log.Fatalf("Failed to load AWS config: %v\nStack trace:\n%s", err, debug.Stack())
		}
		sfnClient = sfn.NewFromConfig(awsCfg)
	}

	// 서비스 초기화. ADMIN_TOKEN이 없으면 여기서 바로 실패합니다.
	service, err := batch.NewBackfillBatchService(cfg, sfnClient)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}

	// 컨텍스트 생성
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// X-Ray 세그먼트 생성
	if cfg.EnableTracing {
		var seg *xray.Segment
		ctx, seg = xray.BeginSegment(ctx, projectName)
		defer seg.Close(nil)

		if err := seg.AddMetadata("task_token", taskToken); err != nil {
			log.Printf("Failed to add task_token metadata: %v", err)
		}
		if err := seg.AddMetadata("timeout", timeout.String()); err != nil {
			log.Printf("Failed to add timeout metadata: %v", err)
		}
	}

	// 시그널 핸들링
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// 배치 처리 실행
	errChan := make(chan error, 1)
	go func() {
		errChan <- utils.RunWithTimeout(ctx, *timeout, service.Run)
	}()

	// 시그널 또는 에러 대기
	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
		cancel()
	case err := <-errChan:
		if err != nil {
			log.Printf("Batch process failed: %v\nStack trace:\n%s", err, debug.Stack())

			// 로컬 환경이 아닐 때만 Step Functions에 실패를 통지합니다
			if os.Getenv("ENV") != "LOCAL" && sfnClient != nil {
				input := &sfn.SendTaskFailureInput{
					TaskToken: aws.String(taskToken),
					Error:     aws.String("Backfill batch failed"),
				}

				if _, err := sfnClient.SendTaskFailure(ctx, input); err != nil {
					log.Printf("Failed to send task failure: %v\nStack trace:\n%s", err, debug.Stack())
				}
			}

			os.Exit(1)
		}

		// 행 단위 실패는 서비스 안에서 흡수되므로 여기서 집계를 봐야 합니다
		if summary := service.Summary(); summary != nil && summary.Failed > 0 {
			log.Printf("Backfill finished with partial failure: updated=%d failed=%d", summary.Updated, summary.Failed)
			os.Exit(2)
		}

		log.Println("Batch process completed successfully")
	}
}
