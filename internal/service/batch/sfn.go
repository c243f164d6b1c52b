package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
)

// sendTaskSuccess는 Step Functions 태스크 성공을 통지하고 집계 결과를
// 태스크 출력으로 넘깁니다. 로컬 실행이면 통지를 건너뜁니다.
func sendTaskSuccess(ctx context.Context, client *sfn.Client, taskToken string, output any) error {
	if os.Getenv("ENV") == "LOCAL" || client == nil {
		log.Printf("Local environment detected. Skipping Step Functions task success notification")
		return nil
	}

	if taskToken == "" {
		return fmt.Errorf("task token is not set in config")
	}

	payload, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("failed to marshal task output: %w", err)
	}

	input := &sfn.SendTaskSuccessInput{
		TaskToken: aws.String(taskToken),
		Output:    aws.String(string(payload)),
	}

	if _, err := client.SendTaskSuccess(ctx, input); err != nil {
		return fmt.Errorf("failed to send task success: %w", err)
	}

	log.Printf("Successfully sent task success: %s", string(payload))
	return nil
}
