package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/meetroom-app/meetroom-batch/internal/common/database"
)

// ConfigError는 필수 설정이 없거나 해석할 수 없음을 나타냅니다
// 설정 오류는 어떤 원격 호출보다 먼저, 종료 코드 1로 프로세스를 끝냅니다
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s", e.Key, e.Reason)
}

// SourceConfig는 레거시 소스 API 접속 설정입니다
type SourceConfig struct {
	URL         string
	AdminToken  string
	ProxySecret string
}

// TargetConfig는 타깃 스토어 REST 접속 설정입니다
type TargetConfig struct {
	URL        string
	ServiceKey string
}

// Config는 프로세스 전체 설정입니다. 기동 시 한 번만 읽어 불변 값으로
// 각 컴포넌트에 전달하며, 컴포넌트가 환경 변수를 직접 읽지 않게 합니다.
type Config struct {
	Source    SourceConfig
	Target    TargetConfig
	DB        database.Config
	BatchSize int
	DryRun    bool
	SFN       struct {
		TaskToken string
	}
	EnableTracing bool
}

// Load는 마이그레이션/backfill 배치의 설정을 읽습니다
// SOURCE_URL, TARGET_URL, TARGET_SERVICE_KEY는 필수입니다
func Load(taskToken string) (*Config, error) {
	sourceURL, err := requireEnv("SOURCE_URL")
	if err != nil {
		return nil, err
	}
	targetURL, err := requireEnv("TARGET_URL")
	if err != nil {
		return nil, err
	}
	serviceKey, err := requireEnv("TARGET_SERVICE_KEY")
	if err != nil {
		return nil, err
	}

	batchSize, err := loadBatchSize()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Source: SourceConfig{
			URL:         sourceURL,
			AdminToken:  strings.TrimSpace(os.Getenv("ADMIN_TOKEN")),
			ProxySecret: strings.TrimSpace(os.Getenv("PROXY_SHARED_SECRET")),
		},
		Target: TargetConfig{
			URL:        targetURL,
			ServiceKey: serviceKey,
		},
		BatchSize: batchSize,
		DryRun:    getEnvAsBool("DRY_RUN"),
	}
	cfg.SFN.TaskToken = taskToken
	cfg.EnableTracing = loadTracingFlag()

	return cfg, nil
}

// LoadVerify는 verify 배치의 설정을 읽습니다
// verify는 타깃 DB에 직접 접속하므로 REST 쪽 설정을 요구하지 않습니다
func LoadVerify(taskToken string) (*Config, error) {
	cfg := &Config{
		DB: database.Config{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvAsIntOrDefault("DB_PORT", 5432),
			UserName: getEnvOrDefault("DB_USERNAME", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("DB_NAME", "postgres"),
			SSLMode:  strings.TrimSpace(os.Getenv("DB_SSL_MODE")),
		},
	}
	cfg.SFN.TaskToken = taskToken
	cfg.EnableTracing = loadTracingFlag()

	return cfg, nil
}

// 환경 변수[MEETROOM_ENABLE_TRACING]을 보고 트레이스를 켭니다. 지원하는 Tracing은 AWS_XRAY뿐입니다.
// 환경 변수[AWS_XRAY_SDK_DISABLED]가 true이면 반드시 트레이스를 끕니다.
func loadTracingFlag() bool {
	enableKey := os.Getenv("MEETROOM_ENABLE_TRACING")
	if !sdkDisabled() && (strings.ToLower(enableKey) == "true" || enableKey == "1") {
		os.Setenv("AWS_XRAY_SDK_DISABLED", "FALSE")
		return true
	}
	os.Setenv("AWS_XRAY_SDK_DISABLED", "TRUE")
	return false
}

func loadBatchSize() (int, error) {
	raw := strings.TrimSpace(os.Getenv("MIGRATION_BATCH_SIZE"))
	if raw == "" {
		return 500, nil
	}

	size, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ConfigError{Key: "MIGRATION_BATCH_SIZE", Reason: fmt.Sprintf("not an integer: %q", raw)}
	}
	if size < 1 {
		size = 1
	}

	return size, nil
}

func requireEnv(key string) (string, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return "", &ConfigError{Key: key, Reason: "missing required environment variable"}
	}
	return value, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Printf("Environment variable %s is not set, using default value", key)
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return value == "true" || value == "1"
}

// Check if SDK is disabled
func sdkDisabled() bool {
	disableKey := os.Getenv("AWS_XRAY_SDK_DISABLED")
	return strings.ToLower(disableKey) == "true"
}
