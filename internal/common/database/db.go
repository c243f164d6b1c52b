package database

import (
	"fmt"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DB는 타깃 Postgres에 대한 직접 연결입니다
// 마이그레이션 본체는 REST로만 쓰지만, verify 배치는 적재 결과를
// 감사하기 위해 스토어에 직접 질의합니다
type DB struct {
	*sqlx.DB
}

// Config는 타깃 DB 접속 설정입니다
type Config struct {
	Host     string
	Port     int
	UserName string
	Password string
	DBName   string
	SSLMode  string
}

// NewDB는 X-Ray 추적이 걸린 Postgres 연결을 만듭니다
func NewDB(cfg Config) (*DB, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		// localhost는 SSL 없이, 그 외에는 SSL을 요구합니다
		if cfg.Host == "localhost" {
			sslMode = "disable"
		} else {
			sslMode = "require"
		}
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.UserName,
		cfg.Password,
		cfg.DBName,
		sslMode,
	)

	db, err := xray.SQLContext("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database with X-Ray: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{sqlx.NewDb(db, "postgres")}, nil
}
