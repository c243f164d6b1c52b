package config

import (
	"errors"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SOURCE_URL", "https://source.example.com/exec")
	t.Setenv("TARGET_URL", "https://target.example.com")
	t.Setenv("TARGET_SERVICE_KEY", "service-key")
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ADMIN_TOKEN", " admin-token ")
	t.Setenv("PROXY_SHARED_SECRET", "secret")

	cfg, err := Load("task-token")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Source.URL != "https://source.example.com/exec" {
		t.Errorf("Source.URL = %q", cfg.Source.URL)
	}
	if cfg.Source.AdminToken != "admin-token" {
		t.Errorf("Source.AdminToken = %q, want trimmed value", cfg.Source.AdminToken)
	}
	if cfg.Source.ProxySecret != "secret" {
		t.Errorf("Source.ProxySecret = %q", cfg.Source.ProxySecret)
	}
	if cfg.Target.ServiceKey != "service-key" {
		t.Errorf("Target.ServiceKey = %q", cfg.Target.ServiceKey)
	}
	if cfg.BatchSize != 500 {
		t.Errorf("BatchSize = %d, want default 500", cfg.BatchSize)
	}
	if cfg.DryRun {
		t.Error("DryRun should default to false")
	}
	if cfg.SFN.TaskToken != "task-token" {
		t.Errorf("SFN.TaskToken = %q", cfg.SFN.TaskToken)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	keys := []string{"SOURCE_URL", "TARGET_URL", "TARGET_SERVICE_KEY"}

	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(key, "")

			_, err := Load("task-token")
			if err == nil {
				t.Fatalf("expected an error when %s is missing", key)
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Key != key {
				t.Errorf("ConfigError.Key = %q, want %q", cfgErr.Key, key)
			}
		})
	}
}

func TestLoadBatchSize(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    int
		wantErr bool
	}{
		{name: "기본값", value: "", want: 500},
		{name: "명시적 지정", value: "100", want: 100},
		{name: "1 미만은 1로 보정", value: "0", want: 1},
		{name: "음수도 1로 보정", value: "-5", want: 1},
		{name: "정수가 아니면 설정 오류", value: "many", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("MIGRATION_BATCH_SIZE", tt.value)

			cfg, err := Load("task-token")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				var cfgErr *ConfigError
				if !errors.As(err, &cfgErr) {
					t.Errorf("expected ConfigError, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.BatchSize != tt.want {
				t.Errorf("BatchSize = %d, want %d", cfg.BatchSize, tt.want)
			}
		})
	}
}

func TestLoadDryRun(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{value: "true", want: true},
		{value: "TRUE", want: true},
		{value: "1", want: true},
		{value: "false", want: false},
		{value: "", want: false},
		{value: "yes", want: false},
	}

	for _, tt := range tests {
		t.Run("DRY_RUN="+tt.value, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("DRY_RUN", tt.value)

			cfg, err := Load("task-token")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.DryRun != tt.want {
				t.Errorf("DryRun = %v, want %v", cfg.DryRun, tt.want)
			}
		})
	}
}

func TestLoadVerify(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USERNAME", "verifier")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "meetroom")

	cfg, err := LoadVerify("task-token")
	if err != nil {
		t.Fatalf("LoadVerify() error = %v", err)
	}

	if cfg.DB.Host != "db.internal" || cfg.DB.Port != 6543 {
		t.Errorf("DB = %+v", cfg.DB)
	}
	if cfg.DB.UserName != "verifier" || cfg.DB.DBName != "meetroom" {
		t.Errorf("DB = %+v", cfg.DB)
	}
}
