package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		setup   func()
		cleanup func()
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "load with defaults (no config file)",
			setup: func() {
				viper.Reset()
			},
			cleanup: func() {},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != 8080 {
					t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
				}
				if cfg.Database.Host != "localhost" {
					t.Errorf("Database.Host = %s, want localhost", cfg.Database.Host)
				}
				if cfg.Database.Name != "shush" {
					t.Errorf("Database.Name = %s, want shush", cfg.Database.Name)
				}
				if cfg.RabbitMQ.Exchange != "shush.notifications" {
					t.Errorf("RabbitMQ.Exchange = %s, want shush.notifications", cfg.RabbitMQ.Exchange)
				}
				if cfg.Agent.SyncInterval != 5*time.Minute {
					t.Errorf("Agent.SyncInterval = %v, want 5m", cfg.Agent.SyncInterval)
				}
				if cfg.Flow.CoolingOffBase != 5*time.Minute {
					t.Errorf("Flow.CoolingOffBase = %v, want 5m", cfg.Flow.CoolingOffBase)
				}
			},
		},
		{
			name: "environment variables override defaults",
			setup: func() {
				viper.Reset()
				os.Setenv("SHUSH_SERVER_PORT", "9090")
				os.Setenv("SHUSH_DATABASE_HOST", "db.internal")
			},
			cleanup: func() {
				os.Unsetenv("SHUSH_SERVER_PORT")
				os.Unsetenv("SHUSH_DATABASE_HOST")
			},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != 9090 {
					t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
				}
				if cfg.Database.Host != "db.internal" {
					t.Errorf("Database.Host = %s, want db.internal", cfg.Database.Host)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.cleanup()

			cfg, err := Load()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
