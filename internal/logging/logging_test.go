package logging

import (
	"testing"

	"github.com/masmgr/hglineage/config"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LoggingConfig
		verbose   bool
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{name: "Default info", cfg: config.LoggingConfig{Level: "info"}, wantLevel: zapcore.InfoLevel},
		{name: "Warn", cfg: config.LoggingConfig{Level: "warn"}, wantLevel: zapcore.WarnLevel},
		{name: "Verbose forces debug", cfg: config.LoggingConfig{Level: "error"}, verbose: true, wantLevel: zapcore.DebugLevel},
		{name: "Development", cfg: config.LoggingConfig{Level: "info", Development: true}, wantLevel: zapcore.InfoLevel},
		{name: "Empty level means info", cfg: config.LoggingConfig{}, wantLevel: zapcore.InfoLevel},
		{name: "Invalid level", cfg: config.LoggingConfig{Level: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg, tt.verbose)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if !logger.Core().Enabled(tt.wantLevel) {
				t.Errorf("level %s should be enabled", tt.wantLevel)
			}
			if tt.wantLevel > zapcore.DebugLevel && logger.Core().Enabled(tt.wantLevel-1) {
				t.Errorf("level %s should be disabled", tt.wantLevel-1)
			}
		})
	}
}
