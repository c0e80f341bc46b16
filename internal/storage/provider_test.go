package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/mediaupload/service/internal/config"
)

func TestNewUnknownProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
	}{
		{"unsupported provider", "ftp"},
		{"empty provider", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := New(context.Background(), &config.Config{StorageProvider: tt.provider}, zap.NewNop())
			if store != nil {
				t.Errorf("store = %T, want nil", store)
			}
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Fatalf("error = %v, want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), `"`+tt.provider+`"`) {
				t.Errorf("error %q does not name the provider", err)
			}
		})
	}
}
