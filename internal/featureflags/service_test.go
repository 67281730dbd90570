package featureflags_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/petrolnearme/petrolnearme/internal/featureflags"
)

func newTestService(repo featureflags.Repository) *featureflags.Service {
	return featureflags.NewService(featureflags.ServiceConfig{
		Repository: repo,
		Logger:     zerolog.Nop(),
		CacheTTL:   1 * time.Minute,
	})
}

func TestService_GetFlag(t *testing.T) {
	service := newTestService(featureflags.NewInMemoryRepository())
	ctx := context.Background()

	flag := service.GetFlag(ctx, featureflags.FlagCachedOnlyDirectory)
	if flag == nil {
		t.Fatal("expected flag to be returned")
	}
	if flag.Key != featureflags.FlagCachedOnlyDirectory {
		t.Errorf("expected key %q, got %q", featureflags.FlagCachedOnlyDirectory, flag.Key)
	}
	if flag.BoolValue(true) != false {
		t.Error("expected cached_only_directory to be false by default")
	}
}

func TestService_SetFlag(t *testing.T) {
	service := newTestService(featureflags.NewInMemoryRepository())
	ctx := context.Background()

	err := service.SetFlag(ctx, &featureflags.Flag{
		Key:   featureflags.FlagCachedOnlyDirectory,
		Value: true,
	})
	if err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}

	if !service.IsCachedOnlyDirectory(ctx) {
		t.Error("expected cached_only_directory to be true after update")
	}
}

func TestService_SetFlags(t *testing.T) {
	service := newTestService(featureflags.NewInMemoryRepository())
	ctx := context.Background()

	err := service.SetFlags(ctx, []*featureflags.Flag{
		{Key: featureflags.FlagDisableSampleFallback, Value: true},
		{Key: featureflags.FlagDisableScheduledRefresh, Value: true},
	})
	if err != nil {
		t.Fatalf("failed to set flags: %v", err)
	}

	if !service.IsSampleFallbackDisabled(ctx) {
		t.Error("expected sample fallback to be disabled")
	}
	if !service.IsScheduledRefreshDisabled(ctx) {
		t.Error("expected scheduled refresh to be disabled")
	}
}

func TestService_GetAllFlags(t *testing.T) {
	service := newTestService(featureflags.NewInMemoryRepository())

	flags := service.GetAllFlags(context.Background())

	expectedFlags := []string{
		featureflags.FlagCachedOnlyDirectory,
		featureflags.FlagDisableSampleFallback,
		featureflags.FlagDisableScheduledRefresh,
	}

	for _, key := range expectedFlags {
		if _, ok := flags[key]; !ok {
			t.Errorf("expected flag %q to be present", key)
		}
	}
}

func TestService_InvalidateCache(t *testing.T) {
	repo := featureflags.NewInMemoryRepository()
	service := featureflags.NewService(featureflags.ServiceConfig{
		Repository: repo,
		Logger:     zerolog.Nop(),
		CacheTTL:   1 * time.Hour, // Long TTL to test cache
	})

	ctx := context.Background()

	// Populate cache, then update the repository behind the service's back.
	_ = service.GetFlag(ctx, featureflags.FlagCachedOnlyDirectory)
	_ = repo.SetFlag(ctx, &featureflags.Flag{
		Key:   featureflags.FlagCachedOnlyDirectory,
		Value: true,
	})

	service.InvalidateCache()

	flag := service.GetFlag(ctx, featureflags.FlagCachedOnlyDirectory)
	if flag.BoolValue(false) != true {
		t.Error("expected updated value after cache invalidation")
	}
}

func TestService_FallbackToDefaults(t *testing.T) {
	repo := featureflags.NewInMemoryRepositoryWithFlags(make(map[string]*featureflags.Flag))
	service := newTestService(repo)

	flag := service.GetFlag(context.Background(), featureflags.FlagDisableSampleFallback)
	if flag == nil {
		t.Fatal("expected flag to be returned from defaults")
	}
	if flag.BoolValue(true) != false {
		t.Error("expected disable_sample_fallback to be false from defaults")
	}
}

func TestFlag_ValueHelpers(t *testing.T) {
	tests := []struct {
		name       string
		value      interface{}
		wantBool   bool
		wantString string
		wantInt    int
	}{
		{name: "boolean true", value: true, wantBool: true, wantString: "default", wantInt: 42},
		{name: "string value", value: "hello", wantBool: false, wantString: "hello", wantInt: 42},
		{name: "number value", value: float64(100), wantBool: true, wantString: "default", wantInt: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := &featureflags.Flag{Key: "test", Value: tt.value, UpdatedAt: time.Now()}

			if got := flag.BoolValue(false); got != tt.wantBool {
				t.Errorf("BoolValue() = %v, want %v", got, tt.wantBool)
			}
			if got := flag.StringValue("default"); got != tt.wantString {
				t.Errorf("StringValue() = %v, want %v", got, tt.wantString)
			}
			if got := flag.IntValue(42); got != tt.wantInt {
				t.Errorf("IntValue() = %v, want %v", got, tt.wantInt)
			}
		})
	}
}

func TestFlag_NilFlag(t *testing.T) {
	var flag *featureflags.Flag

	if flag.BoolValue(true) != true {
		t.Error("expected default value for nil flag")
	}
	if flag.StringValue("default") != "default" {
		t.Error("expected default value for nil flag")
	}
	if flag.IntValue(42) != 42 {
		t.Error("expected default value for nil flag")
	}
}

func TestInMemoryRepository_DeleteFlag(t *testing.T) {
	repo := featureflags.NewInMemoryRepository()
	ctx := context.Background()

	if err := repo.DeleteFlag(ctx, featureflags.FlagCachedOnlyDirectory); err != nil {
		t.Fatalf("failed to delete flag: %v", err)
	}

	_, err := repo.GetFlag(ctx, featureflags.FlagCachedOnlyDirectory)
	if !errors.Is(err, featureflags.ErrFlagNotFound) {
		t.Errorf("expected ErrFlagNotFound after delete, got %v", err)
	}

	err = repo.DeleteFlag(ctx, "nonexistent")
	if !errors.Is(err, featureflags.ErrFlagNotFound) {
		t.Errorf("expected ErrFlagNotFound for non-existent flag, got %v", err)
	}
}
