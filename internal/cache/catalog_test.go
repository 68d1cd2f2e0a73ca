package cache

import (
	"context"
	"testing"
	"time"

	"github.com/bizdesk/internal/config"
)

func TestProductListKeyNormalizesSearch(t *testing.T) {
	got := ProductListKey(3, 2, 20, "  Desk LAMP ")
	want := "product:list:v3:2:20:desk lamp"
	if got != want {
		t.Fatalf("unexpected listing key, want %s got %s", want, got)
	}
	if ProductListKey(4, 2, 20, "desk lamp") == got {
		t.Fatalf("bumped version must produce a different key")
	}
}

func TestReferenceKey(t *testing.T) {
	if got := ReferenceKey(" suppliers "); got != "reference:suppliers" {
		t.Fatalf("unexpected reference key: %s", got)
	}
}

func TestDisabledCacheIsNoop(t *testing.T) {
	if err := InitRedis(&config.RedisConfig{Enabled: false}); err != nil {
		t.Fatalf("init disabled redis failed: %v", err)
	}
	ctx := context.Background()
	if Enabled() {
		t.Fatalf("cache should be disabled")
	}
	if err := BumpProductListVersion(ctx); err != nil {
		t.Fatalf("bump on disabled cache should be noop, got %v", err)
	}
	version, err := ProductListVersion(ctx)
	if err != nil || version != 0 {
		t.Fatalf("disabled cache version want 0, got %d err=%v", version, err)
	}
	if err := SetReference(ctx, "categories", []string{"a"}, time.Minute); err != nil {
		t.Fatalf("set reference on disabled cache should be noop, got %v", err)
	}
	var dest []string
	hit, err := GetReference(ctx, "categories", &dest)
	if err != nil || hit {
		t.Fatalf("disabled cache must miss, hit=%v err=%v", hit, err)
	}
}

func TestKeyJoinsNonEmptyParts(t *testing.T) {
	Close()
	if got := Key("rate", " ", "console_save"); got != "bizdesk:rate:console_save" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := Key(); got != "bizdesk" {
		t.Fatalf("bare key should be the prefix, got %s", got)
	}
}
