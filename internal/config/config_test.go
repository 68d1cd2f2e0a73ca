package config

import (
	"testing"

	"github.com/bizdesk/internal/constants"

	"github.com/spf13/viper"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func TestDecodeDefaults(t *testing.T) {
	cfg, err := decode(newTestViper())
	if err != nil {
		t.Fatalf("decode defaults failed: %v", err)
	}
	if cfg.Console.ChildDeletionPolicy != constants.DeletionPolicyReplace {
		t.Fatalf("unexpected default deletion policy: %s", cfg.Console.ChildDeletionPolicy)
	}
	if cfg.Console.UploadConcurrency != 3 {
		t.Fatalf("unexpected default upload concurrency: %d", cfg.Console.UploadConcurrency)
	}
	if cfg.Server.ShutdownTimeoutSeconds != 10 {
		t.Fatalf("unexpected default shutdown timeout: %d", cfg.Server.ShutdownTimeoutSeconds)
	}
	if cfg.Upload.MaxSize != 10485760 {
		t.Fatalf("unexpected default upload max size: %d", cfg.Upload.MaxSize)
	}
	if cfg.Queue.Queues[constants.QueueDefault] != 10 {
		t.Fatalf("unexpected default queue weights: %#v", cfg.Queue.Queues)
	}
}

func TestDecodeNormalizesDeletionPolicy(t *testing.T) {
	v := newTestViper()
	v.Set("console.child_deletion_policy", "  EXPLICIT ")
	v.Set("console.upload_concurrency", 0)

	cfg, err := decode(v)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if cfg.Console.ChildDeletionPolicy != constants.DeletionPolicyExplicit {
		t.Fatalf("expected explicit policy, got %s", cfg.Console.ChildDeletionPolicy)
	}
	if cfg.Console.UploadConcurrency != 1 {
		t.Fatalf("non-positive concurrency should fall back to sequential, got %d", cfg.Console.UploadConcurrency)
	}
}

func TestDecodeRejectsUnknownDeletionPolicy(t *testing.T) {
	v := newTestViper()
	v.Set("console.child_deletion_policy", "cascade")
	if _, err := decode(v); err == nil {
		t.Fatalf("expected unknown deletion policy to be rejected")
	}
}
