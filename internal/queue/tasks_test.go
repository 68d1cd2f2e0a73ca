package queue

import (
	"encoding/json"
	"testing"

	"github.com/bizdesk/internal/config"
)

func TestNewMediaCleanupTask(t *testing.T) {
	task, err := NewMediaCleanupTask(MediaCleanupPayload{ProductID: 7, URLs: []string{"/uploads/product/2026/01/a.png"}})
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}
	if task.Type() != TaskMediaCleanup {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	var payload MediaCleanupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if payload.ProductID != 7 || len(payload.URLs) != 1 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestDisabledClientSkipsEnqueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueMediaCleanup(MediaCleanupPayload{URLs: []string{"/x.png"}}); err != nil {
		t.Fatalf("disabled client should skip enqueue, got %v", err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("unexpected redis addr: %s", opt.Addr)
	}
	if cfg.Concurrency != 10 || cfg.Queues[DefaultQueue] != 1 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}

func TestNewClientAppliesCleanupOptions(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{
		Enabled:             true,
		Host:                " redis.local ",
		Port:                6380,
		DB:                  2,
		CleanupDelaySeconds: 30,
	})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	defer client.Close()
	if !client.Enabled() {
		t.Fatalf("client should be enabled")
	}
	if client.cleanupDelay.Seconds() != 30 || client.maxRetry != defaultMaxRetry {
		t.Fatalf("unexpected cleanup options: delay=%s retry=%d", client.cleanupDelay, client.maxRetry)
	}
	opt := RedisOpt(&config.QueueConfig{Host: " redis.local ", Port: 6380, DB: 2})
	if opt.Addr != "redis.local:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
}
