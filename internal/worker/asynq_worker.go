package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bizdesk/internal/logger"
	"github.com/bizdesk/internal/provider"
	"github.com/bizdesk/internal/queue"
	"github.com/bizdesk/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskMediaCleanup, c.handleMediaCleanup)
}

func (c *Consumer) handleMediaCleanup(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_media_cleanup_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.MediaCleanupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_media_cleanup_unmarshal_failed", "error", err)
		return fmt.Errorf("decode media cleanup payload: %v: %w", err, asynq.SkipRetry)
	}
	if len(payload.URLs) == 0 {
		logger.Debugw("worker_media_cleanup_skip_empty", "product_id", payload.ProductID)
		return nil
	}
	if c.UploadService == nil {
		logger.Warnw("worker_media_cleanup_skip_upload_service_nil", "product_id", payload.ProductID)
		return nil
	}

	var firstErr error
	removed := 0
	for _, url := range payload.URLs {
		err := c.UploadService.DeleteFile(url)
		switch {
		case err == nil:
			removed++
		case errors.Is(err, service.ErrUploadPathInvalid):
			logger.Debugw("worker_media_cleanup_skip_external", "product_id", payload.ProductID, "url", url)
		default:
			logger.Warnw("worker_media_cleanup_delete_failed", "product_id", payload.ProductID, "url", url, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	logger.Infow("worker_media_cleanup_done", "product_id", payload.ProductID, "removed", removed, "total", len(payload.URLs))
	return firstErr
}
