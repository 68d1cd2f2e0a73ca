package queue

import (
	"encoding/json"

	"github.com/bizdesk/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskMediaCleanup 商品媒体文件清理任务
	TaskMediaCleanup = constants.TaskMediaCleanup
)

// MediaCleanupPayload 媒体清理任务载荷
type MediaCleanupPayload struct {
	ProductID uint     `json:"product_id"`
	URLs      []string `json:"urls"`
}

// NewMediaCleanupTask 创建媒体清理任务
func NewMediaCleanupTask(payload MediaCleanupPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMediaCleanup, body), nil
}
