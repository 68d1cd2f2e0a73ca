package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/bizdesk/internal/config"
	"github.com/bizdesk/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault

	defaultMaxRetry    = 3
	defaultConcurrency = 10
)

// Client 队列客户端封装，未启用时所有投递为空操作
type Client struct {
	client       *asynq.Client
	defaultQueue string
	cleanupDelay time.Duration
	maxRetry     int
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	c := &Client{defaultQueue: DefaultQueue, maxRetry: defaultMaxRetry}
	if cfg == nil || !cfg.Enabled {
		return c, nil
	}
	c.client = asynq.NewClient(RedisOpt(cfg))
	if cfg.CleanupDelaySeconds > 0 {
		c.cleanupDelay = time.Duration(cfg.CleanupDelaySeconds) * time.Second
	}
	if cfg.MaxRetry > 0 {
		c.maxRetry = cfg.MaxRetry
	}
	return c, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// EnqueueMediaCleanup 推送媒体文件清理任务，按配置延迟执行
func (c *Client) EnqueueMediaCleanup(payload MediaCleanupPayload, opts ...asynq.Option) error {
	if !c.Enabled() || len(payload.URLs) == 0 {
		return nil
	}
	task, err := NewMediaCleanupTask(payload)
	if err != nil {
		return err
	}
	options := []asynq.Option{asynq.Queue(c.defaultQueue), asynq.MaxRetry(c.maxRetry)}
	if c.cleanupDelay > 0 {
		options = append(options, asynq.ProcessIn(c.cleanupDelay))
	}
	_, err = c.client.Enqueue(task, append(options, opts...)...)
	return err
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: defaultConcurrency,
		Queues:      map[string]int{DefaultQueue: 1},
	}
	if cfg != nil && cfg.Concurrency > 0 {
		serverCfg.Concurrency = cfg.Concurrency
	}
	if cfg != nil && len(cfg.Queues) > 0 {
		serverCfg.Queues = cfg.Queues
	}
	return RedisOpt(cfg), serverCfg
}

// RedisOpt 队列使用的 Redis 连接参数
func RedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	if cfg == nil {
		return opt
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	opt.Addr = fmt.Sprintf("%s:%d", host, port)
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
