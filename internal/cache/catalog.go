package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bizdesk/internal/constants"
)

// ProductListKey 构建商品列表缓存键，版本号变化即整体失效
func ProductListKey(version int64, page, pageSize int, search string) string {
	return fmt.Sprintf("%s:v%d:%d:%d:%s",
		constants.CacheKeyProductListPrefix,
		version,
		page,
		pageSize,
		strings.ToLower(strings.TrimSpace(search)),
	)
}

// ProductListVersion 获取商品列表缓存版本
func ProductListVersion(ctx context.Context) (int64, error) {
	version, _, err := GetInt64(ctx, constants.CacheKeyProductListVersion)
	return version, err
}

// BumpProductListVersion 使全部商品列表缓存失效
func BumpProductListVersion(ctx context.Context) error {
	_, err := Incr(ctx, constants.CacheKeyProductListVersion)
	return err
}

// ReferenceKey 构建参考数据缓存键
func ReferenceKey(kind string) string {
	return fmt.Sprintf("%s:%s", constants.CacheKeyReferencePrefix, strings.TrimSpace(kind))
}

// GetReference 读取参考数据缓存
func GetReference(ctx context.Context, kind string, dest interface{}) (bool, error) {
	return GetJSON(ctx, ReferenceKey(kind), dest)
}

// SetReference 写入参考数据缓存
func SetReference(ctx context.Context, kind string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return SetJSON(ctx, ReferenceKey(kind), value, ttl)
}

// DelReference 删除参考数据缓存
func DelReference(ctx context.Context, kind string) error {
	return Del(ctx, ReferenceKey(kind))
}
