package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bizdesk/internal/cache"
	"github.com/bizdesk/internal/logger"
	"github.com/bizdesk/internal/productedit"
)

// ProductSummary 列表页的商品摘要
type ProductSummary struct {
	ID            uint               `json:"id"`
	Name          string             `json:"name"`
	SKU           string             `json:"sku"`
	RetailPrice   productedit.Number `json:"retail_price"`
	StockQuantity int                `json:"stock_quantity"`
	ReorderLevel  int                `json:"reorder_level"`
	IsActive      bool               `json:"is_active"`
	Images        []string           `json:"images"`
}

// ProductPage 一页商品摘要
type ProductPage struct {
	Items      []ProductSummary `json:"items"`
	Pagination Pagination       `json:"pagination"`
}

// ListProducts 分页查询商品列表
func (c *Client) ListProducts(ctx context.Context, page, pageSize int, search string) (*ProductPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(pageSize))
	if search = strings.TrimSpace(search); search != "" {
		query.Set("search", search)
	}
	env, err := c.doJSON(ctx, http.MethodGet, "/products?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var items []ProductSummary
	if err := decodeData(env, &items); err != nil {
		return nil, err
	}
	out := &ProductPage{Items: items, Pagination: Pagination{Page: page, PageSize: pageSize}}
	if env.Pagination != nil {
		out.Pagination = *env.Pagination
	}
	return out, nil
}

// ProductLister 商品列表查询
type ProductLister interface {
	ListProducts(ctx context.Context, page, pageSize int, search string) (*ProductPage, error)
}

// CachedCatalog 带 Redis 缓存的商品列表；缓存键包含列表版本号，保存成功后递增版本即整体失效
type CachedCatalog struct {
	lister ProductLister
	ttl    time.Duration
}

// NewCachedCatalog 创建带缓存的列表
func NewCachedCatalog(lister ProductLister, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{lister: lister, ttl: ttl}
}

// ListProducts 先读缓存，未命中时查询并回填；缓存异常只记录日志
func (c *CachedCatalog) ListProducts(ctx context.Context, page, pageSize int, search string) (*ProductPage, error) {
	if !cache.Enabled() || c.ttl <= 0 {
		return c.lister.ListProducts(ctx, page, pageSize, search)
	}
	version, err := cache.ProductListVersion(ctx)
	if err != nil {
		logger.Warnw("console_listing_version_failed", "error", err)
		return c.lister.ListProducts(ctx, page, pageSize, search)
	}
	key := cache.ProductListKey(version, page, pageSize, search)

	var cached ProductPage
	hit, err := cache.GetJSON(ctx, key, &cached)
	if err != nil {
		logger.Warnw("console_listing_cache_read_failed", "key", key, "error", err)
	}
	if hit {
		return &cached, nil
	}

	result, err := c.lister.ListProducts(ctx, page, pageSize, search)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, key, result, c.ttl); err != nil {
		logger.Warnw("console_listing_cache_write_failed", "key", key, "error", err)
	}
	return result, nil
}

// InvalidateProductListing 递增列表版本
func (c *CachedCatalog) InvalidateProductListing(ctx context.Context) error {
	if !cache.Enabled() {
		return nil
	}
	return cache.BumpProductListVersion(ctx)
}
