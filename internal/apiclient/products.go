package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bizdesk/internal/productedit"
)

// Get 读取商品聚合（含规格与供应商关联）
func (c *Client) Get(ctx context.Context, id uint) (*productedit.Product, error) {
	env, err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil)
	if err != nil {
		return nil, err
	}
	return decodeProduct(env)
}

// Create 新建商品
func (c *Client) Create(ctx context.Context, payload productedit.Payload) (*productedit.Product, error) {
	env, err := c.doJSON(ctx, http.MethodPost, "/products", payload)
	if err != nil {
		return nil, err
	}
	return decodeProduct(env)
}

// Update 更新商品
func (c *Client) Update(ctx context.Context, id uint, payload productedit.Payload) (*productedit.Product, error) {
	env, err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), payload)
	if err != nil {
		return nil, err
	}
	return decodeProduct(env)
}

func decodeProduct(env *envelope) (*productedit.Product, error) {
	var product productedit.Product
	if err := decodeData(env, &product); err != nil {
		return nil, err
	}
	if product.ID == nil {
		return nil, fmt.Errorf("%w: product id missing", ErrResponseInvalid)
	}
	return &product, nil
}
