package apiclient

import (
	"context"
	"net/http"
	"strings"

	"github.com/bizdesk/internal/productedit"
)

type referenceItem struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// Categories 分类选项
func (c *Client) Categories(ctx context.Context) ([]productedit.Option, error) {
	return c.listOptions(ctx, "/categories")
}

// Locations 库位选项，标签带编码
func (c *Client) Locations(ctx context.Context) ([]productedit.Option, error) {
	return c.listOptions(ctx, "/locations")
}

// Suppliers 供应商选项
func (c *Client) Suppliers(ctx context.Context) ([]productedit.Option, error) {
	return c.listOptions(ctx, "/suppliers")
}

func (c *Client) listOptions(ctx context.Context, endpoint string) ([]productedit.Option, error) {
	env, err := c.doJSON(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var items []referenceItem
	if err := decodeData(env, &items); err != nil {
		return nil, err
	}
	options := make([]productedit.Option, 0, len(items))
	for _, item := range items {
		label := strings.TrimSpace(item.Name)
		if code := strings.TrimSpace(item.Code); code != "" {
			label = label + " (" + code + ")"
		}
		options = append(options, productedit.Option{ID: item.ID, Label: label})
	}
	return options, nil
}
