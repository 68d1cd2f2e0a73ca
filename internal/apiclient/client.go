package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bizdesk/internal/productedit"
)

var (
	ErrRequestFailed   = errors.New("persistence api request failed")
	ErrResponseInvalid = errors.New("persistence api response invalid")
)

const defaultTimeout = 15 * time.Second

// Client 商品持久化接口客户端，实现 productedit 所需的各个端口
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// New 创建客户端；timeout <= 0 使用默认超时，httpClient 为空使用 http.DefaultClient
func New(baseURL string, timeout time.Duration, httpClient *http.Client) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		timeout:    timeout,
		httpClient: httpClient,
	}
}

// envelope 服务端统一响应结构
type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

type fieldErrorData struct {
	FieldErrors productedit.FieldErrors `json:"field_errors"`
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, payload interface{}) (*envelope, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: encode request failed: %v", ErrRequestFailed, err)
		}
		body = bytes.NewReader(raw)
	}
	return c.do(ctx, method, endpoint, "application/json", body)
}

func (c *Client) do(ctx context.Context, method, endpoint, contentType string, body io.Reader) (*envelope, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: build request failed: %v", ErrRequestFailed, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response failed: %v", ErrRequestFailed, err)
	}
	return decodeEnvelope(resp.StatusCode, respBody)
}

// decodeEnvelope 解析响应。
// 非 2xx 或无法识别的响应体为整体失败；业务码非 0 时携带 field_errors 的为字段级失败，否则为整体失败。
func decodeEnvelope(httpStatus int, body []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &productedit.SubmitError{Status: httpStatus, Message: unstructuredMessage(httpStatus)}
	}
	if httpStatus < 200 || httpStatus >= 300 {
		msg := strings.TrimSpace(env.Msg)
		if msg == "" {
			msg = unstructuredMessage(httpStatus)
		}
		return nil, &productedit.SubmitError{Status: httpStatus, Message: msg}
	}
	if env.StatusCode == 0 {
		return &env, nil
	}

	var data fieldErrorData
	if len(env.Data) > 0 && json.Unmarshal(env.Data, &data) == nil && len(data.FieldErrors) > 0 {
		return nil, &productedit.SubmitError{Status: env.StatusCode, Fields: data.FieldErrors}
	}
	return nil, &productedit.SubmitError{Status: env.StatusCode, Message: strings.TrimSpace(env.Msg)}
}

func unstructuredMessage(status int) string {
	if status == 0 {
		return "unexpected response"
	}
	return fmt.Sprintf("unexpected response (HTTP %d)", status)
}

func decodeData(env *envelope, dest interface{}) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%w: empty data", ErrResponseInvalid)
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	return nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}
