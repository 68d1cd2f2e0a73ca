package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/bizdesk/internal/constants"
	"github.com/bizdesk/internal/productedit"
)

type uploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// Upload 以 multipart 表单上传单个文件，响应缺少 url 视为失败
func (c *Client) Upload(ctx context.Context, file productedit.UploadFile) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("scene", constants.UploadSceneProduct); err != nil {
		return "", fmt.Errorf("%w: build form failed: %v", ErrRequestFailed, err)
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	contentType := strings.TrimSpace(file.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("%w: build form failed: %v", ErrRequestFailed, err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return "", fmt.Errorf("%w: build form failed: %v", ErrRequestFailed, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: build form failed: %v", ErrRequestFailed, err)
	}

	env, err := c.do(ctx, http.MethodPost, "/upload", writer.FormDataContentType(), &buf)
	if err != nil {
		return "", err
	}
	var result uploadResult
	if err := decodeData(env, &result); err != nil {
		return "", err
	}
	url := strings.TrimSpace(result.URL)
	if url == "" {
		return "", fmt.Errorf("%w: upload response missing url", ErrResponseInvalid)
	}
	return url, nil
}
