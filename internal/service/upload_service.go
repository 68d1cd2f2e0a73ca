package service

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/bizdesk/internal/config"
	"github.com/bizdesk/internal/constants"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
)

const (
	uploadURLPrefix  = "/uploads/"
	defaultUploadDir = "uploads"
	sniffLength      = 512
)

var allowedUploadScenes = map[string]struct{}{
	constants.UploadSceneProduct: {},
	constants.UploadSceneVariant: {},
	constants.UploadSceneCommon:  {},
}

// ErrUploadRejected 文件未通过上传校验（大小、类型、尺寸），消息可直接展示给调用方
var ErrUploadRejected = errors.New("upload rejected")

func rejectUpload(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUploadRejected, fmt.Sprintf(format, args...))
}

// UploadedFile 上传结果
type UploadedFile struct {
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

// UploadService 商品媒体上传服务，文件按 场景/年/月 落盘
type UploadService struct {
	cfg config.UploadConfig
	now func() time.Time
}

// NewUploadService 创建文件上传服务实例
func NewUploadService(cfg *config.Config) *UploadService {
	svc := &UploadService{now: time.Now}
	if cfg != nil {
		svc.cfg = cfg.Upload
	}
	return svc
}

type inspectedUpload struct {
	ext         string
	contentType string
	width       int
	height      int
}

// SaveFile 校验并保存上传文件；校验失败返回包装 ErrUploadRejected 的错误
func (s *UploadService) SaveFile(file *multipart.FileHeader, scene string) (*UploadedFile, error) {
	if file == nil {
		return nil, rejectUpload("file is required")
	}
	if s.cfg.MaxSize > 0 && file.Size > s.cfg.MaxSize {
		return nil, rejectUpload("file exceeds %d MB", s.cfg.MaxSize/1024/1024)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	info, err := s.inspect(src, file.Filename)
	if err != nil {
		return nil, err
	}

	normalizedScene := normalizeUploadScene(scene)
	filename := uuid.NewString() + info.ext
	datePath := s.now().Format("2006/01")
	relative := path.Join(normalizedScene, datePath, filename)
	savePath := filepath.Join(s.uploadDir(), filepath.FromSlash(relative))

	if err := os.MkdirAll(filepath.Dir(savePath), 0o755); err != nil {
		return nil, err
	}
	if err := writeUpload(savePath, src); err != nil {
		return nil, err
	}

	return &UploadedFile{
		URL:         uploadURLPrefix + relative,
		Filename:    filename,
		Size:        file.Size,
		ContentType: info.contentType,
		Width:       info.width,
		Height:      info.height,
	}, nil
}

// inspect 依次校验扩展名、嗅探类型与图片尺寸，结束时 src 回到开头
func (s *UploadService) inspect(src multipart.File, filename string) (*inspectedUpload, error) {
	info := &inspectedUpload{ext: strings.ToLower(filepath.Ext(filename))}
	if len(s.cfg.AllowedExtensions) > 0 && (info.ext == "" || !isAllowedExtension(info.ext, s.cfg.AllowedExtensions)) {
		return nil, rejectUpload("extension not allowed: %q", info.ext)
	}

	head := make([]byte, sniffLength)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	info.contentType = http.DetectContentType(head[:n])
	if len(s.cfg.AllowedTypes) > 0 && !containsFold(s.cfg.AllowedTypes, info.contentType) {
		return nil, rejectUpload("content type not allowed: %s", info.contentType)
	}

	if strings.HasPrefix(info.contentType, "image/") {
		width, height, err := decodeImageDimensions(src, info.contentType)
		if err != nil {
			return nil, rejectUpload("unreadable image: %v", err)
		}
		if s.cfg.MaxWidth > 0 && width > s.cfg.MaxWidth {
			return nil, rejectUpload("image wider than %d px", s.cfg.MaxWidth)
		}
		if s.cfg.MaxHeight > 0 && height > s.cfg.MaxHeight {
			return nil, rejectUpload("image taller than %d px", s.cfg.MaxHeight)
		}
		info.width, info.height = width, height
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return info, nil
}

func writeUpload(savePath string, src io.Reader) error {
	dst, err := os.Create(savePath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(savePath)
		return err
	}
	return dst.Close()
}

// DeleteFile 删除已上传文件，url 必须位于上传目录内
func (s *UploadService) DeleteFile(url string) error {
	trimmed := strings.TrimSpace(url)
	if !strings.HasPrefix(trimmed, uploadURLPrefix) {
		return ErrUploadPathInvalid
	}
	relative := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(trimmed, uploadURLPrefix)))
	if relative == "." || filepath.IsAbs(relative) || strings.HasPrefix(relative, "..") {
		return ErrUploadPathInvalid
	}
	err := os.Remove(filepath.Join(s.uploadDir(), relative))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *UploadService) uploadDir() string {
	if dir := strings.TrimSpace(s.cfg.Dir); dir != "" {
		return dir
	}
	return defaultUploadDir
}

func normalizeUploadScene(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := allowedUploadScenes[value]; ok {
		return value
	}
	return constants.UploadSceneCommon
}

func isAllowedExtension(ext string, allowed []string) bool {
	for _, allowedExt := range allowed {
		normalized := strings.ToLower(strings.TrimSpace(allowedExt))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if ext == normalized {
			return true
		}
	}
	return false
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}

func decodeImageDimensions(src io.ReadSeeker, contentType string) (int, int, error) {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return 0, 0, err
	}
	if strings.EqualFold(contentType, "image/webp") {
		return decodeWebPDimensions(src)
	}
	cfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// decodeWebPDimensions 遍历 RIFF chunk，读取 VP8X / VP8 / VP8L 中的画布尺寸
func decodeWebPDimensions(src io.ReadSeeker) (int, int, error) {
	var riff [12]byte
	if _, err := io.ReadFull(src, riff[:]); err != nil {
		return 0, 0, err
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WEBP" {
		return 0, 0, errors.New("invalid webp header")
	}

	for {
		var chunk [8]byte
		if _, err := io.ReadFull(src, chunk[:]); err != nil {
			return 0, 0, err
		}
		kind := string(chunk[0:4])
		size := int64(binary.LittleEndian.Uint32(chunk[4:8]))

		var need int
		switch kind {
		case "VP8X", "VP8 ":
			need = 10
		case "VP8L":
			need = 5
		}
		if need == 0 {
			// 跳过无关 chunk，奇数长度有 1 字节填充
			if _, err := src.Seek(size+size%2, io.SeekCurrent); err != nil {
				return 0, 0, err
			}
			continue
		}
		if size < int64(need) {
			return 0, 0, fmt.Errorf("webp %s chunk too short", strings.TrimSpace(kind))
		}
		data := make([]byte, need)
		if _, err := io.ReadFull(src, data); err != nil {
			return 0, 0, err
		}
		switch kind {
		case "VP8X":
			width := 1 + (int(data[4]) | int(data[5])<<8 | int(data[6])<<16)
			height := 1 + (int(data[7]) | int(data[8])<<8 | int(data[9])<<16)
			return width, height, nil
		case "VP8 ":
			width := int(binary.LittleEndian.Uint16(data[6:8]) & 0x3FFF)
			height := int(binary.LittleEndian.Uint16(data[8:10]) & 0x3FFF)
			return width, height, nil
		default:
			if data[0] != 0x2f {
				return 0, 0, errors.New("invalid webp lossless signature")
			}
			bits := binary.LittleEndian.Uint32(data[1:5])
			return int(bits&0x3FFF) + 1, int((bits>>14)&0x3FFF) + 1, nil
		}
	}
}
