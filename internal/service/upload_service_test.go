package service

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bizdesk/internal/config"
)

func newTestUploadService(t *testing.T) (*UploadService, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{Upload: config.UploadConfig{
		Dir:               dir,
		MaxSize:           1 << 20,
		AllowedTypes:      []string{"image/png"},
		AllowedExtensions: []string{".png"},
		MaxWidth:          64,
		MaxHeight:         64,
	}}
	return NewUploadService(cfg), dir
}

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file failed: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer failed: %v", err)
	}
	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read form failed: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png failed: %v", err)
	}
	return buf.Bytes()
}

func TestUploadServiceSaveAndDeleteFile(t *testing.T) {
	svc, dir := newTestUploadService(t)
	header := buildFileHeader(t, "photo.PNG", encodePNG(t, 8, 8))

	saved, err := svc.SaveFile(header, "variant")
	if err != nil {
		t.Fatalf("save file failed: %v", err)
	}
	if !strings.HasPrefix(saved.URL, "/uploads/variant/") || !strings.HasSuffix(saved.URL, ".png") {
		t.Fatalf("unexpected url: %s", saved.URL)
	}
	stored := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(saved.URL, "/uploads/")))
	if _, err := os.Stat(stored); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}

	if err := svc.DeleteFile(saved.URL); err != nil {
		t.Fatalf("delete file failed: %v", err)
	}
	if _, err := os.Stat(stored); !os.IsNotExist(err) {
		t.Fatalf("file should be removed, stat err=%v", err)
	}
	if err := svc.DeleteFile(saved.URL); err != nil {
		t.Fatalf("deleting a missing file should be a noop, got %v", err)
	}
}

func TestUploadServiceRejectsOversizedImage(t *testing.T) {
	svc, _ := newTestUploadService(t)
	header := buildFileHeader(t, "big.png", encodePNG(t, 65, 8))
	if _, err := svc.SaveFile(header, "product"); !errors.Is(err, ErrUploadRejected) {
		t.Fatalf("image wider than limit should be rejected, got %v", err)
	}
}

func TestUploadServiceRejectsDisallowedExtension(t *testing.T) {
	svc, _ := newTestUploadService(t)
	header := buildFileHeader(t, "notes.txt", []byte("hello"))
	if _, err := svc.SaveFile(header, "product"); !errors.Is(err, ErrUploadRejected) {
		t.Fatalf("txt extension should be rejected, got %v", err)
	}
}

func TestUploadServiceRejectsSpoofedContent(t *testing.T) {
	svc, _ := newTestUploadService(t)
	header := buildFileHeader(t, "fake.png", []byte("plain text pretending to be a png"))
	_, err := svc.SaveFile(header, "product")
	if !errors.Is(err, ErrUploadRejected) || !strings.Contains(err.Error(), "content type") {
		t.Fatalf("sniffed type should be rejected, got %v", err)
	}
}

func TestUploadServiceReportsDimensions(t *testing.T) {
	svc, _ := newTestUploadService(t)
	svc.now = func() time.Time { return time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC) }
	saved, err := svc.SaveFile(buildFileHeader(t, "a.png", encodePNG(t, 12, 7)), "product")
	if err != nil {
		t.Fatalf("save file failed: %v", err)
	}
	if !strings.HasPrefix(saved.URL, "/uploads/product/2026/03/") {
		t.Fatalf("unexpected url: %s", saved.URL)
	}
	if saved.Width != 12 || saved.Height != 7 || saved.ContentType != "image/png" {
		t.Fatalf("unexpected metadata: %+v", saved)
	}
}

func TestDecodeWebPDimensions(t *testing.T) {
	vp8x := []byte{
		'R', 'I', 'F', 'F', 0, 0, 0, 0, 'W', 'E', 'B', 'P',
		'I', 'C', 'C', 'P', 3, 0, 0, 0, 1, 2, 3, 0,
		'V', 'P', '8', 'X', 10, 0, 0, 0,
		0, 0, 0, 0,
		0xFF, 0x01, 0x00,
		0x63, 0x00, 0x00,
	}
	width, height, err := decodeWebPDimensions(bytes.NewReader(vp8x))
	if err != nil {
		t.Fatalf("decode vp8x failed: %v", err)
	}
	if width != 512 || height != 100 {
		t.Fatalf("unexpected vp8x size: %dx%d", width, height)
	}

	if _, _, err := decodeWebPDimensions(bytes.NewReader([]byte("RIFF0000WEBX"))); err == nil {
		t.Fatalf("bad header should fail")
	}
}

func TestUploadServiceDeleteFileRejectsTraversal(t *testing.T) {
	svc, _ := newTestUploadService(t)
	for _, url := range []string{"/etc/passwd", "/uploads/../config.yml", "/uploads/", "https://cdn/x.png"} {
		if err := svc.DeleteFile(url); err != ErrUploadPathInvalid {
			t.Fatalf("url %q should be rejected, got %v", url, err)
		}
	}
}

func TestNormalizeUploadScene(t *testing.T) {
	if got := normalizeUploadScene(" Product "); got != "product" {
		t.Fatalf("unexpected scene: %s", got)
	}
	if got := normalizeUploadScene("banner"); got != "common" {
		t.Fatalf("unknown scene should fall back to common, got %s", got)
	}
}
