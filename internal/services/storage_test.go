package services

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sydo/sydo-reviews/internal/config"
)

func newTestStorage(t *testing.T) *StorageService {
	t.Helper()
	s, err := NewStorageService(&config.StorageConfig{Dir: t.TempDir(), MaxUploadMB: 1})
	if err != nil {
		t.Fatalf("NewStorageService() error = %v", err)
	}
	return s
}

func pngDataURL(payload string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestNewStorageService_CreatesBuckets(t *testing.T) {
	s := newTestStorage(t)

	for _, bucket := range []string{BucketPDF, BucketScreenshots} {
		if _, err := os.Stat(filepath.Join(s.Root(), bucket)); err != nil {
			t.Errorf("bucket %s should exist: %v", bucket, err)
		}
	}
}

func TestSavePDF(t *testing.T) {
	s := newTestStorage(t)

	url, err := s.SavePDF(strings.NewReader("%PDF-1.4 fake"), 13)
	if err != nil {
		t.Fatalf("SavePDF() error = %v", err)
	}

	if !strings.HasPrefix(url, FilesRoutePrefix+"/"+BucketPDF+"/") {
		t.Errorf("url = %q, expected it under the pdf-files bucket", url)
	}
	if !strings.HasSuffix(url, ".pdf") {
		t.Errorf("url = %q, expected .pdf extension", url)
	}

	rel := strings.TrimPrefix(url, FilesRoutePrefix+"/")
	data, err := os.ReadFile(filepath.Join(s.Root(), rel))
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != "%PDF-1.4 fake" {
		t.Errorf("stored content = %q", string(data))
	}
}

func TestSavePDF_TooLarge(t *testing.T) {
	s := newTestStorage(t)

	if _, err := s.SavePDF(strings.NewReader("x"), 10<<20); err != ErrFileTooLarge {
		t.Errorf("error = %v, expected ErrFileTooLarge", err)
	}
}

func TestSaveScreenshotDataURL(t *testing.T) {
	s := newTestStorage(t)

	url, err := s.SaveScreenshotDataURL(pngDataURL("fake-png-bytes"))
	if err != nil {
		t.Fatalf("SaveScreenshotDataURL() error = %v", err)
	}

	if !strings.HasPrefix(url, FilesRoutePrefix+"/"+BucketScreenshots+"/") {
		t.Errorf("url = %q, expected it under the screenshots bucket", url)
	}
	if !strings.HasSuffix(url, ".png") {
		t.Errorf("url = %q, expected .png extension", url)
	}
}

func TestDecodeImageDataURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		ext     string
		wantErr bool
	}{
		{"png", pngDataURL("abc"), ".png", false},
		{"jpeg", "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("j")), ".jpg", false},
		{"webp", "data:image/webp;base64," + base64.StdEncoding.EncodeToString([]byte("w")), ".webp", false},
		{"no prefix", "image/png;base64,QUJD", "", true},
		{"not base64 marker", "data:image/png;hex,414243", "", true},
		{"bad base64", "data:image/png;base64,@@@", "", true},
		{"unsupported mime", "data:application/pdf;base64,QUJD", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, data, err := DecodeImageDataURL(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeImageDataURL() error = %v", err)
			}
			if ext != tt.ext {
				t.Errorf("ext = %q, expected %q", ext, tt.ext)
			}
			if len(data) == 0 {
				t.Error("decoded data should not be empty")
			}
		})
	}
}

func TestDelete(t *testing.T) {
	s := newTestStorage(t)

	url, _ := s.SaveScreenshotDataURL(pngDataURL("to-delete"))
	if err := s.Delete(url); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	rel := strings.TrimPrefix(url, FilesRoutePrefix+"/")
	if _, err := os.Stat(filepath.Join(s.Root(), rel)); !os.IsNotExist(err) {
		t.Error("file should be gone after Delete()")
	}
}

func TestDelete_IgnoresForeignPaths(t *testing.T) {
	s := newTestStorage(t)

	if err := s.Delete("https://example.com/elsewhere.png"); err != nil {
		t.Errorf("Delete() of a foreign URL should be a no-op, got %v", err)
	}
	if err := s.Delete(FilesRoutePrefix + "/../../etc/passwd"); err != nil {
		t.Errorf("Delete() of an escaping path should be a no-op, got %v", err)
	}
}
