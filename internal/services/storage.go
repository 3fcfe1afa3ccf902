package services

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sydo/sydo-reviews/internal/config"
)

// Storage buckets
const (
	BucketPDF         = "pdf-files"
	BucketScreenshots = "screenshots"
)

// FilesRoutePrefix is where stored blobs are served from.
const FilesRoutePrefix = "/files"

var (
	ErrInvalidDataURL = errors.New("invalid data url")
	ErrFileTooLarge   = errors.New("file exceeds upload limit")
)

// StorageService is a local-disk blob store. Uploaded PDF grains land in the
// pdf-files bucket, feedback screenshots in screenshots.
type StorageService struct {
	root     string
	maxBytes int64
}

func NewStorageService(cfg *config.StorageConfig) (*StorageService, error) {
	s := &StorageService{
		root:     cfg.Dir,
		maxBytes: int64(cfg.MaxUploadMB) << 20,
	}
	for _, bucket := range []string{BucketPDF, BucketScreenshots} {
		if err := os.MkdirAll(filepath.Join(s.root, bucket), 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage bucket %s: %w", bucket, err)
		}
	}
	return s, nil
}

// Root returns the on-disk root the file route serves from.
func (s *StorageService) Root() string {
	return s.root
}

// SavePDF stores an uploaded PDF and returns its public URL path.
func (s *StorageService) SavePDF(r io.Reader, size int64) (string, error) {
	if s.maxBytes > 0 && size > s.maxBytes {
		return "", ErrFileTooLarge
	}
	name := uuid.New().String() + ".pdf"
	return s.write(BucketPDF, name, io.LimitReader(r, s.maxBytes))
}

// SaveScreenshotDataURL decodes a base64 image data URL produced by the
// annotation canvas and stores it, returning its public URL path.
func (s *StorageService) SaveScreenshotDataURL(dataURL string) (string, error) {
	ext, data, err := DecodeImageDataURL(dataURL)
	if err != nil {
		return "", err
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return "", ErrFileTooLarge
	}
	name := uuid.New().String() + ext
	return s.write(BucketScreenshots, name, strings.NewReader(string(data)))
}

func (s *StorageService) write(bucket, name string, r io.Reader) (string, error) {
	path := filepath.Join(s.root, bucket, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", err
	}

	return FilesRoutePrefix + "/" + bucket + "/" + name, nil
}

// Delete removes a blob by its public URL path. A path outside the file
// route is ignored.
func (s *StorageService) Delete(urlPath string) error {
	rel, ok := strings.CutPrefix(urlPath, FilesRoutePrefix+"/")
	if !ok {
		return nil
	}
	rel = filepath.Clean(rel)
	if strings.HasPrefix(rel, "..") {
		return nil
	}
	return os.Remove(filepath.Join(s.root, rel))
}

// DecodeImageDataURL parses a "data:image/...;base64," URL and returns the
// file extension and raw bytes.
func DecodeImageDataURL(dataURL string) (ext string, data []byte, err error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}

	semi := strings.Index(rest, ";base64,")
	if semi == -1 {
		return "", nil, ErrInvalidDataURL
	}

	mime := rest[:semi]
	switch mime {
	case "image/png":
		ext = ".png"
	case "image/jpeg", "image/jpg":
		ext = ".jpg"
	case "image/webp":
		ext = ".webp"
	default:
		return "", nil, ErrInvalidDataURL
	}

	data, err = base64.StdEncoding.DecodeString(rest[semi+len(";base64,"):])
	if err != nil {
		return "", nil, ErrInvalidDataURL
	}
	return ext, data, nil
}
