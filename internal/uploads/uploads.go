// Package uploads stores media files uploaded through the back office and
// hands back the public URLs the catalog records.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedFormat is returned when an upload's extension is not on the
// allow-list for its media kind.
var ErrUnsupportedFormat = errors.New("unsupported file format")

var (
	audioExtensions = map[string]bool{
		".mp3":  true,
		".wav":  true,
		".flac": true,
		".ogg":  true,
	}
	imageExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
	}
)

// Saver writes uploaded files under a local directory. Files are renamed to
// random UUIDs so uploads can never collide or traverse out of the media dir.
type Saver struct {
	dir     string
	baseURL string
}

// NewSaver creates the media directory if needed.
func NewSaver(dir, baseURL string) (*Saver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Saver{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// SaveAudio stores an audio upload and returns its public URL.
func (s *Saver) SaveAudio(src io.Reader, originalName string) (string, error) {
	return s.save(src, originalName, audioExtensions)
}

// SaveImage stores a cover or profile image upload and returns its public URL.
func (s *Saver) SaveImage(src io.Reader, originalName string) (string, error) {
	return s.save(src, originalName, imageExtensions)
}

func (s *Saver) save(src io.Reader, originalName string, allowed map[string]bool) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowed[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write media file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close media file: %w", err)
	}

	return s.baseURL + "/" + name, nil
}
