package uploads

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAudioWritesFileAndReturnsURL(t *testing.T) {
	dir := t.TempDir()
	saver, err := NewSaver(dir, "/media/")
	if err != nil {
		t.Fatalf("NewSaver: %v", err)
	}

	url, err := saver.SaveAudio(strings.NewReader("not really audio"), "track.MP3")
	if err != nil {
		t.Fatalf("SaveAudio: %v", err)
	}
	if !strings.HasPrefix(url, "/media/") || !strings.HasSuffix(url, ".mp3") {
		t.Fatalf("unexpected URL %q", url)
	}

	name := strings.TrimPrefix(url, "/media/")
	if name == "track.mp3" {
		t.Fatal("expected the stored name to be randomized")
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "not really audio" {
		t.Fatalf("stored content mismatch: %q", data)
	}
}

func TestSaveRejectsDisallowedExtensions(t *testing.T) {
	saver, err := NewSaver(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("NewSaver: %v", err)
	}

	if _, err := saver.SaveAudio(strings.NewReader("x"), "malware.exe"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := saver.SaveImage(strings.NewReader("x"), "cover.mp3"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat for audio extension on image, got %v", err)
	}
	if _, err := saver.SaveImage(strings.NewReader("x"), "noextension"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat for missing extension, got %v", err)
	}
}

func TestSaveImageAcceptsAllowedExtensions(t *testing.T) {
	saver, err := NewSaver(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("NewSaver: %v", err)
	}

	for _, name := range []string{"a.jpg", "b.jpeg", "c.png", "d.webp"} {
		if _, err := saver.SaveImage(strings.NewReader("img"), name); err != nil {
			t.Fatalf("SaveImage(%q): %v", name, err)
		}
	}
}
