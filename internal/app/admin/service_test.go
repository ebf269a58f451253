package admin

import (
	"io"
	"testing"
)

type closeRecorder struct {
	closed bool
}

func (c *closeRecorder) Read(p []byte) (int, error) { return 0, io.EOF }

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestUploadCloseReleasesHandle(t *testing.T) {
	rec := &closeRecorder{}
	u := &Upload{Name: "track.mp3", Data: rec}

	if err := u.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if !rec.closed {
		t.Fatal("expected underlying handle to be closed")
	}
}

func TestUploadCloseNilSafe(t *testing.T) {
	var u *Upload
	if err := u.Close(); err != nil {
		t.Fatalf("Close on nil upload: %v", err)
	}
	if err := (&Upload{Name: "bare"}).Close(); err != nil {
		t.Fatalf("Close on upload without data: %v", err)
	}
}
