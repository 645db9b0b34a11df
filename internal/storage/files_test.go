package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestUploadPathAndFindVideo(t *testing.T) {
	files := NewVideoFiles(t.TempDir())

	path, err := files.UploadPath("vid1", "my clip.mp4")
	if err != nil {
		t.Fatalf("UploadPath error: %v", err)
	}
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}

	found, size, err := files.FindVideo("vid1")
	if err != nil {
		t.Fatalf("FindVideo error: %v", err)
	}
	if found != path {
		t.Errorf("FindVideo = %q, want %q", found, path)
	}
	if size != 4 {
		t.Errorf("size = %d, want 4", size)
	}
}

func TestFindVideoSkipsNonVideoFiles(t *testing.T) {
	files := NewVideoFiles(t.TempDir())

	dir := files.Dir("vid1")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(dir, "thumbnail.jpg"), []byte("jpeg"), 0644)
	os.WriteFile(filepath.Join(dir, ".hidden.mp4"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "clip.mov"), []byte("video"), 0644)

	found, _, err := files.FindVideo("vid1")
	if err != nil {
		t.Fatalf("FindVideo error: %v", err)
	}
	if filepath.Base(found) != "clip.mov" {
		t.Errorf("FindVideo = %q, want clip.mov", found)
	}
}

func TestFindVideoMissing(t *testing.T) {
	files := NewVideoFiles(t.TempDir())
	if _, _, err := files.FindVideo("nope"); err == nil {
		t.Error("expected error for missing video directory")
	}
}

func TestDeleteAll(t *testing.T) {
	files := NewVideoFiles(t.TempDir())

	path, err := files.UploadPath("vid1", "clip.mp4")
	if err != nil {
		t.Fatal(err)
	}
	os.WriteFile(path, []byte("data"), 0644)
	os.WriteFile(files.ThumbnailPath("vid1"), []byte("jpeg"), 0644)

	if err := files.DeleteAll("vid1"); err != nil {
		t.Fatalf("DeleteAll error: %v", err)
	}
	if _, err := os.Stat(files.Dir("vid1")); !os.IsNotExist(err) {
		t.Error("video directory should be gone")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"normal.mp4", "normal.mp4"},
		{"../../../etc/passwd", "passwd"},
		{`bad:name*here?.mp4`, "bad_name_here_.mp4"},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHasValidExtension(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.mp4", true},
		{"a.MOV", true},
		{"a.avi", true},
		{"a.mkv", false},
		{"a", false},
	}

	for _, tt := range tests {
		if got := hasValidExtension(tt.name); got != tt.want {
			t.Errorf("hasValidExtension(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
