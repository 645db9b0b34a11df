package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// validExtensions are the video containers accepted for upload.
var validExtensions = []string{".mp4", ".mov", ".avi"}

// VideoFiles manages the on-disk layout for videos: one directory per
// video_id under <mediaDir>/videos holding the uploaded file and its
// thumbnail. A video's files are created and deleted as a unit.
type VideoFiles struct {
	mediaDir string
}

// NewVideoFiles creates the manager rooted at mediaDir.
func NewVideoFiles(mediaDir string) *VideoFiles {
	return &VideoFiles{mediaDir: mediaDir}
}

// Dir returns the directory holding one video's files.
func (vf *VideoFiles) Dir(videoID string) string {
	return filepath.Join(vf.mediaDir, "videos", videoID)
}

// UploadPath prepares the video directory and returns the destination path
// for an uploaded file.
func (vf *VideoFiles) UploadPath(videoID, filename string) (string, error) {
	dir := vf.Dir(videoID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create video directory: %v", err)
	}
	return filepath.Join(dir, sanitizeFilename(filename)), nil
}

// FindVideo locates the stored video file for a video_id and returns its
// path and size.
func (vf *VideoFiles) FindVideo(videoID string) (string, int64, error) {
	dir := vf.Dir(videoID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", 0, fmt.Errorf("video directory not found: %v", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !hasValidExtension(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		return filepath.Join(dir, name), info.Size(), nil
	}
	return "", 0, fmt.Errorf("no video file in %s", dir)
}

// ThumbnailPath returns where a video's thumbnail lives (it may not exist).
func (vf *VideoFiles) ThumbnailPath(videoID string) string {
	return filepath.Join(vf.Dir(videoID), "thumbnail.jpg")
}

// DeleteAll removes a video's directory and everything in it.
func (vf *VideoFiles) DeleteAll(videoID string) error {
	return os.RemoveAll(vf.Dir(videoID))
}

func hasValidExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, valid := range validExtensions {
		if ext == valid {
			return true
		}
	}
	return false
}

// sanitizeFilename strips path separators and limits length
func sanitizeFilename(name string) string {
	result := filepath.Base(name)
	result = strings.Map(func(r rune) rune {
		switch r {
		case ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, result)
	if len(result) > 100 {
		result = result[:100]
	}
	return result
}
