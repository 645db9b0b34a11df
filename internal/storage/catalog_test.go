package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/vaibh/video-chat/internal/types"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()

	catalog, err := NewCatalog(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewCatalog error: %v", err)
	}
	t.Cleanup(func() { catalog.Close() })
	return catalog
}

func testMeta(videoID string, createdAt time.Time) *types.VideoMeta {
	return &types.VideoMeta{
		VideoID:          videoID,
		OriginalFilename: "demo video.mp4",
		FileSize:         1024,
		Duration:         95.5,
		Width:            1920,
		Height:           1080,
		CreatedAt:        createdAt,
		ProcessingStatus: types.StatusCompleted,
		ThumbnailPath:    "/media/videos/" + videoID + "/thumbnail.jpg",
	}
}

func TestCatalogSaveGet(t *testing.T) {
	catalog := newTestCatalog(t)

	if err := catalog.SaveVideo(testMeta("v1", time.Now())); err != nil {
		t.Fatalf("SaveVideo error: %v", err)
	}

	got, err := catalog.GetVideo("v1")
	if err != nil {
		t.Fatalf("GetVideo error: %v", err)
	}
	if got.VideoID != "v1" || got.Duration != 95.5 || got.Width != 1920 {
		t.Errorf("meta = %+v", got)
	}
	if got.Title != "demo video" {
		t.Errorf("Title = %q, want extension stripped", got.Title)
	}
}

func TestCatalogGetMissing(t *testing.T) {
	catalog := newTestCatalog(t)

	_, err := catalog.GetVideo("nope")
	if !errors.Is(err, types.ErrVideoNotFound) {
		t.Errorf("error = %v, want ErrVideoNotFound", err)
	}
}

func TestCatalogSaveIsUpsert(t *testing.T) {
	catalog := newTestCatalog(t)

	meta := testMeta("v1", time.Now())
	catalog.SaveVideo(meta)

	meta.ProcessingStatus = types.StatusFailed
	if err := catalog.SaveVideo(meta); err != nil {
		t.Fatalf("second SaveVideo error: %v", err)
	}

	got, _ := catalog.GetVideo("v1")
	if got.ProcessingStatus != types.StatusFailed {
		t.Errorf("status = %q, want failed after upsert", got.ProcessingStatus)
	}
}

func TestCatalogListNewestFirst(t *testing.T) {
	catalog := newTestCatalog(t)

	base := time.Now().Add(-time.Hour)
	catalog.SaveVideo(testMeta("old", base))
	catalog.SaveVideo(testMeta("mid", base.Add(10*time.Minute)))
	catalog.SaveVideo(testMeta("new", base.Add(20*time.Minute)))

	videos, err := catalog.ListVideos(0)
	if err != nil {
		t.Fatalf("ListVideos error: %v", err)
	}
	if len(videos) != 3 {
		t.Fatalf("got %d videos, want 3", len(videos))
	}
	if videos[0].VideoID != "new" || videos[2].VideoID != "old" {
		t.Errorf("wrong order: %s, %s, %s", videos[0].VideoID, videos[1].VideoID, videos[2].VideoID)
	}

	limited, err := catalog.ListVideos(2)
	if err != nil {
		t.Fatalf("ListVideos(2) error: %v", err)
	}
	if len(limited) != 2 || limited[0].VideoID != "new" {
		t.Errorf("limited = %+v", limited)
	}
}

func TestCatalogDelete(t *testing.T) {
	catalog := newTestCatalog(t)

	catalog.SaveVideo(testMeta("v1", time.Now()))
	if err := catalog.DeleteVideo("v1"); err != nil {
		t.Fatalf("DeleteVideo error: %v", err)
	}

	if _, err := catalog.GetVideo("v1"); !errors.Is(err, types.ErrVideoNotFound) {
		t.Errorf("deleted row still readable, err = %v", err)
	}
}
