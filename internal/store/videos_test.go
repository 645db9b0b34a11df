package store

import (
	"context"
	"errors"
	"testing"

	"github.com/vaibh/video-chat/internal/cache"
	"github.com/vaibh/video-chat/internal/types"
)

func newTestStore() *VideoStore {
	return NewVideoStore(cache.NewMemoryStore(), 0)
}

func testRecord(videoID string) *types.VideoRecord {
	return &types.VideoRecord{
		VideoID:          videoID,
		OriginalFilename: "demo.mp4",
		Duration:         120,
		Transcript: types.Transcript{
			Text:     "hello world",
			Segments: []types.TranscriptSegment{{Text: "hello world", Start: 0, Embedding: []float64{0.1}}},
			Success:  true,
		},
		ProcessingStatus: types.StatusCompleted,
	}
}

func TestKey(t *testing.T) {
	if got := Key("abc"); got != "video_abc" {
		t.Errorf("Key() = %q, want video_abc", got)
	}
}

func TestPutGetVideo(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	if err := store.PutVideo(ctx, testRecord("v1")); err != nil {
		t.Fatalf("PutVideo error: %v", err)
	}

	got, err := store.GetVideo(ctx, "v1")
	if err != nil {
		t.Fatalf("GetVideo error: %v", err)
	}
	if got.VideoID != "v1" || got.Duration != 120 {
		t.Errorf("record = %+v", got)
	}
	if len(got.Transcript.Segments) != 1 {
		t.Errorf("transcript = %+v", got.Transcript)
	}
}

func TestGetVideoNotFound(t *testing.T) {
	store := newTestStore()

	_, err := store.GetVideo(context.Background(), "nope")
	if !errors.Is(err, types.ErrVideoNotFound) {
		t.Errorf("error = %v, want ErrVideoNotFound", err)
	}
}

func TestDeleteVideo(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	store.PutVideo(ctx, testRecord("v1"))
	store.PutVideo(ctx, testRecord("v2"))

	if !store.DeleteVideo(ctx, "v1") {
		t.Fatal("DeleteVideo returned false")
	}

	if _, err := store.GetVideo(ctx, "v1"); !errors.Is(err, types.ErrVideoNotFound) {
		t.Errorf("deleted record still readable, err = %v", err)
	}

	// The remaining record stays enumerable; the deleted one is gone from
	// the key listing too.
	keys := store.ListVideoKeys(ctx)
	if len(keys) != 1 || keys[0] != Key("v2") {
		t.Errorf("ListVideoKeys = %v, want [video_v2]", keys)
	}
}

func TestGetTranscript(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	store.PutVideo(ctx, testRecord("v1"))

	transcript, err := store.GetTranscript(ctx, "v1")
	if err != nil {
		t.Fatalf("GetTranscript error: %v", err)
	}
	if !transcript.Success || transcript.Text != "hello world" {
		t.Errorf("transcript = %+v", transcript)
	}

	if _, err := store.GetTranscript(ctx, "missing"); !errors.Is(err, types.ErrVideoNotFound) {
		t.Errorf("error = %v, want ErrVideoNotFound", err)
	}
}

func TestGetVideoNormalizesFlatTranscript(t *testing.T) {
	ctx := context.Background()
	kv := cache.NewMemoryStore()
	store := NewVideoStore(kv, 0)

	// A record written by an older ingester: transcript is a flat
	// start-to-text map instead of the segmented object.
	legacy := []byte(`{
		"video_id": "old1",
		"original_filename": "old.mp4",
		"transcript": {"0.0": "intro", "15.5": "main part"},
		"processing_status": "completed"
	}`)
	kv.Set(ctx, Key("old1"), legacy, 0)

	record, err := store.GetVideo(ctx, "old1")
	if err != nil {
		t.Fatalf("GetVideo error: %v", err)
	}

	segments := record.Transcript.Segments
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
	if segments[0].Start != 0 || segments[1].Start != 15.5 {
		t.Errorf("segments out of order: %+v", segments)
	}
	if !record.Transcript.Success {
		t.Error("normalized transcript should be marked successful")
	}
}

func TestGetVideoMalformed(t *testing.T) {
	ctx := context.Background()
	kv := cache.NewMemoryStore()
	store := NewVideoStore(kv, 0)

	kv.Set(ctx, Key("bad"), []byte(`{not json`), 0)

	_, err := store.GetVideo(ctx, "bad")
	var dataErr *types.DataError
	if !errors.As(err, &dataErr) {
		t.Errorf("error %T = %v, want DataError", err, err)
	}
}
