package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vaibh/video-chat/internal/cache"
	"github.com/vaibh/video-chat/internal/media"
	"github.com/vaibh/video-chat/internal/storage"
	"github.com/vaibh/video-chat/internal/store"
	"github.com/vaibh/video-chat/internal/transcription"
	"github.com/vaibh/video-chat/internal/types"
)

type fakeProber struct {
	meta *media.Metadata
	err  error
}

func (f *fakeProber) Probe(string) (*media.Metadata, error) {
	return f.meta, f.err
}

type fakeASR struct {
	result *transcription.Result
	err    error
}

func (f *fakeASR) Transcribe(context.Context, string) (*transcription.Result, error) {
	return f.result, f.err
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float64{0.1, 0.2}, nil
}

type fakeThumbnailer struct {
	err   error
	calls int
}

func (f *fakeThumbnailer) Extract(_, outputPath string, _ float64) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, []byte("jpeg"), 0644)
}

type fixture struct {
	orchestrator *Orchestrator
	videos       *store.VideoStore
	videoPath    string
}

func newFixture(t *testing.T, prober media.Prober, asr transcription.SpeechToText, embedErr error, thumbnailer media.Thumbnailer) *fixture {
	t.Helper()

	dir := t.TempDir()
	videos := store.NewVideoStore(cache.NewMemoryStore(), 0)
	files := storage.NewVideoFiles(dir)

	videoPath, err := files.UploadPath("vid1", "clip.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(videoPath, []byte("fake video bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	o := NewOrchestrator(prober, asr, &fakeEmbedder{err: embedErr}, thumbnailer,
		videos, nil, files, dir, 0)
	o.extractAudio = func(_, tempDir string) (string, error) {
		audioPath := filepath.Join(tempDir, "audio.wav")
		return audioPath, os.WriteFile(audioPath, []byte("wav"), 0644)
	}

	return &fixture{orchestrator: o, videos: videos, videoPath: videoPath}
}

func goodMeta() *media.Metadata {
	return &media.Metadata{Duration: 90, Width: 1280, Height: 720}
}

func goodASR() *fakeASR {
	return &fakeASR{result: &transcription.Result{
		Text: "hello world again",
		Segments: []transcription.RawSegment{
			{Start: 0, End: 5, Text: "hello world"},
			{Start: 5, End: 10, Text: "again"},
		},
	}}
}

func TestProcessSuccess(t *testing.T) {
	thumb := &fakeThumbnailer{}
	f := newFixture(t, &fakeProber{meta: goodMeta()}, goodASR(), nil, thumb)

	result := f.orchestrator.Process(context.Background(), f.videoPath, "vid1", "clip.mp4")
	if !result.Success {
		t.Fatalf("Process failed: %v", result.Err)
	}
	if result.RollbackUpload {
		t.Error("successful ingestion must not request rollback")
	}

	record, err := f.videos.GetVideo(context.Background(), "vid1")
	if err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if record.ProcessingStatus != types.StatusCompleted {
		t.Errorf("status = %q, want completed", record.ProcessingStatus)
	}
	if record.Duration != 90 || record.Width != 1280 {
		t.Errorf("metadata not recorded: %+v", record)
	}
	if len(record.Transcript.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(record.Transcript.Segments))
	}
	for i, seg := range record.Transcript.Segments {
		if len(seg.Embedding) == 0 {
			t.Errorf("segment %d has no embedding", i)
		}
	}
	if thumb.calls != 1 || record.ThumbnailPath == "" {
		t.Errorf("thumbnail not captured: calls=%d path=%q", thumb.calls, record.ThumbnailPath)
	}
}

func TestProcessRejectsLongVideo(t *testing.T) {
	f := newFixture(t, &fakeProber{meta: &media.Metadata{Duration: 181}}, goodASR(), nil, &fakeThumbnailer{})

	result := f.orchestrator.Process(context.Background(), f.videoPath, "vid1", "clip.mp4")
	if result.Success {
		t.Fatal("Process should fail for a video over 3 minutes")
	}
	if !result.RollbackUpload {
		t.Error("failed ingestion should request rollback")
	}

	var validationErr *types.ValidationError
	if !errors.As(result.Err, &validationErr) {
		t.Fatalf("error %T is not a ValidationError", result.Err)
	}

	record, err := f.videos.GetVideo(context.Background(), "vid1")
	if err != nil {
		t.Fatalf("failed record not persisted: %v", err)
	}
	if record.ProcessingStatus != types.StatusFailed {
		t.Errorf("status = %q, want failed", record.ProcessingStatus)
	}
	if record.Transcript.Success || len(record.Transcript.Segments) != 0 {
		t.Errorf("failed record should have an empty transcript: %+v", record.Transcript)
	}
	if record.Transcript.Error == "" {
		t.Error("failed transcript should carry the error")
	}
}

func TestProcessAcceptsExactDurationLimit(t *testing.T) {
	// The 3 minute policy is inclusive: exactly 180.0s passes.
	f := newFixture(t, &fakeProber{meta: &media.Metadata{Duration: 180.0}}, goodASR(), nil, &fakeThumbnailer{})

	result := f.orchestrator.Process(context.Background(), f.videoPath, "vid1", "clip.mp4")
	if !result.Success {
		t.Fatalf("exactly 180s should pass the duration gate: %v", result.Err)
	}
}

func TestProcessASRFailure(t *testing.T) {
	cause := errors.New("whisper: model not loaded")
	f := newFixture(t, &fakeProber{meta: goodMeta()}, &fakeASR{err: cause}, nil, &fakeThumbnailer{})

	result := f.orchestrator.Process(context.Background(), f.videoPath, "vid1", "clip.mp4")
	if result.Success {
		t.Fatal("Process should fail when transcription fails")
	}

	var adapterErr *types.AdapterError
	if !errors.As(result.Err, &adapterErr) {
		t.Fatalf("error %T is not an AdapterError", result.Err)
	}
	if adapterErr.Adapter != "speech-to-text" {
		t.Errorf("adapter = %q", adapterErr.Adapter)
	}
	// The engine's error text is preserved verbatim
	if !errors.Is(result.Err, cause) {
		t.Error("underlying transcription error not preserved")
	}

	record, _ := f.videos.GetVideo(context.Background(), "vid1")
	if record == nil || record.ProcessingStatus != types.StatusFailed {
		t.Errorf("failed record not persisted: %+v", record)
	}
}

func TestProcessEmbeddingFailureIsFatal(t *testing.T) {
	f := newFixture(t, &fakeProber{meta: goodMeta()}, goodASR(), errors.New("quota exceeded"), &fakeThumbnailer{})

	result := f.orchestrator.Process(context.Background(), f.videoPath, "vid1", "clip.mp4")
	if result.Success {
		t.Fatal("Process should fail when an embedding fails")
	}

	var adapterErr *types.AdapterError
	if !errors.As(result.Err, &adapterErr) {
		t.Fatalf("error %T is not an AdapterError", result.Err)
	}
	if adapterErr.Adapter != "embedding model" {
		t.Errorf("adapter = %q", adapterErr.Adapter)
	}

	record, _ := f.videos.GetVideo(context.Background(), "vid1")
	if record == nil || len(record.Transcript.Segments) != 0 {
		t.Error("no partially embedded transcript may be persisted")
	}
}

func TestProcessThumbnailFailureIsNonFatal(t *testing.T) {
	f := newFixture(t, &fakeProber{meta: goodMeta()}, goodASR(), nil,
		&fakeThumbnailer{err: errors.New("no video stream")})

	result := f.orchestrator.Process(context.Background(), f.videoPath, "vid1", "clip.mp4")
	if !result.Success {
		t.Fatalf("thumbnail failure must not fail ingestion: %v", result.Err)
	}

	record, err := f.videos.GetVideo(context.Background(), "vid1")
	if err != nil {
		t.Fatal(err)
	}
	if record.ThumbnailPath != "" {
		t.Errorf("ThumbnailPath = %q, want empty after thumbnail failure", record.ThumbnailPath)
	}
	if record.ProcessingStatus != types.StatusCompleted {
		t.Errorf("status = %q, want completed", record.ProcessingStatus)
	}
}

func TestProcessProbeFailure(t *testing.T) {
	f := newFixture(t, &fakeProber{err: errors.New("moov atom not found")}, goodASR(), nil, &fakeThumbnailer{})

	result := f.orchestrator.Process(context.Background(), f.videoPath, "vid1", "clip.mp4")
	if result.Success {
		t.Fatal("Process should fail when probing fails")
	}

	var adapterErr *types.AdapterError
	if !errors.As(result.Err, &adapterErr) {
		t.Fatalf("error %T is not an AdapterError", result.Err)
	}
	if adapterErr.Adapter != "metadata prober" {
		t.Errorf("adapter = %q", adapterErr.Adapter)
	}
}
