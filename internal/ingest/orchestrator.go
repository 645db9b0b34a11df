package ingest

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/vaibh/video-chat/internal/embedding"
	"github.com/vaibh/video-chat/internal/media"
	"github.com/vaibh/video-chat/internal/storage"
	"github.com/vaibh/video-chat/internal/store"
	"github.com/vaibh/video-chat/internal/transcription"
	"github.com/vaibh/video-chat/internal/types"
)

// DefaultMaxDuration is the upload duration policy: 3 minutes, inclusive.
const DefaultMaxDuration = 180.0

// Ingestion states
const (
	stateReceived     = "received"
	stateValidated    = "validated"
	stateTranscribing = "transcribing"
	stateIndexing     = "indexing"
	stateCompleted    = "completed"
	stateFailed       = "failed"
)

// Result is what every ingestion run produces; no error ever escapes the
// orchestrator directly. RollbackUpload tells the caller the stored upload
// must be deleted.
type Result struct {
	Success        bool
	Record         *types.VideoRecord
	Err            error
	RollbackUpload bool
}

// Orchestrator sequences one video through probing, transcription, segment
// embedding and thumbnailing, then persists the assembled VideoRecord.
type Orchestrator struct {
	prober      media.Prober
	asr         transcription.SpeechToText
	embedder    embedding.Embedder
	thumbnailer media.Thumbnailer
	videos      *store.VideoStore
	catalog     *storage.Catalog
	files       *storage.VideoFiles
	tempDir     string
	maxDuration float64

	// swapped out in tests
	extractAudio func(videoPath, tempDir string) (string, error)
}

// NewOrchestrator wires an orchestrator. catalog may be nil (cache-only
// operation); maxDuration <= 0 falls back to the 180s default.
func NewOrchestrator(
	prober media.Prober,
	asr transcription.SpeechToText,
	embedder embedding.Embedder,
	thumbnailer media.Thumbnailer,
	videos *store.VideoStore,
	catalog *storage.Catalog,
	files *storage.VideoFiles,
	tempDir string,
	maxDuration float64,
) *Orchestrator {
	if maxDuration <= 0 {
		maxDuration = DefaultMaxDuration
	}
	return &Orchestrator{
		prober:       prober,
		asr:          asr,
		embedder:     embedder,
		thumbnailer:  thumbnailer,
		videos:       videos,
		catalog:      catalog,
		files:        files,
		tempDir:      tempDir,
		maxDuration:  maxDuration,
		extractAudio: transcription.ExtractAudio,
	}
}

// Process runs the full ingestion state machine for one stored upload.
// received -> validated -> transcribing -> indexing -> completed, with
// failed reachable from any step. Every failure is converted into a
// structured Result; the failed record is persisted so the status endpoint
// can tell a policy violation apart from a processing error.
func (o *Orchestrator) Process(ctx context.Context, filePath, videoID, originalFilename string) Result {
	state := stateReceived
	log.Printf("Ingestion %s: %s (%s)", videoID, state, originalFilename)

	record := &types.VideoRecord{
		VideoID:          videoID,
		OriginalFilename: originalFilename,
		CreatedAt:        time.Now().UTC(),
	}

	if info, err := os.Stat(filePath); err == nil {
		record.FileSize = info.Size()
	}

	// Step 1: probe and enforce the duration policy
	meta, err := o.prober.Probe(filePath)
	if err != nil {
		return o.fail(ctx, record, state, &types.AdapterError{Adapter: "metadata prober", Err: err})
	}
	record.Duration = meta.Duration
	record.Width = meta.Width
	record.Height = meta.Height

	if meta.Duration > o.maxDuration {
		return o.fail(ctx, record, state, &types.ValidationError{Reason: "Video must be 3 minutes or shorter"})
	}
	state = stateValidated

	// Step 2: transcribe
	state = stateTranscribing
	log.Printf("Ingestion %s: %s", videoID, state)

	audioPath, err := o.extractAudio(filePath, o.tempDir)
	if err != nil {
		return o.fail(ctx, record, state, &types.AdapterError{Adapter: "speech-to-text", Err: err})
	}
	defer os.Remove(audioPath)

	asrResult, err := o.asr.Transcribe(ctx, audioPath)
	if err != nil {
		return o.fail(ctx, record, state, &types.AdapterError{Adapter: "speech-to-text", Err: err})
	}

	// Step 3: embed every segment. A single embedding failure aborts the
	// ingestion; a half-embedded transcript would silently vanish from
	// search results.
	state = stateIndexing
	log.Printf("Ingestion %s: %s (%d segments)", videoID, state, len(asrResult.Segments))

	segments := make([]types.TranscriptSegment, 0, len(asrResult.Segments))
	for i, raw := range asrResult.Segments {
		vector, err := o.embedder.Embed(ctx, raw.Text)
		if err != nil {
			wrapped := &types.AdapterError{Adapter: "embedding model", Err: fmt.Errorf("segment %d: %w", i, err)}
			return o.fail(ctx, record, state, wrapped)
		}
		segments = append(segments, types.TranscriptSegment{
			Text:      raw.Text,
			Start:     raw.Start,
			Embedding: vector,
		})
	}

	record.Transcript = types.Transcript{
		Text:     asrResult.Text,
		Segments: segments,
		Success:  true,
	}

	// Step 4: thumbnail (non-fatal)
	if o.thumbnailer != nil && o.files != nil {
		thumbPath := o.files.ThumbnailPath(videoID)
		if err := o.thumbnailer.Extract(filePath, thumbPath, meta.Duration/2); err != nil {
			log.Printf("Ingestion %s: thumbnail failed (continuing): %v", videoID, err)
		} else {
			record.ThumbnailPath = thumbPath
		}
	}

	// Step 5: persist the whole record in one write
	state = stateCompleted
	record.ProcessingStatus = types.StatusCompleted
	o.persist(ctx, record)

	log.Printf("Ingestion %s: %s (%.2fs, %d segments)", videoID, state, record.Duration, len(segments))
	return Result{Success: true, Record: record}
}

// fail converts an error into the terminal failed state. The failed record
// is persisted (empty transcript, error set) and the caller is told to roll
// back the stored upload.
func (o *Orchestrator) fail(ctx context.Context, record *types.VideoRecord, fromState string, err error) Result {
	log.Printf("Ingestion %s: %s -> %s: %v", record.VideoID, fromState, stateFailed, err)

	record.ProcessingStatus = types.StatusFailed
	record.Error = err.Error()
	record.Transcript = types.Transcript{Success: false, Error: err.Error()}
	record.ThumbnailPath = ""
	o.persist(ctx, record)

	return Result{Record: record, Err: err, RollbackUpload: true}
}

// persist writes the record to the cache and mirrors the listing fields into
// the catalog. Cache outage degrades to "nothing cached" rather than
// failing the ingestion.
func (o *Orchestrator) persist(ctx context.Context, record *types.VideoRecord) {
	if err := o.videos.PutVideo(ctx, record); err != nil {
		log.Printf("Ingestion %s: cache write failed: %v", record.VideoID, err)
	}

	if o.catalog == nil {
		return
	}
	meta := &types.VideoMeta{
		VideoID:          record.VideoID,
		OriginalFilename: record.OriginalFilename,
		FileSize:         record.FileSize,
		Duration:         record.Duration,
		Width:            record.Width,
		Height:           record.Height,
		CreatedAt:        record.CreatedAt,
		ProcessingStatus: record.ProcessingStatus,
		ThumbnailPath:    record.ThumbnailPath,
	}
	if err := o.catalog.SaveVideo(meta); err != nil {
		log.Printf("Ingestion %s: catalog write failed: %v", record.VideoID, err)
	}
}
