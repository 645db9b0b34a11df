package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Processing status constants
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Question type constants recognised by query understanding
const (
	QuestionWhen  = "when"
	QuestionWhere = "where"
	QuestionWho   = "who"
	QuestionWhat  = "what"
	QuestionHow   = "how"
	QuestionWhy   = "why"
)

// TranscriptSegment is one timestamped span of transcript text with its
// embedding vector. Segments are immutable once created.
type TranscriptSegment struct {
	Text      string    `json:"text"`
	Start     float64   `json:"start"`
	Embedding []float64 `json:"embedding,omitempty"`
}

// Transcript is the full transcription result for one video.
// If Success is false, Segments is empty and Error is set.
type Transcript struct {
	Text     string              `json:"text"`
	Segments []TranscriptSegment `json:"segments"`
	Success  bool                `json:"success"`
	Error    string              `json:"error,omitempty"`
}

// transcriptAlias avoids recursing into UnmarshalJSON
type transcriptAlias Transcript

// UnmarshalJSON accepts the segmented transcript object and also the legacy
// flat form: a JSON object mapping start seconds to text, e.g.
// {"12.5": "some words"}. The flat form is normalized into Segments here so
// every downstream component only ever sees the segmented shape.
func (t *Transcript) UnmarshalJSON(data []byte) error {
	var alias transcriptAlias
	if err := json.Unmarshal(data, &alias); err == nil {
		if alias.Success || alias.Error != "" || len(alias.Segments) > 0 || alias.Text != "" {
			*t = Transcript(alias)
			return nil
		}
	}

	var flat map[string]string
	if err := json.Unmarshal(data, &flat); err != nil {
		return fmt.Errorf("transcript is neither segmented nor a flat map: %v", err)
	}

	segments := make([]TranscriptSegment, 0, len(flat))
	for key, text := range flat {
		start, err := strconv.ParseFloat(key, 64)
		if err != nil {
			return &DataError{Detail: fmt.Sprintf("flat transcript key %q is not a timestamp", key)}
		}
		segments = append(segments, TranscriptSegment{Text: text, Start: start})
	}
	sort.Slice(segments, func(i, j int) bool { return segments[i].Start < segments[j].Start })

	*t = Transcript{Segments: segments, Success: len(segments) > 0}
	return nil
}

// VideoRecord is the unit of persisted state for one video. Created by the
// ingestion orchestrator on successful or failed processing, deleted as a
// unit together with its backing files.
type VideoRecord struct {
	VideoID          string     `json:"video_id"`
	OriginalFilename string     `json:"original_filename"`
	FileSize         int64      `json:"file_size"`
	Duration         float64    `json:"duration"`
	Width            int        `json:"width"`
	Height           int        `json:"height"`
	CreatedAt        time.Time  `json:"created_at"`
	Transcript       Transcript `json:"transcript"`
	ProcessingStatus string     `json:"processing_status"`
	ThumbnailPath    string     `json:"thumbnail,omitempty"`
	Error            string     `json:"error,omitempty"`
}

// QuestionComponents are the parsed parts of a user query. Derived fresh per
// query, never persisted.
type QuestionComponents struct {
	QuestionType string
	Subjects     []string
	Action       string
	Context      []string
}

// SearchMatch is one ranked transcript hit for a query, ordered by
// confidence descending. Confidence can exceed 1.0 after boosting.
type SearchMatch struct {
	Timestamp    float64 `json:"timestamp"`
	Text         string  `json:"text"`
	Confidence   float64 `json:"confidence"`
	QuestionType string  `json:"question_type,omitempty"`
}

// ChatResponse is the payload sent back over the chat websocket.
type ChatResponse struct {
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	Timestamps []float64 `json:"timestamps"`
	Confidence float64   `json:"confidence"`
}

// VideoMeta is the transcript-free listing view of a video.
type VideoMeta struct {
	VideoID          string    `json:"video_id"`
	Title            string    `json:"title"`
	OriginalFilename string    `json:"original_filename"`
	FileSize         int64     `json:"file_size"`
	Duration         float64   `json:"duration"`
	Width            int       `json:"width"`
	Height           int       `json:"height"`
	CreatedAt        time.Time `json:"created_at"`
	ProcessingStatus string    `json:"processing_status"`
	ThumbnailPath    string    `json:"thumbnail,omitempty"`
}
