package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// RawSegment is one timestamped span from the speech recognition engine,
// before embedding.
type RawSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is an unsegmented transcript plus its per-segment start times.
type Result struct {
	Text     string
	Segments []RawSegment
}

// SpeechToText converts an audio file into a transcript. Implementations
// may fail; the ingestion orchestrator treats any error as a fatal
// ingestion failure.
type SpeechToText interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

// OpenAIWhisper transcribes through the hosted whisper API, requesting
// verbose JSON so segment timestamps come back.
type OpenAIWhisper struct {
	cli   *openai.Client
	model string
}

// NewOpenAIWhisper creates a hosted whisper transcriber.
func NewOpenAIWhisper(apiKey, baseURL, model string) *OpenAIWhisper {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAIWhisper{
		cli:   openai.NewClientWithConfig(cfg),
		model: model,
	}
}

// Transcribe sends the audio file to the whisper API.
func (w *OpenAIWhisper) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	resp, err := w.cli.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, err
	}

	segments := make([]RawSegment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		segments = append(segments, RawSegment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}

	return &Result{
		Text:     strings.TrimSpace(resp.Text),
		Segments: segments,
	}, nil
}

// LocalWhisper runs Python Whisper as a CLI for offline transcription.
type LocalWhisper struct {
	modelName string
	mu        sync.Mutex // one transcription at a time
}

// NewLocalWhisper creates a local transcriber for the given whisper model
// name (tiny/base/small/medium/large).
func NewLocalWhisper(modelName string) *LocalWhisper {
	if modelName == "" {
		modelName = "base"
	}
	log.Printf("Initializing local Whisper with model: %s", modelName)
	return &LocalWhisper{modelName: modelName}
}

// Transcribe runs `python -m whisper` and parses its JSON output.
func (w *LocalWhisper) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	tempDir, err := os.MkdirTemp("", "whisper_output")
	if err != nil {
		return nil, fmt.Errorf("failed to create whisper output dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	absAudioPath, err := filepath.Abs(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %v", err)
	}

	cmd := exec.CommandContext(ctx, "python", "-m", "whisper",
		absAudioPath,
		"--model", w.modelName,
		"--output_dir", tempDir,
		"--output_format", "json",
		"--fp16", "False",
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("whisper transcription failed: %v\nOutput: %s", err, string(output))
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(tempDir, baseName+".json")

	jsonData, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read whisper output: %v", err)
	}

	var whisperOutput whisperJSON
	if err := json.Unmarshal(jsonData, &whisperOutput); err != nil {
		return nil, fmt.Errorf("failed to parse whisper JSON: %v", err)
	}

	segments := make([]RawSegment, 0, len(whisperOutput.Segments))
	for _, seg := range whisperOutput.Segments {
		segments = append(segments, RawSegment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}

	log.Printf("Local transcription completed: %d segments", len(segments))
	return &Result{
		Text:     strings.TrimSpace(whisperOutput.Text),
		Segments: segments,
	}, nil
}

// whisperJSON matches Python Whisper's JSON output format
type whisperJSON struct {
	Text     string `json:"text"`
	Segments []struct {
		ID    int     `json:"id"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}
