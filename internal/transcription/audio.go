package transcription

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ExtractAudio pulls the audio track out of a video file as 16kHz mono WAV,
// the format whisper expects.
func ExtractAudio(videoPath, tempDir string) (string, error) {
	outputPath := filepath.Join(tempDir, fmt.Sprintf("audio_%s.wav", uuid.New().String()))

	cmd := exec.Command("ffmpeg",
		"-i", videoPath,
		"-vn",               // Drop the video stream
		"-ar", "16000",      // 16kHz sample rate
		"-ac", "1",          // Mono
		"-c:a", "pcm_s16le", // 16-bit PCM
		"-y",                // Overwrite output
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg failed: %v\nOutput: %s", err, string(output))
	}

	return outputPath, nil
}

// ValidateVideoFormat checks if the file extension is a supported container
func ValidateVideoFormat(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	supportedFormats := []string{".mp4", ".mov", ".avi"}

	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}
	return false
}
