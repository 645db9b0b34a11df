package queue

import (
	"time"

	"github.com/vaibh/video-chat/internal/types"
)

// Job is one queued video ingestion.
type Job struct {
	VideoID          string
	OriginalFilename string
	FilePath         string
	Status           string
	Error            error
	CreatedAt        time.Time
}

// NewJob creates a pending ingestion job.
func NewJob(videoID, originalFilename, filePath string) *Job {
	return &Job{
		VideoID:          videoID,
		OriginalFilename: originalFilename,
		FilePath:         filePath,
		Status:           types.StatusPending,
		CreatedAt:        time.Now(),
	}
}
