package cleanup

import (
	"log"
	"os"
	"path/filepath"
	"time"
)

// Scheduler periodically purges aged files from the temp directory, where
// extracted audio tracks are staged between upload and transcription.
type Scheduler struct {
	tempDir         string
	intervalMinutes int
	maxAgeHours     int
	stopChan        chan struct{}
}

// NewScheduler creates a cleanup scheduler for tempDir.
func NewScheduler(tempDir string, intervalMinutes, maxAgeHours int) *Scheduler {
	return &Scheduler{
		tempDir:         tempDir,
		intervalMinutes: intervalMinutes,
		maxAgeHours:     maxAgeHours,
		stopChan:        make(chan struct{}),
	}
}

// Start runs an initial sweep and then cleans on the configured interval.
func (s *Scheduler) Start() {
	s.cleanOldFiles()

	ticker := time.NewTicker(time.Duration(s.intervalMinutes) * time.Minute)

	go func() {
		for {
			select {
			case <-ticker.C:
				s.cleanOldFiles()
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()

	log.Printf("Cleanup scheduler started (interval: %dm, max age: %dh)",
		s.intervalMinutes, s.maxAgeHours)
}

// Stop stops the cleanup scheduler.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	log.Println("Cleanup scheduler stopped")
}

// cleanOldFiles removes files older than maxAgeHours from the temp directory
func (s *Scheduler) cleanOldFiles() {
	now := time.Now()
	maxAge := time.Duration(s.maxAgeHours) * time.Hour

	var deletedCount int

	err := filepath.Walk(s.tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}

		if now.Sub(info.ModTime()) > maxAge {
			if err := os.Remove(path); err != nil {
				log.Printf("Failed to delete old temp file %s: %v", path, err)
			} else {
				deletedCount++
			}
		}
		return nil
	})

	if err != nil {
		log.Printf("Error during temp cleanup: %v", err)
	}
	if deletedCount > 0 {
		log.Printf("Temp cleanup: %d files deleted", deletedCount)
	}
}

// EnsureTempDirExists creates the temp directory if it doesn't exist
func EnsureTempDirExists(tempDir string) error {
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return err
	}
	log.Printf("Temp directory ready: %s", tempDir)
	return nil
}
