package handlers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/vaibh/video-chat/internal/queue"
	"github.com/vaibh/video-chat/internal/storage"
	"github.com/vaibh/video-chat/internal/transcription"
	"github.com/vaibh/video-chat/internal/types"
)

// UploadHandler accepts video uploads and queues them for ingestion.
type UploadHandler struct {
	workerPool *queue.WorkerPool
	files      *storage.VideoFiles
	maxSizeMB  int
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(workerPool *queue.WorkerPool, files *storage.VideoFiles, maxSizeMB int) *UploadHandler {
	return &UploadHandler{
		workerPool: workerPool,
		files:      files,
		maxSizeMB:  maxSizeMB,
	}
}

// Handle processes the upload request
func (h *UploadHandler) Handle(c *fiber.Ctx) error {
	file, err := c.FormFile("video")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "No video file provided",
		})
	}

	title := c.FormValue("title")
	if title == "" {
		title = file.Filename
	}
	if !transcription.ValidateVideoFormat(title) {
		title += ".mp4"
	}

	maxSize := int64(h.maxSizeMB) * 1024 * 1024
	if file.Size > maxSize {
		return c.Status(400).JSON(fiber.Map{
			"error": fmt.Sprintf("File size must be less than %dMB", h.maxSizeMB),
		})
	}

	if !transcription.ValidateVideoFormat(file.Filename) {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid file type. Please upload MP4, MOV, or AVI",
		})
	}

	videoID := uuid.New().String()

	destPath, err := h.files.UploadPath(videoID, title)
	if err != nil {
		log.Printf("Failed to prepare upload directory: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to save file",
		})
	}

	if err := c.SaveFile(file, destPath); err != nil {
		log.Printf("Failed to save uploaded file: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to save file",
		})
	}

	h.workerPool.EnqueueJob(queue.NewJob(videoID, title, destPath))

	return c.JSON(fiber.Map{
		"video_id":          videoID,
		"processing_status": types.StatusPending,
		"message":           "Video uploaded, processing started",
	})
}
