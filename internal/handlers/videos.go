package handlers

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/vaibh/video-chat/internal/storage"
	"github.com/vaibh/video-chat/internal/store"
	"github.com/vaibh/video-chat/internal/types"
)

// VideoHandler serves the video library: listing, status, playback,
// thumbnails and deletion.
type VideoHandler struct {
	videos  *store.VideoStore
	catalog *storage.Catalog
	files   *storage.VideoFiles
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(videos *store.VideoStore, catalog *storage.Catalog, files *storage.VideoFiles) *VideoHandler {
	return &VideoHandler{
		videos:  videos,
		catalog: catalog,
		files:   files,
	}
}

// List returns videos newest first, capped by the optional limit parameter.
func (h *VideoHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)

	metas, err := h.catalog.ListVideos(limit)
	if err != nil {
		log.Printf("Failed to list videos: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to list videos",
		})
	}

	videos := make([]fiber.Map, 0, len(metas))
	for _, meta := range metas {
		hasTranscript := false
		if record, err := h.videos.GetVideo(c.Context(), meta.VideoID); err == nil {
			hasTranscript = record.Transcript.Success
		}
		videos = append(videos, fiber.Map{
			"video_id":          meta.VideoID,
			"title":             meta.Title,
			"duration":          meta.Duration,
			"file_size":         meta.FileSize,
			"width":             meta.Width,
			"height":            meta.Height,
			"created_at":        meta.CreatedAt,
			"processing_status": meta.ProcessingStatus,
			"has_thumbnail":     meta.ThumbnailPath != "",
			"has_transcript":    hasTranscript,
		})
	}

	return c.JSON(fiber.Map{
		"videos": videos,
		"count":  len(videos),
	})
}

// Status reports a video's processing status. The cache record is
// authoritative while it lives; the catalog answers after the cache entry
// expires.
func (h *VideoHandler) Status(c *fiber.Ctx) error {
	videoID := c.Params("video_id")

	record, err := h.videos.GetVideo(c.Context(), videoID)
	if err == nil {
		resp := fiber.Map{
			"video_id": videoID,
			"status":   record.ProcessingStatus,
		}
		if record.Error != "" {
			resp["error"] = record.Error
		}
		return c.JSON(resp)
	}
	if !errors.Is(err, types.ErrVideoNotFound) {
		log.Printf("Status lookup failed for %s: %v", videoID, err)
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to get video status",
		})
	}

	meta, err := h.catalog.GetVideo(videoID)
	if err != nil {
		if errors.Is(err, types.ErrVideoNotFound) {
			return c.Status(404).JSON(fiber.Map{
				"error": "Video not found",
			})
		}
		log.Printf("Status lookup failed for %s: %v", videoID, err)
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to get video status",
		})
	}

	return c.JSON(fiber.Map{
		"video_id": videoID,
		"status":   meta.ProcessingStatus,
	})
}

// Delete removes a video everywhere: files on disk, the cached record (with
// its index membership) and the catalog row.
func (h *VideoHandler) Delete(c *fiber.Ctx) error {
	videoID := c.Params("video_id")

	if !h.exists(c, videoID) {
		return c.Status(404).JSON(fiber.Map{
			"error": "Video not found",
		})
	}

	if err := h.files.DeleteAll(videoID); err != nil {
		log.Printf("Failed to delete files for %s: %v", videoID, err)
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to delete video",
		})
	}

	h.videos.DeleteVideo(c.Context(), videoID)

	if err := h.catalog.DeleteVideo(videoID); err != nil {
		log.Printf("Failed to delete catalog row for %s: %v", videoID, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Video deleted",
	})
}

// Thumbnail serves the video's thumbnail image.
func (h *VideoHandler) Thumbnail(c *fiber.Ctx) error {
	videoID := c.Params("video_id")

	thumbPath := h.files.ThumbnailPath(videoID)
	if _, err := os.Stat(thumbPath); err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "Thumbnail not found",
		})
	}

	return c.SendFile(thumbPath)
}

// Stream serves the video file with HTTP range support so players can seek.
func (h *VideoHandler) Stream(c *fiber.Ctx) error {
	videoID := c.Params("video_id")

	videoPath, fileSize, err := h.files.FindVideo(videoID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "Video not found",
		})
	}

	rangeHeader := c.Get("Range")
	if rangeHeader == "" {
		c.Set("Accept-Ranges", "bytes")
		return c.SendFile(videoPath)
	}

	start, end, ok := parseRange(rangeHeader, fileSize)
	if !ok {
		c.Set("Content-Range", fmt.Sprintf("bytes */%d", fileSize))
		return c.SendStatus(fiber.StatusRequestedRangeNotSatisfiable)
	}

	file, err := os.Open(videoPath)
	if err != nil {
		log.Printf("Failed to open video %s: %v", videoID, err)
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to stream video",
		})
	}
	if _, err := file.Seek(start, 0); err != nil {
		file.Close()
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to stream video",
		})
	}

	length := end - start + 1
	c.Status(fiber.StatusPartialContent)
	c.Set("Content-Type", "video/mp4")
	c.Set("Accept-Ranges", "bytes")
	c.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, fileSize))
	c.Set("Content-Length", strconv.FormatInt(length, 10))

	// fasthttp closes the file once the body stream is drained.
	return c.SendStream(file, int(length))
}

// exists checks the cache first, then the durable catalog.
func (h *VideoHandler) exists(c *fiber.Ctx, videoID string) bool {
	if _, err := h.videos.GetVideo(c.Context(), videoID); err == nil {
		return true
	}
	_, err := h.catalog.GetVideo(videoID)
	return err == nil
}

// parseRange handles "bytes=start-end" with an optional open end. Suffix
// ranges ("bytes=-500") are the last N bytes.
func parseRange(header string, fileSize int64) (start, end int64, ok bool) {
	value, found := strings.CutPrefix(header, "bytes=")
	if !found || strings.Contains(value, ",") {
		return 0, 0, false
	}

	parts := strings.SplitN(value, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	if parts[0] == "" {
		// Suffix range: last N bytes
		n, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || n <= 0 {
			return 0, 0, false
		}
		if n > fileSize {
			n = fileSize
		}
		return fileSize - n, fileSize - 1, true
	}

	start, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || start < 0 || start >= fileSize {
		return 0, 0, false
	}

	end = fileSize - 1
	if parts[1] != "" {
		end, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil || end < start {
			return 0, 0, false
		}
		if end >= fileSize {
			end = fileSize - 1
		}
	}
	return start, end, true
}
