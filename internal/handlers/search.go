package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/vaibh/video-chat/internal/search"
	"github.com/vaibh/video-chat/internal/store"
	"github.com/vaibh/video-chat/internal/types"
)

// SearchHandler answers semantic transcript searches.
type SearchHandler struct {
	videos *store.VideoStore
	ranker *search.Ranker
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(videos *store.VideoStore, ranker *search.Ranker) *SearchHandler {
	return &SearchHandler{
		videos: videos,
		ranker: ranker,
	}
}

type searchRequest struct {
	VideoID string `json:"video_id"`
	Query   string `json:"query"`
}

// Handle ranks a video's transcript segments against the query.
func (h *SearchHandler) Handle(c *fiber.Ctx) error {
	var req searchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.VideoID == "" || req.Query == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "video_id and query are required",
		})
	}

	record, err := h.videos.GetVideo(c.Context(), req.VideoID)
	if err != nil {
		if errors.Is(err, types.ErrVideoNotFound) {
			return c.Status(404).JSON(fiber.Map{
				"error": "Video not found",
			})
		}
		log.Printf("Search lookup failed for %s: %v", req.VideoID, err)
		return c.Status(500).JSON(fiber.Map{
			"error": "Search failed",
		})
	}

	matches := h.ranker.Search(c.Context(), req.Query, &record.Transcript)
	if len(matches) == 0 {
		return c.JSON(fiber.Map{
			"message": "No relevant content found",
		})
	}

	return c.JSON(fiber.Map{
		"results": matches,
		"count":   len(matches),
	})
}
