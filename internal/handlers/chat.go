package handlers

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/websocket/v2"

	"github.com/vaibh/video-chat/internal/chat"
	"github.com/vaibh/video-chat/internal/store"
	"github.com/vaibh/video-chat/internal/types"
)

// ChatHandler runs the per-video chat websocket.
type ChatHandler struct {
	videos  *store.VideoStore
	service *chat.Service
}

// NewChatHandler creates a new chat handler
func NewChatHandler(videos *store.VideoStore, service *chat.Service) *ChatHandler {
	return &ChatHandler{
		videos:  videos,
		service: service,
	}
}

type chatMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Handle serves one websocket connection. Clients may pass either the bare
// video_id or the cache key form ("video_<id>"); both resolve to the same
// video.
func (h *ChatHandler) Handle(c *websocket.Conn) {
	videoID := strings.TrimPrefix(c.Params("video_id"), "video_")
	log.Printf("Chat connected for video %s", videoID)

	defer func() {
		c.Close()
		log.Printf("Chat disconnected for video %s", videoID)
	}()

	for {
		var msg chatMessage
		if err := c.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "connection.check":
			h.send(c, videoID, types.ChatResponse{
				Type:    "connection.established",
				Message: "Connected successfully",
			})

		case "chat.message":
			if msg.Message == "" {
				h.sendError(c, videoID, "Message is required")
				continue
			}
			h.answer(c, videoID, msg.Message)

		default:
			h.sendError(c, videoID, "Unknown message type")
		}
	}
}

// answer resolves the transcript and asks the chat service.
func (h *ChatHandler) answer(c *websocket.Conn, videoID, question string) {
	ctx := context.Background()

	transcript, err := h.videos.GetTranscript(ctx, videoID)
	if err != nil {
		if errors.Is(err, types.ErrVideoNotFound) {
			h.sendError(c, videoID, "Video not found")
			return
		}
		log.Printf("Chat transcript lookup failed for %s: %v", videoID, err)
		h.sendError(c, videoID, "Failed to load transcript")
		return
	}
	if !transcript.Success || len(transcript.Segments) == 0 {
		h.sendError(c, videoID, "Transcript not available for this video")
		return
	}

	resp, err := h.service.Respond(ctx, question, transcript)
	if err != nil {
		log.Printf("Chat completion failed for %s: %v", videoID, err)
		h.sendError(c, videoID, "Failed to generate response")
		return
	}

	h.send(c, videoID, *resp)
}

func (h *ChatHandler) send(c *websocket.Conn, videoID string, resp types.ChatResponse) {
	if err := c.WriteJSON(resp); err != nil {
		log.Printf("Chat write error for video %s: %v", videoID, err)
	}
}

func (h *ChatHandler) sendError(c *websocket.Conn, videoID, message string) {
	h.send(c, videoID, types.ChatResponse{
		Type:    "chat.error",
		Message: message,
	})
}
