package chat

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/vaibh/video-chat/internal/types"
)

const systemPromptHeader = "You are an AI assistant helping users understand a video content. " +
	"You have access to the video's transcript. When answering questions:\n" +
	"1. Reference specific parts of the transcript\n" +
	"2. Include timestamps when quoting content as long as it matches content partially or in concept always include timestamp\n" +
	"3. Be concise but informative\n" +
	"4. If information isn't in the transcript, say so\n"

// Completer produces a free-text answer to a question given a system prompt.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, question string) (string, error)
}

// OpenAICompleter backs the Completer with a chat-completion model.
type OpenAICompleter struct {
	cli   *openai.Client
	model string
}

// NewOpenAICompleter creates a completer for the given chat model.
func NewOpenAICompleter(apiKey, baseURL, model string) *OpenAICompleter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAICompleter{
		cli:   openai.NewClientWithConfig(cfg),
		model: model,
	}
}

// Complete sends the prompt pair to the chat model.
func (c *OpenAICompleter) Complete(ctx context.Context, systemPrompt, question string) (string, error) {
	resp, err := c.cli.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.7,
		MaxTokens:   500,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Service answers questions about one video's transcript and grounds each
// answer back to the timestamps it drew from.
type Service struct {
	completer Completer
}

// NewService creates a chat service over a completer.
func NewService(completer Completer) *Service {
	return &Service{completer: completer}
}

// Respond asks the chat model the user's question with the transcript as
// context, then grounds the answer to transcript timestamps.
func (s *Service) Respond(ctx context.Context, question string, transcript *types.Transcript) (*types.ChatResponse, error) {
	prompt := systemPromptHeader + "\nHere's the transcript:\n" + FormatTranscript(transcript)

	answer, err := s.completer.Complete(ctx, prompt, question)
	if err != nil {
		return nil, &types.AdapterError{Adapter: "chat completion", Err: err}
	}

	return &types.ChatResponse{
		Type:       "chat.message",
		Message:    answer,
		Timestamps: GroundTimestamps(answer, transcript),
		Confidence: 0.9,
	}, nil
}

// FormatTranscript renders a transcript as "[M:SS] text" lines, one per
// segment, newline-joined.
func FormatTranscript(transcript *types.Transcript) string {
	if transcript == nil {
		return ""
	}

	lines := make([]string, 0, len(transcript.Segments))
	for _, segment := range transcript.Segments {
		lines = append(lines, fmt.Sprintf("[%s] %s", FormatTimestamp(segment.Start), segment.Text))
	}
	return strings.Join(lines, "\n")
}

// FormatTimestamp renders seconds as M:SS.
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
