package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vaibh/video-chat/internal/cache"
	"github.com/vaibh/video-chat/internal/types"
)

// VideoStore persists whole VideoRecords in the cache, one JSON value per
// video under "video_{id}". Only the ingestion orchestrator writes records;
// retrieval and chat read them.
type VideoStore struct {
	kv  cache.KeyValueStore
	ttl time.Duration
}

// NewVideoStore creates a store over the given key-value backend. A zero ttl
// falls back to the 24 hour default.
func NewVideoStore(kv cache.KeyValueStore, ttl time.Duration) *VideoStore {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &VideoStore{kv: kv, ttl: ttl}
}

// Key returns the cache key for a video ID.
func Key(videoID string) string {
	return cache.VideoKeyPrefix + videoID
}

// GetVideo loads a video record, or ErrVideoNotFound.
func (s *VideoStore) GetVideo(ctx context.Context, videoID string) (*types.VideoRecord, error) {
	data, ok := s.kv.Get(ctx, Key(videoID))
	if !ok {
		return nil, types.ErrVideoNotFound
	}

	var record types.VideoRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, &types.DataError{Detail: fmt.Sprintf("malformed record for video %s: %v", videoID, err)}
	}
	return &record, nil
}

// PutVideo writes a whole record in one cache set.
func (s *VideoStore) PutVideo(ctx context.Context, record *types.VideoRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal video record: %v", err)
	}
	if !s.kv.Set(ctx, Key(record.VideoID), data, s.ttl) {
		return fmt.Errorf("cache rejected video record %s", record.VideoID)
	}
	return nil
}

// DeleteVideo removes the record and its secondary index membership.
func (s *VideoStore) DeleteVideo(ctx context.Context, videoID string) bool {
	return s.kv.Delete(ctx, Key(videoID))
}

// GetTranscript returns the transcript for a video, or ErrVideoNotFound.
// The record decode already normalized any legacy flat-map transcript into
// the segmented form.
func (s *VideoStore) GetTranscript(ctx context.Context, videoID string) (*types.Transcript, error) {
	record, err := s.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return &record.Transcript, nil
}

// ListVideoKeys enumerates every cached video key.
func (s *VideoStore) ListVideoKeys(ctx context.Context) []string {
	return s.kv.Keys(ctx, cache.VideoKeyPrefix)
}
