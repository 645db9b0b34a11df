package search

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/vaibh/video-chat/internal/embedding"
	"github.com/vaibh/video-chat/internal/nlp"
	"github.com/vaibh/video-chat/internal/types"
)

// Tuning defaults. Preserved from the production values but configurable so
// they can be tuned without code changes.
const (
	DefaultBoost         = 1.2
	DefaultMinSimilarity = 0.3
	DefaultTopK          = 3
)

// Ranker scores transcript segments against a query with embedding cosine
// similarity plus a rule-based focus-word boost, returning a bounded top-k.
type Ranker struct {
	embedder      embedding.Embedder
	boost         float64
	minSimilarity float64
	topK          int
}

// NewRanker creates a ranker. Zero or negative tuning values fall back to
// the defaults.
func NewRanker(embedder embedding.Embedder, boost, minSimilarity float64, topK int) *Ranker {
	if boost <= 0 {
		boost = DefaultBoost
	}
	if minSimilarity <= 0 {
		minSimilarity = DefaultMinSimilarity
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Ranker{
		embedder:      embedder,
		boost:         boost,
		minSimilarity: minSimilarity,
		topK:          topK,
	}
}

// Search ranks transcript segments for a free-text query. An empty
// transcript yields an empty result, not an error. A failure scoring one
// segment skips that segment; a total failure (the query cannot be
// embedded) yields an empty result. Matches are sorted by confidence
// descending, ties kept in segment order. Confidence can exceed 1.0 when
// the boost applies.
func (r *Ranker) Search(ctx context.Context, query string, transcript *types.Transcript) []types.SearchMatch {
	if transcript == nil || len(transcript.Segments) == 0 {
		return nil
	}

	components := nlp.ExtractComponents(query)
	augmented := nlp.AugmentQuery(components)
	if augmented == "" {
		augmented = query
	}

	queryVector, err := r.embedder.Embed(ctx, augmented)
	if err != nil {
		log.Printf("Transcript search error: query embedding failed: %v", err)
		return nil
	}

	focus := nlp.FocusWords(components.QuestionType)

	var matches []types.SearchMatch
	for i, segment := range transcript.Segments {
		similarity, err := cosineSimilarity(queryVector, segment.Embedding)
		if err != nil {
			log.Printf("Skipping segment %d: %v", i, err)
			continue
		}

		if len(focus) > 0 {
			segmentWords := nlp.Tokenize(segment.Text)
			for _, word := range focus {
				if _, ok := segmentWords[word]; ok {
					similarity *= r.boost
					break
				}
			}
		}

		if similarity > r.minSimilarity {
			matches = append(matches, types.SearchMatch{
				Timestamp:    segment.Start,
				Text:         segment.Text,
				Confidence:   similarity,
				QuestionType: components.QuestionType,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	if len(matches) > r.topK {
		matches = matches[:r.topK]
	}
	return matches
}

func cosineSimilarity(a, b []float64) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, fmt.Errorf("missing embedding vector")
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("embedding dimension mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
