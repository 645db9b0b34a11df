package chat

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/vaibh/video-chat/internal/types"
)

// minPhraseLen is the shortest candidate phrase (after trimming) worth
// matching; anything shorter collides with the answer text by accident.
const minPhraseLen = 11

// jaccardThreshold is the word-overlap ratio above which a segment phrase
// and an answer sentence are considered the same statement.
const jaccardThreshold = 0.7

// Timestamp mentions like 1:23, [2:45] or (10:05).
var timestampRe = regexp.MustCompile(`[\[\(]?(\d{1,2}):(\d{2})[\]\)]?`)

// GroundTimestamps determines which transcript timestamps a generated
// answer is about. Two sources are combined: segments whose phrasing the
// answer reuses (verbatim substring or word-set overlap, which survives
// paraphrase), and timestamps the model cited explicitly in M:SS form.
// The result is deduplicated and sorted ascending. Pure function.
func GroundTimestamps(answer string, transcript *types.Transcript) []float64 {
	found := make(map[float64]struct{})

	answerLower := strings.ToLower(answer)
	sentences := strings.Split(answerLower, ".")

	if transcript != nil {
		for _, segment := range transcript.Segments {
			if segmentReferenced(segment.Text, answerLower, sentences) {
				found[segment.Start] = struct{}{}
			}
		}
	}

	for _, match := range timestampRe.FindAllStringSubmatch(answer, -1) {
		minutes, _ := strconv.Atoi(match[1])
		seconds, _ := strconv.Atoi(match[2])
		found[float64(minutes*60+seconds)] = struct{}{}
	}

	timestamps := make([]float64, 0, len(found))
	for ts := range found {
		timestamps = append(timestamps, ts)
	}
	sort.Float64s(timestamps)
	return timestamps
}

// segmentReferenced checks each candidate phrase of a segment against the
// answer; the first hit decides, so a segment contributes at most once.
func segmentReferenced(segmentText, answerLower string, sentences []string) bool {
	for _, phrase := range candidatePhrases(segmentText) {
		if strings.Contains(answerLower, phrase) {
			return true
		}
		for _, sentence := range sentences {
			if Jaccard(phrase, sentence) > jaccardThreshold {
				return true
			}
		}
	}
	return false
}

// candidatePhrases splits a segment's text on '.' and ',' and adds the whole
// text, lower-cased and trimmed, discarding fragments too short to match
// meaningfully.
func candidatePhrases(text string) []string {
	lower := strings.ToLower(text)

	var raw []string
	raw = append(raw, strings.Split(lower, ".")...)
	raw = append(raw, strings.Split(lower, ",")...)
	raw = append(raw, lower)

	var phrases []string
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if len(p) >= minPhraseLen {
			phrases = append(phrases, p)
		}
	}
	return phrases
}

// Jaccard is the word-set similarity of two strings: intersection over
// union, 0 when the union is empty. Symmetric.
func Jaccard(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)

	intersection := 0
	for word := range wordsA {
		if _, ok := wordsB[word]; ok {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
