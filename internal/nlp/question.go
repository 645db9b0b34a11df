package nlp

import (
	"log"
	"regexp"
	"strings"

	"github.com/bbalet/stopwords"
	"github.com/jdkato/prose/v2"

	"github.com/vaibh/video-chat/internal/types"
)

// focusWords maps each interrogative type to the fixed vocabulary used to
// expand underspecified questions into words more likely to overlap with
// transcript phrasing.
var focusWords = map[string][]string{
	types.QuestionWhen:  {"time", "moment", "during", "at"},
	types.QuestionWhere: {"location", "place", "area", "in"},
	types.QuestionWho:   {"person", "people", "team", "by"},
	types.QuestionWhat:  {"thing", "feature", "product", "about"},
	types.QuestionHow:   {"way", "method", "process", "steps"},
	types.QuestionWhy:   {"reason", "cause", "because", "purpose"},
}

var wordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// FocusWords returns the focus vocabulary for a question type, or nil for an
// unknown type.
func FocusWords(questionType string) []string {
	return focusWords[questionType]
}

// Tokenize returns the set of lower-cased word tokens in text.
func Tokenize(text string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(text), -1)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// IsStopword reports whether a single word is an English stopword.
func IsStopword(word string) bool {
	return strings.TrimSpace(stopwords.CleanString(word, "en", false)) == ""
}

// ExtractComponents runs a POS pass over the lower-cased query and pulls out
// its interrogative type, subjects, action and context words. Deterministic
// for a given query.
//
// The tagger provides parts of speech but not dependency arcs, so syntactic
// roles are approximated positionally: the noun before the first verb is the
// subject, a noun right after a preposition is a prepositional object, and
// the first noun after a verb is a direct object. All three land in
// Subjects; remaining non-stopword nouns and adjectives become Context.
func ExtractComponents(query string) types.QuestionComponents {
	var components types.QuestionComponents

	doc, err := prose.NewDocument(strings.ToLower(query), prose.WithExtraction(false))
	if err != nil {
		log.Printf("Query parse error: %v", err)
		return components
	}

	tokens := doc.Tokens()
	if len(tokens) == 0 {
		return components
	}

	if _, ok := focusWords[tokens[0].Text]; ok {
		components.QuestionType = tokens[0].Text
	}

	subjectSet := make(map[string]struct{})
	addSubject := func(word string) {
		if _, ok := subjectSet[word]; ok {
			return
		}
		subjectSet[word] = struct{}{}
		components.Subjects = append(components.Subjects, word)
	}

	seenVerb := false
	objectTaken := false
	prevTag := ""
	var contextCandidates []string

	for _, tok := range tokens {
		switch {
		case isNoun(tok.Tag):
			switch {
			case !seenVerb:
				addSubject(tok.Text)
			case prevTag == "IN":
				addSubject(tok.Text)
			case !objectTaken:
				addSubject(tok.Text)
				objectTaken = true
			default:
				contextCandidates = append(contextCandidates, tok.Text)
			}
		case isVerb(tok.Tag):
			if components.Action == "" && !IsStopword(tok.Text) {
				components.Action = tok.Text
			}
			seenVerb = true
		case isAdjective(tok.Tag):
			contextCandidates = append(contextCandidates, tok.Text)
		}
		prevTag = tok.Tag
	}

	contextSet := make(map[string]struct{})
	for _, word := range contextCandidates {
		if IsStopword(word) {
			continue
		}
		if _, ok := subjectSet[word]; ok {
			continue
		}
		if _, ok := contextSet[word]; ok {
			continue
		}
		contextSet[word] = struct{}{}
		components.Context = append(components.Context, word)
	}

	return components
}

// AugmentQuery joins the focus words for the detected question type with the
// extracted subjects, action and context into a duplicate-free, space-joined
// query string. Insertion order is preserved so the output is stable.
func AugmentQuery(components types.QuestionComponents) string {
	var parts []string
	seen := make(map[string]struct{})
	add := func(word string) {
		if word == "" {
			return
		}
		if _, ok := seen[word]; ok {
			return
		}
		seen[word] = struct{}{}
		parts = append(parts, word)
	}

	for _, word := range focusWords[components.QuestionType] {
		add(word)
	}
	for _, word := range components.Subjects {
		add(word)
	}
	add(components.Action)
	for _, word := range components.Context {
		add(word)
	}

	return strings.Join(parts, " ")
}

func isNoun(tag string) bool {
	return strings.HasPrefix(tag, "NN")
}

func isVerb(tag string) bool {
	return strings.HasPrefix(tag, "VB")
}

func isAdjective(tag string) bool {
	return strings.HasPrefix(tag, "JJ")
}
