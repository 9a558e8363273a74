// Package citation reconciles a generator's free-text answer against the
// retrieved chunks to produce page-addressed, highlightable citations.
//
// The generator is not a structured-output system, so everything here is
// heuristic string work. The whole package is pure: identical inputs always
// produce byte-identical output.
package citation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/paperchat/paperchat/models"
)

const (
	// fallbackChunks is how many top-scored chunks back a citation when the
	// answer names no parseable page.
	fallbackChunks = 3

	// keywordPad is the window half-size around a matched keyword.
	keywordPad = 150

	// defaultHighlightLen is the default highlight when nothing matches.
	defaultHighlightLen = 300

	// displayLen bounds the short excerpt used for compact list display.
	displayLen = 150

	maxPhraseWords = 6
	minPhraseWords = 3
)

// pagePatterns match the page-marker token the prompt assembler emits, in
// bracketed, parenthesised and bare forms.
var pagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\[page\s+(\d+)\]`),
	regexp.MustCompile(`(?i)\(page\s+(\d+)\)`),
	regexp.MustCompile(`(?i)\bpage\s+(\d+)\b`),
}

// stopWords are question words that carry no retrieval signal.
var stopWords = map[string]struct{}{
	"what": {}, "where": {}, "when": {}, "how": {},
	"the": {}, "this": {}, "that": {}, "with": {},
}

// Extract maps an answer back to the chunks that ground it. Chunks whose page
// the answer cites are kept (in ranked order); when the answer cites nothing
// parseable, the top-scored chunks stand in so the user always sees evidence.
func Extract(answerText string, scoredChunks []models.ScoredChunk, question string) []models.Citation {
	if len(scoredChunks) == 0 {
		return nil
	}

	mentioned := mentionedPages(answerText)

	var selected []models.ScoredChunk
	for _, sc := range scoredChunks {
		if _, ok := mentioned[sc.Chunk.PageNumber]; ok {
			selected = append(selected, sc)
		}
	}
	if len(selected) == 0 {
		// Non-fatal mismatch: the generator cited no page we know about.
		n := fallbackChunks
		if n > len(scoredChunks) {
			n = len(scoredChunks)
		}
		selected = scoredChunks[:n]
	}

	citations := make([]models.Citation, 0, len(selected))
	for _, sc := range selected {
		content := sc.Chunk.Content
		citations = append(citations, models.Citation{
			PageNumber:     sc.Chunk.PageNumber,
			DisplayText:    excerpt(content),
			FullText:       content,
			HighlightRange: highlight(content, question),
		})
	}
	return citations
}

// mentionedPages collects the distinct page numbers the answer claims to have
// used. First-mention order is irrelevant; this is a set.
func mentionedPages(answerText string) map[int]struct{} {
	pages := make(map[int]struct{})
	for _, pattern := range pagePatterns {
		for _, m := range pattern.FindAllStringSubmatch(answerText, -1) {
			if n, err := strconv.Atoi(m[1]); err == nil {
				pages[n] = struct{}{}
			}
		}
	}
	return pages
}

// highlight localizes the answer-supporting span inside a chunk. Rules in
// priority order: question phrase match, question keyword match, then the
// head of the chunk.
func highlight(content, question string) models.HighlightRange {
	if r, ok := phraseHighlight(content, question); ok {
		return r
	}
	if r, ok := keywordHighlight(content, question); ok {
		return r
	}
	end := defaultHighlightLen
	if end > len(content) {
		end = len(content)
	}
	return models.HighlightRange{Start: 0, End: end}
}

// phraseHighlight tries candidate phrases of consecutive question words,
// longest first, as case-insensitive substrings of the chunk. A hit centers a
// window sized proportionally to the phrase with at least ~100 characters of
// surrounding context.
func phraseHighlight(content, question string) (models.HighlightRange, bool) {
	words := strings.Fields(question)
	lower := strings.ToLower(content)
	for n := maxPhraseWords; n >= minPhraseWords; n-- {
		if n > len(words) {
			continue
		}
		for start := 0; start+n <= len(words); start++ {
			phrase := strings.Join(words[start:start+n], " ")
			idx := strings.Index(lower, strings.ToLower(phrase))
			if idx < 0 {
				continue
			}
			pad := len(phrase) / 2
			if pad < 50 {
				pad = 50
			}
			return clamp(idx-pad, idx+len(phrase)+pad, len(content)), true
		}
	}
	return models.HighlightRange{}, false
}

// keywordHighlight falls back to the first meaningful question word present
// in the chunk, with a fixed window either side.
func keywordHighlight(content, question string) (models.HighlightRange, bool) {
	lower := strings.ToLower(content)
	for _, token := range tokenize(question) {
		idx := strings.Index(lower, token)
		if idx < 0 {
			continue
		}
		return clamp(idx-keywordPad, idx+len(token)+keywordPad, len(content)), true
	}
	return models.HighlightRange{}, false
}

// tokenize lowercases the question and drops short and stop words.
func tokenize(question string) []string {
	fields := strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var tokens []string
	for _, f := range fields {
		if len(f) <= 3 {
			continue
		}
		if _, ok := stopWords[f]; ok {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func clamp(start, end, max int) models.HighlightRange {
	if start < 0 {
		start = 0
	}
	if end > max {
		end = max
	}
	if start > end {
		start = end
	}
	return models.HighlightRange{Start: start, End: end}
}

// excerpt produces the compact display snippet: whitespace collapsed,
// truncated to displayLen.
func excerpt(content string) string {
	collapsed := strings.Join(strings.Fields(content), " ")
	if len(collapsed) > displayLen {
		collapsed = collapsed[:displayLen] + "…"
	}
	return collapsed
}
