// Package chunker splits per-page document text into overlapping passages.
package chunker

import (
	"log"
	"strings"

	"github.com/paperchat/paperchat/models"
)

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 100

	// boundaryLookahead bounds how far past the target size the cut point may
	// move to land on a paragraph or sentence end.
	boundaryLookahead = 100
)

// Chunker produces page-tagged passages. Chunks never span page boundaries,
// and chunking identical pages always yields identical output.
type Chunker struct {
	chunkSize int
	overlap   int
	logger    *log.Logger
}

// NewChunker creates a chunker with the given size and overlap (in characters).
// Non-positive size or a negative/oversized overlap fall back to the defaults.
func NewChunker(chunkSize, overlap int, logger *log.Logger) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultOverlap
		if overlap >= chunkSize {
			overlap = chunkSize / 10
		}
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap, logger: logger}
}

// Chunk splits pages into contiguous, overlapping windows in document order.
// Whitespace-only pages are skipped but keep their place in page numbering.
// Returns EmptyDocumentError when no page yields a chunk.
func (c *Chunker) Chunk(pages []models.Page) ([]models.Chunk, error) {
	var chunks []models.Chunk
	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			if c.logger != nil {
				c.logger.Printf("skipping empty page %d", page.Number)
			}
			continue
		}
		for _, content := range c.splitPage(page.Text) {
			chunks = append(chunks, models.Chunk{Content: content, PageNumber: page.Number})
		}
	}
	if len(chunks) == 0 {
		return nil, &models.EmptyDocumentError{}
	}
	return chunks, nil
}

// splitPage windows one page's text. Each window after the first starts
// overlap characters before the previous window's end, so concatenating
// windows minus the overlap reconstructs the page exactly.
func (c *Chunker) splitPage(text string) []string {
	if len(text) <= c.chunkSize {
		return []string{text}
	}
	var parts []string
	start := 0
	for {
		end := start + c.chunkSize
		if end >= len(text) {
			parts = append(parts, text[start:])
			break
		}
		end = c.cutPoint(text, end)
		parts = append(parts, text[start:end])
		if end >= len(text) {
			break
		}
		start = end - c.overlap
		if start < 0 {
			start = 0
		}
	}
	return parts
}

// cutPoint prefers a paragraph break, then a sentence end, then a plain space
// within the lookahead window past the target, falling back to a hard cut.
func (c *Chunker) cutPoint(text string, target int) int {
	limit := target + boundaryLookahead
	if limit > len(text) {
		limit = len(text)
	}
	window := text[target:limit]

	if i := strings.Index(window, "\n\n"); i >= 0 {
		return target + i + 2
	}
	if i := sentenceEnd(window); i >= 0 {
		return target + i
	}
	if i := strings.IndexAny(window, " \n\t"); i >= 0 {
		return target + i + 1
	}
	return target
}

// sentenceEnd returns the index just past the first sentence terminator that
// is followed by whitespace, or -1.
func sentenceEnd(s string) int {
	for i := 0; i < len(s)-1; i++ {
		switch s[i] {
		case '.', '!', '?':
			if s[i+1] == ' ' || s[i+1] == '\n' || s[i+1] == '\t' {
				return i + 1
			}
		}
	}
	return -1
}
