// Package prompt assembles the grounding prompt sent to the answer generator.
package prompt

import (
	"fmt"
	"strings"

	"github.com/paperchat/paperchat/models"
)

// PageMarker renders the page marker token for a chunk. The citation
// extractor parses this exact form back out of answers, so the format must
// stay in lockstep with the patterns there.
func PageMarker(pageNumber int) string {
	return fmt.Sprintf("[PAGE %d]", pageNumber)
}

// Assemble renders the retrieved chunks (in the order given, normally by
// descending relevance) with explicit page markers, followed by the verbatim
// question and a fixed instruction block. Chunks are never truncated; if the
// result overflows the generator's context window that surfaces as a
// generation failure downstream.
func Assemble(question string, scoredChunks []models.ScoredChunk) string {
	var b strings.Builder

	b.WriteString("You are answering a question about a document. Use only the excerpts below; each excerpt is labelled with the page it came from.\n\nDocument excerpts:\n\n")

	for i, sc := range scoredChunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(PageMarker(sc.Chunk.PageNumber))
		b.WriteString("\n")
		b.WriteString(sc.Chunk.Content)
	}

	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nInstructions:\n")
	b.WriteString("- Answer using only the excerpts above.\n")
	b.WriteString("- If the excerpts do not contain enough information to answer, say so explicitly instead of guessing.\n")
	b.WriteString("- Cite every page you drew from using a marker in the exact form [PAGE <number>], matching the labels above.\n")

	return b.String()
}
