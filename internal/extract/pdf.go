// Package extract turns an uploaded PDF into per-page plain text.
package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/paperchat/paperchat/models"
)

// Pages extracts the plain text of every page, preserving page numbering.
// Pages the reader cannot decode come back empty rather than failing the
// whole document; the chunker skips them later. This is plain text
// extraction, not OCR: scanned image pages yield empty text.
func Pages(content []byte) ([]models.Page, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	numPages := reader.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	pages := make([]models.Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		text := ""
		if !page.V.IsNull() {
			if t, err := page.GetPlainText(nil); err == nil {
				text = t
			}
		}
		pages = append(pages, models.Page{Number: i, Text: text})
	}
	return pages, nil
}
