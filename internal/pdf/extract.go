package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page is the extracted plain text of one PDF page.
type Page struct {
	Number int
	Text   string
}

// ExtractPages pulls plain text out of a PDF, page by page. Pages with no
// extractable text are skipped.
func ExtractPages(b []byte) ([]Page, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("empty pdf")
	}
	r, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var pages []Page
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdf has no extractable text")
	}
	return pages, nil
}
