package specindex

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// Document is the extracted text of a specification, one entry per page.
// Hash identifies the content for embedding-cache lookups.
type Document struct {
	Pages []string
	Hash  string
}

// LoadPDF extracts plain text from a PDF file page by page. Pages that
// fail text extraction are kept as empty strings so page numbers stay
// aligned with the source.
func LoadPDF(path string) (Document, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	doc := Document{}
	h := sha256.New()
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			doc.Pages = append(doc.Pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			doc.Pages = append(doc.Pages, "")
			continue
		}
		text = strings.TrimSpace(text)
		doc.Pages = append(doc.Pages, text)
		h.Write([]byte(text))
		h.Write([]byte{0})
	}

	doc.Hash = hex.EncodeToString(h.Sum(nil))
	return doc, nil
}
