package pdfdoc

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// Reader extracts positioned text from PDF files.
type Reader struct {
	validator *Validator
}

// NewReader creates a new PDF reader with the specified constraints.
func NewReader(maxFileSize int64) *Reader {
	return &Reader{
		validator: NewValidator(maxFileSize),
	}
}

// ReadFile extracts positioned text tokens from every page of a PDF file.
// The file is structurally validated before extraction.
func (r *Reader) ReadFile(path string) (*Document, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	if err := r.validator.ValidateFileInfo(path, fileInfo); err != nil {
		return nil, err
	}
	if err := r.validator.validateStructure(path); err != nil {
		return nil, err
	}

	f, pdfReader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	doc := &Document{
		Path: path,
		Size: fileInfo.Size(),
	}

	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		tokens, err := extractPageTokens(page)
		if err != nil {
			// Continue with other pages even if one fails
			continue
		}
		if len(tokens) == 0 {
			continue
		}

		doc.Pages = append(doc.Pages, PageTokens{
			Number: pageNum,
			Tokens: tokens,
		})
	}

	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("no text content could be extracted from PDF")
	}

	return doc, nil
}

// extractPageTokens collects the positioned text fragments of one page.
func extractPageTokens(page pdf.Page) (tokens []Token, err error) {
	defer func() {
		// The content stream interpreter panics on malformed operators.
		if r := recover(); r != nil {
			tokens = nil
			err = fmt.Errorf("content extraction failed: %v", r)
		}
	}()

	content := page.Content()
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		tokens = append(tokens, Token{
			Text: t.S,
			X:    t.X,
			Y:    t.Y,
			W:    t.W,
		})
	}
	return tokens, nil
}
