package services

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Supported upload MIME types.
const (
	MimePDF  = "application/pdf"
	MimeDoc  = "application/msword"
	MimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText = "text/plain"
)

var (
	// ErrUnsupportedFormat is returned for MIME types outside the upload whitelist.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrExtractionFailed is returned when a supported document yields no text.
	// Empty output is a hard failure, never a valid zero-length resume.
	ErrExtractionFailed = errors.New("document text extraction failed")
)

type TextExtractor interface {
	Extract(data []byte, mimeType string) (string, error)
}

type textExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &textExtractor{}
}

func (e *textExtractor) Extract(data []byte, mimeType string) (string, error) {
	var raw string
	var err error

	switch normalizeMime(mimeType) {
	case MimeText:
		raw = string(data)
	case MimePDF:
		raw, err = extractPDF(data)
	case MimeDoc, MimeDocx:
		raw, err = extractDocx(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}

	if err != nil {
		return "", err
	}

	text := NormalizeText(raw)
	if text == "" {
		return "", fmt.Errorf("%w: document contains no extractable text", ErrExtractionFailed)
	}

	return text, nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	var textBuilder strings.Builder
	totalPage := reader.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// unreadable pages are skipped, the whole document only fails
			// when no page produced text
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

var xmlTagPattern = regexp.MustCompile(`<[^>]+>`)

func extractDocx(data []byte) (string, error) {
	reader, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	defer reader.Close()

	content := reader.Editable().GetContent()

	// paragraph boundaries become whitespace before the tags are stripped
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = xmlTagPattern.ReplaceAllString(content, " ")

	return content, nil
}

// NormalizeText collapses consecutive whitespace to single spaces and trims.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// IsSupportedMime reports whether the declared MIME type is in the upload
// whitelist.
func IsSupportedMime(mimeType string) bool {
	switch normalizeMime(mimeType) {
	case MimePDF, MimeDoc, MimeDocx, MimeText:
		return true
	}
	return false
}

// normalizeMime drops parameters like "; charset=utf-8" from declared types.
func normalizeMime(mimeType string) string {
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = mimeType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
