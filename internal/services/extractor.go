package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MediaTypePDF  = "application/pdf"
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeText = "text/plain"
)

// DefaultMediaTypes are the document formats accepted when none are configured.
var DefaultMediaTypes = []string{MediaTypePDF, MediaTypeDOCX, MediaTypeText}

// The MIME family the sniffed content has to belong to for each declared type.
var sniffFamilies = map[string]string{
	MediaTypePDF:  "application/pdf",
	MediaTypeDOCX: "application/zip",
	MediaTypeText: "text/plain",
}

var extensionMediaTypes = map[string]string{
	".pdf":  MediaTypePDF,
	".docx": MediaTypeDOCX,
	".txt":  MediaTypeText,
	".text": MediaTypeText,
	".md":   MediaTypeText,
}

type DocumentExtractor interface {
	Extract(ctx context.Context, doc ResumeDocument) (NormalizedText, error)
}

type documentExtractor struct {
	maxSize   int64
	supported map[string]bool
}

func NewDocumentExtractor(maxSize int64, supported []string) DocumentExtractor {
	if len(supported) == 0 {
		supported = DefaultMediaTypes
	}

	types := make(map[string]bool, len(supported))
	for _, mediaType := range supported {
		types[baseMediaType(mediaType)] = true
	}

	return &documentExtractor{
		maxSize:   maxSize,
		supported: types,
	}
}

// Extract implements DocumentExtractor.
func (e *documentExtractor) Extract(ctx context.Context, doc ResumeDocument) (NormalizedText, error) {
	size := max(doc.Size, int64(len(doc.Data)))
	if e.maxSize > 0 && size > e.maxSize {
		return NormalizedText{}, newError(KindPayloadTooLarge,
			fmt.Errorf("document is %d bytes, limit is %d", size, e.maxSize))
	}

	if len(doc.Data) == 0 {
		return NormalizedText{}, newError(KindEmptyContent, errors.New("document has no content"))
	}

	mediaType := baseMediaType(doc.MediaType)
	if mediaType == "" || !e.supported[mediaType] {
		return NormalizedText{}, newError(KindUnsupportedFormat,
			fmt.Errorf("media type %q is not supported", doc.MediaType))
	}

	if err := checkContentType(mediaType, doc.Data); err != nil {
		return NormalizedText{}, err
	}

	var pages []string
	var err error
	switch mediaType {
	case MediaTypePDF:
		pages, err = extractPDFPages(ctx, doc.Data)
	case MediaTypeDOCX:
		pages, err = extractDocxText(doc.Data)
	case MediaTypeText:
		pages, err = extractPlainText(doc.Data)
	default:
		err = newError(KindUnsupportedFormat, fmt.Errorf("no extractor for %q", mediaType))
	}
	if err != nil {
		return NormalizedText{}, err
	}

	if err := ctx.Err(); err != nil {
		return NormalizedText{}, err
	}

	text := normalizePages(pages)
	if !text.HasWords() {
		return NormalizedText{}, newError(KindEmptyContent, errors.New("no readable text after extraction"))
	}

	log.Printf("📄 Extracted %d words from %s document", text.WordCount(), mediaType)
	return text, nil
}

// checkContentType rejects documents whose bytes do not look like the
// declared format.
func checkContentType(mediaType string, data []byte) error {
	if mediaType == MediaTypeText && bytes.IndexByte(data, 0) >= 0 {
		return newError(KindCorruptDocument, errors.New("text document contains binary data"))
	}

	family, ok := sniffFamilies[mediaType]
	if !ok {
		return nil
	}

	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(family) {
			return nil
		}
	}

	return newError(KindCorruptDocument,
		fmt.Errorf("declared %s but content looks like %s", mediaType, detected.String()))
}

func extractPDFPages(ctx context.Context, data []byte) (pages []string, err error) {
	// The PDF reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = newError(KindCorruptDocument, fmt.Errorf("pdf reader panic: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, newError(KindCorruptDocument, fmt.Errorf("failed to read pdf: %w", err))
	}

	totalPage := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Printf("⚠️ Skipping unreadable PDF page %d: %v", pageIndex, err)
			continue
		}
		pages = append(pages, text)
	}

	return pages, nil
}

var (
	docxParagraphPattern = regexp.MustCompile(`</w:p>|<w:br[^>]*/>|<w:cr[^>]*/>`)
	docxTabPattern       = regexp.MustCompile(`<w:tab[^>]*/>`)
	xmlTagPattern        = regexp.MustCompile(`<[^>]+>`)
)

func extractDocxText(data []byte) ([]string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, newError(KindCorruptDocument, fmt.Errorf("failed to parse docx: %w", err))
	}
	defer doc.Close()

	return []string{flattenDocxXML(doc.Editable().GetContent())}, nil
}

// flattenDocxXML turns WordprocessingML into plain text, one paragraph per
// line.
func flattenDocxXML(content string) string {
	content = docxParagraphPattern.ReplaceAllString(content, "\n")
	content = docxTabPattern.ReplaceAllString(content, " ")
	content = xmlTagPattern.ReplaceAllString(content, "")
	return html.UnescapeString(content)
}

func extractPlainText(data []byte) ([]string, error) {
	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "\uFFFD")
	}
	text = strings.TrimPrefix(text, "\ufeff")

	// Form feeds separate pages in text exports.
	return strings.Split(text, "\f"), nil
}

// ResolveMediaType returns the declared media type, or one derived from the
// file extension when the declaration is missing or generic.
func ResolveMediaType(declared, filename string) string {
	base := baseMediaType(declared)
	if base != "" && base != "application/octet-stream" {
		return base
	}
	return extensionMediaTypes[strings.ToLower(filepath.Ext(filename))]
}

func baseMediaType(mediaType string) string {
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		return ""
	}
	parsed, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.SplitN(mediaType, ";", 2)[0]))
	}
	return parsed
}
