package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"quill/internal/domain/services"
)

// maxDocxXMLBytes bounds the decompressed size of word/document.xml
const maxDocxXMLBytes = 64 << 20

// docxExtractor reads the paragraphs of word/document.xml from an Office Open XML package.
type docxExtractor struct{}

// NewDocxExtractor creates the DOCX extractor.
func NewDocxExtractor() FormatExtractor {
	return &docxExtractor{}
}

// Extract returns one line per non-empty paragraph.
func (e *docxExtractor) Extract(ctx context.Context, content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	return docxParagraphs(io.LimitReader(rc, maxDocxXMLBytes))
}

func (e *docxExtractor) MediaTypes() []string {
	return []string{services.MediaTypeDOCX}
}

func (e *docxExtractor) Name() string {
	return "docx"
}

// docxParagraphs walks WordprocessingML and joins text runs per paragraph.
func docxParagraphs(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var paragraphs []string
	var current strings.Builder
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br", "cr":
				current.WriteByte(' ')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if text := strings.TrimSpace(current.String()); text != "" {
					paragraphs = append(paragraphs, text)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	if text := strings.TrimSpace(current.String()); text != "" {
		paragraphs = append(paragraphs, text)
	}
	return strings.Join(paragraphs, "\n"), nil
}
