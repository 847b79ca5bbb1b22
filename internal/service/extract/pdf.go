package extract

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"quill/internal/domain/services"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disablePDFConfigDir sync.Once

// pdfExtractor reads page content streams with pdfcpu and collects the
// strings shown by text operators.
type pdfExtractor struct{}

// NewPDFExtractor creates the PDF extractor.
func NewPDFExtractor() FormatExtractor {
	// pdfcpu otherwise creates a config directory under the user's home
	disablePDFConfigDir.Do(func() {
		model.ConfigPath = "disable"
	})
	return &pdfExtractor{}
}

// Extract returns the text of every page, one line per page.
func (e *pdfExtractor) Extract(ctx context.Context, content []byte) (string, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(content), conf)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var pages []string
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
		if err != nil {
			return "", fmt.Errorf("page %d content: %w", pageNr, err)
		}
		if r == nil {
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("page %d read: %w", pageNr, err)
		}

		if text := textFromContentStream(data); text != "" {
			pages = append(pages, text)
		}
	}

	return strings.Join(pages, "\n"), nil
}

func (e *pdfExtractor) MediaTypes() []string {
	return []string{services.MediaTypePDF}
}

func (e *pdfExtractor) Name() string {
	return "pdf"
}

// tjSpaceThreshold is the TJ adjustment, in thousandths of text space, at or
// beyond which a gap between strings is read as a word space.
const tjSpaceThreshold = -200

// textFromContentStream scans a PDF content stream and returns the operands of
// the show-text operators (Tj, TJ, ', "). Positioning operators and wide TJ
// gaps become spaces.
func textFromContentStream(data []byte) string {
	var out strings.Builder
	var operands []string
	inArray := false

	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case c == '[':
			inArray = true
			i++
		case c == ']':
			inArray = false
			i++
		case inArray && isNumberChar(c):
			start := i
			for i < len(data) && isNumberChar(data[i]) {
				i++
			}
			if n, err := strconv.ParseFloat(string(data[start:i]), 64); err == nil && n <= tjSpaceThreshold {
				operands = append(operands, " ")
			}
		case c == '(':
			s, next := readLiteralString(data, i)
			operands = append(operands, s)
			i = next
		case c == '<' && i+1 < len(data) && data[i+1] != '<':
			s, next := readHexString(data, i)
			operands = append(operands, s)
			i = next
		case c == '%':
			for i < len(data) && data[i] != '\n' && data[i] != '\r' {
				i++
			}
		case isOperatorStart(c):
			start := i
			for i < len(data) && isOperatorChar(data[i]) {
				i++
			}
			switch string(data[start:i]) {
			case "Tj", "TJ":
				out.WriteString(strings.Join(operands, ""))
			case "'", "\"":
				out.WriteByte('\n')
				out.WriteString(strings.Join(operands, ""))
			case "Td", "TD", "Tm", "T*":
				out.WriteByte(' ')
			case "ET":
				out.WriteByte('\n')
			}
			operands = operands[:0]
		default:
			i++
		}
	}

	return normalizeText(out.String())
}

func isNumberChar(c byte) bool {
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.'
}

func isOperatorStart(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '\'' || c == '"'
}

func isOperatorChar(c byte) bool {
	return isOperatorStart(c) || c == '*'
}

// readLiteralString decodes a balanced (...) string starting at data[start].
// Returns the decoded text and the index after the closing parenthesis.
func readLiteralString(data []byte, start int) (string, int) {
	var sb strings.Builder
	depth := 0

	i := start
	for ; i < len(data); i++ {
		c := data[i]
		switch {
		case c == '\\' && i+1 < len(data):
			i++
			switch e := data[i]; e {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'b', 'f':
			case '\r', '\n':
				// Line continuation
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for n := 0; n < 2 && i+1 < len(data) && data[i+1] >= '0' && data[i+1] <= '7'; n++ {
						i++
						val = val*8 + int(data[i]-'0')
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(e)
				}
			}
		case c == '(':
			if depth > 0 {
				sb.WriteByte(c)
			}
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return sb.String(), i + 1
			}
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), i
}

// readHexString decodes a <...> string starting at data[start].
func readHexString(data []byte, start int) (string, int) {
	end := bytes.IndexByte(data[start:], '>')
	if end < 0 {
		return "", len(data)
	}

	digits := bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, data[start+1:start+end])
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	decoded := make([]byte, hex.DecodedLen(len(digits)))
	n, err := hex.Decode(decoded, digits)
	if err != nil {
		return "", start + end + 1
	}
	return string(decoded[:n]), start + end + 1
}

// normalizeText collapses horizontal whitespace, drops non-printable runes and
// keeps line breaks.
func normalizeText(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		cleaned := strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return ' '
			}
			if !unicode.IsPrint(r) {
				return -1
			}
			return r
		}, line)
		if fields := strings.Fields(cleaned); len(fields) > 0 {
			kept = append(kept, strings.Join(fields, " "))
		}
	}
	return strings.Join(kept, "\n")
}
