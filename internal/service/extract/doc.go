package extract

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"quill/internal/domain/services"

	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/charmap"
	utf16enc "golang.org/x/text/encoding/unicode"
)

// Word 97-2003 File Information Block layout
const (
	fibIdent          = 0xA5EC
	fibFlagsOffset    = 0x0A
	fibFlagEncrypted  = 0x0100
	fibFlagWhichTable = 0x0200
	fibBaseSize       = 32
	fibClxIndex       = 33 // fcClx position within FibRgFcLcb97
	ccpTextIndex      = 3  // ccpText position within FibRgLw97
	pcdSize           = 8
	pcdCompressed     = 0x40000000
	pcdFcMask         = 0x3FFFFFFF
)

// docExtractor reads the main document text of legacy Word (.doc) files by
// walking the piece table of the WordDocument stream.
type docExtractor struct{}

// NewDocExtractor creates the legacy Word extractor.
func NewDocExtractor() FormatExtractor {
	return &docExtractor{}
}

// Extract returns the main document text with paragraph marks as newlines.
func (e *docExtractor) Extract(ctx context.Context, content []byte) (string, error) {
	streams, err := readCompoundStreams(content, "WordDocument", "0Table", "1Table")
	if err != nil {
		return "", err
	}

	wordDoc, ok := streams["WordDocument"]
	if !ok {
		return "", errors.New("WordDocument stream not found")
	}

	fib, err := parseFIB(wordDoc)
	if err != nil {
		return "", err
	}

	tableName := "0Table"
	if fib.whichTable {
		tableName = "1Table"
	}
	table, ok := streams[tableName]
	if !ok {
		return "", fmt.Errorf("%s stream not found", tableName)
	}

	if uint64(fib.fcClx)+uint64(fib.lcbClx) > uint64(len(table)) {
		return "", errors.New("piece table outside table stream")
	}
	raw, err := readPieces(wordDoc, table[fib.fcClx:fib.fcClx+fib.lcbClx], fib.ccpText)
	if err != nil {
		return "", err
	}

	return cleanWordText(raw), nil
}

func (e *docExtractor) MediaTypes() []string {
	return []string{services.MediaTypeDOC}
}

func (e *docExtractor) Name() string {
	return "doc"
}

// readCompoundStreams returns the first stream with each wanted name.
func readCompoundStreams(content []byte, names ...string) (map[string][]byte, error) {
	doc, err := mscfb.New(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open compound file: %w", err)
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	streams := make(map[string][]byte)
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if !wanted[entry.Name] {
			continue
		}
		if _, seen := streams[entry.Name]; seen {
			continue
		}
		data, err := io.ReadAll(entry)
		if err != nil {
			return nil, fmt.Errorf("read %s stream: %w", entry.Name, err)
		}
		streams[entry.Name] = data
	}
	return streams, nil
}

type fileInfoBlock struct {
	whichTable bool
	ccpText    uint32
	fcClx      uint32
	lcbClx     uint32
}

// parseFIB reads the fields needed to locate the main document text.
func parseFIB(wd []byte) (*fileInfoBlock, error) {
	if len(wd) < fibBaseSize+2 {
		return nil, errors.New("WordDocument stream too short")
	}
	if binary.LittleEndian.Uint16(wd) != fibIdent {
		return nil, errors.New("not a Word 97-2003 document")
	}

	flags := binary.LittleEndian.Uint16(wd[fibFlagsOffset:])
	if flags&fibFlagEncrypted != 0 {
		return nil, errors.New("encrypted documents are not supported")
	}

	// FibBase, then csw + FibRgW97, cslw + FibRgLw97, cbRgFcLcb + FibRgFcLcb
	pos := fibBaseSize
	csw := int(binary.LittleEndian.Uint16(wd[pos:]))
	pos += 2 + csw*2

	if len(wd) < pos+2 {
		return nil, errors.New("truncated FIB")
	}
	cslw := int(binary.LittleEndian.Uint16(wd[pos:]))
	lwStart := pos + 2
	pos = lwStart + cslw*4
	if cslw <= ccpTextIndex || len(wd) < pos+2 {
		return nil, errors.New("truncated FIB")
	}
	ccpText := binary.LittleEndian.Uint32(wd[lwStart+ccpTextIndex*4:])

	cbRgFcLcb := int(binary.LittleEndian.Uint16(wd[pos:]))
	fcLcbStart := pos + 2
	clxPos := fcLcbStart + fibClxIndex*8
	if cbRgFcLcb <= fibClxIndex || len(wd) < clxPos+8 {
		return nil, errors.New("truncated FIB")
	}

	return &fileInfoBlock{
		whichTable: flags&fibFlagWhichTable != 0,
		ccpText:    ccpText,
		fcClx:      binary.LittleEndian.Uint32(wd[clxPos:]),
		lcbClx:     binary.LittleEndian.Uint32(wd[clxPos+4:]),
	}, nil
}

// readPieces decodes the first ccpText characters described by the Clx.
func readPieces(wd, clx []byte, ccpText uint32) (string, error) {
	i := 0
	// Skip Prc entries (grpprl property modifiers)
	for i < len(clx) && clx[i] == 0x01 {
		if i+3 > len(clx) {
			return "", errors.New("truncated Prc")
		}
		cb := int(int16(binary.LittleEndian.Uint16(clx[i+1:])))
		if cb < 0 || i+3+cb > len(clx) {
			return "", errors.New("truncated Prc")
		}
		i += 3 + cb
	}
	if i+5 > len(clx) || clx[i] != 0x02 {
		return "", errors.New("piece table not found")
	}

	lcb := int(binary.LittleEndian.Uint32(clx[i+1:]))
	plc := clx[i+5:]
	if lcb > len(plc) || lcb < 4 {
		return "", errors.New("truncated piece table")
	}
	plc = plc[:lcb]

	n := (lcb - 4) / (4 + pcdSize)
	pcds := plc[(n+1)*4:]

	cp1252 := charmap.Windows1252.NewDecoder()
	utf16 := utf16enc.UTF16(utf16enc.LittleEndian, utf16enc.IgnoreBOM).NewDecoder()

	var sb strings.Builder
	for k := 0; k < n; k++ {
		cpStart := binary.LittleEndian.Uint32(plc[k*4:])
		cpEnd := binary.LittleEndian.Uint32(plc[(k+1)*4:])
		if cpStart >= ccpText {
			break
		}
		if cpEnd > ccpText {
			cpEnd = ccpText
		}
		if cpEnd <= cpStart {
			continue
		}
		count := int(cpEnd - cpStart)

		fcRaw := binary.LittleEndian.Uint32(pcds[k*pcdSize+2:])
		fc := int(fcRaw & pcdFcMask)

		if fcRaw&pcdCompressed != 0 {
			off := fc / 2
			if off+count > len(wd) {
				return "", errors.New("piece outside WordDocument stream")
			}
			decoded, err := cp1252.Bytes(wd[off : off+count])
			if err != nil {
				return "", fmt.Errorf("decode cp1252 piece: %w", err)
			}
			sb.Write(decoded)
		} else {
			if fc+2*count > len(wd) {
				return "", errors.New("piece outside WordDocument stream")
			}
			decoded, err := utf16.Bytes(wd[fc : fc+2*count])
			if err != nil {
				return "", fmt.Errorf("decode utf-16 piece: %w", err)
			}
			sb.Write(decoded)
		}
	}
	return sb.String(), nil
}

// cleanWordText maps Word control characters to plain text and drops field codes.
func cleanWordText(raw string) string {
	var sb strings.Builder
	var fields []bool // one entry per open field; true while in its instruction part

	inInstruction := func() bool {
		for _, instr := range fields {
			if instr {
				return true
			}
		}
		return false
	}

	for _, r := range raw {
		switch r {
		case 0x13: // field begin
			fields = append(fields, true)
			continue
		case 0x14: // field separator, result text follows
			if len(fields) > 0 {
				fields[len(fields)-1] = false
			}
			continue
		case 0x15: // field end
			if len(fields) > 0 {
				fields = fields[:len(fields)-1]
			}
			continue
		}
		if inInstruction() {
			continue
		}

		switch r {
		case '\r', 0x0B, 0x0C:
			sb.WriteByte('\n')
		case 0x07:
			sb.WriteByte('\t')
		case '\t', '\n':
			sb.WriteRune(r)
		default:
			if r >= 0x20 {
				sb.WriteRune(r)
			}
		}
	}

	return normalizeText(sb.String())
}
