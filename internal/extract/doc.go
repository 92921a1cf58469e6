package extract

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf16"

	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/charmap"
)

// Word 97-2003 File Information Block offsets.
const (
	fibIdent        = 0xA5EC
	fibFlagsOffset  = 0x000A
	fibFcClxOffset  = 0x01A2
	fibLcbClxOffset = 0x01A6
	fibMinLen       = 0x01AA

	fibWhichTblStm = 0x0200
	fibEncrypted   = 0x0100

	pcdCompressed = 0x40000000
)

func extractDOC(data []byte) (string, error) {
	reader, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("read compound file: %w", err)
	}

	streams := map[string][]byte{}
	for entry, err := reader.Next(); err == nil; entry, err = reader.Next() {
		switch entry.Name {
		case "WordDocument", "0Table", "1Table":
			buf, readErr := io.ReadAll(entry)
			if readErr != nil {
				return "", fmt.Errorf("read %s stream: %w", entry.Name, readErr)
			}
			streams[entry.Name] = buf
		}
	}

	wordDoc, ok := streams["WordDocument"]
	if !ok {
		return "", errors.New("WordDocument stream not found")
	}
	if len(wordDoc) < fibMinLen {
		return "", errors.New("WordDocument stream too short")
	}
	tableName := "0Table"
	if binary.LittleEndian.Uint16(wordDoc[fibFlagsOffset:])&fibWhichTblStm != 0 {
		tableName = "1Table"
	}
	table, ok := streams[tableName]
	if !ok {
		return "", fmt.Errorf("%s stream not found", tableName)
	}
	return decodeWordText(wordDoc, table)
}

// decodeWordText walks the piece table in the Clx structure and decodes each text piece.
func decodeWordText(wordDoc, table []byte) (string, error) {
	if len(wordDoc) < fibMinLen {
		return "", errors.New("WordDocument stream too short")
	}
	if binary.LittleEndian.Uint16(wordDoc) != fibIdent {
		return "", errors.New("not a Word 97-2003 document")
	}
	if binary.LittleEndian.Uint16(wordDoc[fibFlagsOffset:])&fibEncrypted != 0 {
		return "", errors.New("encrypted documents are not supported")
	}

	fcClx := int(binary.LittleEndian.Uint32(wordDoc[fibFcClxOffset:]))
	lcbClx := int(binary.LittleEndian.Uint32(wordDoc[fibLcbClxOffset:]))
	if lcbClx <= 0 || fcClx < 0 || fcClx+lcbClx > len(table) {
		return "", errors.New("piece table out of range")
	}
	clx := table[fcClx : fcClx+lcbClx]

	plc, err := findPlcPcd(clx)
	if err != nil {
		return "", err
	}

	n := (len(plc) - 4) / 12
	if n <= 0 || len(plc) < 4*(n+1)+8*n {
		return "", errors.New("malformed piece table")
	}

	var out strings.Builder
	pcds := plc[4*(n+1):]
	for i := 0; i < n; i++ {
		cpStart := binary.LittleEndian.Uint32(plc[4*i:])
		cpEnd := binary.LittleEndian.Uint32(plc[4*(i+1):])
		if cpEnd < cpStart {
			return "", errors.New("malformed piece boundaries")
		}
		count := int(cpEnd - cpStart)
		fc := binary.LittleEndian.Uint32(pcds[8*i+2:])

		piece, err := decodePiece(wordDoc, fc, count)
		if err != nil {
			return "", err
		}
		out.WriteString(piece)
	}
	return cleanWordText(out.String()), nil
}

func findPlcPcd(clx []byte) ([]byte, error) {
	pos := 0
	for pos < len(clx) {
		switch clx[pos] {
		case 0x01:
			if pos+3 > len(clx) {
				return nil, errors.New("truncated Prc")
			}
			cb := int(int16(binary.LittleEndian.Uint16(clx[pos+1:])))
			if cb < 0 {
				return nil, errors.New("malformed Prc")
			}
			pos += 3 + cb
		case 0x02:
			if pos+5 > len(clx) {
				return nil, errors.New("truncated Pcdt")
			}
			lcb := int(binary.LittleEndian.Uint32(clx[pos+1:]))
			start := pos + 5
			if lcb < 4 || start+lcb > len(clx) {
				return nil, errors.New("malformed Pcdt")
			}
			return clx[start : start+lcb], nil
		default:
			return nil, fmt.Errorf("unexpected clx marker 0x%02x", clx[pos])
		}
	}
	return nil, errors.New("piece table not found")
}

func decodePiece(wordDoc []byte, fc uint32, count int) (string, error) {
	if fc&pcdCompressed != 0 {
		offset := int((fc &^ pcdCompressed) / 2)
		if offset+count > len(wordDoc) {
			return "", errors.New("text piece out of range")
		}
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(wordDoc[offset : offset+count])
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	}

	offset := int(fc)
	if offset+2*count > len(wordDoc) {
		return "", errors.New("text piece out of range")
	}
	units := make([]uint16, count)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(wordDoc[offset+2*i:])
	}
	return string(utf16.Decode(units)), nil
}

// cleanWordText maps Word control characters to plain whitespace and drops field instructions.
func cleanWordText(s string) string {
	var out strings.Builder
	fieldDepth := 0
	inInstruction := false
	for _, r := range s {
		switch r {
		case 0x13:
			fieldDepth++
			inInstruction = true
			continue
		case 0x14:
			inInstruction = false
			continue
		case 0x15:
			if fieldDepth > 0 {
				fieldDepth--
			}
			inInstruction = false
			continue
		}
		if inInstruction {
			continue
		}
		switch r {
		case '\r', 0x0B, 0x0C:
			out.WriteRune('\n')
		case 0x07:
			out.WriteRune('\t')
		case '\n', '\t':
			out.WriteRune(r)
		default:
			if r >= 0x20 {
				out.WriteRune(r)
			}
		}
	}
	return out.String()
}
