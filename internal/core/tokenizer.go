package core

// tokenizer.go turns raw CSV text into a rectangular table of trimmed cells.
//
// The scanner is a single left-to-right pass over the input maintaining an
// in-quotes flag and an accumulator for the current cell:
//   - '"' toggles quoting; a doubled "" inside quotes emits one literal quote
//   - ',' outside quotes ends the current cell
//   - '\n' or '\r' outside quotes ends the current row; "\r\n" is one terminator
//   - anything else is appended to the accumulator, including inside quotes
//
// Fields containing commas, newlines, and literal quotes round-trip with the
// escaper in report.go.

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// Tokenize parses CSV text into rows of trimmed cells. Physically blank lines
// are discarded; a row of empty cells separated by delimiters (",,,") is kept
// so its validation failures can be reported.
func Tokenize(text string) [][]string {
	text = sanitizeUTF8(text)

	var (
		rows     [][]string
		row      []string
		cell     strings.Builder
		inQuotes bool
	)

	endCell := func() {
		row = append(row, strings.TrimSpace(cell.String()))
		cell.Reset()
	}
	endRow := func() {
		endCell()
		rows = append(rows, row)
		row = nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				cell.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			endCell()
		case (c == '\n' || c == '\r') && !inQuotes:
			if c == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			endRow()
		default:
			cell.WriteByte(c)
		}
	}

	// Flush a trailing row that was not newline-terminated.
	if cell.Len() > 0 || len(row) > 0 {
		endRow()
	}

	out := rows[:0]
	for _, r := range rows {
		if isBlankLine(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// isBlankLine reports whether a row came from a physically blank line.
// A delimiter-only row like ",,," produces multiple empty cells and is not
// blank; it still carries per-field validation errors.
func isBlankLine(row []string) bool {
	return len(row) == 1 && row[0] == ""
}

// sanitizeUTF8 replaces invalid byte sequences with the Unicode replacement
// character so downstream string handling never sees broken encoding.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	var buf bytes.Buffer
	buf.Grow(len(s))

	data := []byte(s)
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.String()
}
