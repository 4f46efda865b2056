// Package csvgrid turns raw CSV text into a grid of trimmed string cells.
//
// The scanner is permissive: a quote toggles quoted mode wherever it appears,
// so malformed input degrades into odd cells instead of an error.
package csvgrid

import "strings"

// Parse splits text into rows of cells. Rows whose cells are all empty are
// dropped; rows are not padded to a common width.
func Parse(text string) [][]string {
	s := strings.ReplaceAll(text, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var (
		rows   [][]string
		row    []string
		field  strings.Builder
		quoted bool
	)
	flushField := func() {
		row = append(row, strings.TrimSpace(field.String()))
		field.Reset()
	}

	// Quote, comma and newline are ASCII, so scanning bytes never splits a
	// multi-byte rune and invalid UTF-8 passes through unchanged.
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quoted {
			if c == '"' {
				if i+1 < len(s) && s[i+1] == '"' {
					field.WriteByte('"')
					i++
				} else {
					quoted = false
				}
				continue
			}
			field.WriteByte(c)
			continue
		}
		switch c {
		case '"':
			quoted = true
		case ',':
			flushField()
		case '\n':
			flushField()
			rows = append(rows, row)
			row = nil
		default:
			field.WriteByte(c)
		}
	}
	if field.Len() > 0 || len(row) > 0 {
		flushField()
		rows = append(rows, row)
	}

	out := rows[:0]
	for _, r := range rows {
		if !blank(r) {
			out = append(out, r)
		}
	}
	return out
}

func blank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

// Cell returns row[i], or "" when i is negative or past the end of a ragged row.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
