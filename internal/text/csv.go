package text

import "strings"

// SplitCSVLine splits a single CSV line into trimmed cells. Commas inside
// double quotes do not split, and a doubled quote inside a quoted cell is
// read as one literal quote.
func SplitCSVLine(line string) []string {
	if line == "" {
		return []string{}
	}

	var (
		cells    []string
		cell     strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && inQuotes && i+1 < len(line) && line[i+1] == '"':
			cell.WriteByte('"')
			i++
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteByte(c)
		}
	}

	return append(cells, strings.TrimSpace(cell.String()))
}

// Lines splits text on LF or CRLF line endings
func Lines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
