package extraction

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVExtractor harvests cells from comma-separated text
type CSVExtractor struct{}

var _ Extractor = CSVExtractor{}

func (CSVExtractor) Name() Format { return FormatCSV }

func (CSVExtractor) Extract(text string, opts *Options) []string {
	return ExtractCSV(text, opts)
}

// ExtractCSV returns the trimmed, non-empty cells of text in row-major order,
// or only those of opts.CSVColumnIndex when set. The header row is skipped
// when opts.CSVHasHeader is set. A read error keeps the rows parsed so far.
func ExtractCSV(text string, opts *Options) []string {
	if isBlank(text) {
		return emptyResult()
	}

	rows := newRowReader(strings.NewReader(text), opts)
	out := emptyResult()
	for {
		var err error
		out, err = rows.next(out)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			opts.reportParseError(csvParseError(err))
			break
		}
	}

	return out
}

func csvParseError(err error) string {
	return "CSV parse error: " + err.Error()
}

// rowReader applies the fixed parse rules shared by the batch and streaming
// CSV paths: BOM stripped, blank lines skipped, relaxed quoting, ragged rows
// allowed, cells trimmed.
type rowReader struct {
	reader    *csv.Reader
	hasHeader bool
	column    int
	hasColumn bool
	rows      int
}

func newRowReader(r io.Reader, opts *Options) *rowReader {
	cr := csv.NewReader(&quoteTrimmer{r: stripBOM(r)})
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	column, hasColumn := opts.column()
	return &rowReader{
		reader:    cr,
		hasHeader: opts.hasHeader(),
		column:    column,
		hasColumn: hasColumn,
	}
}

// next appends the selected cells of the next data row to dst. Rows that
// contribute nothing still advance the reader, so next may return an empty
// slice with a nil error.
func (rr *rowReader) next(dst []string) ([]string, error) {
	for {
		record, err := rr.reader.Read()
		if err != nil {
			return dst, err
		}
		if isBlankRecord(record) {
			continue
		}

		rr.rows++
		if rr.rows == 1 && rr.hasHeader {
			continue
		}

		if rr.hasColumn {
			if rr.column < len(record) {
				if cell := strings.TrimSpace(record[rr.column]); cell != "" {
					dst = append(dst, cell)
				}
			}
			return dst, nil
		}

		for _, cell := range record {
			if cell = strings.TrimSpace(cell); cell != "" {
				dst = append(dst, cell)
			}
		}
		return dst, nil
	}
}

// isBlankRecord reports whether a record came from a whitespace-only line
func isBlankRecord(record []string) bool {
	return len(record) == 1 && strings.TrimSpace(record[0]) == ""
}

func stripBOM(r io.Reader) *bufio.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

type quoteState int

const (
	fieldStart quoteState = iota
	fieldBare
	fieldQuoted
)

// quoteTrimmer drops spaces and tabs between a closing quote and the next
// comma or line end. Without it relaxed quoting reads `"a" ,b` as one field
// that swallows the rest of the input.
type quoteTrimmer struct {
	r     *bufio.Reader
	state quoteState
	out   bytes.Buffer
	err   error
}

func (q *quoteTrimmer) Read(p []byte) (int, error) {
	for q.out.Len() < len(p) && q.err == nil {
		q.err = q.step()
	}
	if q.out.Len() == 0 {
		return 0, q.err
	}
	return q.out.Read(p)
}

func (q *quoteTrimmer) step() error {
	c, err := q.r.ReadByte()
	if err != nil {
		return err
	}
	q.out.WriteByte(c)

	switch q.state {
	case fieldStart:
		switch c {
		case '"':
			q.state = fieldQuoted
		case ' ', '\t', ',', '\r', '\n':
		default:
			q.state = fieldBare
		}
	case fieldBare:
		if c == ',' || c == '\n' {
			q.state = fieldStart
		}
	case fieldQuoted:
		if c == '"' {
			return q.afterQuote()
		}
	}
	return nil
}

// afterQuote handles the bytes following a quote inside a quoted field. A
// doubled quote stays in the field. A quote that is only followed by blanks
// up to a delimiter closes the field and the blanks are dropped. Anything
// else is a literal quote and the blanks are kept.
func (q *quoteTrimmer) afterQuote() error {
	c, err := q.r.ReadByte()
	if err != nil {
		return err
	}
	if c == '"' {
		q.out.WriteByte(c)
		return nil
	}

	var blanks []byte
	for c == ' ' || c == '\t' {
		blanks = append(blanks, c)
		if c, err = q.r.ReadByte(); err != nil {
			return err
		}
	}

	switch c {
	case ',', '\r', '\n':
		q.out.WriteByte(c)
		q.state = fieldStart
		return nil
	default:
		q.out.Write(blanks)
		return q.r.UnreadByte()
	}
}
