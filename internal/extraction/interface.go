package extraction

import "strings"

// Format identifies one of the registered extractors
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatEnv      Format = "env"
	FormatFallback Format = "fallback"
)

// ParseFormat normalizes a format hint. Anything outside the known set,
// including an empty hint, resolves to FormatFallback.
func ParseFormat(hint string) Format {
	switch f := Format(strings.ToLower(strings.TrimSpace(hint))); f {
	case FormatJSON, FormatCSV, FormatEnv, FormatFallback:
		return f
	default:
		return FormatFallback
	}
}

// Extractor is the interface shared by every format-specific strategy
type Extractor interface {
	// Name returns the format this extractor handles
	Name() Format

	// Extract harvests strings from text. It never fails: malformed input
	// yields a partial or empty result and is reported through opts.
	Extract(text string, opts *Options) []string
}

// Options tunes extraction. A nil *Options is valid and means defaults.
type Options struct {
	// CSVHasHeader skips the first CSV row.
	CSVHasHeader bool
	// CSVColumnIndex restricts CSV extraction to one column. Nil or negative
	// means every column.
	CSVColumnIndex *int
	// RepairJSON retries invalid JSON once after running it through jsonrepair.
	RepairJSON bool
	// OnParseError receives a diagnostic for each fatal parse failure.
	OnParseError func(message string)
}

// Column returns a pointer suitable for Options.CSVColumnIndex
func Column(i int) *int {
	return &i
}

func (o *Options) hasHeader() bool {
	return o != nil && o.CSVHasHeader
}

func (o *Options) column() (int, bool) {
	if o == nil || o.CSVColumnIndex == nil || *o.CSVColumnIndex < 0 {
		return 0, false
	}
	return *o.CSVColumnIndex, true
}

func (o *Options) repairJSON() bool {
	return o != nil && o.RepairJSON
}

func (o *Options) reportParseError(message string) {
	if o == nil || o.OnParseError == nil {
		return
	}
	o.OnParseError(message)
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

func emptyResult() []string {
	return []string{}
}
