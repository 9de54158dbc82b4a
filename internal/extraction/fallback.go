package extraction

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// quotedSpan matches a "…", '…' or `…` span on a single line. The lookahead
// captures an optional backslash so an escaped delimiter is consumed as part
// of the span instead of closing it.
var quotedSpan = regexp2.MustCompile("([\"'`])(?:(?=(\\\\?))\\2[^\\n\\r\\u2028\\u2029])*?\\1", regexp2.None)

// FallbackExtractor scans unknown formats for quoted substrings
type FallbackExtractor struct{}

var _ Extractor = FallbackExtractor{}

func (FallbackExtractor) Name() Format { return FormatFallback }

func (FallbackExtractor) Extract(text string, opts *Options) []string {
	return ExtractFallback(text, opts)
}

// ExtractFallback returns the trimmed contents of every quoted span in text.
// Escaped delimiters are kept verbatim and unterminated quotes match nothing.
func ExtractFallback(text string, _ *Options) []string {
	out := emptyResult()
	if isBlank(text) {
		return out
	}

	m, err := quotedSpan.FindStringMatch(text)
	for err == nil && m != nil {
		span := m.String()
		if inner := strings.TrimSpace(span[1 : len(span)-1]); inner != "" {
			out = append(out, inner)
		}
		m, err = quotedSpan.FindNextMatch(m)
	}

	return out
}
