package extraction

import "strings"

// DotenvExtractor harvests the values of KEY=value lines
type DotenvExtractor struct{}

var _ Extractor = DotenvExtractor{}

func (DotenvExtractor) Name() Format { return FormatEnv }

func (DotenvExtractor) Extract(text string, opts *Options) []string {
	return ExtractDotenv(text, opts)
}

// ExtractDotenv returns the value of every well-formed assignment in text, in
// line order. Comments, blank lines and lines without '=' are skipped. One
// layer of matching quotes is removed; escape sequences are left as written.
func ExtractDotenv(text string, _ *Options) []string {
	out := emptyResult()
	for _, raw := range strings.Split(text, "\n") {
		if value, ok := dotenvValue(raw); ok {
			out = append(out, value)
		}
	}
	return out
}

func dotenvValue(raw string) (string, bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", false
	}
	if rest, ok := strings.CutPrefix(line, "export "); ok {
		line = strings.TrimSpace(rest)
	}

	_, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}

	// Inline comments only apply to unquoted values
	if !strings.HasPrefix(value, `"`) && !strings.HasPrefix(value, "'") {
		if i := strings.IndexByte(value, '#'); i >= 0 {
			value = strings.TrimSpace(value[:i])
		}
	}

	value = unquote(value)
	return value, value != ""
}

// unquote strips one layer of matching double or single quotes. A lone
// quote character counts as both ends and unquotes to "". The result is not
// trimmed so whitespace inside the quotes survives.
func unquote(value string) string {
	if value == "" {
		return value
	}
	first, last := value[0], value[len(value)-1]
	if first == last && (first == '"' || first == '\'') {
		return value[1:max(1, len(value)-1)]
	}
	return value
}
