package extraction

import "strings"

// extractors is the closed registry consulted by ExtractStrings
var extractors = map[Format]Extractor{
	FormatJSON:     JSONExtractor{},
	FormatCSV:      CSVExtractor{},
	FormatEnv:      DotenvExtractor{},
	FormatFallback: FallbackExtractor{},
}

// For returns the extractor registered for the normalized hint, falling back
// to FallbackExtractor for anything unrecognized.
func For(hint string) Extractor {
	return extractors[ParseFormat(hint)]
}

// ExtractStrings routes text to the extractor selected by hint. Blank text
// short-circuits to an empty result without consulting any extractor.
func ExtractStrings(text, hint string, opts *Options) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return emptyResult()
	}
	return For(hint).Extract(trimmed, opts)
}
