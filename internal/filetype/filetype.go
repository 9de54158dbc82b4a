package filetype

import (
	"mime"
	"path"
	"path/filepath"
	"strings"
)

// Detect returns the format hint for a file name. Any base name starting
// with ".env" is treated as "env"; otherwise the lower-cased extension
// without its dot is returned (possibly empty).
func Detect(name string) string {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".env") {
		return "env"
	}
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
}

// DetectURL is Detect applied to the path component of a URL
func DetectURL(rawPath string) string {
	base := path.Base(rawPath)
	if base == "/" || base == "." {
		return ""
	}
	return Detect(base)
}

// FromContentType maps an HTTP Content-Type onto a format hint. Unknown
// media types yield "".
func FromContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}

	switch {
	case mediaType == "application/json", mediaType == "text/json", strings.HasSuffix(mediaType, "+json"):
		return "json"
	case mediaType == "text/csv", mediaType == "application/csv":
		return "csv"
	default:
		return ""
	}
}
