package reply

import (
	"strings"
)

// MediaTypes returns a predicate reporting whether a Content-Type value
// matches one of patterns. Parameters such as charset are ignored; a pattern
// may be exact (image/png), a type wildcard (image/*) or */*.
func MediaTypes(patterns ...string) func(contentType string) bool {
	normalized := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = mediaType(p); p != "" {
			normalized = append(normalized, p)
		}
	}

	return func(contentType string) bool {
		mt := mediaType(contentType)
		if mt == "" {
			return false
		}
		for _, p := range normalized {
			switch {
			case p == "*/*":
				return true
			case strings.HasSuffix(p, "/*"):
				if strings.HasPrefix(mt, p[:len(p)-1]) {
					return true
				}
			case p == mt:
				return true
			}
		}
		return false
	}
}

func mediaType(v string) string {
	v, _, _ = strings.Cut(v, ";")
	return strings.ToLower(strings.TrimSpace(v))
}

var textualPrefixes = []string{
	"text/",
	"application/json",
	"application/xhtml",
	"application/xml",
	"application/wasm",
	"image/svg",
}

func isTextual(contentType string) bool {
	mt := mediaType(contentType)
	for _, p := range textualPrefixes {
		if strings.HasPrefix(mt, p) {
			return true
		}
	}
	return false
}
