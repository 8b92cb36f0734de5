package httpmetrics

import (
	"regexp"
	"strings"
)

var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

const storagePrefix = "/storage/"

// NormalizePath collapses ids and photo names so unmatched requests keep label
// cardinality bounded. Ids are rendered as {id} to line up with route patterns.
func NormalizePath(path string) string {
	if path == "" || path == "/" {
		return "/"
	}

	if strings.HasPrefix(path, storagePrefix) {
		return storagePrefix + "{name}"
	}

	parts := strings.Split(path, "/")
	for i, part := range parts {
		if uuidRegex.MatchString(part) || isNumeric(part) {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}

func isNumeric(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
