package pattern

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	pathSegmentSeparator = "/"
	invalidGlobReason    = "malformed glob"
	descendantsSuffix    = "/**"
)

// globShape is a glob split into the expression, the anchoring and the directory-only marker.
type globShape struct {
	expression    string
	anchored      bool
	directoryOnly bool
}

// parseGlob normalizes a glob. A trailing separator restricts the pattern to directories.
// A pattern containing a separator anywhere else is anchored to the full relative path.
// Backslashes are escapes except on hosts whose path separator is a backslash.
func parseGlob(rawPattern string) globShape {
	normalizedPattern := filepath.ToSlash(rawPattern)
	shape := globShape{}
	if strings.HasSuffix(normalizedPattern, pathSegmentSeparator) {
		shape.directoryOnly = true
		normalizedPattern = strings.TrimRight(normalizedPattern, pathSegmentSeparator)
	}
	if strings.Contains(normalizedPattern, pathSegmentSeparator) {
		shape.anchored = true
		normalizedPattern = strings.TrimPrefix(normalizedPattern, pathSegmentSeparator)
	}
	shape.expression = normalizedPattern
	return shape
}

func validGlob(expression string) bool {
	return expression != "" && doublestar.ValidatePattern(expression)
}

// matchGlob reports whether target matches expression. A trailing "/**" matches only entries below
// its prefix, never the prefix itself.
func matchGlob(expression string, target string) bool {
	if strings.HasSuffix(expression, descendantsSuffix) && target == strings.TrimSuffix(expression, descendantsSuffix) {
		return false
	}
	isMatched, matchError := doublestar.Match(expression, target)
	return matchError == nil && isMatched
}
