package pattern

import (
	"path/filepath"
	"strings"

	"github.com/temirov/dirscope/internal/types"
)

const (
	negationPrefix = "!"
	escapePrefix   = "\\"
)

// IgnoreRule is one gitignore-style rule read from an ignore file.
// BaseDirectory is the root-relative directory holding the ignore file.
type IgnoreRule struct {
	SourcePath    string
	BaseDirectory string
	Pattern       string
	Negated       bool
	DirectoryOnly bool
	Anchored      bool

	expression string
}

// ParseIgnoreRules compiles the pattern lines of one ignore file located in baseDirectory.
// Lines are expected without comments or blank entries; a leading "\" escapes "!" and "#".
// Lines left without a pattern, such as a bare "!" or "/", are skipped.
func ParseIgnoreRules(sourcePath string, baseDirectory string, patternLines []string) ([]IgnoreRule, error) {
	rules := make([]IgnoreRule, 0, len(patternLines))
	for _, patternLine := range patternLines {
		rule := IgnoreRule{SourcePath: sourcePath, BaseDirectory: normalizeBaseDirectory(baseDirectory), Pattern: patternLine}
		rawPattern := patternLine
		switch {
		case strings.HasPrefix(rawPattern, negationPrefix):
			rule.Negated = true
			rawPattern = strings.TrimPrefix(rawPattern, negationPrefix)
		case strings.HasPrefix(rawPattern, escapePrefix+negationPrefix), strings.HasPrefix(rawPattern, escapePrefix+"#"):
			rawPattern = strings.TrimPrefix(rawPattern, escapePrefix)
		}
		shape := parseGlob(rawPattern)
		if shape.expression == "" {
			continue
		}
		if !validGlob(shape.expression) {
			return nil, &types.ConfigError{Pattern: patternLine, Source: sourcePath, Reason: invalidGlobReason}
		}
		rule.DirectoryOnly = shape.directoryOnly
		rule.Anchored = shape.anchored
		rule.expression = shape.expression
		rules = append(rules, rule)
	}
	return rules, nil
}

// Matches reports whether the rule applies to the entry at the root-relative path.
// Entries outside the rule's base directory never match.
func (rule IgnoreRule) Matches(relativePath string, isDirectory bool) bool {
	if rule.DirectoryOnly && !isDirectory {
		return false
	}
	pathBelowBase, withinBase := relativeToBase(relativePath, rule.BaseDirectory)
	if !withinBase {
		return false
	}
	if rule.Anchored {
		return matchGlob(rule.expression, pathBelowBase)
	}
	lastSeparatorIndex := strings.LastIndex(pathBelowBase, pathSegmentSeparator)
	return matchGlob(rule.expression, pathBelowBase[lastSeparatorIndex+1:])
}

func normalizeBaseDirectory(baseDirectory string) string {
	trimmed := strings.Trim(filepath.ToSlash(baseDirectory), pathSegmentSeparator)
	if trimmed == "" {
		return types.RootRelativePath
	}
	return trimmed
}

func relativeToBase(relativePath string, baseDirectory string) (string, bool) {
	if baseDirectory == types.RootRelativePath {
		return relativePath, relativePath != types.RootRelativePath
	}
	prefix := baseDirectory + pathSegmentSeparator
	if !strings.HasPrefix(relativePath, prefix) {
		return "", false
	}
	return strings.TrimPrefix(relativePath, prefix), true
}
