package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// PatternKind selects how include and exclude patterns are interpreted.
type PatternKind string

const (
	PatternKindGlob  PatternKind = "glob"
	PatternKindRegex PatternKind = "regex"
)

// SortKey selects the ordering of files inside a directory.
type SortKey string

const (
	SortByName      SortKey = "name"
	SortByExtension SortKey = "type"
	SortBySize      SortKey = "size"
	SortByLines     SortKey = "lines"
	SortByModified  SortKey = "mtime"
)

// IncludePrecedence decides whether include patterns or ignore-file exclusions win when both apply.
type IncludePrecedence string

const (
	// IncludeOverridesAll keeps every entry matching an include pattern.
	IncludeOverridesAll IncludePrecedence = "include"
	// IgnoreFileOverridesInclude lets ignore-file exclusions beat include patterns.
	IgnoreFileOverridesInclude IncludePrecedence = "ignore-file"
)

const (
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// IgnoreFileName is the name of the generic ignore file.
	IgnoreFileName = ".ignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
)

// Configuration is the bundle of options a tree is built with.
// A nil MaxDepth means unlimited depth.
type Configuration struct {
	MaxDepth           *int              `json:"maxDepth,omitempty" yaml:"maxDepth,omitempty"`
	IncludePatterns    []string          `json:"includePatterns,omitempty" yaml:"includePatterns,omitempty"`
	ExcludePatterns    []string          `json:"excludePatterns,omitempty" yaml:"excludePatterns,omitempty"`
	PatternKind        PatternKind       `json:"patternKind" yaml:"patternKind"`
	UseIgnoreFiles     bool              `json:"useIgnoreFiles" yaml:"useIgnoreFiles"`
	IgnoreFileNames    []string          `json:"ignoreFileNames,omitempty" yaml:"ignoreFileNames,omitempty"`
	ExcludeExtensions  []string          `json:"excludeExtensions,omitempty" yaml:"excludeExtensions,omitempty"`
	ExcludeDirectories []string          `json:"excludeDirectories,omitempty" yaml:"excludeDirectories,omitempty"`
	IncludePrecedence  IncludePrecedence `json:"includePrecedence" yaml:"includePrecedence"`
	CollectSize        bool              `json:"collectSize" yaml:"collectSize"`
	CollectLines       bool              `json:"collectLines" yaml:"collectLines"`
	CollectMtime       bool              `json:"collectMtime" yaml:"collectMtime"`
	SortKey            SortKey           `json:"sortKey" yaml:"sortKey"`
	FollowSymlinks     bool              `json:"followSymlinks" yaml:"followSymlinks"`
	GitStatus          bool              `json:"gitStatus,omitempty" yaml:"gitStatus,omitempty"`
}

// DepthLimit returns a pointer suitable for Configuration.MaxDepth.
func DepthLimit(depth int) *int {
	return &depth
}

// DefaultIgnoreFileNames lists the ignore files consulted when none are configured.
func DefaultIgnoreFileNames() []string {
	return []string{GitIgnoreFileName, IgnoreFileName}
}

// Normalized fills defaults and canonicalizes list values.
func (configuration Configuration) Normalized() Configuration {
	result := configuration
	if result.PatternKind == "" {
		result.PatternKind = PatternKindGlob
	}
	if result.SortKey == "" {
		result.SortKey = SortByName
	}
	if result.IncludePrecedence == "" {
		result.IncludePrecedence = IncludeOverridesAll
	}
	if result.MaxDepth != nil {
		depth := *result.MaxDepth
		if depth < 0 {
			result.MaxDepth = nil
		} else {
			result.MaxDepth = &depth
		}
	}
	if result.UseIgnoreFiles && len(result.IgnoreFileNames) == 0 {
		result.IgnoreFileNames = DefaultIgnoreFileNames()
	}
	result.IncludePatterns = trimmedUnique(result.IncludePatterns)
	result.ExcludePatterns = trimmedUnique(result.ExcludePatterns)
	result.IgnoreFileNames = trimmedUnique(result.IgnoreFileNames)
	result.ExcludeDirectories = trimmedUnique(result.ExcludeDirectories)
	normalizedExtensions := make([]string, 0, len(result.ExcludeExtensions))
	for _, extension := range result.ExcludeExtensions {
		normalizedExtensions = append(normalizedExtensions, NormalizeExtension(extension))
	}
	result.ExcludeExtensions = trimmedUnique(normalizedExtensions)
	return result
}

// Validate rejects unknown enumeration values. Pattern syntax is checked by the pattern compiler.
func (configuration Configuration) Validate() error {
	normalized := configuration.Normalized()
	switch normalized.PatternKind {
	case PatternKindGlob, PatternKindRegex:
	default:
		return &ConfigError{Reason: fmt.Sprintf("unsupported pattern kind %q", normalized.PatternKind)}
	}
	switch normalized.SortKey {
	case SortByName, SortByExtension, SortBySize, SortByLines, SortByModified:
	default:
		return &ConfigError{Reason: fmt.Sprintf("unsupported sort key %q", normalized.SortKey)}
	}
	switch normalized.IncludePrecedence {
	case IncludeOverridesAll, IgnoreFileOverridesInclude:
	default:
		return &ConfigError{Reason: fmt.Sprintf("unsupported include precedence %q", normalized.IncludePrecedence)}
	}
	for _, ignoreFileName := range normalized.IgnoreFileNames {
		if strings.ContainsAny(ignoreFileName, `/\`) {
			return &ConfigError{Pattern: ignoreFileName, Reason: "ignore file name must not contain a path separator"}
		}
	}
	return nil
}

type filterSignature struct {
	MaxDepth           *int              `json:"maxDepth"`
	IncludePatterns    []string          `json:"include"`
	ExcludePatterns    []string          `json:"exclude"`
	PatternKind        PatternKind       `json:"kind"`
	UseIgnoreFiles     bool              `json:"ignoreFiles"`
	IgnoreFileNames    []string          `json:"ignoreFileNames"`
	ExcludeExtensions  []string          `json:"extensions"`
	ExcludeDirectories []string          `json:"directories"`
	IncludePrecedence  IncludePrecedence `json:"precedence"`
	CollectSize        bool              `json:"size"`
	CollectLines       bool              `json:"lines"`
	CollectMtime       bool              `json:"mtime"`
	FollowSymlinks     bool              `json:"symlinks"`
}

// FilterSignature returns a canonical description of every option that changes which entries are
// visited or which statistics they carry. Two trees are comparable only when their signatures match.
func (configuration Configuration) FilterSignature() string {
	normalized := configuration.Normalized()
	signature := filterSignature{
		MaxDepth:           normalized.MaxDepth,
		IncludePatterns:    sortedCopy(normalized.IncludePatterns),
		ExcludePatterns:    sortedCopy(normalized.ExcludePatterns),
		PatternKind:        normalized.PatternKind,
		UseIgnoreFiles:     normalized.UseIgnoreFiles,
		ExcludeExtensions:  sortedCopy(normalized.ExcludeExtensions),
		ExcludeDirectories: sortedCopy(normalized.ExcludeDirectories),
		IncludePrecedence:  normalized.IncludePrecedence,
		CollectSize:        normalized.CollectSize,
		CollectLines:       normalized.CollectLines,
		CollectMtime:       normalized.CollectMtime,
		FollowSymlinks:     normalized.FollowSymlinks,
	}
	if normalized.UseIgnoreFiles {
		signature.IgnoreFileNames = normalized.IgnoreFileNames
	}
	encoded, _ := json.Marshal(signature)
	return string(encoded)
}

// NormalizeExtension lowercases an extension and guarantees a leading dot.
func NormalizeExtension(extension string) string {
	trimmed := strings.ToLower(strings.TrimSpace(extension))
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, ".") {
		trimmed = "." + trimmed
	}
	return trimmed
}

// ExtensionOf returns the lowercased extension of a file name including the leading dot.
// Names whose only dot is the leading one, such as ".bashrc", have no extension.
func ExtensionOf(name string) string {
	trimmed := strings.TrimLeft(name, ".")
	dotIndex := strings.LastIndex(trimmed, ".")
	if dotIndex < 0 {
		return ""
	}
	return strings.ToLower(trimmed[dotIndex:])
}

func trimmedUnique(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func sortedCopy(values []string) []string {
	copied := append([]string(nil), values...)
	sort.Strings(copied)
	return copied
}
