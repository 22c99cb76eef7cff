// Package types defines every cross-package data structure used by dirscope.
package types

import "time"

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"
	NodeTypeSymlink   = "symlink"

	CommandTree    = "tree"
	CommandCompare = "compare"

	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatYAML = "yaml"

	// TruncatedByDepth marks a directory whose descent was stopped by the depth limit.
	TruncatedByDepth = "depth"
	// TruncatedByCycle marks a directory whose descent would re-enter an ancestor.
	TruncatedByCycle = "cycle"

	// RootRelativePath is the relative path of the tree root.
	RootRelativePath = "."
)

// StatField names one per-file statistic.
type StatField string

const (
	StatSize     StatField = "size"
	StatLines    StatField = "lines"
	StatModified StatField = "mtime"
)

// FileStats holds the statistics collected for one file.
// A nil field is either not collected or unavailable; Unavailable tells the two apart.
type FileStats struct {
	SizeBytes         *int64      `json:"sizeBytes,omitempty" yaml:"sizeBytes,omitempty"`
	LineCount         *int64      `json:"lineCount,omitempty" yaml:"lineCount,omitempty"`
	ModifiedAt        *time.Time  `json:"modifiedAt,omitempty" yaml:"modifiedAt,omitempty"`
	Unavailable       []StatField `json:"unavailable,omitempty" yaml:"unavailable,omitempty"`
	UnavailableReason string      `json:"unavailableReason,omitempty" yaml:"unavailableReason,omitempty"`
}

// IsUnavailable reports whether the field was requested but could not be collected.
func (stats FileStats) IsUnavailable(field StatField) bool {
	for _, unavailableField := range stats.Unavailable {
		if unavailableField == field {
			return true
		}
	}
	return false
}

// MarkUnavailable records field as unavailable, clearing any value it held.
func (stats *FileStats) MarkUnavailable(field StatField, reason string) {
	switch field {
	case StatSize:
		stats.SizeBytes = nil
	case StatLines:
		stats.LineCount = nil
	case StatModified:
		stats.ModifiedAt = nil
	}
	if !stats.IsUnavailable(field) {
		stats.Unavailable = append(stats.Unavailable, field)
	}
	if stats.UnavailableReason == "" {
		stats.UnavailableReason = reason
	}
}

// Equal reports whether both sides carry the same values and the same availability.
func (stats FileStats) Equal(other FileStats) bool {
	if !equalInt64Pointers(stats.SizeBytes, other.SizeBytes) || !equalInt64Pointers(stats.LineCount, other.LineCount) {
		return false
	}
	if (stats.ModifiedAt == nil) != (other.ModifiedAt == nil) {
		return false
	}
	if stats.ModifiedAt != nil && !stats.ModifiedAt.Equal(*other.ModifiedAt) {
		return false
	}
	for _, field := range []StatField{StatSize, StatLines, StatModified} {
		if stats.IsUnavailable(field) != other.IsUnavailable(field) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the statistics.
func (stats FileStats) Clone() FileStats {
	cloned := FileStats{UnavailableReason: stats.UnavailableReason}
	if stats.SizeBytes != nil {
		sizeBytes := *stats.SizeBytes
		cloned.SizeBytes = &sizeBytes
	}
	if stats.LineCount != nil {
		lineCount := *stats.LineCount
		cloned.LineCount = &lineCount
	}
	if stats.ModifiedAt != nil {
		modifiedAt := *stats.ModifiedAt
		cloned.ModifiedAt = &modifiedAt
	}
	if len(stats.Unavailable) > 0 {
		cloned.Unavailable = append([]StatField(nil), stats.Unavailable...)
	}
	return cloned
}

func equalInt64Pointers(left, right *int64) bool {
	if left == nil || right == nil {
		return left == nil && right == nil
	}
	return *left == *right
}

// Aggregate sums the statistics of every file below a directory.
type Aggregate struct {
	Files     int   `json:"files" yaml:"files"`
	SizeBytes int64 `json:"sizeBytes" yaml:"sizeBytes"`
	LineCount int64 `json:"lineCount" yaml:"lineCount"`
}

// Add folds a child aggregate into the receiver.
func (aggregate *Aggregate) Add(other Aggregate) {
	aggregate.Files += other.Files
	aggregate.SizeBytes += other.SizeBytes
	aggregate.LineCount += other.LineCount
}

// TreeNode is a file, symlink or directory of a scanned tree.
type TreeNode struct {
	RelativePath      string      `json:"path" yaml:"path"`
	Name              string      `json:"name" yaml:"name"`
	Type              string      `json:"type" yaml:"type"`
	Extension         string      `json:"extension,omitempty" yaml:"extension,omitempty"`
	Color             string      `json:"color,omitempty" yaml:"color,omitempty"`
	Stats             *FileStats  `json:"stats,omitempty" yaml:"stats,omitempty"`
	LinkTarget        string      `json:"linkTarget,omitempty" yaml:"linkTarget,omitempty"`
	GitStatus         string      `json:"gitStatus,omitempty" yaml:"gitStatus,omitempty"`
	Aggregate         *Aggregate  `json:"aggregate,omitempty" yaml:"aggregate,omitempty"`
	Truncated         bool        `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	TruncationReason  string      `json:"truncationReason,omitempty" yaml:"truncationReason,omitempty"`
	Unavailable       bool        `json:"unavailable,omitempty" yaml:"unavailable,omitempty"`
	UnavailableReason string      `json:"unavailableReason,omitempty" yaml:"unavailableReason,omitempty"`
	Children          []*TreeNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// IsDirectory reports whether the node is a directory.
func (node *TreeNode) IsDirectory() bool {
	return node != nil && node.Type == NodeTypeDirectory
}

// OwnAggregate returns the contribution of the node to its parent's aggregate.
func (node *TreeNode) OwnAggregate() Aggregate {
	if node == nil {
		return Aggregate{}
	}
	if node.IsDirectory() {
		if node.Aggregate == nil {
			return Aggregate{}
		}
		return *node.Aggregate
	}
	contribution := Aggregate{Files: 1}
	if node.Stats != nil {
		if node.Stats.SizeBytes != nil {
			contribution.SizeBytes = *node.Stats.SizeBytes
		}
		if node.Stats.LineCount != nil {
			contribution.LineCount = *node.Stats.LineCount
		}
	}
	return contribution
}

// Tree is the immutable result of one traversal together with the configuration that produced it.
type Tree struct {
	RootPath      string        `json:"rootPath" yaml:"rootPath"`
	Root          *TreeNode     `json:"root" yaml:"root"`
	Configuration Configuration `json:"configuration" yaml:"configuration"`
}

// ValidatedPath is an absolute input path that already passed existence checks.
type ValidatedPath struct {
	AbsolutePath string
	IsDir        bool
}
