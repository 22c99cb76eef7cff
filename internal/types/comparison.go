package types

// ComparisonStatus annotates a node of a merged comparison tree.
type ComparisonStatus string

const (
	StatusAdded     ComparisonStatus = "added"
	StatusRemoved   ComparisonStatus = "removed"
	StatusUnchanged ComparisonStatus = "unchanged"
	StatusModified  ComparisonStatus = "modified"
)

// ComparisonSide carries what one of the compared trees recorded for a node.
type ComparisonSide struct {
	Stats            *FileStats `json:"stats,omitempty" yaml:"stats,omitempty"`
	Aggregate        *Aggregate `json:"aggregate,omitempty" yaml:"aggregate,omitempty"`
	GitStatus        string     `json:"gitStatus,omitempty" yaml:"gitStatus,omitempty"`
	LinkTarget       string     `json:"linkTarget,omitempty" yaml:"linkTarget,omitempty"`
	Truncated        bool       `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	TruncationReason string     `json:"truncationReason,omitempty" yaml:"truncationReason,omitempty"`
	Unavailable      bool       `json:"unavailable,omitempty" yaml:"unavailable,omitempty"`
}

// ComparisonNode is one node of the merged tree produced by comparing two trees.
type ComparisonNode struct {
	RelativePath string            `json:"path" yaml:"path"`
	Name         string            `json:"name" yaml:"name"`
	Type         string            `json:"type" yaml:"type"`
	Extension    string            `json:"extension,omitempty" yaml:"extension,omitempty"`
	Color        string            `json:"color,omitempty" yaml:"color,omitempty"`
	Status       ComparisonStatus  `json:"status" yaml:"status"`
	Left         *ComparisonSide   `json:"left,omitempty" yaml:"left,omitempty"`
	Right        *ComparisonSide   `json:"right,omitempty" yaml:"right,omitempty"`
	Truncated    bool              `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	Children     []*ComparisonNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// IsDirectory reports whether the node is a directory.
func (node *ComparisonNode) IsDirectory() bool {
	return node != nil && node.Type == NodeTypeDirectory
}

// ComparisonSummary counts non-directory nodes by status.
type ComparisonSummary struct {
	Added     int `json:"added" yaml:"added"`
	Removed   int `json:"removed" yaml:"removed"`
	Modified  int `json:"modified" yaml:"modified"`
	Unchanged int `json:"unchanged" yaml:"unchanged"`
}

// HasChanges reports whether anything differs between the compared trees.
func (summary ComparisonSummary) HasChanges() bool {
	return summary.Added > 0 || summary.Removed > 0 || summary.Modified > 0
}

// ComparisonTree is the merged result of comparing a left and a right tree.
type ComparisonTree struct {
	LeftRootPath  string            `json:"leftRoot" yaml:"leftRoot"`
	RightRootPath string            `json:"rightRoot" yaml:"rightRoot"`
	Root          *ComparisonNode   `json:"root" yaml:"root"`
	Configuration Configuration     `json:"configuration" yaml:"configuration"`
	Summary       ComparisonSummary `json:"summary" yaml:"summary"`
}
