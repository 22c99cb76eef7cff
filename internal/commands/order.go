package commands

import (
	"sort"
	"strings"

	"github.com/temirov/dirscope/internal/types"
)

// SortTreeNodes orders siblings in place: directories first by name, then the remaining
// entries by sortKey with ties broken by name.
func SortTreeNodes(nodes []*types.TreeNode, sortKey types.SortKey) {
	sort.SliceStable(nodes, func(leftIndex, rightIndex int) bool {
		return CompareTreeNodes(nodes[leftIndex], nodes[rightIndex], sortKey) < 0
	})
}

// CompareTreeNodes returns a negative number when left sorts before right, zero when they are
// equal, and a positive number otherwise.
func CompareTreeNodes(left *types.TreeNode, right *types.TreeNode, sortKey types.SortKey) int {
	leftIsDirectory := left.IsDirectory()
	if leftIsDirectory != right.IsDirectory() {
		if leftIsDirectory {
			return -1
		}
		return 1
	}
	if leftIsDirectory {
		return CompareNames(left.Name, right.Name)
	}

	switch sortKey {
	case types.SortByExtension:
		if comparison := strings.Compare(left.Extension, right.Extension); comparison != 0 {
			return comparison
		}
	case types.SortBySize, types.SortByLines, types.SortByModified:
		leftValue, leftPresent := statValue(left, sortKey)
		rightValue, rightPresent := statValue(right, sortKey)
		if leftPresent != rightPresent {
			if leftPresent {
				return -1
			}
			return 1
		}
		if leftPresent && leftValue != rightValue {
			if leftValue > rightValue {
				return -1
			}
			return 1
		}
	}
	return CompareNames(left.Name, right.Name)
}

// CompareNames orders names case-insensitively, falling back to byte order.
func CompareNames(leftName string, rightName string) int {
	if comparison := strings.Compare(strings.ToLower(leftName), strings.ToLower(rightName)); comparison != 0 {
		return comparison
	}
	return strings.Compare(leftName, rightName)
}

// statValue returns the value a stat-based sort key orders by. Entries without the value sort last.
func statValue(node *types.TreeNode, sortKey types.SortKey) (int64, bool) {
	if node.Stats == nil {
		return 0, false
	}
	switch sortKey {
	case types.SortBySize:
		if node.Stats.SizeBytes != nil {
			return *node.Stats.SizeBytes, true
		}
	case types.SortByLines:
		if node.Stats.LineCount != nil {
			return *node.Stats.LineCount, true
		}
	case types.SortByModified:
		if node.Stats.ModifiedAt != nil {
			return node.Stats.ModifiedAt.UnixNano(), true
		}
	}
	return 0, false
}
