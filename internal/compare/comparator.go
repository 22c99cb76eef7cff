// Package compare merges two trees into one annotated comparison tree.
package compare

import (
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/temirov/dirscope/internal/commands"
	"github.com/temirov/dirscope/internal/types"
)

const (
	incompatibleReasonPrefix = "compared trees differ in "
	differenceSeparator      = ", "
)

// ErrMissingTree reports a nil tree handed to Compare.
var ErrMissingTree = errors.New("comparison requires two trees")

// Compare diffs left against right. Both trees must have been built with the same filter settings;
// otherwise a *types.ConfigError wrapping types.ErrIncompatibleConfig is returned. Neither input
// is modified.
func Compare(left *types.Tree, right *types.Tree) (*types.ComparisonTree, error) {
	if left == nil || right == nil || left.Root == nil || right.Root == nil {
		return nil, ErrMissingTree
	}
	if differences := FilterDifferences(left.Configuration, right.Configuration); len(differences) > 0 {
		return nil, &types.ConfigError{
			Reason: incompatibleReasonPrefix + strings.Join(differences, differenceSeparator),
			Err:    types.ErrIncompatibleConfig,
		}
	}

	merger := treeMerger{sortKey: left.Configuration.Normalized().SortKey}
	comparisonRoot := merger.mergeDirectories(left.Root, right.Root)
	comparisonRoot.RelativePath = types.RootRelativePath

	comparisonTree := &types.ComparisonTree{
		LeftRootPath:  left.RootPath,
		RightRootPath: right.RootPath,
		Root:          comparisonRoot,
		Configuration: left.Configuration,
	}
	summarize(comparisonRoot, &comparisonTree.Summary)
	return comparisonTree, nil
}

// FilterDifferences names the filter settings that differ between two configurations.
// An empty result means trees built with them can be compared.
func FilterDifferences(left types.Configuration, right types.Configuration) []string {
	leftSignature := left.FilterSignature()
	rightSignature := right.FilterSignature()
	if leftSignature == rightSignature {
		return nil
	}
	var leftFields, rightFields map[string]any
	if json.Unmarshal([]byte(leftSignature), &leftFields) != nil || json.Unmarshal([]byte(rightSignature), &rightFields) != nil {
		return []string{"filter settings"}
	}
	var differences []string
	for fieldName, leftValue := range leftFields {
		if !reflect.DeepEqual(leftValue, rightFields[fieldName]) {
			differences = append(differences, fieldName)
		}
	}
	sort.Strings(differences)
	return differences
}

type treeMerger struct {
	sortKey types.SortKey
}

type mergeKey struct {
	name     string
	nodeType string
}

type mergePair struct {
	left  *types.TreeNode
	right *types.TreeNode
}

// representative is the node whose values order the pair: the left one when present.
func (pair mergePair) representative() *types.TreeNode {
	if pair.left != nil {
		return pair.left
	}
	return pair.right
}

// mergeDirectories merges two directories present on both sides.
func (merger treeMerger) mergeDirectories(left *types.TreeNode, right *types.TreeNode) *types.ComparisonNode {
	directoryNode := &types.ComparisonNode{
		RelativePath: left.RelativePath,
		Name:         left.Name,
		Type:         types.NodeTypeDirectory,
		Status:       types.StatusUnchanged,
		Left:         sideOf(left),
		Right:        sideOf(right),
		Truncated:    left.Truncated || right.Truncated,
	}
	if left.Truncated != right.Truncated || left.Unavailable != right.Unavailable {
		directoryNode.Status = types.StatusModified
	}

	pairs := pairChildren(left.Children, right.Children)
	sort.SliceStable(pairs, func(leftIndex, rightIndex int) bool {
		return commands.CompareTreeNodes(pairs[leftIndex].representative(), pairs[rightIndex].representative(), merger.sortKey) < 0
	})

	for _, pair := range pairs {
		childNode := merger.mergePair(pair)
		if childNode.Status != types.StatusUnchanged {
			directoryNode.Status = types.StatusModified
		}
		directoryNode.Children = append(directoryNode.Children, childNode)
	}
	return directoryNode
}

func (merger treeMerger) mergePair(pair mergePair) *types.ComparisonNode {
	switch {
	case pair.right == nil:
		return wholeSubtree(pair.left, types.StatusRemoved)
	case pair.left == nil:
		return wholeSubtree(pair.right, types.StatusAdded)
	case pair.left.IsDirectory():
		return merger.mergeDirectories(pair.left, pair.right)
	}

	fileNode := leafNode(pair.left)
	fileNode.Left = sideOf(pair.left)
	fileNode.Right = sideOf(pair.right)
	if !sameFileContent(pair.left, pair.right) {
		fileNode.Status = types.StatusModified
	}
	return fileNode
}

// pairChildren matches children by name and kind, preserving first-seen order.
func pairChildren(leftChildren []*types.TreeNode, rightChildren []*types.TreeNode) []mergePair {
	pairs := make([]mergePair, 0, len(leftChildren)+len(rightChildren))
	pairIndex := make(map[mergeKey]int, len(leftChildren))
	for _, leftChild := range leftChildren {
		pairIndex[mergeKey{name: leftChild.Name, nodeType: leftChild.Type}] = len(pairs)
		pairs = append(pairs, mergePair{left: leftChild})
	}
	for _, rightChild := range rightChildren {
		key := mergeKey{name: rightChild.Name, nodeType: rightChild.Type}
		if existingIndex, exists := pairIndex[key]; exists {
			pairs[existingIndex].right = rightChild
			continue
		}
		pairs = append(pairs, mergePair{right: rightChild})
	}
	return pairs
}

// wholeSubtree tags node and every descendant with status, keeping the side it came from.
func wholeSubtree(node *types.TreeNode, status types.ComparisonStatus) *types.ComparisonNode {
	comparisonNode := leafNode(node)
	comparisonNode.Status = status
	comparisonNode.Truncated = node.Truncated
	if status == types.StatusRemoved {
		comparisonNode.Left = sideOf(node)
	} else {
		comparisonNode.Right = sideOf(node)
	}
	for _, childNode := range node.Children {
		comparisonNode.Children = append(comparisonNode.Children, wholeSubtree(childNode, status))
	}
	return comparisonNode
}

func leafNode(node *types.TreeNode) *types.ComparisonNode {
	return &types.ComparisonNode{
		RelativePath: node.RelativePath,
		Name:         node.Name,
		Type:         node.Type,
		Extension:    node.Extension,
		Color:        node.Color,
		Status:       types.StatusUnchanged,
	}
}

func sideOf(node *types.TreeNode) *types.ComparisonSide {
	side := &types.ComparisonSide{
		GitStatus:        node.GitStatus,
		LinkTarget:       node.LinkTarget,
		Truncated:        node.Truncated,
		TruncationReason: node.TruncationReason,
		Unavailable:      node.Unavailable,
	}
	if node.Stats != nil {
		clonedStats := node.Stats.Clone()
		side.Stats = &clonedStats
	}
	if node.Aggregate != nil {
		clonedAggregate := *node.Aggregate
		side.Aggregate = &clonedAggregate
	}
	return side
}

// sameFileContent reports whether two files carry identical statistics and link targets.
func sameFileContent(left *types.TreeNode, right *types.TreeNode) bool {
	if left.LinkTarget != right.LinkTarget {
		return false
	}
	if left.Stats == nil || right.Stats == nil {
		return left.Stats == nil && right.Stats == nil
	}
	return left.Stats.Equal(*right.Stats)
}

func summarize(node *types.ComparisonNode, summary *types.ComparisonSummary) {
	if !node.IsDirectory() {
		switch node.Status {
		case types.StatusAdded:
			summary.Added++
		case types.StatusRemoved:
			summary.Removed++
		case types.StatusModified:
			summary.Modified++
		case types.StatusUnchanged:
			summary.Unchanged++
		}
		return
	}
	for _, childNode := range node.Children {
		summarize(childNode, summary)
	}
}
