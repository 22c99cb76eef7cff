// Package output renders trees and comparison trees for people and programs.
package output

import (
	"github.com/temirov/dirscope/internal/types"
)

// Position locates a node during a walk. The root has depth zero and is always last.
type Position struct {
	Depth  int
	IsLast bool
}

// TreeVisitor receives the nodes of a tree in display order.
type TreeVisitor interface {
	EnterDirectory(node *types.TreeNode, position Position) error
	VisitFile(node *types.TreeNode, position Position) error
	LeaveDirectory(node *types.TreeNode, position Position) error
}

// ComparisonVisitor receives the nodes of a comparison tree in display order.
type ComparisonVisitor interface {
	EnterDirectory(node *types.ComparisonNode, position Position) error
	VisitFile(node *types.ComparisonNode, position Position) error
	LeaveDirectory(node *types.ComparisonNode, position Position) error
}

// WalkTree drives visitor over tree in a single depth-first pass. The first visitor error stops the walk.
func WalkTree(tree *types.Tree, visitor TreeVisitor) error {
	if tree == nil || tree.Root == nil {
		return nil
	}
	return walkTreeNode(tree.Root, Position{IsLast: true}, visitor)
}

func walkTreeNode(node *types.TreeNode, position Position, visitor TreeVisitor) error {
	if !node.IsDirectory() {
		return visitor.VisitFile(node, position)
	}
	if enterError := visitor.EnterDirectory(node, position); enterError != nil {
		return enterError
	}
	for childIndex, childNode := range node.Children {
		childPosition := Position{Depth: position.Depth + 1, IsLast: childIndex == len(node.Children)-1}
		if walkError := walkTreeNode(childNode, childPosition, visitor); walkError != nil {
			return walkError
		}
	}
	return visitor.LeaveDirectory(node, position)
}

// WalkComparison drives visitor over a comparison tree in a single depth-first pass.
func WalkComparison(comparisonTree *types.ComparisonTree, visitor ComparisonVisitor) error {
	if comparisonTree == nil || comparisonTree.Root == nil {
		return nil
	}
	return walkComparisonNode(comparisonTree.Root, Position{IsLast: true}, visitor)
}

func walkComparisonNode(node *types.ComparisonNode, position Position, visitor ComparisonVisitor) error {
	if !node.IsDirectory() {
		return visitor.VisitFile(node, position)
	}
	if enterError := visitor.EnterDirectory(node, position); enterError != nil {
		return enterError
	}
	for childIndex, childNode := range node.Children {
		childPosition := Position{Depth: position.Depth + 1, IsLast: childIndex == len(node.Children)-1}
		if walkError := walkComparisonNode(childNode, childPosition, visitor); walkError != nil {
			return walkError
		}
	}
	return visitor.LeaveDirectory(node, position)
}
