package output

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/temirov/dirscope/internal/types"
)

var statusMarkers = map[types.ComparisonStatus]string{
	types.StatusAdded:     addedMarker,
	types.StatusRemoved:   removedMarker,
	types.StatusModified:  modifiedMarker,
	types.StatusUnchanged: unchangedMarker,
}

// rawComparisonRenderer prints a comparison tree with a status marker column.
type rawComparisonRenderer struct {
	writer        io.Writer
	comparison    *types.ComparisonTree
	configuration types.Configuration
	fullPath      bool
	styles        rawStyles
	prefix        branchPrefix
}

func newRawComparisonRenderer(writer io.Writer, comparisonTree *types.ComparisonTree, options Options) *rawComparisonRenderer {
	return &rawComparisonRenderer{
		writer:        writer,
		comparison:    comparisonTree,
		configuration: comparisonTree.Configuration,
		fullPath:      options.FullPath,
		styles:        newRawStyles(writer, options.Color),
	}
}

func (renderer *rawComparisonRenderer) EnterDirectory(node *types.ComparisonNode, position Position) error {
	label := renderer.displayName(node, position)
	if position.Depth > 0 {
		label += directorySuffix
	}
	details := renderer.aggregateChange(node)
	if node.Truncated {
		details = append(details, fmt.Sprintf(truncatedFormat, truncationReasonOf(node)))
	}
	line := renderer.marker(node) + renderer.prefix.line(position) + renderer.styles.renderDirectory(label) + renderer.styles.renderDetail(details)
	renderer.prefix.push(position)
	_, writeError := fmt.Fprintln(renderer.writer, line)
	return writeError
}

func (renderer *rawComparisonRenderer) VisitFile(node *types.ComparisonNode, position Position) error {
	label := renderer.styles.renderFile(renderer.displayName(node, position), node.Color)
	line := renderer.marker(node) + renderer.prefix.line(position) + label + renderer.styles.renderDetail(renderer.fileChange(node))
	_, writeError := fmt.Fprintln(renderer.writer, line)
	return writeError
}

func (renderer *rawComparisonRenderer) LeaveDirectory(_ *types.ComparisonNode, position Position) error {
	renderer.prefix.pop()
	if position.Depth > 0 {
		return nil
	}
	summary := renderer.comparison.Summary
	_, writeError := fmt.Fprintf(renderer.writer, comparisonSummary+"\n", summary.Added, summary.Removed, summary.Modified, summary.Unchanged)
	return writeError
}

func (renderer *rawComparisonRenderer) marker(node *types.ComparisonNode) string {
	return renderer.styles.renderStatus(node.Status, statusMarkers[node.Status])
}

func (renderer *rawComparisonRenderer) displayName(node *types.ComparisonNode, position Position) string {
	if position.Depth == 0 {
		return fmt.Sprintf(comparisonRootLine, renderer.comparison.LeftRootPath, renderer.comparison.RightRootPath)
	}
	if renderer.fullPath {
		return filepath.FromSlash(node.RelativePath)
	}
	return node.Name
}

// fileChange lists the differing values of a modified file, or the values of the side present otherwise.
func (renderer *rawComparisonRenderer) fileChange(node *types.ComparisonNode) []string {
	if node.Status != types.StatusModified || node.Left == nil || node.Right == nil {
		side := node.Left
		if side == nil {
			side = node.Right
		}
		if side == nil {
			return nil
		}
		return fileDetails(side.Stats, renderer.configuration)
	}
	leftDetails := fileDetails(node.Left.Stats, renderer.configuration)
	rightDetails := fileDetails(node.Right.Stats, renderer.configuration)
	details := changedValues(leftDetails, rightDetails)
	if node.Left.LinkTarget != node.Right.LinkTarget {
		details = append(details, fmt.Sprintf(changeFormat, node.Left.LinkTarget, node.Right.LinkTarget))
	}
	return details
}

// aggregateChange describes directory aggregates, showing both sides when they differ.
func (renderer *rawComparisonRenderer) aggregateChange(node *types.ComparisonNode) []string {
	var leftDetails, rightDetails []string
	if node.Left != nil && node.Left.Aggregate != nil {
		leftDetails = aggregateDetails(*node.Left.Aggregate, renderer.configuration)
	}
	if node.Right != nil && node.Right.Aggregate != nil {
		rightDetails = aggregateDetails(*node.Right.Aggregate, renderer.configuration)
	}
	switch {
	case leftDetails == nil:
		return rightDetails
	case rightDetails == nil:
		return leftDetails
	}
	return changedValues(leftDetails, rightDetails)
}

// changedValues pairs detail columns: unchanged ones are shown once, changed ones as "left -> right".
func changedValues(leftDetails []string, rightDetails []string) []string {
	details := make([]string, 0, len(leftDetails))
	for detailIndex, leftDetail := range leftDetails {
		if detailIndex >= len(rightDetails) || rightDetails[detailIndex] == leftDetail {
			details = append(details, leftDetail)
			continue
		}
		details = append(details, fmt.Sprintf(changeFormat, leftDetail, rightDetails[detailIndex]))
	}
	return details
}

func truncationReasonOf(node *types.ComparisonNode) string {
	for _, side := range []*types.ComparisonSide{node.Left, node.Right} {
		if side != nil && side.Truncated {
			return side.TruncationReason
		}
	}
	return ""
}
