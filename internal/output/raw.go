package output

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/temirov/dirscope/internal/types"
	"github.com/temirov/dirscope/internal/utils"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	directorySuffix    = "/"
	linkArrow          = " -> "
	detailSeparator    = ", "
	unavailableLabel   = "n/a"
	lineCountFormat    = "%d lines"
	singleLineLabel    = "1 line"
	fileCountFormat    = "%d files"
	singleFileLabel    = "1 file"
	truncatedFormat    = "truncated: %s"
	unavailableEntry   = "unavailable"
	gitMarkerFormat    = "[%s] "
	summaryPrefix      = "Summary: "
	comparisonSummary  = "Summary: %d added, %d removed, %d modified, %d unchanged"
	comparisonRootLine = "%s <-> %s"
	changeFormat       = "%s -> %s"

	addedMarker     = "+ "
	removedMarker   = "- "
	modifiedMarker  = "~ "
	unchangedMarker = "  "

	directoryColor = "12"
	detailColor    = "245"
	addedColor     = "2"
	removedColor   = "1"
	modifiedColor  = "3"
)

// rawStyles wraps the lipgloss styles of the raw renderers. A disabled set renders plain text;
// an enabled set always emits 256-color escapes, so callers decide whether the destination is a terminal.
type rawStyles struct {
	enabled   bool
	renderer  *lipgloss.Renderer
	directory lipgloss.Style
	detail    lipgloss.Style
	statuses  map[types.ComparisonStatus]lipgloss.Style
}

func newRawStyles(writer io.Writer, enabled bool) rawStyles {
	renderer := lipgloss.NewRenderer(writer)
	if enabled {
		renderer.SetColorProfile(termenv.ANSI256)
	}
	return rawStyles{
		enabled:   enabled,
		renderer:  renderer,
		directory: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color(directoryColor)),
		detail:    renderer.NewStyle().Foreground(lipgloss.Color(detailColor)),
		statuses: map[types.ComparisonStatus]lipgloss.Style{
			types.StatusAdded:    renderer.NewStyle().Foreground(lipgloss.Color(addedColor)),
			types.StatusRemoved:  renderer.NewStyle().Foreground(lipgloss.Color(removedColor)),
			types.StatusModified: renderer.NewStyle().Foreground(lipgloss.Color(modifiedColor)),
		},
	}
}

func (styles rawStyles) renderDirectory(text string) string {
	if !styles.enabled {
		return text
	}
	return styles.directory.Render(text)
}

func (styles rawStyles) renderFile(text string, color string) string {
	if !styles.enabled || color == "" {
		return text
	}
	return styles.renderer.NewStyle().Foreground(lipgloss.Color(color)).Render(text)
}

func (styles rawStyles) renderDetail(details []string) string {
	if len(details) == 0 {
		return ""
	}
	text := " (" + strings.Join(details, detailSeparator) + ")"
	if !styles.enabled {
		return text
	}
	return styles.detail.Render(text)
}

func (styles rawStyles) renderStatus(status types.ComparisonStatus, text string) string {
	style, styled := styles.statuses[status]
	if !styles.enabled || !styled {
		return text
	}
	return style.Render(text)
}

// branchPrefix tracks which open directories were the last child of their parent.
type branchPrefix struct {
	lastFlags []bool
}

// line returns the connector prefix for a node at position.
func (prefix *branchPrefix) line(position Position) string {
	if position.Depth == 0 {
		return ""
	}
	var builder strings.Builder
	for _, isLast := range prefix.lastFlags[1:] {
		if isLast {
			builder.WriteString(treeLastPadding)
		} else {
			builder.WriteString(treeBranchPadding)
		}
	}
	if position.IsLast {
		builder.WriteString(treeLastConnector)
	} else {
		builder.WriteString(treeBranchConnector)
	}
	return builder.String()
}

func (prefix *branchPrefix) push(position Position) {
	prefix.lastFlags = append(prefix.lastFlags, position.IsLast)
}

func (prefix *branchPrefix) pop() {
	prefix.lastFlags = prefix.lastFlags[:len(prefix.lastFlags)-1]
}

// rawTreeRenderer prints a tree with box-drawing connectors.
type rawTreeRenderer struct {
	writer        io.Writer
	rootPath      string
	configuration types.Configuration
	fullPath      bool
	styles        rawStyles
	prefix        branchPrefix
}

func newRawTreeRenderer(writer io.Writer, tree *types.Tree, options Options) *rawTreeRenderer {
	return &rawTreeRenderer{
		writer:        writer,
		rootPath:      tree.RootPath,
		configuration: tree.Configuration,
		fullPath:      options.FullPath,
		styles:        newRawStyles(writer, options.Color),
	}
}

func (renderer *rawTreeRenderer) EnterDirectory(node *types.TreeNode, position Position) error {
	label := renderer.displayName(node.RelativePath, node.Name, position)
	if position.Depth > 0 {
		label += directorySuffix
	}
	line := renderer.prefix.line(position) + renderer.styles.renderDirectory(label) +
		renderer.styles.renderDetail(directoryDetails(node.Aggregate, node.Truncated, node.TruncationReason, node.Unavailable, renderer.configuration))
	renderer.prefix.push(position)
	_, writeError := fmt.Fprintln(renderer.writer, line)
	return writeError
}

func (renderer *rawTreeRenderer) VisitFile(node *types.TreeNode, position Position) error {
	label := renderer.displayName(node.RelativePath, node.Name, position)
	if node.LinkTarget != "" {
		label += linkArrow + node.LinkTarget
	}
	marker := ""
	if node.GitStatus != "" {
		marker = fmt.Sprintf(gitMarkerFormat, node.GitStatus)
	}
	line := renderer.prefix.line(position) + marker + renderer.styles.renderFile(label, node.Color) +
		renderer.styles.renderDetail(fileDetails(node.Stats, renderer.configuration))
	_, writeError := fmt.Fprintln(renderer.writer, line)
	return writeError
}

func (renderer *rawTreeRenderer) LeaveDirectory(node *types.TreeNode, position Position) error {
	renderer.prefix.pop()
	if position.Depth > 0 || node.Aggregate == nil {
		return nil
	}
	_, writeError := fmt.Fprintln(renderer.writer, FormatSummaryLine(*node.Aggregate, renderer.configuration))
	return writeError
}

func (renderer *rawTreeRenderer) displayName(relativePath string, name string, position Position) string {
	if position.Depth == 0 {
		return renderer.rootPath
	}
	if renderer.fullPath {
		return filepath.Join(renderer.rootPath, filepath.FromSlash(relativePath))
	}
	return name
}

// FormatSummaryLine formats the aggregate of a tree root as the raw summary line.
func FormatSummaryLine(aggregate types.Aggregate, configuration types.Configuration) string {
	return summaryPrefix + strings.Join(aggregateDetails(aggregate, configuration), detailSeparator)
}

func aggregateDetails(aggregate types.Aggregate, configuration types.Configuration) []string {
	details := []string{countLabel(int64(aggregate.Files), fileCountFormat, singleFileLabel)}
	if configuration.CollectSize {
		details = append(details, formatSize(aggregate.SizeBytes))
	}
	if configuration.CollectLines {
		details = append(details, countLabel(aggregate.LineCount, lineCountFormat, singleLineLabel))
	}
	return details
}

func directoryDetails(aggregate *types.Aggregate, truncated bool, truncationReason string, unavailable bool, configuration types.Configuration) []string {
	var details []string
	if aggregate != nil && aggregate.Files > 0 {
		details = aggregateDetails(*aggregate, configuration)
	}
	if truncated {
		details = append(details, fmt.Sprintf(truncatedFormat, truncationReason))
	}
	if unavailable {
		details = append(details, unavailableEntry)
	}
	return details
}

func fileDetails(stats *types.FileStats, configuration types.Configuration) []string {
	if stats == nil {
		return nil
	}
	var details []string
	if configuration.CollectSize {
		details = append(details, sizeDetail(stats))
	}
	if configuration.CollectLines {
		details = append(details, lineDetail(stats))
	}
	if configuration.CollectMtime {
		details = append(details, modifiedDetail(stats))
	}
	return details
}

func sizeDetail(stats *types.FileStats) string {
	if stats.SizeBytes == nil {
		return string(types.StatSize) + " " + unavailableLabel
	}
	return formatSize(*stats.SizeBytes)
}

func lineDetail(stats *types.FileStats) string {
	if stats.LineCount == nil {
		return string(types.StatLines) + " " + unavailableLabel
	}
	return countLabel(*stats.LineCount, lineCountFormat, singleLineLabel)
}

func modifiedDetail(stats *types.FileStats) string {
	if stats.ModifiedAt == nil {
		return string(types.StatModified) + " " + unavailableLabel
	}
	return utils.FormatModificationTime(*stats.ModifiedAt)
}

func formatSize(sizeBytes int64) string {
	if sizeBytes < 0 {
		sizeBytes = 0
	}
	return bytefmt.ByteSize(uint64(sizeBytes))
}

func countLabel(count int64, pluralFormat string, singular string) string {
	if count == 1 {
		return singular
	}
	return fmt.Sprintf(pluralFormat, count)
}
