package output_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/dirscope/internal/output"
	"github.com/temirov/dirscope/internal/types"
)

func int64Pointer(value int64) *int64 {
	return &value
}

func sampleTree() *types.Tree {
	return &types.Tree{
		RootPath:      "/tmp/project",
		Configuration: types.Configuration{CollectSize: true, CollectLines: true},
		Root: &types.TreeNode{
			RelativePath: types.RootRelativePath,
			Name:         "project",
			Type:         types.NodeTypeDirectory,
			Aggregate:    &types.Aggregate{Files: 3, SizeBytes: 85, LineCount: 16},
			Children: []*types.TreeNode{
				{
					RelativePath: "src",
					Name:         "src",
					Type:         types.NodeTypeDirectory,
					Aggregate:    &types.Aggregate{Files: 1, SizeBytes: 75, LineCount: 15},
					Children: []*types.TreeNode{
						{
							RelativePath: "src/main.go",
							Name:         "main.go",
							Type:         types.NodeTypeFile,
							Extension:    ".go",
							Color:        "#00ADD8",
							GitStatus:    "M",
							Stats:        &types.FileStats{SizeBytes: int64Pointer(75), LineCount: int64Pointer(15)},
						},
					},
				},
				{
					RelativePath:     "vendor",
					Name:             "vendor",
					Type:             types.NodeTypeDirectory,
					Aggregate:        &types.Aggregate{},
					Truncated:        true,
					TruncationReason: types.TruncatedByDepth,
				},
				{
					RelativePath: "README.md",
					Name:         "README.md",
					Type:         types.NodeTypeFile,
					Extension:    ".md",
					Stats:        &types.FileStats{SizeBytes: int64Pointer(10), LineCount: int64Pointer(1)},
				},
				{
					RelativePath: "blob.bin",
					Name:         "blob.bin",
					Type:         types.NodeTypeFile,
					Extension:    ".bin",
					Stats: &types.FileStats{
						SizeBytes:         int64Pointer(0),
						Unavailable:       []types.StatField{types.StatLines},
						UnavailableReason: "binary content",
					},
				},
				{
					RelativePath: "link",
					Name:         "link",
					Type:         types.NodeTypeSymlink,
					LinkTarget:   "src",
				},
			},
		},
	}
}

func TestRenderTreeRaw(testingInstance *testing.T) {
	var buffer bytes.Buffer
	require.NoError(testingInstance, output.RenderTree(&buffer, sampleTree(), output.Options{Format: types.FormatRaw}))

	expected := strings.Join([]string{
		"/tmp/project (3 files, 85B, 16 lines)",
		"├── src/ (1 file, 75B, 15 lines)",
		"│   └── [M] main.go (75B, 15 lines)",
		"├── vendor/ (truncated: depth)",
		"├── README.md (10B, 1 line)",
		"├── blob.bin (0B, lines n/a)",
		"└── link -> src",
		"Summary: 3 files, 85B, 16 lines",
		"",
	}, "\n")
	assert.Equal(testingInstance, expected, buffer.String())
}

func TestRenderTreeRawFullPath(testingInstance *testing.T) {
	var buffer bytes.Buffer
	require.NoError(testingInstance, output.RenderTree(&buffer, sampleTree(), output.Options{Format: types.FormatRaw, FullPath: true, Color: true}))

	assert.Contains(testingInstance, buffer.String(), "/tmp/project/src/main.go")
	assert.Contains(testingInstance, buffer.String(), "/tmp/project/README.md")
	assert.Contains(testingInstance, buffer.String(), "\x1b[")
}

func TestRenderTreeStructured(testingInstance *testing.T) {
	testingInstance.Run("json", func(t *testing.T) {
		var buffer bytes.Buffer
		require.NoError(t, output.RenderTree(&buffer, sampleTree(), output.Options{Format: types.FormatJSON}))
		var decoded types.Tree
		require.NoError(t, json.Unmarshal(buffer.Bytes(), &decoded))
		assert.Equal(t, sampleTree(), &decoded)
	})

	testingInstance.Run("yaml", func(t *testing.T) {
		var buffer bytes.Buffer
		require.NoError(t, output.RenderTree(&buffer, sampleTree(), output.Options{Format: "YAML"}))
		var decoded types.Tree
		require.NoError(t, yaml.Unmarshal(buffer.Bytes(), &decoded))
		assert.Equal(t, sampleTree(), &decoded)
	})

	testingInstance.Run("unsupported", func(t *testing.T) {
		renderError := output.RenderTree(&bytes.Buffer{}, sampleTree(), output.Options{Format: "xml"})
		assert.True(t, errors.Is(renderError, output.ErrUnsupportedFormat))
		assert.False(t, output.IsSupportedFormat("xml"))
		assert.True(t, output.IsSupportedFormat("Json"))
	})
}

func sampleComparison() *types.ComparisonTree {
	linesSide := func(count int64) *types.ComparisonSide {
		return &types.ComparisonSide{Stats: &types.FileStats{LineCount: int64Pointer(count)}}
	}
	return &types.ComparisonTree{
		LeftRootPath:  "/left",
		RightRootPath: "/right",
		Configuration: types.Configuration{CollectLines: true},
		Summary:       types.ComparisonSummary{Added: 1, Modified: 1, Unchanged: 1},
		Root: &types.ComparisonNode{
			RelativePath: types.RootRelativePath,
			Name:         "left",
			Type:         types.NodeTypeDirectory,
			Status:       types.StatusModified,
			Left:         &types.ComparisonSide{Aggregate: &types.Aggregate{Files: 2, LineCount: 15}},
			Right:        &types.ComparisonSide{Aggregate: &types.Aggregate{Files: 3, LineCount: 18}},
			Children: []*types.ComparisonNode{
				{
					RelativePath: "b",
					Name:         "b",
					Type:         types.NodeTypeDirectory,
					Status:       types.StatusUnchanged,
					Left:         &types.ComparisonSide{Aggregate: &types.Aggregate{Files: 1, LineCount: 5}},
					Right:        &types.ComparisonSide{Aggregate: &types.Aggregate{Files: 1, LineCount: 5}},
					Children: []*types.ComparisonNode{
						{RelativePath: "b/c.txt", Name: "c.txt", Type: types.NodeTypeFile, Status: types.StatusUnchanged, Left: linesSide(5), Right: linesSide(5)},
					},
				},
				{RelativePath: "a.py", Name: "a.py", Type: types.NodeTypeFile, Status: types.StatusModified, Left: linesSide(10), Right: linesSide(12)},
				{RelativePath: "new.md", Name: "new.md", Type: types.NodeTypeFile, Status: types.StatusAdded, Right: linesSide(1)},
			},
		},
	}
}

func TestRenderComparisonRaw(testingInstance *testing.T) {
	var buffer bytes.Buffer
	require.NoError(testingInstance, output.RenderComparison(&buffer, sampleComparison(), output.Options{Format: types.FormatRaw}))

	expected := strings.Join([]string{
		"~ /left <-> /right (2 files -> 3 files, 15 lines -> 18 lines)",
		"  ├── b/ (1 file, 5 lines)",
		"  │   └── c.txt (5 lines)",
		"~ ├── a.py (10 lines -> 12 lines)",
		"+ └── new.md (1 line)",
		"Summary: 1 added, 0 removed, 1 modified, 1 unchanged",
		"",
	}, "\n")
	assert.Equal(testingInstance, expected, buffer.String())
}

func TestRenderComparisonJSON(testingInstance *testing.T) {
	var buffer bytes.Buffer
	require.NoError(testingInstance, output.RenderComparison(&buffer, sampleComparison(), output.Options{Format: types.FormatJSON}))
	var decoded map[string]any
	require.NoError(testingInstance, json.Unmarshal(buffer.Bytes(), &decoded))
	summary := decoded["summary"].(map[string]any)
	assert.Equal(testingInstance, float64(1), summary["modified"])
	root := decoded["root"].(map[string]any)
	children := root["children"].([]any)
	assert.Equal(testingInstance, "modified", children[1].(map[string]any)["status"])
}

type recordingVisitor struct {
	events  []string
	failAt  string
	failure error
}

func (visitor *recordingVisitor) record(event string) error {
	visitor.events = append(visitor.events, event)
	if event == visitor.failAt {
		return visitor.failure
	}
	return nil
}

func (visitor *recordingVisitor) EnterDirectory(node *types.TreeNode, position output.Position) error {
	return visitor.record("enter " + node.RelativePath)
}

func (visitor *recordingVisitor) VisitFile(node *types.TreeNode, position output.Position) error {
	return visitor.record("file " + node.RelativePath)
}

func (visitor *recordingVisitor) LeaveDirectory(node *types.TreeNode, position output.Position) error {
	return visitor.record("leave " + node.RelativePath)
}

func TestWalkTreeOrder(testingInstance *testing.T) {
	visitor := &recordingVisitor{}
	require.NoError(testingInstance, output.WalkTree(sampleTree(), visitor))
	assert.Equal(testingInstance, []string{
		"enter .",
		"enter src",
		"file src/main.go",
		"leave src",
		"enter vendor",
		"leave vendor",
		"file README.md",
		"file blob.bin",
		"file link",
		"leave .",
	}, visitor.events)

	stopError := errors.New("stop")
	stoppingVisitor := &recordingVisitor{failAt: "file src/main.go", failure: stopError}
	assert.ErrorIs(testingInstance, output.WalkTree(sampleTree(), stoppingVisitor), stopError)
	assert.Len(testingInstance, stoppingVisitor.events, 3)

	assert.NoError(testingInstance, output.WalkTree(nil, visitor))
}
