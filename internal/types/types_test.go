package types_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/dirscope/internal/types"
)

func int64Pointer(value int64) *int64 {
	return &value
}

func TestNormalizedFillsDefaults(t *testing.T) {
	normalized := types.Configuration{
		MaxDepth:          types.DepthLimit(-1),
		UseIgnoreFiles:    true,
		ExcludePatterns:   []string{" *.log ", "*.log", ""},
		ExcludeExtensions: []string{"PY", ".Txt", "py"},
	}.Normalized()

	assert.Nil(t, normalized.MaxDepth)
	assert.Equal(t, types.PatternKindGlob, normalized.PatternKind)
	assert.Equal(t, types.SortByName, normalized.SortKey)
	assert.Equal(t, types.IncludeOverridesAll, normalized.IncludePrecedence)
	assert.Equal(t, types.DefaultIgnoreFileNames(), normalized.IgnoreFileNames)
	assert.Equal(t, []string{"*.log"}, normalized.ExcludePatterns)
	assert.Equal(t, []string{".py", ".txt"}, normalized.ExcludeExtensions)
}

func TestNormalizedDoesNotShareDepth(t *testing.T) {
	depth := 2
	original := types.Configuration{MaxDepth: &depth}
	normalized := original.Normalized()
	depth = 5

	require.NotNil(t, normalized.MaxDepth)
	assert.Equal(t, 2, *normalized.MaxDepth)
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	testCases := []struct {
		name          string
		configuration types.Configuration
	}{
		{name: "pattern kind", configuration: types.Configuration{PatternKind: "fuzzy"}},
		{name: "sort key", configuration: types.Configuration{SortKey: "color"}},
		{name: "precedence", configuration: types.Configuration{IncludePrecedence: "neither"}},
		{name: "ignore file path", configuration: types.Configuration{UseIgnoreFiles: true, IgnoreFileNames: []string{"sub/.gitignore"}}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			validationError := testCase.configuration.Validate()
			var configError *types.ConfigError
			require.ErrorAs(t, validationError, &configError)
		})
	}
	assert.NoError(t, types.Configuration{}.Validate())
}

func TestFilterSignatureIgnoresPresentation(t *testing.T) {
	base := types.Configuration{ExcludePatterns: []string{"b", "a"}, CollectLines: true}
	presentation := base
	presentation.SortKey = types.SortBySize
	presentation.GitStatus = true
	presentation.ExcludePatterns = []string{"a", "b"}
	assert.Equal(t, base.FilterSignature(), presentation.FilterSignature())

	filtering := base
	filtering.CollectSize = true
	assert.NotEqual(t, base.FilterSignature(), filtering.FilterSignature())
}

func TestExtensionOf(t *testing.T) {
	testCases := map[string]string{
		"main.go":        ".go",
		"archive.TAR.GZ": ".gz",
		".bashrc":        "",
		"Makefile":       "",
		"..hidden.Yml":   ".yml",
	}
	for name, expected := range testCases {
		assert.Equal(t, expected, types.ExtensionOf(name), name)
	}
	assert.Equal(t, ".md", types.NormalizeExtension(" MD "))
	assert.Equal(t, "", types.NormalizeExtension("  "))
}

func TestFileStatsEqualAndClone(t *testing.T) {
	modifiedAt := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	stats := types.FileStats{SizeBytes: int64Pointer(10), LineCount: int64Pointer(2), ModifiedAt: &modifiedAt}
	cloned := stats.Clone()
	require.True(t, stats.Equal(cloned))

	*cloned.SizeBytes = 11
	assert.Equal(t, int64(10), *stats.SizeBytes)
	assert.False(t, stats.Equal(cloned))

	unavailable := stats.Clone()
	unavailable.MarkUnavailable(types.StatLines, "binary file")
	assert.Nil(t, unavailable.LineCount)
	assert.True(t, unavailable.IsUnavailable(types.StatLines))
	assert.Equal(t, "binary file", unavailable.UnavailableReason)
	assert.False(t, stats.Equal(unavailable))
}

func TestOwnAggregate(t *testing.T) {
	file := &types.TreeNode{Type: types.NodeTypeFile, Stats: &types.FileStats{SizeBytes: int64Pointer(7), LineCount: int64Pointer(3)}}
	assert.Equal(t, types.Aggregate{Files: 1, SizeBytes: 7, LineCount: 3}, file.OwnAggregate())

	directory := &types.TreeNode{Type: types.NodeTypeDirectory, Aggregate: &types.Aggregate{Files: 4, SizeBytes: 9}}
	assert.Equal(t, types.Aggregate{Files: 4, SizeBytes: 9}, directory.OwnAggregate())

	var missing *types.TreeNode
	assert.Equal(t, types.Aggregate{}, missing.OwnAggregate())
}

func TestConfigErrorMessage(t *testing.T) {
	configError := &types.ConfigError{Pattern: "[", Source: "sub/.gitignore", Reason: "malformed glob", Err: types.ErrIncompatibleConfig}
	assert.Equal(t, "invalid configuration in sub/.gitignore: pattern '[': malformed glob: "+types.ErrIncompatibleConfig.Error(), configError.Error())
	assert.True(t, errors.Is(configError, types.ErrIncompatibleConfig))
}
