package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/temirov/dirscope/internal/types"
)

// writeTestFile creates a file with the specified content, failing the test on error.
func writeTestFile(testingHandle *testing.T, filePath string, content string) {
	testingHandle.Helper()
	if writeError := os.WriteFile(filePath, []byte(content), 0o644); writeError != nil {
		testingHandle.Fatalf("failed to write %s: %v", filePath, writeError)
	}
}

// TestLoadIgnoreFile verifies comment, blank line and trailing space handling.
func TestLoadIgnoreFile(testingHandle *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected []string
	}{
		{
			name:     "comments and blanks",
			content:  "# build output\n\n*.o\n   \nbin/\n",
			expected: []string{"*.o", "bin/"},
		},
		{
			name:     "trailing spaces trimmed",
			content:  "*.log   \n",
			expected: []string{"*.log"},
		},
		{
			name:     "escaped trailing space kept",
			content:  "name\\ \n",
			expected: []string{"name "},
		},
		{
			name:     "escapes and negation preserved",
			content:  "\\#literal\n!keep.txt\r\n",
			expected: []string{"\\#literal", "!keep.txt"},
		},
	}

	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(t *testing.T) {
			ignoreFilePath := filepath.Join(t.TempDir(), types.IgnoreFileName)
			writeTestFile(t, ignoreFilePath, testCase.content)
			patternLines, loadError := LoadIgnoreFile(ignoreFilePath)
			if loadError != nil {
				t.Fatalf("LoadIgnoreFile failed: %v", loadError)
			}
			if !reflect.DeepEqual(patternLines, testCase.expected) {
				t.Fatalf("unexpected patterns: got %q want %q", patternLines, testCase.expected)
			}
		})
	}
}

// TestLoadIgnoreFileMissing verifies that a missing ignore file yields no patterns.
func TestLoadIgnoreFileMissing(testingHandle *testing.T) {
	patternLines, loadError := LoadIgnoreFile(filepath.Join(testingHandle.TempDir(), types.GitIgnoreFileName))
	if loadError != nil || patternLines != nil {
		testingHandle.Fatalf("expected no patterns and no error, got %v, %v", patternLines, loadError)
	}
}

// TestLoadDirectoryIgnoreRules verifies that rules of every configured file are anchored to their directory.
func TestLoadDirectoryIgnoreRules(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	nestedDirectory := filepath.Join(rootDirectory, "nested")
	if makeDirError := os.MkdirAll(nestedDirectory, 0o755); makeDirError != nil {
		testingHandle.Fatalf("failed to create nested directory: %v", makeDirError)
	}
	writeTestFile(testingHandle, filepath.Join(nestedDirectory, types.GitIgnoreFileName), "*.tmp\n")
	writeTestFile(testingHandle, filepath.Join(nestedDirectory, types.IgnoreFileName), "!keep.tmp\n")

	rules, loadError := LoadDirectoryIgnoreRules(nestedDirectory, "nested", types.DefaultIgnoreFileNames())
	if loadError != nil {
		testingHandle.Fatalf("LoadDirectoryIgnoreRules failed: %v", loadError)
	}
	if len(rules) != 2 {
		testingHandle.Fatalf("expected two rules, got %d", len(rules))
	}
	if rules[0].SourcePath != "nested/.gitignore" || rules[1].SourcePath != "nested/.ignore" {
		testingHandle.Fatalf("unexpected rule sources: %s, %s", rules[0].SourcePath, rules[1].SourcePath)
	}
	if !rules[0].Matches("nested/a.tmp", false) || rules[0].Matches("a.tmp", false) {
		testingHandle.Fatalf("rule is not anchored to its directory")
	}
	if !rules[1].Negated {
		testingHandle.Fatalf("expected the second rule to be negated")
	}
}

// TestLoadDirectoryIgnoreRulesMalformed verifies that a malformed pattern is reported with its file.
func TestLoadDirectoryIgnoreRulesMalformed(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, types.GitIgnoreFileName), "[unterminated\n")

	_, loadError := LoadDirectoryIgnoreRules(rootDirectory, ".", []string{types.GitIgnoreFileName})
	var configError *types.ConfigError
	if !errors.As(loadError, &configError) {
		testingHandle.Fatalf("expected a configuration error, got %v", loadError)
	}
	if configError.Source != types.GitIgnoreFileName || configError.Pattern != "[unterminated" {
		testingHandle.Fatalf("unexpected configuration error: %+v", configError)
	}
}
