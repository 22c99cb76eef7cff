// Package config loads ignore files and the application configuration.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/dirscope/internal/pattern"
)

const (
	commentPrefix         = "#"
	escapeCharacter       = "\\"
	errorOpenIgnoreFormat = "opening ignore file %s: %w"
	errorReadIgnoreFormat = "reading ignore file %s: %w"
	warningCloseFormat    = "Warning: failed to close %s: %v\n"
)

// LoadIgnoreFile reads the pattern lines of a gitignore-style file.
// Blank lines and comments are dropped and unescaped trailing spaces are trimmed.
// A missing file yields no patterns and no error.
//
// #nosec G304
func LoadIgnoreFile(ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if errors.Is(openFileError, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf(errorOpenIgnoreFormat, ignoreFilePath, openFileError)
	}
	defer func() {
		closeError := fileHandle.Close()
		if closeError != nil {
			fmt.Fprintf(os.Stderr, warningCloseFormat, ignoreFilePath, closeError)
		}
	}()

	var patternLines []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		patternLine := trimIgnoreLine(scanner.Text())
		if patternLine == "" || strings.HasPrefix(patternLine, commentPrefix) {
			continue
		}
		patternLines = append(patternLines, patternLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf(errorReadIgnoreFormat, ignoreFilePath, scanError)
	}
	return patternLines, nil
}

// trimIgnoreLine removes the line terminator and trailing spaces unless the last space is escaped.
func trimIgnoreLine(rawLine string) string {
	line := strings.TrimRight(rawLine, "\r")
	trimmed := strings.TrimRight(line, " \t")
	if strings.HasSuffix(trimmed, escapeCharacter) && len(trimmed) < len(line) {
		return strings.TrimSuffix(trimmed, escapeCharacter) + " "
	}
	return trimmed
}

// LoadDirectoryIgnoreRules reads every configured ignore file inside absoluteDirectoryPath and
// compiles their rules relative to relativeDirectoryPath, in the order of ignoreFileNames.
// Malformed patterns are returned as *types.ConfigError naming the file.
func LoadDirectoryIgnoreRules(absoluteDirectoryPath string, relativeDirectoryPath string, ignoreFileNames []string) ([]pattern.IgnoreRule, error) {
	var directoryRules []pattern.IgnoreRule
	for _, ignoreFileName := range ignoreFileNames {
		patternLines, loadError := LoadIgnoreFile(filepath.Join(absoluteDirectoryPath, ignoreFileName))
		if loadError != nil {
			return nil, loadError
		}
		if len(patternLines) == 0 {
			continue
		}
		sourcePath := ignoreFileName
		if relativeDirectoryPath != "" && relativeDirectoryPath != "." {
			sourcePath = relativeDirectoryPath + "/" + ignoreFileName
		}
		fileRules, parseError := pattern.ParseIgnoreRules(sourcePath, relativeDirectoryPath, patternLines)
		if parseError != nil {
			return nil, parseError
		}
		directoryRules = append(directoryRules, fileRules...)
	}
	return directoryRules, nil
}
