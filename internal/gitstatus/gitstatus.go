// Package gitstatus reads working tree status markers from git.
package gitstatus

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/temirov/dirscope/internal/utils"
)

const (
	// Untracked marks a file git does not track.
	Untracked = "U"
	// Modified marks a tracked file with changes.
	Modified = "M"
	// Added marks a file staged for addition.
	Added = "A"
	// Deleted marks a tracked file that was removed.
	Deleted = "D"

	gitExecutable          = "git"
	untrackedCode          = "??"
	porcelainPrefixLength  = 3
	renameSeparator        = " -> "
	errorTopLevelFormat    = "locating git repository for %s: %w"
	errorStatusFormat      = "reading git status for %s: %w"
	errorResolveRootFormat = "resolving %s: %w"
)

// Statuses maps root-relative, slash-separated file paths to their status marker.
type Statuses map[string]string

// Reader executes git to collect statuses.
type Reader struct {
	// Executable overrides the git binary.
	Executable string
}

// NewReader constructs a Reader that runs the git binary found on PATH.
func NewReader() *Reader {
	return &Reader{Executable: gitExecutable}
}

// Read returns the status of every changed file below rootPath. Files outside rootPath are
// dropped; paths are relative to rootPath.
func (reader *Reader) Read(ctx context.Context, rootPath string) (Statuses, error) {
	resolvedRoot, resolveError := filepath.EvalSymlinks(rootPath)
	if resolveError != nil {
		return nil, fmt.Errorf(errorResolveRootFormat, rootPath, resolveError)
	}
	topLevelOutput, topLevelError := reader.run(ctx, resolvedRoot, "rev-parse", "--show-toplevel")
	if topLevelError != nil {
		return nil, fmt.Errorf(errorTopLevelFormat, rootPath, topLevelError)
	}
	topLevel := strings.TrimSpace(string(topLevelOutput))
	if resolvedTopLevel, evalError := filepath.EvalSymlinks(topLevel); evalError == nil {
		topLevel = resolvedTopLevel
	}

	statusOutput, statusError := reader.run(ctx, resolvedRoot, "status", "--porcelain", "--untracked-files=all", "--", ".")
	if statusError != nil {
		return nil, fmt.Errorf(errorStatusFormat, rootPath, statusError)
	}

	statuses := Statuses{}
	for _, line := range strings.Split(string(statusOutput), "\n") {
		code, repositoryPath, parsed := ParsePorcelainLine(line)
		if !parsed {
			continue
		}
		absolutePath := filepath.Join(topLevel, filepath.FromSlash(repositoryPath))
		relativePath := utils.RelativePathOrSelf(absolutePath, resolvedRoot)
		if relativePath == "." || relativePath == ".." || strings.HasPrefix(relativePath, "../") || filepath.IsAbs(relativePath) {
			continue
		}
		statuses[relativePath] = code
	}
	return statuses, nil
}

func (reader *Reader) run(ctx context.Context, directory string, arguments ...string) ([]byte, error) {
	executable := reader.Executable
	if executable == "" {
		executable = gitExecutable
	}
	// #nosec G204
	command := exec.CommandContext(ctx, executable, arguments...)
	command.Dir = directory
	var standardError bytes.Buffer
	command.Stderr = &standardError
	output, runError := command.Output()
	if runError != nil {
		if message := strings.TrimSpace(standardError.String()); message != "" {
			return nil, fmt.Errorf("%w: %s", runError, message)
		}
		return nil, runError
	}
	return output, nil
}

// ParsePorcelainLine maps one "git status --porcelain" line to a marker and its repository-relative path.
func ParsePorcelainLine(line string) (string, string, bool) {
	line = strings.TrimRight(line, "\r")
	if len(line) <= porcelainPrefixLength {
		return "", "", false
	}
	statusCode := line[:2]
	repositoryPath := line[porcelainPrefixLength:]
	if separatorIndex := strings.Index(repositoryPath, renameSeparator); separatorIndex >= 0 {
		repositoryPath = repositoryPath[separatorIndex+len(renameSeparator):]
	}
	repositoryPath = unquote(repositoryPath)
	switch {
	case statusCode == untrackedCode:
		return Untracked, repositoryPath, true
	case statusCode[0] == 'A':
		return Added, repositoryPath, true
	case strings.ContainsRune(statusCode, 'D'):
		return Deleted, repositoryPath, true
	case strings.TrimSpace(statusCode) == "":
		return "", "", false
	default:
		return Modified, repositoryPath, true
	}
}

// unquote decodes a path that git wrote in C-quoted form, including octal escapes for bytes
// outside printable ASCII.
func unquote(repositoryPath string) string {
	if len(repositoryPath) < 2 || !strings.HasPrefix(repositoryPath, `"`) || !strings.HasSuffix(repositoryPath, `"`) {
		return repositoryPath
	}
	decodedPath, unquoteError := strconv.Unquote(repositoryPath)
	if unquoteError != nil {
		return strings.ReplaceAll(repositoryPath[1:len(repositoryPath)-1], `\"`, `"`)
	}
	return decodedPath
}
