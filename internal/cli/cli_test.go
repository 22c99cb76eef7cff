package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/temirov/dirscope/internal/config"
	"github.com/temirov/dirscope/internal/types"
	"github.com/temirov/dirscope/internal/utils"
)

type recordingCopier struct {
	copied []string
	err    error
}

func (copier *recordingCopier) Copy(text string) error {
	copier.copied = append(copier.copied, text)
	return copier.err
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for relativePath, content := range files {
		absolutePath := filepath.Join(root, filepath.FromSlash(relativePath))
		if err := os.MkdirAll(filepath.Dir(absolutePath), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(absolutePath, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", relativePath, err)
		}
	}
}

func runCommand(t *testing.T, workingDirectory string, copier *recordingCopier, arguments ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	options := Options{
		Stdout:                  &stdout,
		Stderr:                  &bytes.Buffer{},
		Logger:                  zap.NewNop(),
		WorkingDirectory:        workingDirectory,
		SkipGlobalConfiguration: true,
	}
	if copier != nil {
		options.Copier = copier
	}
	rootCommand := NewRootCommand(options)
	executionError := ExecuteWithArguments(context.Background(), rootCommand, arguments)
	return stdout.String(), executionError
}

func TestTreeCommandRendersRawTree(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.py":    strings.Repeat("x\n", 10),
		"b/c.txt": strings.Repeat("x\n", 5),
	})

	rendered, err := runCommand(t, root, nil, "tree", "--lines", root)
	if err != nil {
		t.Fatalf("tree failed: %v", err)
	}
	for _, fragment := range []string{"├── b/ (1 file, 5 lines)", "│   └── c.txt (5 lines)", "└── a.py (10 lines)", "Summary: 2 files, 15 lines"} {
		if !strings.Contains(rendered, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, rendered)
		}
	}
}

func TestTreeCommandStructuredFormats(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"main.go": "package main\n"})

	rendered, err := runCommand(t, root, nil, "tree", "--format", "json", "--size", root)
	if err != nil {
		t.Fatalf("tree failed: %v", err)
	}
	var decoded types.Tree
	if err := json.Unmarshal([]byte(rendered), &decoded); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, rendered)
	}
	if len(decoded.Root.Children) != 1 || *decoded.Root.Children[0].Stats.SizeBytes != int64(len("package main\n")) {
		t.Fatalf("unexpected tree %+v", decoded.Root)
	}

	if _, err := runCommand(t, root, nil, "tree", "--format", "xml", root); err == nil {
		t.Fatalf("expected invalid format error")
	}
}

func TestTreeCommandFlagsOverrideConfiguration(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"keep.go":            "package keep\n",
		"debug.log":          "log\n",
		"scratch.tmp":        "tmp\n",
		utils.ConfigFileName: "tree:\n  scan:\n    exclude_patterns:\n      - \"*.log\"\n    size: true\n",
	})

	configured, err := runCommand(t, root, nil, "tree", root)
	if err != nil {
		t.Fatalf("tree failed: %v", err)
	}
	if strings.Contains(configured, "debug.log") || !strings.Contains(configured, "scratch.tmp") {
		t.Fatalf("configuration patterns not applied:\n%s", configured)
	}
	if !strings.Contains(configured, "keep.go (13B)") {
		t.Fatalf("configured sizes not collected:\n%s", configured)
	}

	overridden, err := runCommand(t, root, nil, "tree", "-p", "*.tmp", "--size", "no", root)
	if err != nil {
		t.Fatalf("tree failed: %v", err)
	}
	if !strings.Contains(overridden, "debug.log") || strings.Contains(overridden, "scratch.tmp") {
		t.Fatalf("flag patterns did not replace configuration:\n%s", overridden)
	}
	if strings.Contains(overridden, "13B") {
		t.Fatalf("--size no did not disable sizes:\n%s", overridden)
	}
}

func TestTreeCommandReportsMissingRoot(t *testing.T) {
	root := t.TempDir()
	_, err := runCommand(t, root, nil, "tree", filepath.Join(root, "missing"))
	if !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err = runCommand(t, root, nil, "tree", "--regex", "-p", "(unclosed", root)
	var configError *types.ConfigError
	if !errors.As(err, &configError) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestTreeCommandCopiesToClipboard(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.txt": "a"})

	copier := &recordingCopier{}
	rendered, err := runCommand(t, root, copier, "tree", "--clipboard", root)
	if err != nil {
		t.Fatalf("tree failed: %v", err)
	}
	if len(copier.copied) != 1 || copier.copied[0] != rendered {
		t.Fatalf("clipboard received %q, stdout %q", copier.copied, rendered)
	}

	failingCopier := &recordingCopier{err: errors.New("no clipboard")}
	if _, err := runCommand(t, root, failingCopier, "tree", "--clipboard", root); err != nil {
		t.Fatalf("clipboard failure must not fail the command: %v", err)
	}
}

func TestCompareCommand(t *testing.T) {
	workingDirectory := t.TempDir()
	left := filepath.Join(workingDirectory, "left")
	right := filepath.Join(workingDirectory, "right")
	writeFiles(t, left, map[string]string{"a.py": strings.Repeat("x\n", 10), "b/c.txt": strings.Repeat("x\n", 5)})
	writeFiles(t, right, map[string]string{"a.py": strings.Repeat("x\n", 12), "b/c.txt": strings.Repeat("x\n", 5), "d.md": "new\n"})

	rendered, err := runCommand(t, workingDirectory, nil, "compare", "--lines", left, right)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	for _, fragment := range []string{"~ ├── a.py (10 lines -> 12 lines)", "+ └── d.md (1 line)", "Summary: 1 added, 0 removed, 1 modified, 1 unchanged"} {
		if !strings.Contains(rendered, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, rendered)
		}
	}

	if _, err := runCommand(t, workingDirectory, nil, "compare", left); err == nil {
		t.Fatalf("expected argument count error")
	}
	if _, err := runCommand(t, workingDirectory, nil, "compare", left, filepath.Join(workingDirectory, "missing")); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInitCommand(t *testing.T) {
	workingDirectory := t.TempDir()
	rendered, err := runCommand(t, workingDirectory, nil, "init")
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	expectedPath := filepath.Join(workingDirectory, utils.ConfigFileName)
	if !strings.Contains(rendered, expectedPath) {
		t.Fatalf("expected written path in %q", rendered)
	}
	if _, err := runCommand(t, workingDirectory, nil, "init"); !errors.Is(err, config.ErrConfigurationExists) {
		t.Fatalf("expected ErrConfigurationExists, got %v", err)
	}
	if _, err := runCommand(t, workingDirectory, nil, "init", "--force"); err != nil {
		t.Fatalf("forced init failed: %v", err)
	}
}

func TestVersionFlag(t *testing.T) {
	utils.ApplicationVersion = "v9.9.9"
	t.Cleanup(func() { utils.ApplicationVersion = "" })

	rendered, err := runCommand(t, t.TempDir(), nil, "--version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if rendered != "dirscope version: v9.9.9\n" {
		t.Fatalf("unexpected version output %q", rendered)
	}
}

func TestNormalizeToggleArguments(t *testing.T) {
	rootCommand := NewRootCommand(Options{})
	testCases := []struct {
		name      string
		arguments []string
		expected  []string
	}{
		{
			name:      "joins boolean literal",
			arguments: []string{"tree", "--size", "no", "."},
			expected:  []string{"tree", "--size=no", "."},
		},
		{
			name:      "keeps path after toggle",
			arguments: []string{"tree", "--lines", "./src"},
			expected:  []string{"tree", "--lines", "./src"},
		},
		{
			name:      "ignores value flags",
			arguments: []string{"tree", "--sort", "size"},
			expected:  []string{"tree", "--sort", "size"},
		},
		{
			name:      "stops at terminator",
			arguments: []string{"tree", "--", "--size", "yes"},
			expected:  []string{"tree", "--", "--size", "yes"},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			normalized := normalizeToggleArguments(rootCommand, testCase.arguments)
			if !reflect.DeepEqual(normalized, testCase.expected) {
				t.Fatalf("expected %v, got %v", testCase.expected, normalized)
			}
		})
	}
}

func TestToggleValueRejectsUnknownLiteral(t *testing.T) {
	var target bool
	value := &toggleValue{target: &target, flagName: "size"}
	if err := value.Set("maybe"); err == nil {
		t.Fatalf("expected error for unknown literal")
	}
	if err := value.Set("on"); err != nil || !target {
		t.Fatalf("expected on to set true, got %v %v", target, err)
	}
}
