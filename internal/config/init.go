package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/temirov/dirscope/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	defaultConfigurationTemplate = `tree:
  format: raw
  full_path: false
  clipboard: false
  scan:
    exclude: []
    exclude_extensions: []
    exclude_patterns: []
    include_patterns: []
    regex: false
    use_ignore_files: true
    ignore_files:
      - .gitignore
      - .ignore
    include_git: false
    include_precedence: include
    depth: -1
    sort: name
    size: false
    lines: false
    mtime: false
    follow_symlinks: false
    git_status: false
compare:
  format: raw
  scan:
    exclude: []
    use_ignore_files: true
    include_git: false
    depth: -1
    sort: name
`
)

// ErrConfigurationExists reports an existing configuration file that was not overwritten.
var ErrConfigurationExists = errors.New("configuration file already exists")

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// InitializeConfiguration writes the default configuration to the requested target and returns
// the path written. Without Force an existing file is left untouched.
func InitializeConfiguration(options InitOptions) (string, error) {
	destinationPath, resolveError := initDestination(options)
	if resolveError != nil {
		return "", resolveError
	}

	openFlags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if options.Force {
		openFlags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	// #nosec G304
	fileHandle, openError := os.OpenFile(destinationPath, openFlags, 0o600)
	if openError != nil {
		if errors.Is(openError, fs.ErrExist) {
			return "", fmt.Errorf("%w at %s", ErrConfigurationExists, destinationPath)
		}
		return "", fmt.Errorf("open configuration %s: %w", destinationPath, openError)
	}
	if _, writeError := fileHandle.WriteString(defaultConfigurationTemplate); writeError != nil {
		_ = fileHandle.Close()
		return "", fmt.Errorf("write configuration to %s: %w", destinationPath, writeError)
	}
	if closeError := fileHandle.Close(); closeError != nil {
		return "", fmt.Errorf("close configuration %s: %w", destinationPath, closeError)
	}
	return destinationPath, nil
}

func initDestination(options InitOptions) (string, error) {
	switch options.Target {
	case InitTargetLocal, "":
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("determine working directory for configuration: %w", err)
			}
			workingDirectory = current
		}
		return filepath.Join(workingDirectory, utils.ConfigFileName), nil
	case InitTargetGlobal:
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory for configuration: %w", err)
		}
		configurationDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
		if err := os.MkdirAll(configurationDirectory, 0o755); err != nil {
			return "", fmt.Errorf("create configuration directory %s: %w", configurationDirectory, err)
		}
		return filepath.Join(configurationDirectory, utils.ConfigFileName), nil
	default:
		return "", fmt.Errorf("unsupported init target %q", options.Target)
	}
}
