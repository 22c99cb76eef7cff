package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/temirov/dirscope/internal/types"
	"github.com/temirov/dirscope/internal/utils"
)

const (
	configurationType       = "yaml"
	environmentPrefix       = "DIRSCOPE"
	unlimitedDepth          = -1
	errorWorkingDirFormat   = "determine working directory: %w"
	errorResolvePathFormat  = "resolve configuration path %s: %w"
	errorStatConfigFormat   = "stat configuration %s: %w"
	errorConfigIsDirFormat  = "configuration path %s is a directory"
	errorReadConfigFormat   = "read configuration from %s: %w"
	errorDecodeConfigFormat = "decode configuration: %w"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
	// SkipGlobal ignores the configuration stored in the home directory.
	SkipGlobal bool
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	Tree    CommandConfiguration `mapstructure:"tree"`
	Compare CommandConfiguration `mapstructure:"compare"`
	Verbose bool                 `mapstructure:"verbose"`
	// Sources lists the configuration files that were merged, global first.
	Sources []string `mapstructure:"-"`
}

// CommandConfiguration defines options shared by the tree and compare commands.
type CommandConfiguration struct {
	Format    string            `mapstructure:"format"`
	FullPath  bool              `mapstructure:"full_path"`
	Clipboard bool              `mapstructure:"clipboard"`
	Workers   int               `mapstructure:"workers"`
	Scan      ScanConfiguration `mapstructure:"scan"`
}

// ScanConfiguration configures filtering, statistics and ordering of a traversal.
type ScanConfiguration struct {
	ExcludeDirectories []string `mapstructure:"exclude"`
	ExcludeExtensions  []string `mapstructure:"exclude_extensions"`
	ExcludePatterns    []string `mapstructure:"exclude_patterns"`
	IncludePatterns    []string `mapstructure:"include_patterns"`
	Regex              bool     `mapstructure:"regex"`
	UseIgnoreFiles     bool     `mapstructure:"use_ignore_files"`
	IgnoreFiles        []string `mapstructure:"ignore_files"`
	IncludeGit         bool     `mapstructure:"include_git"`
	IncludePrecedence  string   `mapstructure:"include_precedence"`
	Depth              int      `mapstructure:"depth"`
	Sort               string   `mapstructure:"sort"`
	Size               bool     `mapstructure:"size"`
	Lines              bool     `mapstructure:"lines"`
	Mtime              bool     `mapstructure:"mtime"`
	FollowSymlinks     bool     `mapstructure:"follow_symlinks"`
	GitStatus          bool     `mapstructure:"git_status"`
}

// Configuration converts the scan section into the traversal configuration.
// Sorting by a statistic collects that statistic.
func (scan ScanConfiguration) Configuration() types.Configuration {
	configuration := types.Configuration{
		IncludePatterns:    append([]string(nil), scan.IncludePatterns...),
		ExcludePatterns:    append([]string(nil), scan.ExcludePatterns...),
		PatternKind:        types.PatternKindGlob,
		UseIgnoreFiles:     scan.UseIgnoreFiles,
		IgnoreFileNames:    append([]string(nil), scan.IgnoreFiles...),
		ExcludeExtensions:  append([]string(nil), scan.ExcludeExtensions...),
		ExcludeDirectories: append([]string(nil), scan.ExcludeDirectories...),
		IncludePrecedence:  types.IncludePrecedence(scan.IncludePrecedence),
		CollectSize:        scan.Size,
		CollectLines:       scan.Lines,
		CollectMtime:       scan.Mtime,
		SortKey:            types.SortKey(scan.Sort),
		FollowSymlinks:     scan.FollowSymlinks,
		GitStatus:          scan.GitStatus,
	}
	if scan.Regex {
		configuration.PatternKind = types.PatternKindRegex
	}
	if scan.Depth >= 0 {
		configuration.MaxDepth = types.DepthLimit(scan.Depth)
	}
	switch configuration.SortKey {
	case types.SortBySize:
		configuration.CollectSize = true
	case types.SortByLines:
		configuration.CollectLines = true
	case types.SortByModified:
		configuration.CollectMtime = true
	}
	if !scan.IncludeGit && !utils.ContainsString(configuration.ExcludeDirectories, types.GitDirectoryName) {
		configuration.ExcludeDirectories = append(configuration.ExcludeDirectories, types.GitDirectoryName)
	}
	return configuration
}

// LoadApplicationConfiguration merges the global file, then the local or explicit file, over the
// built-in defaults. Environment variables prefixed with DIRSCOPE_ override both.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf(errorWorkingDirFormat, err)
		}
		workingDirectory = currentDirectory
	}

	reader := viper.New()
	reader.SetConfigType(configurationType)
	applyDefaults(reader)
	reader.SetEnvPrefix(environmentPrefix)
	reader.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	reader.AutomaticEnv()

	type configurationCandidate struct {
		path     string
		required bool
	}
	var candidates []configurationCandidate
	if !options.SkipGlobal {
		if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
			candidates = append(candidates, configurationCandidate{path: filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)})
		}
	}
	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	candidates = append(candidates, configurationCandidate{path: localPath, required: options.ExplicitFilePath != ""})

	var mergedSources []string
	for _, candidate := range candidates {
		merged, mergeErr := mergeConfigurationFile(reader, candidate.path, candidate.required)
		if mergeErr != nil {
			return ApplicationConfiguration{}, mergeErr
		}
		if merged {
			mergedSources = append(mergedSources, candidate.path)
		}
	}

	var configuration ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&configuration); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorDecodeConfigFormat, decodeErr)
	}
	configuration.Sources = mergedSources
	return configuration, nil
}

func applyDefaults(reader *viper.Viper) {
	for _, section := range []string{types.CommandTree, types.CommandCompare} {
		reader.SetDefault(section+".format", types.FormatRaw)
		reader.SetDefault(section+".full_path", false)
		reader.SetDefault(section+".clipboard", false)
		reader.SetDefault(section+".workers", 0)
		reader.SetDefault(section+".scan.exclude", []string{})
		reader.SetDefault(section+".scan.exclude_extensions", []string{})
		reader.SetDefault(section+".scan.exclude_patterns", []string{})
		reader.SetDefault(section+".scan.include_patterns", []string{})
		reader.SetDefault(section+".scan.regex", false)
		reader.SetDefault(section+".scan.use_ignore_files", true)
		reader.SetDefault(section+".scan.ignore_files", types.DefaultIgnoreFileNames())
		reader.SetDefault(section+".scan.include_git", false)
		reader.SetDefault(section+".scan.include_precedence", string(types.IncludeOverridesAll))
		reader.SetDefault(section+".scan.depth", unlimitedDepth)
		reader.SetDefault(section+".scan.sort", string(types.SortByName))
		reader.SetDefault(section+".scan.size", false)
		reader.SetDefault(section+".scan.lines", false)
		reader.SetDefault(section+".scan.mtime", false)
		reader.SetDefault(section+".scan.follow_symlinks", false)
		reader.SetDefault(section+".scan.git_status", false)
	}
	reader.SetDefault("verbose", false)
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath == "" {
		return filepath.Join(workingDirectory, utils.ConfigFileName), nil
	}
	if filepath.IsAbs(explicitPath) {
		return explicitPath, nil
	}
	if workingDirectory == "" {
		absolute, err := filepath.Abs(explicitPath)
		if err != nil {
			return "", fmt.Errorf(errorResolvePathFormat, explicitPath, err)
		}
		return absolute, nil
	}
	return filepath.Join(workingDirectory, explicitPath), nil
}

// mergeConfigurationFile merges the file at path into reader. A missing file is skipped unless
// it was requested explicitly.
func mergeConfigurationFile(reader *viper.Viper, path string, required bool) (bool, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if errors.Is(statErr, fs.ErrNotExist) && !required {
			return false, nil
		}
		return false, fmt.Errorf(errorStatConfigFormat, path, statErr)
	}
	if info.IsDir() {
		return false, fmt.Errorf(errorConfigIsDirFormat, path)
	}
	reader.SetConfigFile(path)
	if readErr := reader.MergeInConfig(); readErr != nil {
		return false, fmt.Errorf(errorReadConfigFormat, path, readErr)
	}
	return true, nil
}
