package cli

import (
	"github.com/spf13/pflag"

	"github.com/temirov/dirscope/internal/config"
)

const (
	excludeFlagName           = "exclude"
	excludeExtensionFlagName  = "exclude-ext"
	excludePatternFlagName    = "exclude-pattern"
	includePatternFlagName    = "include-pattern"
	regexFlagName             = "regex"
	ignoreFileFlagName        = "ignore-file"
	noIgnoreFlagName          = "no-ignore"
	includeGitFlagName        = "git"
	depthFlagName             = "depth"
	sortFlagName              = "sort"
	sizeFlagName              = "size"
	linesFlagName             = "lines"
	mtimeFlagName             = "mtime"
	followFlagName            = "follow"
	gitStatusFlagName         = "git-status"
	includePrecedenceFlagName = "include-precedence"
	formatFlagName            = "format"
	fullPathFlagName          = "full-path"
	workersFlagName           = "workers"
	progressFlagName          = "progress"
	clipboardFlagName         = "clipboard"

	excludeFlagDescription           = "exclude directories with this name (repeatable)"
	excludeExtensionFlagDescription  = "exclude files with this extension (repeatable)"
	excludePatternFlagDescription    = "exclude entries matching this pattern (repeatable)"
	includePatternFlagDescription    = "always keep entries matching this pattern (repeatable)"
	regexFlagDescription             = "interpret patterns as regular expressions instead of globs"
	ignoreFileFlagDescription        = "ignore file name consulted in every directory (repeatable)"
	noIgnoreFlagDescription          = "do not read ignore files"
	includeGitFlagDescription        = "include the .git directory"
	depthFlagDescription             = "maximum directory depth to descend, -1 for unlimited"
	sortFlagDescription              = "file ordering: name, type, size, lines or mtime"
	sizeFlagDescription              = "collect file sizes"
	linesFlagDescription             = "collect line counts of text files"
	mtimeFlagDescription             = "collect modification times"
	followFlagDescription            = "follow symbolic links"
	gitStatusFlagDescription         = "mark files with their git status"
	includePrecedenceFlagDescription = "what wins when an include pattern and an ignore file disagree: include or ignore-file"
	formatFlagDescription            = "output format: raw, json or yaml"
	fullPathFlagDescription          = "print full paths instead of names"
	workersFlagDescription           = "goroutines building sibling directories, 0 selects the CPU count"
	progressFlagDescription          = "report progress on stderr when it is a terminal"
	clipboardFlagDescription         = "copy the rendered output to the clipboard"
)

// commandFlags holds the flag values shared by the tree and compare commands.
type commandFlags struct {
	excludeDirectories []string
	excludeExtensions  []string
	excludePatterns    []string
	includePatterns    []string
	regex              bool
	ignoreFiles        []string
	noIgnore           bool
	includeGit         bool
	depth              int
	sort               string
	size               bool
	lines              bool
	mtime              bool
	follow             bool
	gitStatus          bool
	includePrecedence  string
	format             string
	fullPath           bool
	workers            int
	progress           bool
	clipboard          bool
}

func registerCommandFlags(flagSet *pflag.FlagSet, flags *commandFlags) {
	flagSet.StringArrayVarP(&flags.excludeDirectories, excludeFlagName, "e", nil, excludeFlagDescription)
	flagSet.StringArrayVarP(&flags.excludeExtensions, excludeExtensionFlagName, "x", nil, excludeExtensionFlagDescription)
	flagSet.StringArrayVarP(&flags.excludePatterns, excludePatternFlagName, "p", nil, excludePatternFlagDescription)
	flagSet.StringArrayVarP(&flags.includePatterns, includePatternFlagName, "i", nil, includePatternFlagDescription)
	registerToggle(flagSet, &flags.regex, regexFlagName, "r", regexFlagDescription)
	flagSet.StringArrayVarP(&flags.ignoreFiles, ignoreFileFlagName, "g", nil, ignoreFileFlagDescription)
	registerToggle(flagSet, &flags.noIgnore, noIgnoreFlagName, "", noIgnoreFlagDescription)
	registerToggle(flagSet, &flags.includeGit, includeGitFlagName, "", includeGitFlagDescription)
	flagSet.IntVarP(&flags.depth, depthFlagName, "d", -1, depthFlagDescription)
	flagSet.StringVar(&flags.sort, sortFlagName, "", sortFlagDescription)
	registerToggle(flagSet, &flags.size, sizeFlagName, "", sizeFlagDescription)
	registerToggle(flagSet, &flags.lines, linesFlagName, "", linesFlagDescription)
	registerToggle(flagSet, &flags.mtime, mtimeFlagName, "", mtimeFlagDescription)
	registerToggle(flagSet, &flags.follow, followFlagName, "L", followFlagDescription)
	registerToggle(flagSet, &flags.gitStatus, gitStatusFlagName, "G", gitStatusFlagDescription)
	flagSet.StringVar(&flags.includePrecedence, includePrecedenceFlagName, "", includePrecedenceFlagDescription)
	flagSet.StringVar(&flags.format, formatFlagName, "", formatFlagDescription)
	registerToggle(flagSet, &flags.fullPath, fullPathFlagName, "l", fullPathFlagDescription)
	flagSet.IntVar(&flags.workers, workersFlagName, 0, workersFlagDescription)
	registerToggle(flagSet, &flags.progress, progressFlagName, "", progressFlagDescription)
	registerToggle(flagSet, &flags.clipboard, clipboardFlagName, "", clipboardFlagDescription)
}

// overlay returns configured with every explicitly set flag applied on top.
// Repeatable flags replace the configured list rather than extending it.
func (flags *commandFlags) overlay(flagSet *pflag.FlagSet, configured config.CommandConfiguration) config.CommandConfiguration {
	result := configured
	scan := &result.Scan
	changed := flagSet.Changed
	if changed(excludeFlagName) {
		scan.ExcludeDirectories = flags.excludeDirectories
	}
	if changed(excludeExtensionFlagName) {
		scan.ExcludeExtensions = flags.excludeExtensions
	}
	if changed(excludePatternFlagName) {
		scan.ExcludePatterns = flags.excludePatterns
	}
	if changed(includePatternFlagName) {
		scan.IncludePatterns = flags.includePatterns
	}
	if changed(regexFlagName) {
		scan.Regex = flags.regex
	}
	if changed(ignoreFileFlagName) {
		scan.IgnoreFiles = flags.ignoreFiles
		scan.UseIgnoreFiles = true
	}
	if changed(noIgnoreFlagName) {
		scan.UseIgnoreFiles = !flags.noIgnore
	}
	if changed(includeGitFlagName) {
		scan.IncludeGit = flags.includeGit
	}
	if changed(depthFlagName) {
		scan.Depth = flags.depth
	}
	if changed(sortFlagName) {
		scan.Sort = flags.sort
	}
	if changed(sizeFlagName) {
		scan.Size = flags.size
	}
	if changed(linesFlagName) {
		scan.Lines = flags.lines
	}
	if changed(mtimeFlagName) {
		scan.Mtime = flags.mtime
	}
	if changed(followFlagName) {
		scan.FollowSymlinks = flags.follow
	}
	if changed(gitStatusFlagName) {
		scan.GitStatus = flags.gitStatus
	}
	if changed(includePrecedenceFlagName) {
		scan.IncludePrecedence = flags.includePrecedence
	}
	if changed(formatFlagName) {
		result.Format = flags.format
	}
	if changed(fullPathFlagName) {
		result.FullPath = flags.fullPath
	}
	if changed(workersFlagName) {
		result.Workers = flags.workers
	}
	if changed(clipboardFlagName) {
		result.Clipboard = flags.clipboard
	}
	return result
}
