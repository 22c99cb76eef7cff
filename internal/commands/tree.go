// Package commands contains the traversal engine that turns a directory into a tree.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/temirov/dirscope/internal/config"
	"github.com/temirov/dirscope/internal/gitstatus"
	"github.com/temirov/dirscope/internal/pattern"
	"github.com/temirov/dirscope/internal/stats"
	"github.com/temirov/dirscope/internal/types"
	"github.com/temirov/dirscope/internal/utils"
)

const (
	// errorAbsolutePathFormat is used when the absolute path cannot be determined.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	// errorBuildTreeFormat is used when building the tree fails.
	errorBuildTreeFormat = "building tree for %s: %w"
	// errorRootPathFormat is used when the root path is missing or not a directory.
	errorRootPathFormat = "%s: %w"
	// errorStatRootFormat is used when the root path cannot be inspected.
	errorStatRootFormat = "inspecting %s: %w"

	warningReadDirectory   = "skipping unreadable directory"
	warningEntryMetadata   = "entry metadata unavailable"
	warningIgnoreFile      = "skipping unreadable ignore file"
	warningGitStatus       = "git status unavailable"
	warningStatistics      = "statistics unavailable"
	debugExcludedEntry     = "excluded"
	debugTruncatedEntry    = "truncated"
	fieldPath              = "path"
	fieldReason            = "reason"
	entryUnavailableFormat = "%w: %w"
)

// ValidateRootPath resolves rootPath to an absolute directory path.
// It returns types.ErrNotFound or types.ErrNotADirectory wrapped with the path.
func ValidateRootPath(rootPath string) (types.ValidatedPath, error) {
	absolutePath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return types.ValidatedPath{}, fmt.Errorf(errorAbsolutePathFormat, rootPath, absolutePathError)
	}
	rootInfo, statError := os.Stat(absolutePath)
	if statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return types.ValidatedPath{}, fmt.Errorf(errorRootPathFormat, rootPath, types.ErrNotFound)
		}
		return types.ValidatedPath{}, fmt.Errorf(errorStatRootFormat, rootPath, statError)
	}
	if !rootInfo.IsDir() {
		return types.ValidatedPath{AbsolutePath: absolutePath}, fmt.Errorf(errorRootPathFormat, rootPath, types.ErrNotADirectory)
	}
	return types.ValidatedPath{AbsolutePath: absolutePath, IsDir: true}, nil
}

// Build walks rootPath and returns the resulting tree. Entries that cannot be read are kept with
// their statistics or listing marked unavailable; only an invalid root, a malformed ignore file
// or cancellation of ctx abort the build.
func (treeBuilder *TreeBuilder) Build(ctx context.Context, rootPath string) (*types.Tree, error) {
	if contextError := ctx.Err(); contextError != nil {
		return nil, contextError
	}
	validatedRoot, validationError := ValidateRootPath(rootPath)
	if validationError != nil {
		return nil, validationError
	}
	rootInfo, statError := os.Stat(validatedRoot.AbsolutePath)
	if statError != nil {
		return nil, fmt.Errorf(errorStatRootFormat, rootPath, statError)
	}

	rootMatcher := treeBuilder.matcher
	if treeBuilder.configuration.UseIgnoreFiles {
		extendedMatcher, extendError := treeBuilder.withDirectoryIgnoreRules(rootMatcher, validatedRoot.AbsolutePath, types.RootRelativePath)
		if extendError != nil {
			return nil, extendError
		}
		rootMatcher = extendedMatcher
	}

	walker := &treeWalker{
		builder:     treeBuilder,
		statOptions: stats.OptionsFromConfiguration(treeBuilder.configuration),
		workerSlots: semaphore.NewWeighted(int64(treeBuilder.workers - 1)),
	}
	if treeBuilder.configuration.GitStatus && treeBuilder.statusReader != nil {
		statuses, statusError := treeBuilder.statusReader.Read(ctx, validatedRoot.AbsolutePath)
		if statusError != nil {
			treeBuilder.logger.Warn(warningGitStatus, zap.String(fieldPath, validatedRoot.AbsolutePath), zap.Error(statusError))
		}
		walker.statuses = statuses
	}

	rootFrame := directoryFrame{
		absolutePath: validatedRoot.AbsolutePath,
		relativePath: types.RootRelativePath,
		name:         filepath.Base(validatedRoot.AbsolutePath),
		matcher:      rootMatcher,
	}
	rootNode, buildError := walker.buildDirectory(ctx, rootFrame, rootInfo)
	if buildError != nil {
		return nil, fmt.Errorf(errorBuildTreeFormat, rootPath, buildError)
	}
	return &types.Tree{RootPath: validatedRoot.AbsolutePath, Root: rootNode, Configuration: treeBuilder.configuration}, nil
}

// withDirectoryIgnoreRules appends the rules of the ignore files found in one directory.
// Unreadable ignore files are skipped with a warning; malformed patterns abort.
func (treeBuilder *TreeBuilder) withDirectoryIgnoreRules(matcher *pattern.Matcher, absoluteDirectoryPath string, relativeDirectoryPath string) (*pattern.Matcher, error) {
	directoryRules, loadError := config.LoadDirectoryIgnoreRules(absoluteDirectoryPath, relativeDirectoryPath, treeBuilder.configuration.IgnoreFileNames)
	if loadError != nil {
		var configError *types.ConfigError
		if errors.As(loadError, &configError) {
			return nil, loadError
		}
		treeBuilder.logger.Warn(warningIgnoreFile, zap.String(fieldPath, relativeDirectoryPath), zap.Error(loadError))
		return matcher, nil
	}
	return matcher.WithIgnoreRules(directoryRules), nil
}

// treeWalker holds the state of one Build call.
type treeWalker struct {
	builder     *TreeBuilder
	statOptions stats.Options
	statuses    gitstatus.Statuses
	workerSlots *semaphore.Weighted
	visited     atomic.Int64
}

// directoryFrame describes a directory about to be descended.
type directoryFrame struct {
	absolutePath string
	relativePath string
	name         string
	depth        int
	matcher      *pattern.Matcher
	ancestors    []fs.FileInfo
}

// childCandidate is an included child: either a finished node or a directory to descend.
type childCandidate struct {
	node    *types.TreeNode
	frame   directoryFrame
	info    fs.FileInfo
	descend bool
}

// buildDirectory lists one directory, builds its children and folds their aggregates.
// Child directories run on spare worker slots and inline otherwise; all of them are joined
// before the directory is sorted and aggregated.
func (walker *treeWalker) buildDirectory(ctx context.Context, frame directoryFrame, directoryInfo fs.FileInfo) (*types.TreeNode, error) {
	if contextError := ctx.Err(); contextError != nil {
		return nil, contextError
	}
	directoryNode := &types.TreeNode{
		RelativePath: frame.relativePath,
		Name:         frame.name,
		Type:         types.NodeTypeDirectory,
		Aggregate:    &types.Aggregate{},
	}

	directoryEntries, readDirectoryError := os.ReadDir(frame.absolutePath)
	if readDirectoryError != nil {
		directoryNode.Unavailable = true
		directoryNode.UnavailableReason = readDirectoryError.Error()
		walker.builder.logger.Warn(warningReadDirectory, zap.String(fieldPath, frame.relativePath), zap.Error(fmt.Errorf(entryUnavailableFormat, types.ErrEntryUnavailable, readDirectoryError)))
		return directoryNode, nil
	}

	childMatcher := frame.matcher
	if walker.builder.configuration.UseIgnoreFiles && frame.depth > 0 {
		extendedMatcher, extendError := walker.builder.withDirectoryIgnoreRules(childMatcher, frame.absolutePath, frame.relativePath)
		if extendError != nil {
			return nil, extendError
		}
		childMatcher = extendedMatcher
	}

	ancestors := append(frame.ancestors[:len(frame.ancestors):len(frame.ancestors)], directoryInfo)
	candidates := make([]childCandidate, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		candidate, included := walker.classify(frame, childMatcher, ancestors, directoryEntry)
		if included {
			candidates = append(candidates, candidate)
		}
	}

	children := make([]*types.TreeNode, len(candidates))
	group, groupContext := errgroup.WithContext(ctx)
	for candidateIndex, candidate := range candidates {
		candidateIndex, candidate := candidateIndex, candidate
		if !candidate.descend {
			children[candidateIndex] = candidate.node
			continue
		}
		if walker.workerSlots.TryAcquire(1) {
			group.Go(func() error {
				defer walker.workerSlots.Release(1)
				childNode, buildError := walker.buildDirectory(groupContext, candidate.frame, candidate.info)
				if buildError != nil {
					return buildError
				}
				children[candidateIndex] = childNode
				return nil
			})
			continue
		}
		childNode, buildError := walker.buildDirectory(groupContext, candidate.frame, candidate.info)
		if buildError != nil {
			_ = group.Wait()
			return nil, buildError
		}
		children[candidateIndex] = childNode
	}
	if waitError := group.Wait(); waitError != nil {
		return nil, waitError
	}

	SortTreeNodes(children, walker.builder.configuration.SortKey)
	for _, childNode := range children {
		directoryNode.Aggregate.Add(childNode.OwnAggregate())
	}
	if len(children) > 0 {
		directoryNode.Children = children
	}
	return directoryNode, nil
}

// classify applies the matcher to one directory entry and prepares its node.
func (walker *treeWalker) classify(frame directoryFrame, matcher *pattern.Matcher, ancestors []fs.FileInfo, directoryEntry fs.DirEntry) (childCandidate, bool) {
	builder := walker.builder
	entryName := directoryEntry.Name()
	absolutePath := filepath.Join(frame.absolutePath, entryName)
	relativePath := utils.JoinRelativePath(frame.relativePath, entryName)

	entryInfo, entryInfoError := directoryEntry.Info()
	isSymlink := directoryEntry.Type()&fs.ModeSymlink != 0
	isDirectory := directoryEntry.IsDir()
	linkTarget := ""
	followed := false
	if isSymlink {
		linkTarget, _ = os.Readlink(absolutePath)
		if builder.configuration.FollowSymlinks {
			targetInfo, targetError := os.Stat(absolutePath)
			if targetError == nil {
				entryInfo, entryInfoError = targetInfo, nil
				isDirectory = targetInfo.IsDir()
				followed = true
			} else {
				entryInfoError = targetError
			}
		}
	}

	decision := matcher.Decide(relativePath, isDirectory)
	if !decision.Included {
		builder.logger.Debug(debugExcludedEntry, zap.String(fieldPath, relativePath), zap.String(fieldReason, decision.Reason))
		return childCandidate{}, false
	}
	walker.reportVisited()

	if isDirectory {
		childDepth := frame.depth + 1
		maxDepth := builder.configuration.MaxDepth
		if maxDepth != nil && childDepth > *maxDepth {
			return childCandidate{node: truncatedDirectory(relativePath, entryName, types.TruncatedByDepth)}, true
		}
		if entryInfoError != nil {
			builder.logger.Warn(warningEntryMetadata, zap.String(fieldPath, relativePath), zap.Error(fmt.Errorf(entryUnavailableFormat, types.ErrEntryUnavailable, entryInfoError)))
		} else if revisitsAncestor(ancestors, entryInfo) {
			builder.logger.Debug(debugTruncatedEntry, zap.String(fieldPath, relativePath), zap.Error(types.ErrCycleDetected))
			return childCandidate{node: truncatedDirectory(relativePath, entryName, types.TruncatedByCycle)}, true
		}
		return childCandidate{
			descend: true,
			info:    entryInfo,
			frame: directoryFrame{
				absolutePath: absolutePath,
				relativePath: relativePath,
				name:         entryName,
				depth:        childDepth,
				matcher:      matcher,
				ancestors:    ancestors,
			},
		}, true
	}

	fileNode := &types.TreeNode{
		RelativePath: relativePath,
		Name:         entryName,
		Type:         types.NodeTypeFile,
		Extension:    types.ExtensionOf(entryName),
	}
	fileNode.Color = builder.colors.ForExtension(fileNode.Extension)
	if isSymlink && !followed {
		fileNode.Type = types.NodeTypeSymlink
		fileNode.LinkTarget = linkTarget
	}
	if walker.statOptions.Any() {
		if entryInfoError != nil {
			builder.logger.Warn(warningStatistics, zap.String(fieldPath, relativePath), zap.Error(fmt.Errorf(entryUnavailableFormat, types.ErrEntryUnavailable, entryInfoError)))
		}
		fileStats := builder.collector.Collect(absolutePath, entryInfo, entryInfoError, walker.statOptions)
		fileNode.Stats = &fileStats
	}
	if walker.statuses != nil {
		fileNode.GitStatus = walker.statuses[relativePath]
	}
	return childCandidate{node: fileNode}, true
}

func (walker *treeWalker) reportVisited() {
	visited := walker.visited.Add(1)
	if walker.builder.progress != nil {
		walker.builder.progress(visited)
	}
}

func truncatedDirectory(relativePath string, name string, reason string) *types.TreeNode {
	return &types.TreeNode{
		RelativePath:     relativePath,
		Name:             name,
		Type:             types.NodeTypeDirectory,
		Aggregate:        &types.Aggregate{},
		Truncated:        true,
		TruncationReason: reason,
	}
}

// revisitsAncestor reports whether info identifies a directory already on the descent path.
func revisitsAncestor(ancestors []fs.FileInfo, info fs.FileInfo) bool {
	for _, ancestorInfo := range ancestors {
		if ancestorInfo != nil && os.SameFile(ancestorInfo, info) {
			return true
		}
	}
	return false
}
