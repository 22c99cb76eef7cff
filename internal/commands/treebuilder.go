package commands

import (
	"context"
	"runtime"

	"go.uber.org/zap"

	"github.com/temirov/dirscope/internal/gitstatus"
	"github.com/temirov/dirscope/internal/palette"
	"github.com/temirov/dirscope/internal/pattern"
	"github.com/temirov/dirscope/internal/stats"
	"github.com/temirov/dirscope/internal/types"
)

// StatusReader supplies version control markers for the files below a root directory.
type StatusReader interface {
	Read(ctx context.Context, rootPath string) (gitstatus.Statuses, error)
}

// TreeBuilderOptions carries the collaborators of a TreeBuilder.
type TreeBuilderOptions struct {
	Logger *zap.Logger
	// Workers bounds the number of goroutines building sibling subtrees. Zero selects the number of CPUs;
	// one builds sequentially.
	Workers int
	// Progress receives the number of entries visited so far. It may be called from several goroutines.
	Progress     func(visited int64)
	StatusReader StatusReader
}

// TreeBuilder builds directory trees using one validated configuration.
// A TreeBuilder holds no per-build state and may run several builds concurrently.
type TreeBuilder struct {
	configuration types.Configuration
	matcher       *pattern.Matcher
	collector     *stats.Collector
	colors        *palette.Assigner
	logger        *zap.Logger
	workers       int
	progress      func(visited int64)
	statusReader  StatusReader
}

// NewTreeBuilder validates the configuration and compiles its patterns.
// Invalid configurations are reported as *types.ConfigError.
func NewTreeBuilder(configuration types.Configuration, options TreeBuilderOptions) (*TreeBuilder, error) {
	normalized := configuration.Normalized()
	matcher, compileError := pattern.Compile(normalized)
	if compileError != nil {
		return nil, compileError
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := options.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	statusReader := options.StatusReader
	if statusReader == nil && normalized.GitStatus {
		statusReader = gitstatus.NewReader()
	}
	return &TreeBuilder{
		configuration: normalized,
		matcher:       matcher,
		collector:     stats.NewCollector(),
		colors:        palette.NewAssigner(),
		logger:        logger,
		workers:       workers,
		progress:      options.Progress,
		statusReader:  statusReader,
	}, nil
}

// Configuration returns the normalized configuration the builder applies.
func (treeBuilder *TreeBuilder) Configuration() types.Configuration {
	return treeBuilder.configuration
}
