package cli

import (
	"bytes"
	"context"
	"os"
	"sync/atomic"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/dirscope/internal/commands"
	"github.com/temirov/dirscope/internal/compare"
	"github.com/temirov/dirscope/internal/config"
	"github.com/temirov/dirscope/internal/output"
	"github.com/temirov/dirscope/internal/progress"
	"github.com/temirov/dirscope/internal/types"
)

const (
	scanningLabel  = "scanning"
	comparingLabel = "comparing"
	fieldLeft      = "left"
	fieldRight     = "right"
	fieldSummary   = "summary"
)

func isSupportedFormat(format string) bool {
	return output.IsSupportedFormat(format)
}

func isTerminal(file *os.File) bool {
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

// runTree builds and renders the tree of rootPath.
func (app *application) runTree(ctx context.Context, rootPath string, commandConfiguration config.CommandConfiguration, showProgress bool) error {
	defer app.close()
	reporter := app.newReporter(scanningLabel, showProgress)
	treeBuilder, builderError := commands.NewTreeBuilder(commandConfiguration.Scan.Configuration(), commands.TreeBuilderOptions{
		Logger:   app.logger,
		Workers:  commandConfiguration.Workers,
		Progress: reporter.Update,
	})
	if builderError != nil {
		return builderError
	}
	tree, buildError := treeBuilder.Build(ctx, rootPath)
	reporter.Finish()
	if buildError != nil {
		return buildError
	}

	var rendered bytes.Buffer
	if renderError := output.RenderTree(&rendered, tree, app.renderOptions(commandConfiguration)); renderError != nil {
		return renderError
	}
	return app.emit(rendered.Bytes(), commandConfiguration.Clipboard)
}

// runCompare builds both trees concurrently with the same configuration and renders their comparison.
func (app *application) runCompare(ctx context.Context, leftPath string, rightPath string, commandConfiguration config.CommandConfiguration, showProgress bool) error {
	defer app.close()
	reporter := app.newReporter(comparingLabel, showProgress)
	var leftVisited, rightVisited atomic.Int64
	newBuilder := func(visited *atomic.Int64) (*commands.TreeBuilder, error) {
		return commands.NewTreeBuilder(commandConfiguration.Scan.Configuration(), commands.TreeBuilderOptions{
			Logger:  app.logger,
			Workers: commandConfiguration.Workers,
			Progress: func(count int64) {
				visited.Store(count)
				reporter.Update(leftVisited.Load() + rightVisited.Load())
			},
		})
	}
	leftBuilder, builderError := newBuilder(&leftVisited)
	if builderError != nil {
		return builderError
	}
	rightBuilder, builderError := newBuilder(&rightVisited)
	if builderError != nil {
		return builderError
	}

	var leftTree, rightTree *types.Tree
	group, groupContext := errgroup.WithContext(ctx)
	group.Go(func() error {
		tree, buildError := leftBuilder.Build(groupContext, leftPath)
		leftTree = tree
		return buildError
	})
	group.Go(func() error {
		tree, buildError := rightBuilder.Build(groupContext, rightPath)
		rightTree = tree
		return buildError
	})
	waitError := group.Wait()
	reporter.Finish()
	if waitError != nil {
		return waitError
	}

	comparisonTree, compareError := compare.Compare(leftTree, rightTree)
	if compareError != nil {
		return compareError
	}
	app.logger.Debug("comparison finished",
		zap.String(fieldLeft, leftTree.RootPath),
		zap.String(fieldRight, rightTree.RootPath),
		zap.Any(fieldSummary, comparisonTree.Summary))

	var rendered bytes.Buffer
	if renderError := output.RenderComparison(&rendered, comparisonTree, app.renderOptions(commandConfiguration)); renderError != nil {
		return renderError
	}
	return app.emit(rendered.Bytes(), commandConfiguration.Clipboard)
}

func (app *application) newReporter(label string, enabled bool) *progress.Reporter {
	if !enabled {
		return progress.NewReporter(nil, label, false, 0)
	}
	if stderrFile, isFile := app.options.Stderr.(*os.File); isFile {
		return progress.NewTerminalReporter(stderrFile, label)
	}
	return progress.NewReporter(nil, label, false, 0)
}

func (app *application) renderOptions(commandConfiguration config.CommandConfiguration) output.Options {
	return output.Options{
		Format:   commandConfiguration.Format,
		FullPath: commandConfiguration.FullPath,
		Color:    app.options.StdoutIsTerminal && !commandConfiguration.Clipboard,
	}
}

// emit writes the rendered output and copies it to the clipboard when requested.
// A clipboard failure is logged; the output was already written.
func (app *application) emit(rendered []byte, copyToClipboard bool) error {
	if _, writeError := app.options.Stdout.Write(rendered); writeError != nil {
		return writeError
	}
	if !copyToClipboard {
		return nil
	}
	if copyError := app.options.Copier.Copy(string(rendered)); copyError != nil {
		app.logger.Warn(warningClipboardFailed, zap.Error(copyError))
	}
	return nil
}
