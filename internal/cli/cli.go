// Package cli provides the command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/dirscope/internal/config"
	"github.com/temirov/dirscope/internal/services/clipboard"
	"github.com/temirov/dirscope/internal/types"
	"github.com/temirov/dirscope/internal/utils"
)

const (
	rootUse              = "dirscope"
	rootShortDescription = "dirscope analyzes directory structures"
	rootLongDescription  = `dirscope walks a directory, filters it with glob, regex and ignore-file rules,
collects per-file statistics and renders the result as a tree.
Use compare to diff two directories and init to write a configuration file.`
	versionFlagName        = "version"
	versionFlagDescription = "display application version"
	versionTemplate        = "dirscope version: %s\n"
	verboseFlagName        = "verbose"
	verboseFlagDescription = "log filtering decisions and skipped entries"
	configFlagName         = "config"
	configFlagDescription  = "configuration file to merge over the global configuration"

	treeUse              = "tree [path]"
	treeAlias            = "t"
	treeShortDescription = "display a directory tree (" + treeAlias + ")"
	treeLongDescription  = `Render the directory tree of path, the working directory by default.
Flags override the tree section of the configuration file only when they are set.`
	treeUsageExample = `  # Tree with line counts, largest files first
  dirscope tree --lines --sort lines ./internal

  # Two levels deep, ignoring test files, as YAML
  dirscope tree -d 1 -p '*_test.go' --format yaml .`

	compareUse              = "compare <left> <right>"
	compareAlias            = "c"
	compareShortDescription = "compare two directory trees (" + compareAlias + ")"
	compareLongDescription  = `Build the trees of left and right with the same filters and report entries
that were added, removed or modified.`
	compareUsageExample = `  # Compare two releases by size and line count
  dirscope compare --size --lines ./v1 ./v2`

	initUse                = "init"
	initShortDescription   = "write a default configuration file"
	initGlobalFlagName     = "global"
	initGlobalDescription  = "write the configuration to the home directory"
	initForceFlagName      = "force"
	initForceDescription   = "overwrite an existing configuration file"
	initCompletedFormat    = "Configuration written to %s\n"
	defaultPath            = "."
	invalidFormatMessage   = "invalid format value '%s'"
	loggerFailureFormat    = "create logger: %w"
	warningClipboardFailed = "clipboard copy failed"
)

// errVersionShown stops command execution after the version was printed.
var errVersionShown = errors.New("version shown")

// Options carries the collaborators of the command tree. Zero values select the process defaults.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Copier clipboard.Copier
	Logger *zap.Logger
	// WorkingDirectory anchors the local configuration file.
	WorkingDirectory string
	// SkipGlobalConfiguration ignores the configuration stored in the home directory.
	SkipGlobalConfiguration bool
	// StdoutIsTerminal enables colored raw output.
	StdoutIsTerminal bool
}

// application holds the state shared by the commands of one invocation.
type application struct {
	options           Options
	configurationPath string
	verbose           bool
	logger            *zap.Logger
	ownsLogger        bool
}

// Execute runs dirscope with the process arguments. Cancelling ctx stops an in-flight scan.
func Execute(ctx context.Context) error {
	rootCommand := NewRootCommand(Options{
		Stdout:           os.Stdout,
		Stderr:           os.Stderr,
		Copier:           clipboard.NewService(),
		StdoutIsTerminal: isTerminal(os.Stdout),
	})
	return ExecuteWithArguments(ctx, rootCommand, os.Args[1:])
}

// ExecuteWithArguments runs rootCommand with arguments after normalizing boolean flag values.
func ExecuteWithArguments(ctx context.Context, rootCommand *cobra.Command, arguments []string) error {
	rootCommand.SetArgs(normalizeToggleArguments(rootCommand, arguments))
	executionError := rootCommand.ExecuteContext(ctx)
	if errors.Is(executionError, errVersionShown) {
		return nil
	}
	return executionError
}

// NewRootCommand builds the root Cobra command.
func NewRootCommand(options Options) *cobra.Command {
	if options.Stdout == nil {
		options.Stdout = io.Discard
	}
	if options.Stderr == nil {
		options.Stderr = io.Discard
	}
	if options.Copier == nil {
		options.Copier = clipboard.NewService()
	}
	app := &application{options: options}
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				fmt.Fprintf(app.options.Stdout, versionTemplate, utils.GetApplicationVersion())
				return errVersionShown
			}
			return nil
		},
	}
	rootCommand.SetOut(options.Stdout)
	rootCommand.SetErr(options.Stderr)
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	registerToggle(rootCommand.PersistentFlags(), &app.verbose, verboseFlagName, "v", verboseFlagDescription)
	rootCommand.PersistentFlags().StringVar(&app.configurationPath, configFlagName, "", configFlagDescription)
	rootCommand.AddCommand(
		app.createTreeCommand(),
		app.createCompareCommand(),
		app.createInitCommand(),
	)
	return rootCommand
}

func (app *application) createTreeCommand() *cobra.Command {
	var flags commandFlags
	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			rootPath := defaultPath
			if len(arguments) == 1 {
				rootPath = arguments[0]
			}
			commandConfiguration, prepareError := app.prepare(command, &flags, types.CommandTree)
			if prepareError != nil {
				return prepareError
			}
			return app.runTree(command.Context(), rootPath, commandConfiguration, flags.progress)
		},
	}
	registerCommandFlags(treeCommand.Flags(), &flags)
	return treeCommand
}

func (app *application) createCompareCommand() *cobra.Command {
	var flags commandFlags
	compareCommand := &cobra.Command{
		Use:     compareUse,
		Aliases: []string{compareAlias},
		Short:   compareShortDescription,
		Long:    compareLongDescription,
		Example: compareUsageExample,
		Args:    cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, arguments []string) error {
			commandConfiguration, prepareError := app.prepare(command, &flags, types.CommandCompare)
			if prepareError != nil {
				return prepareError
			}
			return app.runCompare(command.Context(), arguments[0], arguments[1], commandConfiguration, flags.progress)
		},
	}
	registerCommandFlags(compareCommand.Flags(), &flags)
	return compareCommand
}

func (app *application) createInitCommand() *cobra.Command {
	var global bool
	var force bool
	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: app.options.WorkingDirectory,
			})
			if initError != nil {
				return initError
			}
			fmt.Fprintf(app.options.Stdout, initCompletedFormat, writtenPath)
			return nil
		},
	}
	registerToggle(initCommand.Flags(), &global, initGlobalFlagName, "", initGlobalDescription)
	registerToggle(initCommand.Flags(), &force, initForceFlagName, "", initForceDescription)
	return initCommand
}

// prepare loads the configuration files, applies the explicitly set flags and creates the logger.
func (app *application) prepare(command *cobra.Command, flags *commandFlags, commandName string) (config.CommandConfiguration, error) {
	applicationConfiguration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: app.options.WorkingDirectory,
		ExplicitFilePath: app.configurationPath,
		SkipGlobal:       app.options.SkipGlobalConfiguration,
	})
	if loadError != nil {
		return config.CommandConfiguration{}, loadError
	}
	verbose := applicationConfiguration.Verbose
	if command.Flags().Changed(verboseFlagName) {
		verbose = app.verbose
	}
	if loggerError := app.initializeLogger(verbose); loggerError != nil {
		return config.CommandConfiguration{}, loggerError
	}
	if len(applicationConfiguration.Sources) > 0 {
		app.logger.Debug("configuration loaded", zap.Strings("sources", applicationConfiguration.Sources))
	}

	commandConfiguration := applicationConfiguration.Tree
	if commandName == types.CommandCompare {
		commandConfiguration = applicationConfiguration.Compare
	}
	commandConfiguration = flags.overlay(command.Flags(), commandConfiguration)
	if commandConfiguration.Format == "" {
		commandConfiguration.Format = types.FormatRaw
	}
	if !isSupportedFormat(commandConfiguration.Format) {
		return config.CommandConfiguration{}, fmt.Errorf(invalidFormatMessage, commandConfiguration.Format)
	}
	return commandConfiguration, nil
}

func (app *application) initializeLogger(verbose bool) error {
	if app.options.Logger != nil {
		app.logger = app.options.Logger
		return nil
	}
	logger, loggerError := utils.NewApplicationLogger(verbose)
	if loggerError != nil {
		return fmt.Errorf(loggerFailureFormat, loggerError)
	}
	app.logger = logger
	app.ownsLogger = true
	return nil
}

func (app *application) close() {
	if app.ownsLogger && app.logger != nil {
		_ = app.logger.Sync()
	}
}
