package utils

const (
	// ConfigFileName is the name of the application configuration file.
	ConfigFileName = ".dirscope.yaml"
	// GlobalConfigDirectoryName is the directory under the home directory holding the global configuration.
	GlobalConfigDirectoryName = ".dirscope"
)

const (
	// LoggerInitializationFailedMessageFormat reports a logger that could not be constructed.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes the error that ended the application.
	ApplicationExecutionFailedMessage = "dirscope failed"
)
