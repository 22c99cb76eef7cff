package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	toggleFlagTypeName       = "bool"
	toggleTrueLiteral        = "true"
	toggleAcceptedLiterals   = "true, false, yes, no, on, off, 1, 0"
	errorToggleValueFormat   = "invalid boolean value %q for --%s; accepted values: %s"
	longFlagPrefix           = "--"
	flagAssignmentSeparator  = "="
	argumentsTerminator      = "--"
	shortFlagPrefix          = "-"
	normalizedToggleTemplate = "--%s=%s"
)

var toggleLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

// toggleValue is a boolean flag that also accepts yes/no and on/off literals.
type toggleValue struct {
	target   *bool
	flagName string
}

func (value *toggleValue) Set(input string) error {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		normalized = toggleTrueLiteral
	}
	parsed, known := toggleLiterals[normalized]
	if !known {
		return fmt.Errorf(errorToggleValueFormat, input, value.flagName, toggleAcceptedLiterals)
	}
	*value.target = parsed
	return nil
}

func (value *toggleValue) String() string {
	if value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *toggleValue) Type() string {
	return toggleFlagTypeName
}

// registerToggle adds a toggle flag. An empty shorthand registers the long form only.
func registerToggle(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, usage string) {
	*target = false
	flagSet.VarP(&toggleValue{target: target, flagName: name}, name, shorthand, usage)
	flag := flagSet.Lookup(name)
	flag.DefValue = strconv.FormatBool(false)
	flag.NoOptDefVal = toggleTrueLiteral
}

// normalizeToggleArguments rewrites "--flag value" into "--flag=value" for toggle flags followed by
// a boolean literal, since pflag only reads optional values after an equals sign.
func normalizeToggleArguments(command *cobra.Command, arguments []string) []string {
	toggleNames := map[string]struct{}{}
	collectToggleNames(command, toggleNames)
	if len(toggleNames) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	for argumentIndex := 0; argumentIndex < len(arguments); argumentIndex++ {
		currentArgument := arguments[argumentIndex]
		if currentArgument == argumentsTerminator {
			normalized = append(normalized, arguments[argumentIndex:]...)
			break
		}
		if strings.HasPrefix(currentArgument, longFlagPrefix) && !strings.Contains(currentArgument, flagAssignmentSeparator) && argumentIndex+1 < len(arguments) {
			flagName := strings.TrimPrefix(currentArgument, longFlagPrefix)
			nextArgument := arguments[argumentIndex+1]
			if _, isToggle := toggleNames[flagName]; isToggle && !strings.HasPrefix(nextArgument, shortFlagPrefix) {
				if _, isLiteral := toggleLiterals[strings.ToLower(strings.TrimSpace(nextArgument))]; isLiteral {
					normalized = append(normalized, fmt.Sprintf(normalizedToggleTemplate, flagName, nextArgument))
					argumentIndex++
					continue
				}
			}
		}
		normalized = append(normalized, currentArgument)
	}
	return normalized
}

func collectToggleNames(command *cobra.Command, target map[string]struct{}) {
	visit := func(flag *pflag.Flag) {
		if _, isToggle := flag.Value.(*toggleValue); isToggle {
			target[flag.Name] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(visit)
	command.Flags().VisitAll(visit)
	for _, childCommand := range command.Commands() {
		collectToggleNames(childCommand, target)
	}
}
