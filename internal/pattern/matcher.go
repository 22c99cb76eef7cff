// Package pattern compiles and evaluates the inclusion and exclusion rules applied to every
// entry of a traversal.
package pattern

import (
	"fmt"
	"path"

	"github.com/dlclark/regexp2"

	"github.com/temirov/dirscope/internal/types"
)

// Scope selects the target a rule is matched against.
type Scope string

const (
	// ScopeName matches the base name of the entry.
	ScopeName Scope = "name"
	// ScopePath matches the root-relative path of the entry.
	ScopePath Scope = "path"
	// ScopeNameOrPath matches when either the base name or the relative path matches.
	ScopeNameOrPath Scope = "name-or-path"
)

// Polarity tells whether a rule keeps or removes the entries it matches.
type Polarity string

const (
	PolarityInclude Polarity = "include"
	PolarityExclude Polarity = "exclude"
)

const (
	configurationSource = "configuration"

	reasonDefault           = "no rule matched"
	reasonIncludeFormat     = "include pattern %q"
	reasonExcludeFormat     = "exclude pattern %q"
	reasonIgnoreFileFormat  = "ignore rule %q from %s"
	reasonExtensionFormat   = "excluded extension %q"
	reasonDirectoryFormat   = "excluded directory %q"
	reasonNegatedRuleFormat = "negated ignore rule %q from %s"
)

// Rule is one compiled include or exclude pattern.
type Rule struct {
	Kind          types.PatternKind
	Pattern       string
	Scope         Scope
	Polarity      Polarity
	DirectoryOnly bool

	globExpression  string
	regexExpression *regexp2.Regexp
}

// CompileRule compiles a single include or exclude pattern.
func CompileRule(kind types.PatternKind, rawPattern string, polarity Polarity) (Rule, error) {
	rule := Rule{Kind: kind, Pattern: rawPattern, Polarity: polarity}
	switch kind {
	case types.PatternKindRegex:
		compiledExpression, compileError := compileRegex(rawPattern)
		if compileError != nil {
			return Rule{}, &types.ConfigError{Pattern: rawPattern, Source: configurationSource, Reason: "malformed regular expression", Err: compileError}
		}
		rule.Scope = ScopeNameOrPath
		rule.regexExpression = compiledExpression
	default:
		shape := parseGlob(rawPattern)
		if !validGlob(shape.expression) {
			return Rule{}, &types.ConfigError{Pattern: rawPattern, Source: configurationSource, Reason: invalidGlobReason}
		}
		rule.Kind = types.PatternKindGlob
		rule.Scope = ScopeName
		if shape.anchored {
			rule.Scope = ScopePath
		}
		rule.DirectoryOnly = shape.directoryOnly
		rule.globExpression = shape.expression
	}
	return rule, nil
}

// Matches reports whether the rule applies to the entry at relativePath.
func (rule Rule) Matches(relativePath string, isDirectory bool) bool {
	if rule.DirectoryOnly && !isDirectory {
		return false
	}
	baseName := path.Base(relativePath)
	switch rule.Scope {
	case ScopePath:
		return rule.matchTarget(relativePath)
	case ScopeNameOrPath:
		return rule.matchTarget(relativePath) || rule.matchTarget(baseName)
	default:
		return rule.matchTarget(baseName)
	}
}

func (rule Rule) matchTarget(target string) bool {
	if rule.regexExpression != nil {
		return searchRegex(rule.regexExpression, target)
	}
	return matchGlob(rule.globExpression, target)
}

// Decision is the outcome of evaluating every rule against one entry.
type Decision struct {
	Included bool
	Reason   string
}

// Matcher evaluates the configured rules. A Matcher is immutable; WithIgnoreRules returns a
// new Matcher, so one value may be shared by concurrent traversals.
type Matcher struct {
	includeRules        []Rule
	excludeRules        []Rule
	ignoreRules         []IgnoreRule
	excludedExtensions  map[string]struct{}
	excludedDirectories map[string]struct{}
	precedence          types.IncludePrecedence
}

// Compile validates the configuration and compiles every include and exclude pattern.
// Malformed patterns are reported as *types.ConfigError before any filesystem access.
func Compile(configuration types.Configuration) (*Matcher, error) {
	if validationError := configuration.Validate(); validationError != nil {
		return nil, validationError
	}
	normalized := configuration.Normalized()
	matcher := &Matcher{
		excludedExtensions:  make(map[string]struct{}, len(normalized.ExcludeExtensions)),
		excludedDirectories: make(map[string]struct{}, len(normalized.ExcludeDirectories)),
		precedence:          normalized.IncludePrecedence,
	}
	for _, includePattern := range normalized.IncludePatterns {
		rule, compileError := CompileRule(normalized.PatternKind, includePattern, PolarityInclude)
		if compileError != nil {
			return nil, compileError
		}
		matcher.includeRules = append(matcher.includeRules, rule)
	}
	for _, excludePattern := range normalized.ExcludePatterns {
		rule, compileError := CompileRule(normalized.PatternKind, excludePattern, PolarityExclude)
		if compileError != nil {
			return nil, compileError
		}
		matcher.excludeRules = append(matcher.excludeRules, rule)
	}
	for _, extension := range normalized.ExcludeExtensions {
		matcher.excludedExtensions[extension] = struct{}{}
	}
	for _, directoryName := range normalized.ExcludeDirectories {
		matcher.excludedDirectories[directoryName] = struct{}{}
	}
	return matcher, nil
}

// WithIgnoreRules returns a Matcher that evaluates additionalRules after the rules already held.
// The receiver is left untouched.
func (matcher *Matcher) WithIgnoreRules(additionalRules []IgnoreRule) *Matcher {
	if len(additionalRules) == 0 {
		return matcher
	}
	extended := *matcher
	extended.ignoreRules = make([]IgnoreRule, 0, len(matcher.ignoreRules)+len(additionalRules))
	extended.ignoreRules = append(extended.ignoreRules, matcher.ignoreRules...)
	extended.ignoreRules = append(extended.ignoreRules, additionalRules...)
	return &extended
}

// Decide evaluates the rules against the entry at the slash-separated, root-relative path.
func (matcher *Matcher) Decide(relativePath string, isDirectory bool) Decision {
	if matcher.precedence != types.IgnoreFileOverridesInclude {
		if includeRule, matched := matcher.matchingInclude(relativePath, isDirectory); matched {
			return Decision{Included: true, Reason: fmt.Sprintf(reasonIncludeFormat, includeRule.Pattern)}
		}
	}

	ignoreRule, ignoreMatched := matcher.lastMatchingIgnoreRule(relativePath, isDirectory)
	if ignoreMatched && !ignoreRule.Negated {
		return Decision{Included: false, Reason: fmt.Sprintf(reasonIgnoreFileFormat, ignoreRule.Pattern, ignoreRule.SourcePath)}
	}

	if matcher.precedence == types.IgnoreFileOverridesInclude {
		if includeRule, matched := matcher.matchingInclude(relativePath, isDirectory); matched {
			return Decision{Included: true, Reason: fmt.Sprintf(reasonIncludeFormat, includeRule.Pattern)}
		}
	}

	baseName := path.Base(relativePath)
	if isDirectory {
		if _, excluded := matcher.excludedDirectories[baseName]; excluded {
			return Decision{Included: false, Reason: fmt.Sprintf(reasonDirectoryFormat, baseName)}
		}
	} else {
		extension := types.ExtensionOf(baseName)
		if _, excluded := matcher.excludedExtensions[extension]; excluded {
			return Decision{Included: false, Reason: fmt.Sprintf(reasonExtensionFormat, extension)}
		}
	}

	for _, excludeRule := range matcher.excludeRules {
		if excludeRule.Matches(relativePath, isDirectory) {
			return Decision{Included: false, Reason: fmt.Sprintf(reasonExcludeFormat, excludeRule.Pattern)}
		}
	}

	if ignoreMatched {
		return Decision{Included: true, Reason: fmt.Sprintf(reasonNegatedRuleFormat, ignoreRule.Pattern, ignoreRule.SourcePath)}
	}
	return Decision{Included: true, Reason: reasonDefault}
}

func (matcher *Matcher) matchingInclude(relativePath string, isDirectory bool) (Rule, bool) {
	for _, includeRule := range matcher.includeRules {
		if includeRule.Matches(relativePath, isDirectory) {
			return includeRule, true
		}
	}
	return Rule{}, false
}

// lastMatchingIgnoreRule returns the last ignore rule matching the entry.
// Rules are held parent files first, each file top to bottom, so the last match is the most specific.
func (matcher *Matcher) lastMatchingIgnoreRule(relativePath string, isDirectory bool) (IgnoreRule, bool) {
	for ruleIndex := len(matcher.ignoreRules) - 1; ruleIndex >= 0; ruleIndex-- {
		if matcher.ignoreRules[ruleIndex].Matches(relativePath, isDirectory) {
			return matcher.ignoreRules[ruleIndex], true
		}
	}
	return IgnoreRule{}, false
}
