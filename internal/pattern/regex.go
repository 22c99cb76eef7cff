package pattern

import (
	"time"

	"github.com/dlclark/regexp2"
)

const regexMatchTimeout = 2 * time.Second

func compileRegex(expression string) (*regexp2.Regexp, error) {
	compiledExpression, compileError := regexp2.Compile(expression, regexp2.None)
	if compileError != nil {
		return nil, compileError
	}
	compiledExpression.MatchTimeout = regexMatchTimeout
	return compiledExpression, nil
}

// searchRegex reports whether the expression matches anywhere in target.
// A match that exceeds the timeout counts as no match.
func searchRegex(compiledExpression *regexp2.Regexp, target string) bool {
	isMatched, matchError := compiledExpression.MatchString(target)
	return matchError == nil && isMatched
}
