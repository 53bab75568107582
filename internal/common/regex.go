package common

import (
	"fmt"
	"regexp"
	"strings"
)

// CompileInsensitive compiles pattern case-insensitively unless the pattern
// already sets its own leading flags ("(?i)" or "(?-i)").
func CompileInsensitive(pattern string) (*regexp.Regexp, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidPattern)
	}
	expr := pattern
	if !strings.HasPrefix(expr, "(?i)") && !strings.HasPrefix(expr, "(?-i)") {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}
	return re, nil
}

// MatchRegex compiles and matches a case-insensitive pattern against a string.
// Returns an error if the pattern is invalid.
func MatchRegex(pattern, text string) (bool, error) {
	re, err := CompileInsensitive(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(text), nil
}
