package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// WildcardMarker terminates a group pattern that matches by number prefix.
const WildcardMarker = "*"

var (
	accountNamePattern  = regexp.MustCompile(`^number\d+$`)
	accountNumberFormat = regexp.MustCompile(`^\+\d{11}$`)
	groupNamePattern    = regexp.MustCompile(`^group\d+$`)
	numberPatternFormat = regexp.MustCompile(`^\+\d{2,11}\*?$`)
)

// Account is a registered endpoint. Accounts are replaced, never mutated.
type Account struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

// NewAccount creates an Account after checking the name and number shapes.
func NewAccount(name, number string) (Account, error) {
	if !accountNamePattern.MatchString(name) || !accountNumberFormat.MatchString(number) {
		return Account{}, fmt.Errorf("%w: invalid name or number format (name=%q, number=%q)", ErrValidation, name, number)
	}
	return Account{Name: name, Number: number}, nil
}

func (a Account) String() string {
	return a.Name + " " + a.Number
}

// Group is a named set of number patterns, newest registration first.
type Group struct {
	Name     string   `json:"name"`
	Patterns []string `json:"patterns"`
}

// ValidateGroup checks the group name and that at least one pattern in the
// batch is well-formed. The other patterns are accepted as they are.
func ValidateGroup(name string, patterns []string) error {
	if !groupNamePattern.MatchString(name) {
		return fmt.Errorf("%w: invalid group name %q", ErrValidation, name)
	}
	for _, p := range patterns {
		if numberPatternFormat.MatchString(p) {
			return nil
		}
	}
	return fmt.Errorf("%w: invalid number pattern in %v", ErrValidation, patterns)
}

// IsWildcard reports whether the pattern matches by prefix.
func IsWildcard(pattern string) bool {
	return strings.HasSuffix(pattern, WildcardMarker)
}

// PatternPrefix strips the wildcard marker from a pattern.
func PatternPrefix(pattern string) string {
	return strings.ReplaceAll(pattern, WildcardMarker, "")
}

// SplitPatterns splits a comma separated pattern or name list, trimming blanks.
func SplitPatterns(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
