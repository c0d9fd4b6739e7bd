package runtime

import (
	"fmt"
	"regexp"

	errspkg "github.com/dayflower/hiptail-bot/internal/runtime/errors"
)

// Matcher decides whether a hook applies to an event's subject text. The
// only kinds are Any, Exact and Pattern.
type Matcher interface {
	Match(subject string) bool
	String() string
	// groups returns the submatches for a subject that matched.
	groups(subject string) []string
}

type anyMatcher struct{}

func (anyMatcher) Match(string) bool      { return true }
func (anyMatcher) String() string         { return "any" }
func (anyMatcher) groups(string) []string { return nil }

type exactMatcher struct {
	value string
}

func (m exactMatcher) Match(subject string) bool { return subject == m.value }
func (m exactMatcher) String() string            { return fmt.Sprintf("exact(%q)", m.value) }
func (m exactMatcher) groups(subject string) []string {
	return []string{subject}
}

type patternMatcher struct {
	re *regexp.Regexp
}

func (m patternMatcher) Match(subject string) bool {
	return m.re != nil && m.re.MatchString(subject)
}

func (m patternMatcher) String() string {
	if m.re == nil {
		return "pattern(<nil>)"
	}
	return "pattern(/" + m.re.String() + "/)"
}

func (m patternMatcher) groups(subject string) []string {
	if m.re == nil {
		return nil
	}
	return m.re.FindStringSubmatch(subject)
}

// Any matches every subject.
func Any() Matcher { return anyMatcher{} }

// Exact matches a subject equal to s.
func Exact(s string) Matcher { return exactMatcher{value: s} }

// Pattern matches when re finds a match anywhere in the subject.
func Pattern(re *regexp.Regexp) Matcher { return patternMatcher{re: re} }

// MustPattern compiles expr and panics when it is invalid.
func MustPattern(expr string) Matcher { return Pattern(regexp.MustCompile(expr)) }

// ParseMatcher converts the leading argument of a message, notification or
// topic hook into a Matcher: nil means Any, a string means Exact and a
// *regexp.Regexp means Pattern.
func ParseMatcher(arg any) (Matcher, error) {
	switch v := arg.(type) {
	case nil:
		return Any(), nil
	case Matcher:
		return v, nil
	case string:
		return Exact(v), nil
	case *regexp.Regexp:
		if v == nil {
			return nil, fmt.Errorf("%w: nil *regexp.Regexp", errspkg.ErrUnsupportedMatcher)
		}
		return Pattern(v), nil
	default:
		return nil, fmt.Errorf("%w: %T", errspkg.ErrUnsupportedMatcher, arg)
	}
}
