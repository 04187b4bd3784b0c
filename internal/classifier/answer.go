package classifier

import (
	"slices"
	"strings"
	"unicode"
)

var (
	affirmative = []string{"yes", "yeah", "yep", "correct", "right", "true", "ok", "okay", "yup", "sure", "indeed", "exactly"}
	negative    = []string{"no", "nope", "not", "incorrect", "wrong", "false", "nah"}
)

// Answer is a yes/no reading of a reply.
type Answer int

// Answer values.
const (
	Unclear Answer = iota
	Yes
	No
)

// ParseAnswer reads text as a yes/no reply using substring matching. When
// both sets match, a reply that opens with an affirmative word is Yes
// ("yes I know", "sure, another one"); otherwise the negative wins so "not
// sure" and "incorrect" read as No.
func ParseAnswer(text string) Answer {
	yes, no := IsAffirmative(text), IsNegative(text)
	switch {
	case yes && no:
		if opensAffirmative(text) {
			return Yes
		}
		return No
	case no:
		return No
	case yes:
		return Yes
	default:
		return Unclear
	}
}

func opensAffirmative(text string) bool {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return false
	}
	first := strings.TrimFunc(fields[0], func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	return slices.Contains(affirmative, first)
}

// IsAffirmative reports whether text contains an affirmative token.
func IsAffirmative(text string) bool {
	return containsAny(strings.ToLower(text), affirmative)
}

// IsNegative reports whether text contains a negative token.
func IsNegative(text string) bool {
	return containsAny(strings.ToLower(text), negative)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
