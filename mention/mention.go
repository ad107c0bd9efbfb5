// Package mention detects and removes mentions of a user in message text.
package mention

import (
	"strings"

	"github.com/zephyrtronium/echo/message"
)

// Mentioned returns whether any user in mentions has the ID self.
// An empty self never matches, so a bot that does not yet know its own
// identity is never mentioned.
func Mentioned(mentions []message.User, self string) bool {
	if self == "" {
		return false
	}
	for _, u := range mentions {
		if u.ID == self {
			return true
		}
	}
	return false
}

// Tokens returns the mention markup for the user with the given ID in the
// order in which they should be stripped: plain and nickname forms with a
// trailing space, then plain and nickname forms without.
func Tokens(id string) [4]string {
	plain := "<@" + id + ">"
	nicked := "<@!" + id + ">"
	return [4]string{plain + " ", nicked + " ", plain, nicked}
}

// StripAll removes every occurrence of pattern from text, one leftmost
// occurrence at a time, so that occurrences formed by a removal are also
// removed. Panics if pattern is empty.
func StripAll(text, pattern string) string {
	if pattern == "" {
		panic("mention: empty pattern")
	}
	for {
		k := strings.Index(text, pattern)
		if k < 0 {
			return text
		}
		text = text[:k] + text[k+len(pattern):]
	}
}

// Clean removes all mentions of the user with the given ID from text.
// Panics if id is empty.
func Clean(text, id string) string {
	if id == "" {
		panic("mention: empty id")
	}
	toks := Tokens(id)
	for {
		prev := text
		for _, p := range toks {
			text = StripAll(text, p)
		}
		// Normally the second round changes nothing. It only runs again when
		// removing one form of the mention assembled another.
		if text == prev {
			return text
		}
	}
}
