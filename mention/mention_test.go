package mention_test

import (
	"strings"
	"testing"
	"testing/quick"

	"github.com/zephyrtronium/echo/mention"
	"github.com/zephyrtronium/echo/message"
)

func TestMentioned(t *testing.T) {
	cases := []struct {
		name     string
		mentions []message.User
		self     string
		want     bool
	}{
		{"nil", nil, "42", false},
		{"empty", []message.User{}, "42", false},
		{"self", []message.User{{ID: "42"}}, "42", true},
		{"other", []message.User{{ID: "99"}}, "42", false},
		{"later", []message.User{{ID: "99"}, {ID: "42"}}, "42", true},
		{"prefix", []message.User{{ID: "420"}}, "42", false},
		{"unset", []message.User{{ID: "42"}}, "", false},
		{"unset-empty-id", []message.User{{ID: ""}}, "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := mention.Mentioned(c.mentions, c.self); got != c.want {
				t.Errorf("wrong mentioned for %v with %q: want %t, got %t", c.mentions, c.self, c.want, got)
			}
		})
	}
}

func TestMentionedQuick(t *testing.T) {
	f := func(ids []string, self string) bool {
		l := make([]message.User, len(ids))
		want := false
		for i, id := range ids {
			l[i] = message.User{ID: id}
			want = want || (self != "" && id == self)
		}
		return mention.Mentioned(l, self) == want
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestStripAll(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		pattern string
		want    string
	}{
		{"none", "hello", "x", "hello"},
		{"one", "<@42> hello there", "<@42> ", "hello there"},
		{"many", "a<@42>b<@42>c", "<@42>", "abc"},
		{"whole", "<@42>", "<@42>", ""},
		{"formed", "<@<@42>42>", "<@42>", ""},
		{"empty-text", "", "x", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := mention.StripAll(c.text, c.pattern); got != c.want {
				t.Errorf("wrong result stripping %q from %q: want %q, got %q", c.pattern, c.text, c.want, got)
			}
		})
	}
}

func TestStripAllQuick(t *testing.T) {
	removed := func(text, pattern string) bool {
		if pattern == "" {
			return true
		}
		return !strings.Contains(mention.StripAll(text, pattern), pattern)
	}
	if err := quick.Check(removed, nil); err != nil {
		t.Errorf("pattern remains: %v", err)
	}
	idempotent := func(text, pattern string) bool {
		if pattern == "" {
			return true
		}
		once := mention.StripAll(text, pattern)
		return mention.StripAll(once, pattern) == once
	}
	if err := quick.Check(idempotent, nil); err != nil {
		t.Errorf("not idempotent: %v", err)
	}
}

func TestStripAllEmptyPattern(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("no panic on empty pattern")
		}
	}()
	mention.StripAll("anything", "")
}

func TestTokens(t *testing.T) {
	want := [4]string{"<@42> ", "<@!42> ", "<@42>", "<@!42>"}
	if got := mention.Tokens("42"); got != want {
		t.Errorf("wrong tokens: want %q, got %q", want, got)
	}
}

func TestClean(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"leading", "<@42> hello there", "hello there"},
		{"nick", "<@!42> hello there", "hello there"},
		{"trailing", "hello there <@42>", "hello there "},
		{"middle", "hello <@42> there", "hello there"},
		{"adjacent", "hello<@!42>there", "hellothere"},
		{"both", "<@42> <@!42> hi", "hi"},
		{"only", "<@42>", ""},
		{"other", "<@99> hi <@42>", "<@99> hi "},
		{"none", "nothing here", "nothing here"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := mention.Clean(c.text, "42"); got != c.want {
				t.Errorf("wrong cleaned text for %q: want %q, got %q", c.text, c.want, got)
			}
		})
	}
}

func TestCleanQuick(t *testing.T) {
	f := func(text string) bool {
		got := mention.Clean(text, "42")
		for _, p := range mention.Tokens("42") {
			if strings.Contains(got, p) {
				return false
			}
		}
		return mention.Clean(got, "42") == got
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestCleanAssembled(t *testing.T) {
	// Removing the nickname form here assembles another nickname form around
	// a plain one.
	const text = "<@!<@<@!42>42>42>"
	if got := mention.Clean(text, "42"); got != "" {
		t.Errorf("wrong cleaned text for %q: want empty, got %q", text, got)
	}
}
