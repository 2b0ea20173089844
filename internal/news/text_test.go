package news

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "tags stripped", in: "<p>Open <b>RAN</b> update</p>", want: "Open RAN update"},
		{name: "entities decoded", in: "AT&amp;T 4 &gt; 3 &lt; 5 &quot;Verizon&quot; &#39;s", want: `AT&T 4 > 3 < 5 "Verizon" 's`},
		{name: "nbsp and whitespace", in: "  5G&nbsp;&nbsp;core\n\n\tnews  ", want: "5G core news"},
		{name: "escaped markup removed", in: "&lt;b&gt;bold&lt;/b&gt; text", want: "bold text"},
		{name: "empty", in: "", want: ""},
		{name: "only markup", in: "<br/><img src='x'>", want: ""},
		{name: "chinese", in: "<p>愛立信 與 中華電</p>", want: "愛立信 與 中華電"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestCleanTextIdempotent(t *testing.T) {
	inputs := []string{
		"<div>Ericsson &amp;amp; Nokia</div>",
		"&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;",
		"  a b \t c ",
		"<<b>>x<</b>>",
		"&&amp;lt;;",
		"plain text",
		"unterminated <tag",
	}

	for _, in := range inputs {
		once := CleanText(in)
		assert.Equal(t, once, CleanText(once), "input %q", in)
	}
}

func TestCleanDescriptionTruncates(t *testing.T) {
	long := "<p>" + strings.Repeat("網路 ", 400) + "</p>"

	got := CleanDescription(long)

	assert.LessOrEqual(t, utf8.RuneCountInString(got), MaxDescriptionLength)
	assert.Equal(t, got, strings.TrimSpace(got))
	assert.Equal(t, got, CleanDescription(got))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "電信", Truncate("電信產業", 2))
	assert.Equal(t, "", Truncate("abc", 0))
}
