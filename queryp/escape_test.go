package queryp

import (
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
)

func TestEscape(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	tests := map[string]struct {
		in       any
		expected string
	}{
		"plain identifier":      {"widget", "widget"},
		"integer":               {42, "42"},
		"newline":               {"a\nb", `a\nb`},
		"carriage return":       {"a\rb", `a\rb`},
		"tab":                   {"a\tb", `a\tb`},
		"backspace":             {"a\bb", `a\bb`},
		"nul":                   {"a\x00b", `a\0b`},
		"substitute":            {"a\x1ab", `a\zb`},
		"single quote":          {"o'neil", `o\'neil`},
		"double quote":          {`say "hi"`, `say \"hi\"`},
		"backslash":             {`a\b`, `a\\b`},
		"percent":               {"100%", `100\%`},
		"injection attempt":     {"1; DROP TABLE widget; --'", `1; DROP TABLE widget; --\'`},
		"time passes through":   {at, "2024-03-01T12:30:00Z"},
		"time ptr passes":       {&at, "2024-03-01T12:30:00Z"},
		"strfmt date passes":    {strfmt.Date(at), "2024-03-01"},
		"nil stringifies":       {nil, "<nil>"},
		"nil time ptr escapes":  {(*time.Time)(nil), "<nil>"},
		"escaped already twice": {`\'`, `\\\'`},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Escape(test.in); got != test.expected {
				t.Errorf("Escape(%#v) = %q, wanted %q", test.in, got, test.expected)
			}
		})
	}
}

func TestQuote(t *testing.T) {
	if got := Quote("first_name"); got != `"first_name"` {
		t.Errorf("got %s", got)
	}
	if got := Quote(`bad"name`); got != `"bad\"name"` {
		t.Errorf("got %s", got)
	}
}
