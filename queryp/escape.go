package queryp

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
)

// escaper replaces characters that are unsafe to embed in SQL text with a backslash form.
// This is a generic escape, not any one store's quoting rules, so it is only applied to
// text that has already been checked against an allow-list.
var escaper = strings.NewReplacer(
	"\x00", `\0`,
	"\b", `\b`,
	"\t", `\t`,
	"\x1a", `\z`,
	"\n", `\n`,
	"\r", `\r`,
	`"`, `\"`,
	`'`, `\'`,
	`\`, `\\`,
	`%`, `\%`,
)

// Escape renders v as text safe for embedding in a statement.
// Temporal values are returned in their native textual form, unescaped.
// Field values are never passed through here; they are always bound with Args.
func Escape(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case *time.Time:
		if t != nil {
			return t.Format(time.RFC3339Nano)
		}
	case strfmt.DateTime:
		return t.String()
	case strfmt.Date:
		return t.String()
	}
	return escaper.Replace(fmt.Sprint(v))
}

// Quote escapes an identifier and wraps it in double quotes.
func Quote(identifier string) string {
	return `"` + Escape(identifier) + `"`
}
