package entityp

import "strings"

// Separator joins the words of a storage column name.
const Separator = "_"

// ToStorage converts a field name to its column name: each ASCII upper case letter
// becomes Separator plus its lower case (createdDate -> created_date).
func ToStorage(field string) string {
	var sb strings.Builder
	sb.Grow(len(field) + 4)
	for i := 0; i < len(field); i++ {
		c := field[i]
		if 'A' <= c && c <= 'Z' {
			sb.WriteString(Separator)
			c += 'a' - 'A'
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// FromStorage converts a column name back to its field name: split on Separator, then
// every word after the first gets its first letter upper cased (created_date -> createdDate).
//
// Round trips hold for letter/digit field names without a leading digit. Names that
// contain Separator themselves do not survive (foo_bar -> fooBar). Empty words, from
// leading, trailing or doubled separators, are dropped.
func FromStorage(column string) string {
	words := strings.Split(column, Separator)
	var sb strings.Builder
	sb.Grow(len(column))
	sb.WriteString(words[0])
	for _, w := range words[1:] {
		if w == "" {
			continue
		}
		c := w[0]
		if 'a' <= c && c <= 'z' {
			c -= 'a' - 'A'
		}
		sb.WriteByte(c)
		sb.WriteString(w[1:])
	}
	return sb.String()
}
