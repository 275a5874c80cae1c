package queryp

import (
	"strings"
)

// NamedQuery represents a SQL query with `:name` parameters.
// Building is deferred until `String()`, `Args()` or `Execute()`, since the order params
// appear in the text decides the order of the bound args.
type NamedQuery struct {
	query         string
	params        map[string]any
	placeholderer Placeholderer
	builtQuery    string
	builtArgs     *Args
}

func Named(query string) *NamedQuery {
	return &NamedQuery{
		query:  query,
		params: make(map[string]any),
	}
}

// WithPlaceholderer sets the Placeholderer for the NamedQuery.
func (n *NamedQuery) WithPlaceholderer(p Placeholderer) *NamedQuery {
	n.reset()
	n.placeholderer = p
	return n
}

// Params adds the given map of params to the NamedQuery.
func (n *NamedQuery) Params(m map[string]any) *NamedQuery {
	n.reset()
	for key, value := range m {
		n.params[key] = value
	}
	return n
}

// Param adds a single named parameter to the NamedQuery.
func (n *NamedQuery) Param(key string, v any) *NamedQuery {
	n.reset()
	n.params[key] = v
	return n
}

// String returns the final built query with all named parameters replaced.
func (n *NamedQuery) String() string {
	q, _ := n.Execute()
	return q
}

// Args returns the bound arguments, in placeholder order.
func (n *NamedQuery) Args() []any {
	_, args := n.Execute()
	return args
}

// Execute returns the query and arguments for the named query.
func (n *NamedQuery) Execute() (string, []any) {
	if n.builtArgs == nil {
		n.build()
	}
	return n.builtQuery, n.builtArgs.Args()
}

////////////////////////////////////////////////////////////////////////////////

func (n *NamedQuery) reset() {
	n.builtArgs = nil
	n.builtQuery = ""
}

// build replaces each `:name` token whose whole name is a known param.
// Tokens are read greedily, so `:id` never matches inside `:identity`. Unknown names and
// `::` casts are left untouched.
func (n *NamedQuery) build() {
	n.builtArgs = NewArgs().WithPlaceholderer(n.placeholderer)

	q := strings.Builder{}
	for i := 0; i < len(n.query); i++ {
		c := n.query[i]
		if c != ':' || (i > 0 && n.query[i-1] == ':') {
			q.WriteByte(c)
			continue
		}
		end := i + 1
		for end < len(n.query) && isNameByte(n.query[end]) {
			end++
		}
		v, ok := n.params[n.query[i+1:end]]
		if end == i+1 || !ok {
			q.WriteByte(c)
			continue
		}
		q.WriteString(n.builtArgs.Add(v))
		i = end - 1
	}
	n.builtQuery = q.String()
}

func isNameByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
