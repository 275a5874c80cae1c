package queryp

import "fmt"

// Args accumulates bound arguments and hands back the placeholder for each.
// Placeholders and args stay aligned 1:1, in the order they were added.
type Args struct {
	placeholderer Placeholderer
	args          []any
	placeholders  []string
}

// Placeholderer renders the placeholder for the i-th (0 based) argument.
type Placeholderer func(i int) string

func NewArgs() *Args {
	return &Args{
		placeholderer: SqlitePlaceholderer,
	}
}

func (a *Args) WithPlaceholderer(p Placeholderer) *Args {
	if p != nil {
		a.placeholderer = p
	}
	return a
}

// Add adds an argument and returns a placeholder for it.
func (a *Args) Add(arg any) string {
	a.args = append(a.args, arg)
	p := a.placeholderer(len(a.args) - 1)
	a.placeholders = append(a.placeholders, p)
	return p
}

func (a *Args) Args() []any {
	return a.args
}

// Placeholders returns every placeholder handed out so far.
func (a *Args) Placeholders() []string {
	return a.placeholders
}

func (a *Args) Len() int {
	return len(a.args)
}

////////////////////////////////////////////////////////////////////////////////

var SqlitePlaceholderer = func(i int) string {
	return "?"
}

var PostgresPlaceholderer = func(i int) string {
	return fmt.Sprintf("$%d", i+1) // Postgres placeholders start at $1
}
