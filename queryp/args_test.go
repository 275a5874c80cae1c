package queryp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestArgs(t *testing.T) {
	args := NewArgs()
	label := args.Add("widget")
	size := args.Add(30)
	if label != "?" {
		t.Errorf("label given placeholder %s, wanted '?'", label)
	}
	if size != "?" {
		t.Errorf("size given placeholder %s, wanted '?'", size)
	}
	expected := []any{"widget", 30}
	if !cmp.Equal(args.Args(), expected) {
		t.Errorf("given args did not match expected\n%v", cmp.Diff(expected, args.Args()))
	}
	if args.Len() != 2 {
		t.Errorf("given len %d, wanted 2", args.Len())
	}
}

func TestArgs_pg(t *testing.T) {
	args := NewArgs().WithPlaceholderer(PostgresPlaceholderer)
	args.Add("widget")
	args.Add(30)
	args.Add(nil)
	expected := []string{"$1", "$2", "$3"}
	if !cmp.Equal(args.Placeholders(), expected) {
		t.Errorf("placeholders did not match expected\n%v", cmp.Diff(expected, args.Placeholders()))
	}
	if len(args.Placeholders()) != len(args.Args()) {
		t.Errorf("placeholders and args misaligned: %d vs %d", len(args.Placeholders()), len(args.Args()))
	}
}

func TestArgs_nilPlaceholderer(t *testing.T) {
	args := NewArgs().WithPlaceholderer(nil)
	if p := args.Add(1); p != "?" {
		t.Errorf("nil placeholderer should keep default, got %s", p)
	}
}
