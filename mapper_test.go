package entityp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/greghart/entityp/errcmp"
	"github.com/greghart/entityp/queryp"
	"github.com/greghart/entityp/sqlp"
)

func TestMapper_Prepare(t *testing.T) {
	m := NewMapper(widgetDef)
	args := queryp.NewArgs().WithPlaceholderer(queryp.PostgresPlaceholderer)
	args.Add("already bound")

	p := m.Prepare(args, &Record{ID: 1, Fields: Fields{"size": 3, "label": nil, "other": 1}})
	expected := Prepared{
		Table:        `"widget"`,
		Fields:       []string{`"label"`, `"size"`},
		Placeholders: []string{"$2", "$3"},
		Values:       []any{nil, 3},
	}
	if !cmp.Equal(p, expected) {
		t.Errorf("unexpected prepared:\n%s", cmp.Diff(expected, p))
	}
	if len(p.Fields) != len(p.Placeholders) || len(p.Fields) != len(p.Values) {
		t.Errorf("prepared is not aligned: %v", p)
	}

	if p := m.Prepare(args, nil); p.Table != `"widget"` || p.Fields != nil {
		t.Errorf("unexpected prepared for nil record %v", p)
	}
}

func TestMapper_Tag(t *testing.T) {
	in := NewRecord(Fields{"label": "x"})
	out := NewMapper(widgetDef).Tag(in)
	if out.Type != "widget" || in.Type != "" {
		t.Errorf("expected tag on a copy, got in=%v out=%v", in, out)
	}
}

func TestMapper_FromResult(t *testing.T) {
	m := NewMapper(widgetDef)
	res := &sqlp.Result{
		Columns: []string{"label", "created_date", "id"},
		Rows: []map[string]any{
			{"label": "x", "created_date": "2024-01-02", "id": int64(1)},
			{"label": "y", "created_date": nil, "id": int64(2)},
		},
	}
	expected := []*Record{
		{ID: int64(1), Type: "widget", Fields: Fields{"label": "x", "createdDate": "2024-01-02"}},
		{ID: int64(2), Type: "widget", Fields: Fields{"label": "y", "createdDate": nil}},
	}
	if got := m.FromResult(res); !cmp.Equal(got, expected) {
		t.Errorf("unexpected records:\n%s", cmp.Diff(expected, got))
	}
	if got := m.FromResult(&sqlp.Result{}); got != nil {
		t.Errorf("expected nil for no rows, got %v", got)
	}
	if got := m.FromResult(nil); got != nil {
		t.Errorf("expected nil for no result, got %v", got)
	}
}

func TestCount(t *testing.T) {
	tests := map[string]struct {
		res      *sqlp.Result
		expected int64
		err      string
	}{
		"sqlite":       {&sqlp.Result{Columns: []string{"count(*)"}, Rows: []map[string]any{{"count(*)": int64(3)}}}, 3, ""},
		"postgres":     {&sqlp.Result{Columns: []string{"count"}, Rows: []map[string]any{{"count": int64(4)}}}, 4, ""},
		"no columns":   {&sqlp.Result{Rows: []map[string]any{{"n": 5}}}, 5, ""},
		"text":         {&sqlp.Result{Rows: []map[string]any{{"count": "6"}}}, 6, ""},
		"bytes":        {&sqlp.Result{Rows: []map[string]any{{"count": []byte("7")}}}, 7, ""},
		"float":        {&sqlp.Result{Rows: []map[string]any{{"count": float64(8)}}}, 8, ""},
		"int32":        {&sqlp.Result{Rows: []map[string]any{{"count": int32(9)}}}, 9, ""},
		"no rows":      {&sqlp.Result{}, 0, ""},
		"nil":          {nil, 0, ""},
		"unexpected":   {&sqlp.Result{Rows: []map[string]any{{"count": true}}}, 0, "unexpected count true (bool)"},
		"not a number": {&sqlp.Result{Rows: []map[string]any{{"count": "many"}}}, 0, "invalid syntax"},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			n, err := count(test.res)
			errcmp.MustMatch(t, err, test.err)
			if n != test.expected {
				t.Errorf("count = %d, wanted %d", n, test.expected)
			}
		})
	}
}
