package filter

import (
	"net/url"
	"reflect"
	"testing"
)

func TestClause(t *testing.T) {
	tests := []struct {
		name string
		f    Filter
		want string
	}{
		{
			name: "range",
			f:    Range{Name: "age", Min: 10, Max: 20},
			want: `"age" BETWEEN 10 AND 20`,
		},
		{
			name: "range with fractions",
			f:    Range{Name: "umap_x", Min: -7.25, Max: 1.5},
			want: `"umap_x" BETWEEN -7.25 AND 1.5`,
		},
		{
			name: "categorical single value",
			f:    Categorical{Name: "organ", Values: []string{"brain"}},
			want: `"organ" IN ('brain')`,
		},
		{
			name: "categorical multiple values",
			f:    Categorical{Name: "species", Values: []string{"homo sapiens", "mouse"}},
			want: `"species" IN ('homo sapiens', 'mouse')`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clause(tt.f); got != tt.want {
				t.Errorf("Clause() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQueryEmpty(t *testing.T) {
	q, ok := Query("obs", nil)
	if ok {
		t.Errorf("expected absence for empty filters, got %q", q)
	}
}

func TestQuery(t *testing.T) {
	q, ok := Query("obs", Filters{
		Range{Name: "age", Min: 10, Max: 20},
		Categorical{Name: "organ", Values: []string{"brain"}},
	})
	if !ok {
		t.Fatal("expected query")
	}

	want := `SELECT * FROM "obs" WHERE ("age" BETWEEN 10 AND 20) AND ("organ" IN ('brain'))`
	if q != want {
		t.Errorf("Query() = %q, want %q", q, want)
	}
}

func TestExtractQueryRoundTrip(t *testing.T) {
	// Filters rebuilt from a generated query are semantically equal to the
	// originals (field, kind, values), whatever the textual encoding.
	fs := Filters{
		Range{Name: "age", Min: 10, Max: 20},
		Categorical{Name: "organ", Values: []string{"brain"}},
		Categorical{Name: "species", Values: []string{"homo sapiens", "mouse"}},
	}

	q, ok := Query("obs", fs)
	if !ok {
		t.Fatal("expected query")
	}

	got, err := Extract(q)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !reflect.DeepEqual(got, fs) {
		t.Errorf("round trip = %v, want %v", got, fs)
	}
}

func TestFullCycle(t *testing.T) {
	// Widget SQL -> filters -> params -> filters -> query, per the shared
	// link flow: the final query must keep the original predicate meaning.
	sql := `SELECT * FROM obs WHERE ("age" BETWEEN 10.0 AND 20.0) AND ("organ" IS NOT DISTINCT FROM 'brain')`

	extracted, err := Extract(sql)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	params := url.Values{}
	EncodeParams(params, extracted)

	if got := params.Get("age"); got != "10 20" {
		t.Errorf("age param = %q, want %q", got, "10 20")
	}
	if got := params.Get("organ"); got != "brain" {
		t.Errorf("organ param = %q, want %q", got, "brain")
	}

	decoded := DecodeParams(params)
	q, ok := Query("obs", decoded)
	if !ok {
		t.Fatal("expected query")
	}

	final, err := Extract(q)
	if err != nil {
		t.Fatalf("Extract of generated query failed: %v", err)
	}

	want := Filters{
		Range{Name: "age", Min: 10, Max: 20},
		Categorical{Name: "organ", Values: []string{"brain"}},
	}
	if !reflect.DeepEqual(final, want) {
		t.Errorf("full cycle = %v, want %v", final, want)
	}
}
