package catalog

import (
	"cmp"
	"slices"
	"testing"
)

type place struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Region string   `json:"region"`
	Tags   []string `json:"tags,omitempty"`
	Rank   int      `json:"rank"`
}

var placeSchema = Schema[place]{
	Kind:  "place",
	ID:    func(p place) string { return p.ID },
	SetID: func(p place, id string) place { p.ID = id; return p },
	Clone: func(p place) place {
		p.Tags = slices.Clone(p.Tags)
		return p
	},
	Validate: func(p place) error {
		if err := Require("name", p.Name); err != nil {
			return err
		}
		if p.Rank < 0 {
			return Invalid("rank", "must not be negative")
		}
		return nil
	},
	Fields: map[string]func(place) string{
		"name":   func(p place) string { return p.Name },
		"region": func(p place) string { return p.Region },
	},
	Search: []string{"name", "region"},
	Compare: map[string]func(a, b place) int{
		"rank": func(a, b place) int { return cmp.Compare(a.Rank, b.Rank) },
	},
}

func fixture() []place {
	return []place{
		{ID: "1", Name: "Casablanca", Region: "Casablanca-Settat", Tags: []string{"coast"}, Rank: 1},
		{ID: "2", Name: "Rabat", Region: "Rabat-Salé-Kénitra", Tags: []string{"coast", "capital"}, Rank: 3},
		{ID: "3", Name: "Fès", Region: "Fès-Meknès", Rank: 2},
	}
}

func names(ps []place) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func newMem(t *testing.T, opts ...StoreOption) *MemStore[place] {
	t.Helper()
	s, err := NewMemStore(placeSchema, fixture(), opts...)
	if err != nil {
		t.Fatalf("NewMemStore: %v", err)
	}
	return s
}
