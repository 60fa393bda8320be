package content

import (
	"fmt"
	"testing"
)

func TestBuildKey(t *testing.T) {
	tests := []struct {
		name       string
		collection string
		subUnit    int
		variant    string
		want       string
	}{
		{
			name:       "simple triple",
			collection: "John",
			subUnit:    3,
			variant:    "web",
			want:       "john:3:web",
		},
		{
			name:       "mixed case variant",
			collection: "JOHN",
			subUnit:    3,
			variant:    "WEB",
			want:       "john:3:web",
		},
		{
			name:       "space in book name",
			collection: "1 Corinthians",
			subUnit:    13,
			variant:    "kjv",
			want:       "1+corinthians:13:kjv",
		},
		{
			name:       "surrounding whitespace trimmed",
			collection: "  Psalm ",
			subUnit:    23,
			variant:    " web",
			want:       "psalm:23:web",
		},
		{
			name:       "delimiter inside component is escaped",
			collection: "a:b",
			subUnit:    1,
			variant:    "c",
			want:       "a%3ab:1:c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildKey(tt.collection, tt.subUnit, tt.variant)
			if got != tt.want {
				t.Errorf("BuildKey(%q, %d, %q) = %q, want %q", tt.collection, tt.subUnit, tt.variant, got, tt.want)
			}
		})
	}
}

func TestBuildKey_Deterministic(t *testing.T) {
	first := BuildKey("Genesis", 1, "KJV")
	for i := 0; i < 100; i++ {
		if got := BuildKey("genesis", 1, "kjv"); got != first {
			t.Fatalf("BuildKey() not deterministic: %q != %q", got, first)
		}
	}
}

func TestBuildKey_NoCollisions(t *testing.T) {
	// Triples that would collide under a naive "-" or ":" join.
	triples := []struct {
		collection string
		subUnit    int
		variant    string
	}{
		{"a:1", 2, "b"},
		{"a", 1, "2:b"},
		{"a-1", 2, "b"},
		{"a", 12, "b"},
		{"a1", 2, "b"},
		{"john", 3, "web"},
		{"john", 3, "kjv"},
		{"john", 31, "web"},
		{"1 john", 3, "web"},
		{"1john", 3, "web"},
		{"a%3a1", 2, "b"},
	}

	seen := make(map[string]string)
	for _, tr := range triples {
		key := BuildKey(tr.collection, tr.subUnit, tr.variant)
		label := fmt.Sprintf("(%q, %d, %q)", tr.collection, tr.subUnit, tr.variant)
		if prev, ok := seen[key]; ok {
			t.Errorf("BuildKey collision: %s and %s both map to %q", prev, label, key)
		}
		seen[key] = label
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1 Corinthians", "1corinthians"},
		{"Song of Solomon", "songofsolomon"},
		{"\tPsalms\n", "psalms"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnit_WithProvenance(t *testing.T) {
	u := &Unit{Reference: "John 3", Items: []Item{{Index: 1, Text: "x"}}}
	tagged := u.WithProvenance(ProvenanceCache)

	if tagged.Provenance != ProvenanceCache {
		t.Errorf("WithProvenance() provenance = %q, want %q", tagged.Provenance, ProvenanceCache)
	}
	if u.Provenance != "" {
		t.Errorf("WithProvenance() modified receiver provenance to %q", u.Provenance)
	}

	var nilUnit *Unit
	if nilUnit.WithProvenance(ProvenanceNetwork) != nil {
		t.Error("WithProvenance() on nil should return nil")
	}
}
