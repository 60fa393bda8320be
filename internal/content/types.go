package content

import "time"

// Provenance tags which tier of the resolution chain produced a Unit.
type Provenance string

const (
	ProvenanceCache   Provenance = "cache"
	ProvenanceNetwork Provenance = "network"
	ProvenanceBundled Provenance = "bundled"
)

// Item is a single verse-like entry of a chapter.
type Item struct {
	Index int    `json:"index"` // 1-based position within the chapter
	Text  string `json:"text"`
}

// Unit is the canonical chapter payload returned by the resolver.
type Unit struct {
	Reference   string     `json:"reference"`
	Items       []Item     `json:"items"`
	VariantName string     `json:"variant_name"`
	ResolvedAt  time.Time  `json:"resolved_at,omitzero"`
	Provenance  Provenance `json:"provenance,omitempty"`
}

// WithProvenance returns a shallow copy of u tagged with p.
func (u *Unit) WithProvenance(p Provenance) *Unit {
	if u == nil {
		return nil
	}
	out := *u
	out.Provenance = p
	return &out
}

// ItemByIndex returns the item with the given index.
func (u *Unit) ItemByIndex(index int) (Item, bool) {
	for _, it := range u.Items {
		if it.Index == index {
			return it, true
		}
	}
	return Item{}, false
}
