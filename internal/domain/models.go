package domain

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// Orientation represents the orientation of a drawn tarot card.
type Orientation string

const (
	Upright  Orientation = "upright"
	Reversed Orientation = "reversed"
)

// Card is a catalog entry with both of its meanings.
type Card struct {
	Name     string `json:"name" yaml:"name"`
	Upright  string `json:"upright" yaml:"upright"`
	Reversed string `json:"reversed" yaml:"reversed"`
}

// Meaning returns the meaning attached to the given orientation.
func (c Card) Meaning(o Orientation) string {
	if o == Reversed {
		return c.Reversed
	}
	return c.Upright
}

// DrawnCard is a card drawn for a single reading.
type DrawnCard struct {
	CardName    string      `json:"card_name"`
	Orientation Orientation `json:"orientation"`
	Meaning     string      `json:"meaning"`
}

// Catalog is the immutable set of cards a reading draws from.
type Catalog struct {
	cards []Card
}

// NewCatalog copies cards into a catalog. An empty catalog is rejected.
func NewCatalog(cards []Card) (Catalog, error) {
	if len(cards) == 0 {
		return Catalog{}, ErrEmptyCatalog
	}
	return Catalog{cards: append([]Card(nil), cards...)}, nil
}

func (c Catalog) Len() int { return len(c.cards) }

// Cards returns a copy of the catalog entries.
func (c Catalog) Cards() []Card {
	return append([]Card(nil), c.cards...)
}
