package domain

import "strings"

// Draw picks n cards from the catalog using the provided RNG.
// Cards are sampled independently, so the same card may appear more than once.
// Orientation is 50/50 upright/reversed.
func Draw(catalog Catalog, n int, rng RNG) ([]DrawnCard, error) {
	if n < 1 {
		return nil, ErrInvalidN
	}
	if catalog.Len() == 0 {
		return nil, ErrEmptyCatalog
	}

	cards := make([]DrawnCard, n)
	for i := range n {
		card := catalog.cards[rng.Intn(catalog.Len())]
		orientation := Upright
		if rng.Intn(2) == 1 {
			orientation = Reversed
		}
		cards[i] = DrawnCard{
			CardName:    card.Name,
			Orientation: orientation,
			Meaning:     card.Meaning(orientation),
		}
	}
	return cards, nil
}

// FormatCardList renders cards as "Name (orientation), ..." for prompts.
func FormatCardList(cards []DrawnCard) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.CardName + " (" + string(c.Orientation) + ")"
	}
	return strings.Join(parts, ", ")
}
