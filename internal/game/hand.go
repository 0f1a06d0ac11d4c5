package game

// MaxHandSize is the number of cards a player collects in phase 1.
const MaxHandSize = 4

type Hand struct {
	Cards []Card `json:"cards"`
}

// AddCard appends the card unless the hand is already full.
func (h *Hand) AddCard(c Card) bool {
	if len(h.Cards) >= MaxHandSize {
		return false
	}
	h.Cards = append(h.Cards, c)
	return true
}

// RemoveCard removes the first card matching by suit and rank.
func (h *Hand) RemoveCard(c Card) bool {
	for i, held := range h.Cards {
		if held.Equal(c) {
			h.Cards = append(h.Cards[:i], h.Cards[i+1:]...)
			return true
		}
	}
	return false
}

func (h *Hand) Len() int {
	return len(h.Cards)
}
