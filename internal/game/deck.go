package game

import "math/rand"

// Deck is a draw pile. Draw removes a uniformly random remaining card, so
// every card still in the pile is equally likely next. That is the house
// rule; it is behaviorally equivalent to a reshuffle before every draw.
type Deck struct {
	Cards []Card `json:"cards"`
}

// NewDeck returns a full 52-card deck.
func NewDeck() *Deck {
	d := &Deck{}
	d.Reset(true)
	return d
}

// Reset repopulates the deck with all 52 cards. With shuffle true the
// order is randomized, though Draw does not depend on order.
func (d *Deck) Reset(shuffle bool) {
	d.Cards = d.Cards[:0]
	for _, suit := range Suits {
		for _, rank := range Ranks {
			d.Cards = append(d.Cards, Card{Suit: suit, Rank: rank})
		}
	}
	if shuffle {
		rand.Shuffle(len(d.Cards), func(i, j int) {
			d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
		})
	}
}

// Draw removes and returns a random remaining card.
func (d *Deck) Draw() (Card, error) {
	if len(d.Cards) == 0 {
		return Card{}, ErrEmptyDeck
	}
	i := rand.Intn(len(d.Cards))
	card := d.Cards[i]
	d.Cards = append(d.Cards[:i], d.Cards[i+1:]...)
	return card, nil
}

func (d *Deck) CardsLeft() int {
	return len(d.Cards)
}
