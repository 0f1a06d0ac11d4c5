package game

// BusLength is the number of cards the losing player guesses through.
const BusLength = 6

// Guess directions for the bus and for phase 1 question 2.
const (
	GuessHigher = "higher"
	GuessLower  = "lower"
	GuessSame   = "same"
)

// Bus is the fixed run of hidden cards for phase 3. CurrentIndex resets to
// 0 on every wrong guess.
type Bus struct {
	Cards        []Card `json:"cards"`
	CurrentIndex int    `json:"current_index"`
}

// Construct draws the bus face-down from the deck.
func (b *Bus) Construct(length int, deck *Deck) error {
	if deck.CardsLeft() < length {
		return ErrInsufficientCards
	}
	b.Cards = make([]Card, 0, length)
	for i := 0; i < length; i++ {
		card, err := deck.Draw()
		if err != nil {
			return err
		}
		card.Closed = true
		b.Cards = append(b.Cards, card)
	}
	b.CurrentIndex = 0
	return nil
}

// CurrentCard returns the card the next guess is compared against.
func (b *Bus) CurrentCard() *Card {
	if b.CurrentIndex < 0 || b.CurrentIndex >= len(b.Cards) {
		return nil
	}
	card := b.Cards[b.CurrentIndex]
	return &card
}

// Guess compares the drawn card against the current slot by rank, replaces
// the slot with the drawn card, and moves forward on a correct guess or
// all the way back to the start on a wrong one.
func (b *Bus) Guess(direction string, drawn Card) bool {
	current := b.Cards[b.CurrentIndex]

	var correct bool
	switch direction {
	case GuessHigher:
		correct = current.Less(drawn)
	case GuessLower:
		correct = drawn.Less(current)
	default:
		correct = drawn.Value() == current.Value()
	}

	drawn.Closed = false
	b.Cards[b.CurrentIndex] = drawn

	if correct {
		b.CurrentIndex++
	} else {
		b.CurrentIndex = 0
	}
	return correct
}
