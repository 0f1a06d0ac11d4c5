package game

import "fmt"

type Suit string

const (
	SuitHearts   Suit = "Hearts"
	SuitDiamonds Suit = "Diamonds"
	SuitClubs    Suit = "Clubs"
	SuitSpades   Suit = "Spades"
)

var Suits = []Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

// Ranks in ascending order of value. Aces are high.
var Ranks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// Card is a single playing card. Owner and ID are only set on cards staked
// on the pyramid, so a staked copy can be called back out of order.
type Card struct {
	Suit   Suit   `json:"suit"`
	Rank   string `json:"rank"`
	Closed bool   `json:"closed"`
	Owner  string `json:"owner,omitempty"`
	ID     string `json:"id,omitempty"`
}

// Value maps the rank to 2..14.
func (c Card) Value() int {
	switch c.Rank {
	case "J":
		return 11
	case "Q":
		return 12
	case "K":
		return 13
	case "A":
		return 14
	default:
		var n int
		fmt.Sscan(c.Rank, &n)
		return n
	}
}

func (c Card) IsRed() bool {
	return c.Suit == SuitHearts || c.Suit == SuitDiamonds
}

// Equal compares suit and rank only. Owner, ID and face state are ignored.
func (c Card) Equal(other Card) bool {
	return c.Suit == other.Suit && c.Rank == other.Rank
}

func (c Card) Less(other Card) bool {
	return c.Value() < other.Value()
}

func (c Card) String() string {
	return fmt.Sprintf("%s %s", c.Suit, c.Rank)
}
