package game

import "github.com/google/uuid"

// PyramidLayers is the layer template, bottom row last. 15 cards total.
var PyramidLayers = []int{1, 2, 3, 4, 5}

// Pyramid holds the face-down layer structure plus the transient pile of
// cards players have staked against the active card. CurrentIndex walks
// the flattened pyramid downward from len to 0; nil means the pyramid has
// not been built yet or is exhausted.
type Pyramid struct {
	Layers       [][]Card `json:"layers"`
	CurrentIndex *int     `json:"current_index"`
	Staked       []Card   `json:"staked"`
}

// Construct draws the full pyramid face-down from the deck.
func (p *Pyramid) Construct(layers []int, deck *Deck) error {
	needed := 0
	for _, n := range layers {
		needed += n
	}
	if deck.CardsLeft() < needed {
		return ErrInsufficientCards
	}
	p.Layers = make([][]Card, 0, len(layers))
	for _, n := range layers {
		row := make([]Card, 0, n)
		for i := 0; i < n; i++ {
			card, err := deck.Draw()
			if err != nil {
				return err
			}
			card.Closed = true
			row = append(row, card)
		}
		p.Layers = append(p.Layers, row)
	}
	p.Staked = nil
	if needed > 0 {
		p.CurrentIndex = &needed
	} else {
		p.CurrentIndex = nil
	}
	return nil
}

func (p *Pyramid) flattened() []Card {
	var all []Card
	for _, row := range p.Layers {
		all = append(all, row...)
	}
	return all
}

// Advance flips the next card face-up and clears the staked pile. It
// returns false once the pyramid is exhausted; repeated calls past the end
// stay a no-op.
func (p *Pyramid) Advance() bool {
	if p.CurrentIndex == nil {
		return false
	}
	if *p.CurrentIndex > 0 {
		idx := *p.CurrentIndex - 1
		p.CurrentIndex = &idx
		p.open(idx)
		p.Staked = nil
		return true
	}
	p.CurrentIndex = nil
	return false
}

func (p *Pyramid) open(flatIndex int) {
	i := flatIndex
	for r, row := range p.Layers {
		if i < len(row) {
			p.Layers[r][i].Closed = false
			return
		}
		i -= len(row)
	}
}

// CurrentCard returns the active face-up card, or nil if none is active.
func (p *Pyramid) CurrentCard() *Card {
	flat := p.flattened()
	if p.CurrentIndex == nil || *p.CurrentIndex < 0 || *p.CurrentIndex >= len(flat) {
		return nil
	}
	card := flat[*p.CurrentIndex]
	return &card
}

// CanStake reports whether there is an active card to stake against.
func (p *Pyramid) CanStake() bool {
	return p.CurrentCard() != nil
}

// Stake copies the card onto the staked pile with a fresh id, leaving the
// caller's card untouched.
func (p *Pyramid) Stake(c Card, ownerID string) Card {
	staked := c
	staked.Owner = ownerID
	staked.ID = uuid.NewString()
	p.Staked = append(p.Staked, staked)
	return staked
}

func (p *Pyramid) FindByID(id string) *Card {
	if id == "" {
		return nil
	}
	for i := range p.Staked {
		if p.Staked[i].ID == id {
			card := p.Staked[i]
			return &card
		}
	}
	return nil
}

// OwnerOf returns the owner of a staked card, or "" if unknown.
func (p *Pyramid) OwnerOf(id string) string {
	if card := p.FindByID(id); card != nil {
		return card.Owner
	}
	return ""
}

// Call removes and returns the staked card with the given id. A staked
// card whose rank matches the active pyramid card is a legitimate play and
// cannot be called; Call returns nil for it, as for an unknown id.
func (p *Pyramid) Call(id string) *Card {
	for i := range p.Staked {
		if p.Staked[i].ID != id {
			continue
		}
		if cur := p.CurrentCard(); cur != nil && p.Staked[i].Rank == cur.Rank {
			return nil
		}
		card := p.Staked[i]
		p.Staked = append(p.Staked[:i], p.Staked[i+1:]...)
		return &card
	}
	return nil
}
