package game

import (
	"errors"
	"testing"
)

func TestPyramidConstruct(t *testing.T) {
	d := NewDeck()
	p := &Pyramid{}
	if err := p.Construct(PyramidLayers, d); err != nil {
		t.Fatalf("construct: %v", err)
	}
	if d.CardsLeft() != 37 {
		t.Fatalf("deck has %d cards after construct; want 37", d.CardsLeft())
	}
	if p.CurrentIndex == nil || *p.CurrentIndex != 15 {
		t.Fatalf("current index = %v; want 15", p.CurrentIndex)
	}
	// No card is active until the first advance.
	if p.CurrentCard() != nil {
		t.Fatalf("expected no active card before first advance")
	}
	for _, row := range p.Layers {
		for _, c := range row {
			if !c.Closed {
				t.Fatalf("expected all pyramid cards face-down")
			}
		}
	}
}

func TestPyramidConstructInsufficientCards(t *testing.T) {
	d := NewDeck()
	d.Cards = d.Cards[:10]
	p := &Pyramid{}
	if err := p.Construct(PyramidLayers, d); !errors.Is(err, ErrInsufficientCards) {
		t.Fatalf("construct error = %v; want ErrInsufficientCards", err)
	}
}

func TestPyramidAdvanceWalksToExhaustion(t *testing.T) {
	d := NewDeck()
	p := &Pyramid{}
	if err := p.Construct(PyramidLayers, d); err != nil {
		t.Fatalf("construct: %v", err)
	}

	for i := 0; i < 15; i++ {
		if !p.Advance() {
			t.Fatalf("advance %d returned false", i)
		}
		cur := p.CurrentCard()
		if cur == nil {
			t.Fatalf("no active card after advance %d", i)
		}
		if cur.Closed {
			t.Fatalf("active card still face-down after advance %d", i)
		}
	}

	if p.Advance() {
		t.Fatalf("expected advance past the last card to signal exhaustion")
	}
	if p.CurrentIndex != nil {
		t.Fatalf("expected nil index after exhaustion")
	}
	// Further calls stay a no-op.
	if p.Advance() {
		t.Fatalf("expected advance on exhausted pyramid to be a no-op")
	}
}

func TestPyramidAdvanceClearsStaked(t *testing.T) {
	d := NewDeck()
	p := &Pyramid{}
	if err := p.Construct(PyramidLayers, d); err != nil {
		t.Fatalf("construct: %v", err)
	}
	p.Advance()
	p.Stake(Card{Suit: SuitHearts, Rank: "9"}, "p1")
	if len(p.Staked) != 1 {
		t.Fatalf("staked pile has %d cards; want 1", len(p.Staked))
	}
	p.Advance()
	if len(p.Staked) != 0 {
		t.Fatalf("staked pile not cleared on advance")
	}
}

func TestPyramidStakeCopiesCard(t *testing.T) {
	p := &Pyramid{}
	original := Card{Suit: SuitClubs, Rank: "4"}
	staked := p.Stake(original, "p1")

	if staked.ID == "" {
		t.Fatalf("expected staked card to get an id")
	}
	if staked.Owner != "p1" {
		t.Fatalf("staked owner = %q; want p1", staked.Owner)
	}
	if original.ID != "" || original.Owner != "" {
		t.Fatalf("original card mutated by stake")
	}
	if p.FindByID(staked.ID) == nil {
		t.Fatalf("staked card not findable by id")
	}
	if got := p.OwnerOf(staked.ID); got != "p1" {
		t.Fatalf("OwnerOf = %q; want p1", got)
	}
}

func TestPyramidCallProtectsMatchingRank(t *testing.T) {
	d := NewDeck()
	p := &Pyramid{}
	if err := p.Construct(PyramidLayers, d); err != nil {
		t.Fatalf("construct: %v", err)
	}
	p.Advance()
	active := p.CurrentCard()

	// A stake matching the active rank is safe from being called.
	safe := p.Stake(Card{Suit: SuitHearts, Rank: active.Rank}, "p1")
	if got := p.Call(safe.ID); got != nil {
		t.Fatalf("expected call on matching-rank stake to be rejected")
	}
	if p.FindByID(safe.ID) == nil {
		t.Fatalf("blocked call must leave the stake in place")
	}

	// A mismatched stake can be called out.
	otherRank := "2"
	if active.Rank == "2" {
		otherRank = "3"
	}
	bluff := p.Stake(Card{Suit: SuitSpades, Rank: otherRank}, "p2")
	got := p.Call(bluff.ID)
	if got == nil {
		t.Fatalf("expected call on mismatched stake to succeed")
	}
	if got.Owner != "p2" {
		t.Fatalf("called card owner = %q; want p2", got.Owner)
	}
	if p.FindByID(bluff.ID) != nil {
		t.Fatalf("called card still on the pile")
	}
}

func TestPyramidCallUnknownID(t *testing.T) {
	p := &Pyramid{}
	if p.Call("nope") != nil {
		t.Fatalf("expected call with unknown id to return nothing")
	}
	if p.OwnerOf("") != "" {
		t.Fatalf("expected empty owner for empty id")
	}
}
