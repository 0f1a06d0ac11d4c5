package game

import "testing"

func TestSerializeRoundTrip(t *testing.T) {
	g := NewGame([]string{"a", "b"})
	if err := g.StartPhase1(); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Play into phase 2 and stake a card so every component carries state.
	for _, id := range g.PlayerIDs {
		fillHand(g, id, MaxHandSize)
	}
	g.phase1NextTurn()
	g.AdvancePyramid(15)

	active := g.Pyramid.CurrentCard()
	offRank := "2"
	if active.Rank == "2" {
		offRank = "3"
	}
	g.Hands["a"].Cards = []Card{{Suit: SuitHearts, Rank: offRank}}
	if err := g.StakeCard("a", SuitHearts, offRank); err != nil {
		t.Fatalf("stake: %v", err)
	}

	state, err := g.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	restored, err := Deserialize(state)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	if restored.Phase != g.Phase {
		t.Fatalf("phase %s != %s", restored.Phase, g.Phase)
	}
	if len(restored.PlayerIDs) != len(g.PlayerIDs) {
		t.Fatalf("player ids lost")
	}
	if restored.Deck.CardsLeft() != g.Deck.CardsLeft() {
		t.Fatalf("deck %d != %d", restored.Deck.CardsLeft(), g.Deck.CardsLeft())
	}
	if *restored.Pyramid.CurrentIndex != *g.Pyramid.CurrentIndex {
		t.Fatalf("pyramid index lost")
	}
	if len(restored.Pyramid.Staked) != 1 {
		t.Fatalf("staked cards lost")
	}
	staked := restored.Pyramid.Staked[0]
	if staked.Owner != "a" || staked.ID == "" {
		t.Fatalf("staked card owner/id lost: %+v", staked)
	}
	if restored.Hands["b"].Len() != g.Hands["b"].Len() {
		t.Fatalf("hands lost")
	}
	cur := restored.Pyramid.CurrentCard()
	if cur == nil || !cur.Equal(*active) {
		t.Fatalf("active pyramid card changed across the round trip")
	}
}

func TestDeserializeEmptyObject(t *testing.T) {
	g, err := Deserialize("{}")
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if g.Deck == nil || g.Pyramid == nil || g.Bus == nil || g.Hands == nil {
		t.Fatalf("missing components must be initialized")
	}
}
