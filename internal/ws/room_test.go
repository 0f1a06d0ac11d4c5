package ws

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"bussen_backend/internal/domain"
	"bussen_backend/internal/game"
)

func testRoom(t *testing.T, players int) (*Room, []*Client) {
	t.Helper()
	hub := NewHub(nil, nil)
	room := NewRoom("ABC123", "kitchen table", "p0", hub)
	hub.Rooms[room.Code] = room

	clients := make([]*Client, 0, players)
	for i := 0; i < players; i++ {
		id := fmt.Sprintf("p%d", i)
		room.Players = append(room.Players, &domain.Player{ID: id, Name: "player-" + id, Online: true})
		c := &Client{PlayerID: id, Name: "player-" + id, Send: make(chan []byte, 64), Hub: hub}
		room.Clients[id] = c
		hub.PlayerRoom[id] = room.Code
		clients = append(clients, c)
	}
	return room, clients
}

func drain(t *testing.T, c *Client) []map[string]any {
	t.Helper()
	var out []map[string]any
	for {
		select {
		case b := <-c.Send:
			var m map[string]any
			if err := json.Unmarshal(b, &m); err != nil {
				t.Fatalf("unmarshal sent message: %v", err)
			}
			out = append(out, m)
		default:
			return out
		}
	}
}

func typesOf(msgs []map[string]any) []string {
	types := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if s, ok := m["type"].(string); ok {
			types = append(types, s)
		}
	}
	return types
}

func hasType(msgs []map[string]any, typ string) bool {
	for _, m := range msgs {
		if m["type"] == typ {
			return true
		}
	}
	return false
}

func raw(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestStartRequiresOwner(t *testing.T) {
	room, clients := testRoom(t, 2)

	room.HandleMessage(clients[1], raw(t, ClientMessage{Type: MsgStart}))

	if room.game != nil {
		t.Fatal("game started by non-owner")
	}
	msgs := drain(t, clients[1])
	if !hasType(msgs, MsgError) {
		t.Fatalf("expected error, got %v", typesOf(msgs))
	}
}

func TestStartGame(t *testing.T) {
	room, clients := testRoom(t, 3)

	room.HandleMessage(clients[0], raw(t, ClientMessage{Type: MsgStart}))

	if room.game == nil {
		t.Fatal("game not started")
	}
	if room.game.Phase != game.Phase1 {
		t.Fatalf("phase = %s, want phase1", room.game.Phase)
	}

	msgs := drain(t, clients[0])
	if !hasType(msgs, MsgRedirect) || !hasType(msgs, MsgRefresh) || !hasType(msgs, MsgState) {
		t.Fatalf("expected redirect+refresh+state, got %v", typesOf(msgs))
	}
}

func TestStartTwiceRejected(t *testing.T) {
	room, clients := testRoom(t, 2)

	room.HandleMessage(clients[0], raw(t, ClientMessage{Type: MsgStart}))
	drain(t, clients[0])

	room.HandleMessage(clients[0], raw(t, ClientMessage{Type: MsgStart}))
	if !hasType(drain(t, clients[0]), MsgError) {
		t.Fatal("expected error on second start")
	}
}

func TestStartWithOnePlayerRejected(t *testing.T) {
	room, clients := testRoom(t, 1)

	room.HandleMessage(clients[0], raw(t, ClientMessage{Type: MsgStart}))
	if room.game != nil {
		t.Fatal("game started with one player")
	}
	if !hasType(drain(t, clients[0]), MsgError) {
		t.Fatal("expected error")
	}
}

func TestAnswerOutOfTurn(t *testing.T) {
	room, clients := testRoom(t, 2)
	room.HandleMessage(clients[0], raw(t, ClientMessage{Type: MsgStart}))
	drain(t, clients[1])

	value := 0
	room.HandleMessage(clients[1], raw(t, ClientMessage{
		Phase: "phase1", Type: MsgAnswer, Value: &value,
	}))

	if !hasType(drain(t, clients[1]), MsgError) {
		t.Fatal("expected error for out-of-turn answer")
	}
	if room.game.Deck.CardsLeft() != 52 {
		t.Fatalf("rejected answer consumed a card: %d left", room.game.Deck.CardsLeft())
	}
}

func TestAnswerAnnouncesResult(t *testing.T) {
	room, clients := testRoom(t, 2)
	room.HandleMessage(clients[0], raw(t, ClientMessage{Type: MsgStart}))
	drain(t, clients[0])
	drain(t, clients[1])

	value := 0 // red
	room.HandleMessage(clients[0], raw(t, ClientMessage{
		Phase: "phase1", Type: MsgAnswer, Value: &value,
	}))

	msgs := drain(t, clients[1])
	var announce map[string]any
	for _, m := range msgs {
		if m["type"] == MsgMessage {
			announce = m
		}
	}
	if announce == nil {
		t.Fatalf("no announcement, got %v", typesOf(msgs))
	}
	color := announce["color"].(string)
	if color != ColorGreen && color != ColorRed {
		t.Fatalf("unexpected color %q for a red/black answer", color)
	}
	if room.game.PlayerHand("p0").Len() != 1 {
		t.Fatal("hand not updated after answer")
	}
}

func TestStateHidesOtherHandsAndClosedCards(t *testing.T) {
	room, clients := testRoom(t, 2)
	room.HandleMessage(clients[0], raw(t, ClientMessage{Type: MsgStart}))

	// walk both players to full hands so phase 2 starts
	for room.game != nil && room.game.Phase == game.Phase1 {
		id := room.game.CurrentPlayerID()
		value := 0
		room.HandleMessage(room.Clients[id], raw(t, ClientMessage{
			Phase: "phase1", Type: MsgAnswer, Value: &value,
		}))
		drain(t, clients[0])
		drain(t, clients[1])
	}

	if room.game.Phase != game.Phase2 {
		t.Fatalf("phase = %s, want phase2", room.game.Phase)
	}

	s := room.StateFor("p0")
	if len(s.Hand) != game.MaxHandSize {
		t.Fatalf("own hand size = %d, want %d", len(s.Hand), game.MaxHandSize)
	}
	if s.Pyramid == nil {
		t.Fatal("no pyramid in phase 2 state")
	}
	for _, layer := range s.Pyramid.Layers {
		for _, c := range layer {
			if c.Closed && (c.Suit != "" || c.Rank != "") {
				t.Fatal("closed pyramid card leaked its face")
			}
		}
	}
	for _, p := range s.Players {
		if p.HandSize != game.MaxHandSize {
			t.Fatalf("player %s hand size = %d", p.ID, p.HandSize)
		}
	}
}

// phase2Room plays a two-player game up to the pyramid.
func phase2Room(t *testing.T) (*Room, []*Client) {
	t.Helper()
	room, clients := testRoom(t, 2)
	room.HandleMessage(clients[0], raw(t, ClientMessage{Type: MsgStart}))
	for room.game.Phase == game.Phase1 {
		id := room.game.CurrentPlayerID()
		value := 0
		room.HandleMessage(room.Clients[id], raw(t, ClientMessage{
			Phase: "phase1", Type: MsgAnswer, Value: &value,
		}))
	}
	drain(t, clients[0])
	drain(t, clients[1])
	if room.game.Phase != game.Phase2 {
		t.Fatalf("setup: phase = %s", room.game.Phase)
	}
	return room, clients
}

func TestStakeAndCallFlow(t *testing.T) {
	room, clients := phase2Room(t)

	// flip the first pyramid card so staking is possible
	idx := *room.game.Pyramid.CurrentIndex
	room.HandleMessage(clients[0], raw(t, ClientMessage{
		Phase: "phase2", Type: MsgNextCard, Index: &idx,
	}))
	drain(t, clients[0])
	drain(t, clients[1])

	held := room.game.PlayerHand("p0").Cards[0]
	room.HandleMessage(clients[0], raw(t, ClientMessage{
		Phase: "phase2", Type: MsgCard, Suit: string(held.Suit), Rank: held.Rank,
	}))

	msgs := drain(t, clients[1])
	if !hasType(msgs, MsgMessage) || !hasType(msgs, MsgRefresh) {
		t.Fatalf("expected announcement+refresh after stake, got %v", typesOf(msgs))
	}
	if room.game.PlayerHand("p0").Len() != game.MaxHandSize-1 {
		t.Fatal("stake did not leave the hand")
	}

	staked := room.game.Pyramid.Staked[0]
	drain(t, clients[0])
	room.HandleMessage(clients[1], raw(t, ClientMessage{
		Phase: "phase2", Type: MsgCall, ID: staked.ID,
	}))
	if !hasType(drain(t, clients[0]), MsgMessage) {
		t.Fatal("expected announcement after call")
	}

	active := room.game.Pyramid.CurrentCard()
	wantBack := staked.Rank != active.Rank
	gotBack := room.game.PlayerHand("p0").Len() == game.MaxHandSize
	if gotBack != wantBack {
		t.Fatalf("card returned = %v, want %v (staked %s on %s)", gotBack, wantBack, staked, active)
	}
}

func TestNextCardStaleIndexIgnored(t *testing.T) {
	room, clients := phase2Room(t)

	idx := *room.game.Pyramid.CurrentIndex
	room.HandleMessage(clients[0], raw(t, ClientMessage{
		Phase: "phase2", Type: MsgNextCard, Index: &idx,
	}))
	after := *room.game.Pyramid.CurrentIndex

	// replaying the same echo must not flip another card
	room.HandleMessage(clients[1], raw(t, ClientMessage{
		Phase: "phase2", Type: MsgNextCard, Index: &idx,
	}))
	if *room.game.Pyramid.CurrentIndex != after {
		t.Fatal("stale next_card advanced the pyramid")
	}
}

func TestPyramidExhaustionRedirectsToPhase3(t *testing.T) {
	room, clients := phase2Room(t)

	for room.game.Phase == game.Phase2 {
		idx := *room.game.Pyramid.CurrentIndex
		room.HandleMessage(clients[0], raw(t, ClientMessage{
			Phase: "phase2", Type: MsgNextCard, Index: &idx,
		}))
		drain(t, clients[0])
		drain(t, clients[1])
	}

	if room.game.Phase != game.Phase3 {
		t.Fatalf("phase = %s, want phase3", room.game.Phase)
	}
	if room.game.CurrentPlayerID() == "" {
		t.Fatal("no bus walker selected")
	}
}

func TestGuessFinishesGame(t *testing.T) {
	room, clients := testRoom(t, 2)
	room.HandleMessage(clients[0], raw(t, ClientMessage{Type: MsgStart}))

	// rig a game one correct guess away from the end of the bus
	g := room.game
	g.Phase = game.Phase3
	walker := 0
	g.CurrentPlayerIndex = &walker
	g.Bus.Cards = make([]game.Card, game.BusLength)
	for i := range g.Bus.Cards {
		g.Bus.Cards[i] = game.Card{Suit: game.SuitHearts, Rank: "7"}
	}
	g.Bus.CurrentIndex = game.BusLength - 1
	g.Deck.Cards = []game.Card{{Suit: game.SuitSpades, Rank: "K"}}
	drain(t, clients[0])
	drain(t, clients[1])

	idx := g.Bus.CurrentIndex
	room.HandleMessage(clients[0], raw(t, ClientMessage{
		Phase: "phase3", Type: MsgGuess, Guess: game.GuessHigher, Index: &idx,
	}))

	if room.game != nil {
		t.Fatal("room did not return to lobby after the bus was walked")
	}
	msgs := drain(t, clients[1])
	if !hasType(msgs, MsgCelebrate) {
		t.Fatalf("expected celebrate, got %v", typesOf(msgs))
	}
}

func TestGuessStaleIndexIgnored(t *testing.T) {
	room, clients := testRoom(t, 2)
	room.HandleMessage(clients[0], raw(t, ClientMessage{Type: MsgStart}))

	g := room.game
	g.Phase = game.Phase3
	walker := 0
	g.CurrentPlayerIndex = &walker
	g.Bus.Construct(game.BusLength, g.Deck)

	left := g.Deck.CardsLeft()
	stale := g.Bus.CurrentIndex + 1
	room.HandleMessage(clients[0], raw(t, ClientMessage{
		Phase: "phase3", Type: MsgGuess, Guess: game.GuessHigher, Index: &stale,
	}))

	if g.Deck.CardsLeft() != left {
		t.Fatal("stale guess consumed a card")
	}
}

func TestMalformedMessage(t *testing.T) {
	room, clients := testRoom(t, 2)
	room.HandleMessage(clients[0], []byte("{not json"))
	if !hasType(drain(t, clients[0]), MsgError) {
		t.Fatal("expected error for malformed message")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	room, clients := phase2Room(t)

	state, err := room.snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	restored, err := restoreRoom(room.Code, state, nil, nil, NewHub(nil, nil))
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Name != room.Name || restored.OwnerID != room.OwnerID {
		t.Fatal("room metadata lost in round trip")
	}
	if len(restored.Players) != len(room.Players) {
		t.Fatalf("players = %d, want %d", len(restored.Players), len(room.Players))
	}
	if restored.game == nil || restored.game.Phase != game.Phase2 {
		t.Fatal("game state lost in round trip")
	}
	if restored.game.Deck.CardsLeft() != room.game.Deck.CardsLeft() {
		t.Fatal("deck lost in round trip")
	}
	_ = clients
}

func TestRemovePlayerAbandonsGame(t *testing.T) {
	room, clients := testRoom(t, 2)
	room.HandleMessage(clients[0], raw(t, ClientMessage{Type: MsgStart}))
	drain(t, clients[1])

	room.RemovePlayer("p0")

	if room.game != nil {
		t.Fatal("game should be abandoned below the player minimum")
	}
	if room.OwnerID != "p1" {
		t.Fatalf("owner = %s, want p1 after handover", room.OwnerID)
	}
	msgs := drain(t, clients[1])
	if !hasType(msgs, MsgMessage) || !hasType(msgs, MsgRedirect) {
		t.Fatalf("expected abandonment announcement+redirect, got %v", typesOf(msgs))
	}
}

// StateFor serves GET requests from other goroutines while the read pumps
// mutate the game, so snapshots must synchronize with actions.
func TestStateForDuringPlay(t *testing.T) {
	room, clients := testRoom(t, 2)
	room.HandleMessage(clients[0], raw(t, ClientMessage{Type: MsgStart}))

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				s := room.StateFor("p0")
				if s.Phase == "" {
					t.Error("snapshot without a phase")
					return
				}
			}
		}
	}()

	value := 0
	for room.game != nil && room.game.Phase == game.Phase1 {
		id := room.game.CurrentPlayerID()
		drain(t, room.Clients[id])
		room.HandleMessage(room.Clients[id], raw(t, ClientMessage{
			Phase: "phase1", Type: MsgAnswer, Value: &value,
		}))
	}

	close(stop)
	wg.Wait()

	if room.game.Phase != game.Phase2 {
		t.Fatalf("phase = %s, want phase2", room.game.Phase)
	}
}
