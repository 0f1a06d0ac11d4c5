package game

// Phase is the lifecycle stage of a Bussen game. Phases only move forward.
type Phase string

const (
	PhaseOpen     Phase = "open"
	Phase1        Phase = "phase1"
	Phase2        Phase = "phase2"
	Phase3        Phase = "phase3"
	PhaseFinished Phase = "finished"
)

// MinPlayers and MaxPlayers bound the table. The maximum is what the deck
// supports: four cards per hand after the fifteen pyramid cards.
const (
	MinPlayers = 2
	MaxPlayers = (52 - 15) / MaxHandSize
)

// Game is the authoritative state of one Bussen game. Players are owned by
// the surrounding room and referenced by id only; the game owns the deck,
// pyramid, bus and one hand per player.
type Game struct {
	Phase              Phase            `json:"phase"`
	PlayerIDs          []string         `json:"player_ids"`
	CurrentPlayerIndex *int             `json:"current_player_index"`
	Deck               *Deck            `json:"deck"`
	Pyramid            *Pyramid         `json:"pyramid"`
	Bus                *Bus             `json:"bus"`
	Hands              map[string]*Hand `json:"hands"`
}

// AnswerOutcome describes the resolution of one phase-1 answer. Drink is
// the guesser drinking on a miss; GroupDrink means everyone else drinks
// because the long-shot option hit.
type AnswerOutcome struct {
	Correct    bool `json:"correct"`
	Drink      bool `json:"drink"`
	GroupDrink bool `json:"group_drink"`
	Drawn      Card `json:"drawn"`
}

// GuessOutcome describes one phase-3 bus guess.
type GuessOutcome struct {
	Correct  bool `json:"correct"`
	Drawn    Card `json:"drawn"`
	Finished bool `json:"finished"`
}

func NewGame(playerIDs []string) *Game {
	return &Game{
		Phase:     PhaseOpen,
		PlayerIDs: append([]string(nil), playerIDs...),
		Deck:      NewDeck(),
		Pyramid:   &Pyramid{},
		Bus:       &Bus{},
		Hands:     make(map[string]*Hand),
	}
}

// CurrentPlayerID returns the id of the player whose turn it is, or ""
// when no single player holds the turn.
func (g *Game) CurrentPlayerID() string {
	if g.CurrentPlayerIndex == nil {
		return ""
	}
	i := *g.CurrentPlayerIndex
	if i < 0 || i >= len(g.PlayerIDs) {
		return ""
	}
	return g.PlayerIDs[i]
}

func (g *Game) PlayerHand(playerID string) *Hand {
	return g.Hands[playerID]
}

// StartPhase1 deals empty hands and hands the turn to the first player.
// Calling it again while already in phase 1 is a no-op.
func (g *Game) StartPhase1() error {
	if g.Phase == Phase1 {
		return nil
	}
	if g.Phase != PhaseOpen {
		return ErrWrongPhase
	}
	if len(g.PlayerIDs) < MinPlayers {
		return ErrInsufficientPlayers
	}
	g.Deck.Reset(true)
	g.Hands = make(map[string]*Hand, len(g.PlayerIDs))
	for _, id := range g.PlayerIDs {
		g.Hands[id] = &Hand{}
	}
	first := 0
	g.CurrentPlayerIndex = &first
	g.Phase = Phase1
	return nil
}

// HandleAnswer resolves one phase-1 answer for the acting player. The
// question asked is implied by how many cards they hold.
func (g *Game) HandleAnswer(playerID string, value int) (*AnswerOutcome, error) {
	if g.Phase != Phase1 {
		return nil, ErrWrongPhase
	}
	if playerID != g.CurrentPlayerID() {
		return nil, ErrIllegalAction
	}
	hand := g.Hands[playerID]
	if hand == nil || hand.Len() >= MaxHandSize {
		return nil, ErrIllegalAction
	}
	if g.Deck.CardsLeft() == 0 {
		return nil, ErrEmptyDeck
	}

	held := append([]Card(nil), hand.Cards...)
	drawn, err := g.Deck.Draw()
	if err != nil {
		return nil, err
	}

	var correct, longshot bool
	switch len(held) {
	case 0:
		correct = question1Outcome(value, drawn)
	case 1:
		correct = question2Outcome(value, held[0], drawn)
		longshot = value == ValueSame
	case 2:
		correct = question3Outcome(value, held[0], held[1], drawn)
		longshot = value == ValueSame
	case 3:
		correct = question4Outcome(value, held, drawn)
		longshot = value == ValueRainbow
	}

	hand.AddCard(drawn)
	g.phase1NextTurn()

	return &AnswerOutcome{
		Correct:    correct,
		Drink:      !correct,
		GroupDrink: longshot && correct,
		Drawn:      drawn,
	}, nil
}

// phase1NextTurn passes the turn to the first player with the fewest
// cards, or starts phase 2 once every hand is full.
func (g *Game) phase1NextTurn() {
	least := MaxHandSize
	turn := -1
	for i, id := range g.PlayerIDs {
		if h := g.Hands[id]; h != nil && h.Len() < least {
			least = h.Len()
			turn = i
		}
	}
	if turn < 0 {
		g.startPhase2()
		return
	}
	g.CurrentPlayerIndex = &turn
}

// StartPhase2 builds the pyramid. Phase 2 has no single current player.
func (g *Game) StartPhase2() error {
	if g.Phase == Phase2 {
		return nil
	}
	if g.Phase != Phase1 {
		return ErrWrongPhase
	}
	return g.startPhase2()
}

func (g *Game) startPhase2() error {
	if err := g.Pyramid.Construct(PyramidLayers, g.Deck); err != nil {
		return err
	}
	g.CurrentPlayerIndex = nil
	g.Phase = Phase2
	return nil
}

// StakeCard moves a card from the player's hand onto the pyramid pile,
// claiming it matches the active pyramid card.
func (g *Game) StakeCard(playerID string, suit Suit, rank string) error {
	if g.Phase != Phase2 {
		return ErrWrongPhase
	}
	hand := g.Hands[playerID]
	if hand == nil || !g.Pyramid.CanStake() {
		return ErrIllegalAction
	}
	card := Card{Suit: suit, Rank: rank}
	if !hand.RemoveCard(card) {
		return ErrIllegalAction
	}
	g.Pyramid.Stake(card, playerID)
	return nil
}

// CallCard challenges a staked card. A removed card goes back to its
// owner's hand and the owner drinks; a blocked call (the stake matched the
// pile card) means the caller drinks instead. The second return value is
// the stake's owner either way, "" when unknown.
func (g *Game) CallCard(id string) (bool, string) {
	if g.Phase != Phase2 {
		return false, ""
	}
	card := g.Pyramid.Call(id)
	if card == nil {
		return false, g.Pyramid.OwnerOf(id)
	}
	owner := card.Owner
	if hand := g.Hands[owner]; hand != nil {
		returned := *card
		returned.Owner = ""
		returned.ID = ""
		hand.AddCard(returned)
	}
	return true, owner
}

// AdvancePyramid flips the next pyramid card, guarded by an index echo:
// the caller states which index it believes is active, and stale or
// duplicate requests are rejected rather than applied twice. Exhausting
// the pyramid starts phase 3.
func (g *Game) AdvancePyramid(expectedIndex int) bool {
	if g.Phase != Phase2 {
		return false
	}
	if g.Pyramid.CurrentIndex == nil || *g.Pyramid.CurrentIndex != expectedIndex {
		return false
	}
	if !g.Pyramid.Advance() {
		g.startPhase3()
	}
	return true
}

// StartPhase3 picks the losing player, clears all hands, rebuilds the deck
// and constructs the bus.
func (g *Game) StartPhase3() error {
	if g.Phase == Phase3 {
		return nil
	}
	if g.Phase != Phase2 {
		return ErrWrongPhase
	}
	return g.startPhase3()
}

func (g *Game) startPhase3() error {
	loser := 0
	least := MaxHandSize + 1
	for i, id := range g.PlayerIDs {
		n := 0
		if h := g.Hands[id]; h != nil {
			n = h.Len()
		}
		if n < least {
			least = n
			loser = i
		}
	}
	g.Hands = make(map[string]*Hand)
	g.Deck.Reset(true)
	if err := g.Bus.Construct(BusLength, g.Deck); err != nil {
		return err
	}
	g.CurrentPlayerIndex = &loser
	g.Phase = Phase3
	return nil
}

// GuessBus resolves one bus guess for the losing player. The game ends
// when the bus is walked or the deck runs dry.
func (g *Game) GuessBus(playerID, direction string) (*GuessOutcome, error) {
	if g.Phase != Phase3 {
		return nil, ErrWrongPhase
	}
	if playerID != g.CurrentPlayerID() {
		return nil, ErrIllegalAction
	}
	if g.Deck.CardsLeft() == 0 {
		return nil, ErrEmptyDeck
	}

	drawn, err := g.Deck.Draw()
	if err != nil {
		return nil, err
	}
	correct := g.Bus.Guess(direction, drawn)

	finished := g.Bus.CurrentIndex >= BusLength || g.Deck.CardsLeft() == 0
	if finished {
		g.Phase = PhaseFinished
	}

	return &GuessOutcome{Correct: correct, Drawn: drawn, Finished: finished}, nil
}

func (g *Game) IsFinished() bool {
	return g.Phase == PhaseFinished
}

// RemovePlayer drops a departed player mid-game. It returns true when the
// game can no longer continue because too few players remain.
func (g *Game) RemovePlayer(playerID string) bool {
	pos := -1
	for i, id := range g.PlayerIDs {
		if id == playerID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return len(g.PlayerIDs) < MinPlayers
	}
	g.PlayerIDs = append(g.PlayerIDs[:pos], g.PlayerIDs[pos+1:]...)
	delete(g.Hands, playerID)

	if g.CurrentPlayerIndex != nil {
		idx := *g.CurrentPlayerIndex
		if pos < idx {
			idx--
		}
		if idx >= len(g.PlayerIDs) {
			idx = 0
		}
		g.CurrentPlayerIndex = &idx
	}
	return len(g.PlayerIDs) < MinPlayers
}
