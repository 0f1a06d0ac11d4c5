package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"bussen_backend/internal/domain"
	"bussen_backend/internal/game"
	"bussen_backend/internal/repository"
)

// redirectDelay is how long clients wait before switching screens, so the
// last announcement stays readable.
const redirectDelay = 3000

type Room struct {
	Code    string
	Name    string
	OwnerID string

	Players []*domain.Player
	Clients map[string]*Client

	Register   chan *Client
	Disconnect chan *Client

	mu        sync.RWMutex
	createdAt time.Time
	stop      chan struct{}

	// gameMu serializes engine access; r.mu only guards membership.
	// Engine calls must never run concurrently for one room.
	gameMu sync.Mutex
	game   *game.Game

	StateRepo  *repository.GameStateRepository
	RecordRepo *repository.GameRecordRepository
	hub        *Hub
}

// roomState is the persisted envelope: lobby membership plus the
// serialized engine state, stored as one row per room code.
type roomState struct {
	Name    string           `json:"name"`
	OwnerID string           `json:"owner_id"`
	Players []*domain.Player `json:"players"`
	Game    json.RawMessage  `json:"game,omitempty"`
}

func NewRoom(code, name, ownerID string, hub *Hub) *Room {
	return &Room{
		Code:       code,
		Name:       name,
		OwnerID:    ownerID,
		Clients:    make(map[string]*Client),
		Register:   make(chan *Client, 4),
		Disconnect: make(chan *Client, 4),
		createdAt:  time.Now(),
		stop:       make(chan struct{}),
		hub:        hub,
	}
}

func NewRoomWithRepo(code, name, ownerID string, stateRepo *repository.GameStateRepository, recordRepo *repository.GameRecordRepository, hub *Hub) *Room {
	r := NewRoom(code, name, ownerID, hub)
	r.StateRepo = stateRepo
	r.RecordRepo = recordRepo
	return r
}

func (r *Room) Run() {
	log.Printf("Room.Run: starting room=%s", r.Code)

	for {
		select {
		case c := <-r.Register:
			r.handleRegister(c)
		case c := <-r.Disconnect:
			r.handleDisconnect(c)
		case <-r.stop:
			log.Printf("Room.Run: room=%s stopped", r.Code)
			return
		}
	}
}

// AddPlayer puts a player in the lobby. Joining is rejected once a game is
// running or the table is full.
func (r *Room) AddPlayer(playerID, name string) error {
	r.gameMu.Lock()
	running := r.game != nil
	r.gameMu.Unlock()
	if running {
		return errors.New("game already in progress")
	}

	r.mu.Lock()
	for _, p := range r.Players {
		if p.ID == playerID {
			r.mu.Unlock()
			return nil // rejoining the lobby is fine
		}
	}
	if len(r.Players) >= game.MaxPlayers {
		r.mu.Unlock()
		return errors.New("room is full")
	}
	r.Players = append(r.Players, &domain.Player{
		ID:       playerID,
		Name:     name,
		JoinedAt: time.Now(),
	})
	r.mu.Unlock()

	r.gameMu.Lock()
	r.refresh()
	r.gameMu.Unlock()
	return nil
}

// RemovePlayer takes a player out of the room entirely. Mid-game the engine
// drops their hand too; below the minimum the game is abandoned. Returns
// true when the room has no players left.
func (r *Room) RemovePlayer(playerID string) bool {
	r.mu.Lock()
	for i, p := range r.Players {
		if p.ID == playerID {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			break
		}
	}
	if c, ok := r.Clients[playerID]; ok {
		delete(r.Clients, playerID)
		close(c.Send)
	}
	// hand the room to the next player when the owner walks out
	if r.OwnerID == playerID && len(r.Players) > 0 {
		r.OwnerID = r.Players[0].ID
	}
	empty := len(r.Players) == 0
	r.mu.Unlock()

	r.gameMu.Lock()
	if r.game != nil {
		if abandoned := r.game.RemovePlayer(playerID); abandoned {
			log.Printf("Room.RemovePlayer: room=%s abandoned, back to lobby", r.Code)
			r.game = nil
			r.clearState()
			r.announce(ColorYellow, "Not enough players left. The game was abandoned.")
			r.redirect("lobby")
		} else {
			r.persist()
		}
	}
	r.refresh()
	r.gameMu.Unlock()

	return empty
}

func (r *Room) handleRegister(c *Client) {
	r.mu.Lock()
	r.Clients[c.PlayerID] = c
	for _, p := range r.Players {
		if p.ID == c.PlayerID {
			p.Online = true
		}
	}
	r.mu.Unlock()

	log.Printf("Room.handleRegister: room=%s player=%s clients=%d", r.Code, c.PlayerID, r.clientCount())

	for _, m := range c.drainPending() {
		r.HandleMessage(c, m)
	}

	r.gameMu.Lock()
	r.refresh()
	r.gameMu.Unlock()
}

func (r *Room) handleDisconnect(c *Client) {
	r.mu.Lock()
	if cur, ok := r.Clients[c.PlayerID]; ok && cur == c {
		delete(r.Clients, c.PlayerID)
		for _, p := range r.Players {
			if p.ID == c.PlayerID {
				p.Online = false
			}
		}
	}
	r.mu.Unlock()

	log.Printf("Room.handleDisconnect: room=%s player=%s", r.Code, c.PlayerID)
	r.gameMu.Lock()
	r.refresh()
	r.gameMu.Unlock()
}

func (r *Room) HandleMessage(c *Client, raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Printf("Room.HandleMessage: room=%s player=%s bad message: %v", r.Code, c.PlayerID, err)
		r.sendError(c.PlayerID, "malformed message")
		return
	}

	GameActions.WithLabelValues(msg.Phase, msg.Type).Inc()

	if msg.Type == MsgStart {
		r.handleStart(c)
		return
	}

	r.gameMu.Lock()
	defer r.gameMu.Unlock()

	if r.game == nil {
		r.sendError(c.PlayerID, "no game in progress")
		return
	}

	switch {
	case msg.Phase == string(game.Phase1) && msg.Type == MsgAnswer:
		r.handleAnswer(c, msg)
	case msg.Phase == string(game.Phase2) && msg.Type == MsgCard:
		r.handleCard(c, msg)
	case msg.Phase == string(game.Phase2) && msg.Type == MsgCall:
		r.handleCall(c, msg)
	case msg.Phase == string(game.Phase2) && msg.Type == MsgNextCard:
		r.handleNextCard(c, msg)
	case msg.Phase == string(game.Phase3) && msg.Type == MsgGuess:
		r.handleGuess(c, msg)
	default:
		r.sendError(c.PlayerID, "unknown action")
	}
}

func (r *Room) handleStart(c *Client) {
	r.gameMu.Lock()
	defer r.gameMu.Unlock()

	if c.PlayerID != r.OwnerID {
		r.sendError(c.PlayerID, "only the owner can start the game")
		return
	}
	if r.game != nil {
		r.sendError(c.PlayerID, "game already in progress")
		return
	}

	r.mu.RLock()
	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		ids = append(ids, p.ID)
	}
	r.mu.RUnlock()

	g := game.NewGame(ids)
	if err := g.StartPhase1(); err != nil {
		r.sendError(c.PlayerID, actionError(err))
		return
	}
	r.game = g
	GamesStarted.Inc()

	log.Printf("Room.handleStart: room=%s players=%d", r.Code, len(ids))

	r.persist()
	r.redirect(string(game.Phase1))
	r.refresh()
}

func (r *Room) handleAnswer(c *Client, msg ClientMessage) {
	if msg.Value == nil {
		r.sendError(c.PlayerID, "answer value required")
		return
	}

	out, err := r.game.HandleAnswer(c.PlayerID, *msg.Value)
	if err != nil {
		r.sendError(c.PlayerID, actionError(err))
		return
	}

	switch {
	case out.GroupDrink:
		r.announce(ColorYellow, "%s guessed correctly. Everyone must drink.", c.Name)
	case out.Drink:
		r.announce(ColorRed, "%s guessed incorrectly. They need to drink.", c.Name)
	default:
		r.announce(ColorGreen, "%s guessed correctly.", c.Name)
	}

	r.persist()
	r.refresh()

	if r.game.Phase != game.Phase1 {
		r.redirect(string(game.Phase2))
	}
}

func (r *Room) handleCard(c *Client, msg ClientMessage) {
	if msg.Suit == "" || msg.Rank == "" {
		r.sendError(c.PlayerID, "suit and rank required")
		return
	}

	if err := r.game.StakeCard(c.PlayerID, game.Suit(msg.Suit), msg.Rank); err != nil {
		r.sendError(c.PlayerID, actionError(err))
		return
	}

	r.persist()
	r.refresh()
	r.announce(ColorYellow, "%s placed a card.", c.Name)
}

func (r *Room) handleCall(c *Client, msg ClientMessage) {
	if msg.ID == "" {
		r.sendError(c.PlayerID, "card id required")
		return
	}

	removed, ownerID := r.game.CallCard(msg.ID)
	if ownerID == "" {
		r.sendError(c.PlayerID, "unknown card")
		return
	}
	ownerName := r.playerName(ownerID)

	if removed {
		r.persist()
		r.refresh()
		r.announce(ColorYellow, "%s's card was not correct. %s must drink.", ownerName, ownerName)
	} else {
		r.announce(ColorYellow, "%s's card was correct. %s must drink.", ownerName, c.Name)
	}
}

func (r *Room) handleNextCard(c *Client, msg ClientMessage) {
	if msg.Index == nil {
		r.sendError(c.PlayerID, "index required")
		return
	}

	if r.game.AdvancePyramid(*msg.Index) {
		r.persist()
		if r.game.Phase == game.Phase2 {
			r.refresh()
		}
	}
	if r.game.Phase != game.Phase2 {
		r.redirect(string(game.Phase3))
		r.refresh()
	}
}

func (r *Room) handleGuess(c *Client, msg ClientMessage) {
	// index echo: stale screens must not consume a draw
	if msg.Index == nil || *msg.Index != r.game.Bus.CurrentIndex {
		return
	}

	out, err := r.game.GuessBus(c.PlayerID, msg.Guess)
	if err != nil {
		r.sendError(c.PlayerID, actionError(err))
		return
	}

	if !out.Correct {
		r.announce(ColorRed, "%s guessed incorrectly and must drink", c.Name)
	}

	r.refresh()

	if out.Finished {
		r.broadcast(CelebratePayload{Type: MsgCelebrate, Winner: c.Name})
		r.finishGame(c.PlayerID)
		return
	}
	r.persist()
}

// finishGame records the result, clears the stored state and returns the
// room to the lobby. Caller holds gameMu.
func (r *Room) finishGame(busWalkerID string) {
	GamesFinished.Inc()
	log.Printf("Room.finishGame: room=%s walker=%s", r.Code, busWalkerID)

	if r.RecordRepo != nil {
		now := time.Now()
		rec := &domain.GameRecord{
			RoomCode:    r.Code,
			PlayerIDs:   append([]string(nil), r.game.PlayerIDs...),
			BusWalkerID: &busWalkerID,
			Finished:    true,
			FinishedAt:  &now,
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := r.RecordRepo.Create(ctx, rec); err != nil {
				log.Printf("Room.finishGame: record store failed: %v", err)
			}
		}()
	}

	r.game = nil
	r.clearState()
	r.refresh()
}

// persist commits the room envelope after a successful action. Caller
// holds gameMu.
func (r *Room) persist() {
	if r.StateRepo == nil {
		return
	}
	state, err := r.snapshot()
	if err != nil {
		log.Printf("Room.persist: snapshot failed: %v", err)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.StateRepo.Save(ctx, r.Code, state); err != nil {
			log.Printf("Room.persist: save failed: %v", err)
		}
	}()
}

func (r *Room) clearState() {
	if r.StateRepo == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.StateRepo.Delete(ctx, r.Code); err != nil {
			log.Printf("Room.clearState: delete failed: %v", err)
		}
	}()
}

func (r *Room) snapshot() (string, error) {
	r.mu.RLock()
	env := roomState{
		Name:    r.Name,
		OwnerID: r.OwnerID,
		Players: r.Players,
	}
	r.mu.RUnlock()

	if r.game != nil {
		s, err := r.game.Serialize()
		if err != nil {
			return "", err
		}
		env.Game = json.RawMessage(s)
	}

	data, err := json.Marshal(env)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// restore rebuilds a room from a stored envelope.
func restoreRoom(code, state string, stateRepo *repository.GameStateRepository, recordRepo *repository.GameRecordRepository, hub *Hub) (*Room, error) {
	var env roomState
	if err := json.Unmarshal([]byte(state), &env); err != nil {
		return nil, fmt.Errorf("restore room %s: %w", code, err)
	}

	r := NewRoomWithRepo(code, env.Name, env.OwnerID, stateRepo, recordRepo, hub)
	r.Players = env.Players
	for _, p := range r.Players {
		p.Online = false
	}
	if len(env.Game) > 0 {
		g, err := game.Deserialize(string(env.Game))
		if err != nil {
			return nil, fmt.Errorf("restore room %s: %w", code, err)
		}
		r.game = g
	}
	return r, nil
}

// RoomSummary is the lobby listing view.
type RoomSummary struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
	Players int    `json:"players"`
	Playing bool   `json:"playing"`
}

func (r *Room) Summary() RoomSummary {
	r.gameMu.Lock()
	playing := r.game != nil
	r.gameMu.Unlock()

	r.mu.RLock()
	defer r.mu.RUnlock()
	return RoomSummary{
		Code:    r.Code,
		Name:    r.Name,
		OwnerID: r.OwnerID,
		Players: len(r.Players),
		Playing: playing,
	}
}

func (r *Room) playerName(playerID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.Players {
		if p.ID == playerID {
			return p.Name
		}
	}
	return playerID
}

func (r *Room) clientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Clients)
}

// refresh tells every client to re-render and sends each its own snapshot.
// Caller holds gameMu.
func (r *Room) refresh() {
	r.broadcast(RefreshPayload{Type: MsgRefresh})
	r.broadcastState()
}

func (r *Room) redirect(phase string) {
	r.broadcast(RedirectPayload{Type: MsgRedirect, Delay: redirectDelay, Phase: phase})
}

func (r *Room) announce(color, format string, args ...any) {
	r.broadcast(AnnouncePayload{
		Type:    MsgMessage,
		Color:   color,
		Message: fmt.Sprintf(format, args...),
	})
}

func (r *Room) sendError(playerID, message string) {
	r.send(playerID, ErrorPayload{Type: MsgError, Message: message})
}

// broadcastState sends each connected player their own snapshot. Caller
// holds gameMu.
func (r *Room) broadcastState() {
	r.mu.RLock()
	ids := make([]string, 0, len(r.Clients))
	for id := range r.Clients {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	for _, id := range ids {
		r.send(id, r.stateFor(id))
	}
}

// StateFor builds the snapshot one player is allowed to see: their own
// hand, their question when it is their turn, and the pyramid with closed
// cards masked.
func (r *Room) StateFor(playerID string) StatePayload {
	r.gameMu.Lock()
	defer r.gameMu.Unlock()
	return r.stateFor(playerID)
}

// stateFor is StateFor for callers already holding gameMu.
func (r *Room) stateFor(playerID string) StatePayload {
	r.mu.RLock()
	s := StatePayload{
		Type:    MsgState,
		Room:    r.Code,
		Name:    r.Name,
		Players: make([]PlayerState, 0, len(r.Players)),
	}
	players := append([]*domain.Player(nil), r.Players...)
	ownerID := r.OwnerID
	r.mu.RUnlock()

	g := r.game
	if g == nil {
		s.Phase = "open"
		for _, p := range players {
			s.Players = append(s.Players, PlayerState{
				ID:     p.ID,
				Name:   p.Name,
				Online: p.Online,
				Owner:  p.ID == ownerID,
			})
		}
		return s
	}

	s.Phase = string(g.Phase)
	s.CurrentPlayer = g.CurrentPlayerID()
	s.DeckLeft = g.Deck.CardsLeft()

	for _, p := range players {
		ps := PlayerState{
			ID:     p.ID,
			Name:   p.Name,
			Online: p.Online,
			Owner:  p.ID == ownerID,
			Turn:   p.ID == g.CurrentPlayerID(),
		}
		if h := g.PlayerHand(p.ID); h != nil {
			ps.HandSize = h.Len()
		}
		s.Players = append(s.Players, ps)
	}

	if h := g.PlayerHand(playerID); h != nil {
		s.Hand = append([]game.Card(nil), h.Cards...)
		if g.Phase == game.Phase1 && playerID == g.CurrentPlayerID() {
			s.Question = game.QuestionForHandSize(h.Len())
		}
	}

	if g.Phase == game.Phase2 {
		s.Pyramid = &PyramidState{
			Layers:       maskLayers(g.Pyramid.Layers),
			CurrentIndex: g.Pyramid.CurrentIndex,
			Staked:       append([]game.Card(nil), g.Pyramid.Staked...),
		}
	}

	if g.Phase == game.Phase3 || g.Phase == game.PhaseFinished {
		s.Bus = &BusState{
			Cards:        append([]game.Card(nil), g.Bus.Cards...),
			CurrentIndex: g.Bus.CurrentIndex,
		}
	}

	return s
}

// maskLayers hides the face of cards that have not been flipped yet.
func maskLayers(layers [][]game.Card) [][]game.Card {
	out := make([][]game.Card, len(layers))
	for i, layer := range layers {
		out[i] = make([]game.Card, len(layer))
		for j, c := range layer {
			if c.Closed {
				out[i][j] = game.Card{Closed: true}
			} else {
				out[i][j] = c
			}
		}
	}
	return out
}

func (r *Room) send(playerID string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Room.send: marshal error: %v", err)
		return
	}

	r.mu.RLock()
	c, ok := r.Clients[playerID]
	r.mu.RUnlock()

	if !ok {
		return
	}

	select {
	case c.Send <- data:
	case <-time.After(time.Second):
		log.Printf("Room.send: timeout sending to player=%s", playerID)
	}
}

func (r *Room) broadcast(payload any) {
	r.mu.RLock()
	ids := make([]string, 0, len(r.Clients))
	for id := range r.Clients {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	for _, id := range ids {
		r.send(id, payload)
	}
}

// actionError maps engine sentinels to something a client can show.
func actionError(err error) string {
	switch {
	case errors.Is(err, game.ErrWrongPhase):
		return "action not valid in this phase"
	case errors.Is(err, game.ErrIllegalAction):
		return "it is not your turn or the action is not allowed"
	case errors.Is(err, game.ErrEmptyDeck):
		return "the deck is empty"
	case errors.Is(err, game.ErrInsufficientPlayers):
		return "not enough players"
	case errors.Is(err, game.ErrInsufficientCards):
		return "not enough cards left"
	default:
		return err.Error()
	}
}
