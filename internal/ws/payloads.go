package ws

import "bussen_backend/internal/game"

// ClientMessage is every client → server action. Which fields are set
// depends on phase and type; pointers distinguish absent from zero.
type ClientMessage struct {
	Phase string `json:"phase,omitempty"`
	Type  string `json:"type"`
	Value *int   `json:"value,omitempty"` // phase1 answer
	Suit  string `json:"suit,omitempty"`  // phase2 card
	Rank  string `json:"rank,omitempty"`  // phase2 card
	ID    string `json:"id,omitempty"`    // phase2 call
	Index *int   `json:"index,omitempty"` // phase2 next_card / phase3 guess echo
	Guess string `json:"guess,omitempty"` // phase3 higher | lower | same
}

// server → client

type RefreshPayload struct {
	Type string `json:"type"`
}

type AnnouncePayload struct {
	Type    string `json:"type"`
	Color   string `json:"color"`
	Message string `json:"message"`
}

type RedirectPayload struct {
	Type  string `json:"type"`
	Delay int    `json:"delay"`
	Phase string `json:"phase"`
}

type CelebratePayload struct {
	Type   string `json:"type"`
	Winner string `json:"winner"`
}

type ErrorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// StatePayload is the full per-recipient snapshot. Hand and Question are
// private to the recipient; closed pyramid cards are masked before send.
type StatePayload struct {
	Type          string         `json:"type"`
	Room          string         `json:"room"`
	Name          string         `json:"name"`
	Phase         string         `json:"phase"`
	Players       []PlayerState  `json:"players"`
	CurrentPlayer string         `json:"current_player,omitempty"`
	DeckLeft      int            `json:"deck_left"`
	Hand          []game.Card    `json:"hand,omitempty"`
	Question      *game.Question `json:"question,omitempty"`
	Pyramid       *PyramidState  `json:"pyramid,omitempty"`
	Bus           *BusState      `json:"bus,omitempty"`
}

type PlayerState struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Online   bool   `json:"online"`
	Owner    bool   `json:"owner"`
	HandSize int    `json:"hand_size"`
	Turn     bool   `json:"turn"`
}

type PyramidState struct {
	Layers       [][]game.Card `json:"layers"`
	CurrentIndex *int          `json:"current_index"`
	Staked       []game.Card   `json:"staked"`
}

type BusState struct {
	Cards        []game.Card `json:"cards"`
	CurrentIndex int         `json:"current_index"`
}
