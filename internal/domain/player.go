package domain

import "time"

// Player is a room participant. The id is the stable identity carried in
// session tokens; the game engine references players by this id only.
type Player struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Online   bool      `json:"online"`
	JoinedAt time.Time `json:"joined_at"`
}
