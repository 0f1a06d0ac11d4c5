package domain

import "time"

// GameRecord is the history row written when a game ends or is abandoned.
type GameRecord struct {
	ID          int64      `db:"id" json:"id"`
	RoomCode    string     `db:"room_code" json:"room_code"`
	PlayerIDs   []string   `db:"player_ids" json:"player_ids"`
	BusWalkerID *string    `db:"bus_walker_id" json:"bus_walker_id,omitempty"`
	Finished    bool       `db:"finished" json:"finished"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	FinishedAt  *time.Time `db:"finished_at" json:"finished_at,omitempty"`
}
