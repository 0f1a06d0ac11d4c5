package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrStateNotFound = errors.New("no saved state for room")

// GameStateRepository persists the serialized engine state per room so a
// restarted server can pick games back up. The room loads once when it is
// created and commits after every mutating action.
type GameStateRepository struct {
	db *pgxpool.Pool
}

func NewGameStateRepository(db *pgxpool.Pool) *GameStateRepository {
	return &GameStateRepository{db: db}
}

func (r *GameStateRepository) Save(ctx context.Context, roomCode, state string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO game_states (room_code, state, updated_at)
         VALUES ($1, $2, $3)
         ON CONFLICT (room_code) DO UPDATE SET state = $2, updated_at = $3`,
		roomCode, state, time.Now(),
	)
	return err
}

func (r *GameStateRepository) Load(ctx context.Context, roomCode string) (string, error) {
	var state string
	err := r.db.QueryRow(ctx,
		`SELECT state FROM game_states WHERE room_code = $1`,
		roomCode,
	).Scan(&state)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrStateNotFound
	}
	if err != nil {
		return "", err
	}
	return state, nil
}

func (r *GameStateRepository) Delete(ctx context.Context, roomCode string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM game_states WHERE room_code = $1`,
		roomCode,
	)
	return err
}
