package repository

import (
	"context"
	"encoding/json"
	"time"

	"bussen_backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type GameRecordRepository struct {
	db *pgxpool.Pool
}

func NewGameRecordRepository(db *pgxpool.Pool) *GameRecordRepository {
	return &GameRecordRepository{db: db}
}

func (r *GameRecordRepository) Create(ctx context.Context, rec *domain.GameRecord) error {
	playersJSON, err := json.Marshal(rec.PlayerIDs)
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx,
		`INSERT INTO game_records (room_code, player_ids, bus_walker_id, finished, finished_at)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING id, created_at`,
		rec.RoomCode,
		playersJSON,
		rec.BusWalkerID,
		rec.Finished,
		rec.FinishedAt,
	).Scan(&rec.ID, &rec.CreatedAt)
}

func (r *GameRecordRepository) GetByPlayer(ctx context.Context, playerID string) ([]*domain.GameRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, room_code, player_ids, bus_walker_id, finished, created_at, finished_at
         FROM game_records
         WHERE player_ids @> $1
         ORDER BY created_at DESC
         LIMIT 100`,
		mustJSON([]string{playerID}),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.GameRecord
	for rows.Next() {
		var (
			rec         domain.GameRecord
			playerBytes []byte
			finishedAt  *time.Time
		)
		if err := rows.Scan(&rec.ID, &rec.RoomCode, &playerBytes, &rec.BusWalkerID, &rec.Finished, &rec.CreatedAt, &finishedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(playerBytes, &rec.PlayerIDs)
		rec.FinishedAt = finishedAt
		res = append(res, &rec)
	}
	return res, rows.Err()
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
