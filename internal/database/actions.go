// internal/database/actions.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/bluff/internal/cache"
)

// Execer is the part of pgx.Tx the inserts need.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

const (
	upsertRoomQ = `
		INSERT INTO rooms (id, status, start_time)
		VALUES ($1, 'in_progress', NOW())
		ON CONFLICT (id) DO NOTHING
	`
	insertActionQ = `
		INSERT INTO room_actions (
			room_id, action_index, seat, action_type, action_payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (room_id, action_index) DO NOTHING
	`
	completeRoomQ = `
		UPDATE rooms
		SET status = 'completed', winners = $2, end_time = NOW()
		WHERE id = $1 AND status <> 'completed'
	`
	abandonRoomQ = `
		UPDATE rooms
		SET status = 'abandoned', end_time = NOW()
		WHERE id = $1 AND status = 'in_progress'
	`
)

// InsertRoomAction stores one action and, for game_over and room_closed, finalizes the room row.
func InsertRoomAction(ctx context.Context, tx Execer, rec cache.RoomActionRecord) error {
	if _, err := tx.Exec(ctx, upsertRoomQ, rec.RoomID); err != nil {
		return fmt.Errorf("upsert room %s: %w", rec.RoomID, err)
	}

	payload, err := json.Marshal(rec.ActionPayload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	_, err = tx.Exec(ctx, insertActionQ,
		rec.RoomID, rec.ActionIndex, rec.Seat, rec.ActionType, payload, time.UnixMilli(rec.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("insert action %d: %w", rec.ActionIndex, err)
	}

	switch rec.ActionType {
	case "game_over":
		winners, err := json.Marshal(rec.ActionPayload["winners"])
		if err != nil {
			return fmt.Errorf("marshal winners: %w", err)
		}
		if _, err := tx.Exec(ctx, completeRoomQ, rec.RoomID, winners); err != nil {
			return fmt.Errorf("complete room %s: %w", rec.RoomID, err)
		}
	case "room_closed":
		if _, err := tx.Exec(ctx, abandonRoomQ, rec.RoomID); err != nil {
			return fmt.Errorf("abandon room %s: %w", rec.RoomID, err)
		}
	}
	return nil
}

// ActionStore writes batches of room actions to postgres.
type ActionStore struct {
	pool *pgxpool.Pool
}

func NewActionStore(pool *pgxpool.Pool) *ActionStore {
	return &ActionStore{pool: pool}
}

// Flush writes recs in one transaction.
func (s *ActionStore) Flush(ctx context.Context, recs []cache.RoomActionRecord) error {
	return BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range recs {
			if err := InsertRoomAction(ctx, tx, rec); err != nil {
				return err
			}
		}
		return nil
	})
}
