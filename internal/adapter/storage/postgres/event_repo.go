package postgres

import (
	"context"
	"fmt"

	"asset-marketplace/internal/core/domain"
)

// EventRepo implements ports.EventJournal on PostgreSQL.
type EventRepo struct {
	pool Pool
}

// NewEventRepo creates a new EventRepo.
func NewEventRepo(pool Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

// Append inserts one event into the journal.
func (r *EventRepo) Append(ctx context.Context, e domain.Event) error {
	query := `INSERT INTO events (id, event_type, asset, token_id, actor, amount, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.Type, e.Asset, int64(e.TokenID), e.Actor, e.Amount, e.At,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ListRecent returns the most recent events, newest first.
func (r *EventRepo) ListRecent(ctx context.Context, limit int) ([]domain.Event, error) {
	query := `SELECT id, event_type, asset, token_id, actor, amount, occurred_at
		FROM events ORDER BY occurred_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var tokenID int64
		if err := rows.Scan(&e.ID, &e.Type, &e.Asset, &tokenID, &e.Actor, &e.Amount, &e.At); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.TokenID = uint64(tokenID)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
