package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is one immutable audit record for a buyer lead. Entries are
// only ever appended; nothing in the application mutates or deletes them.
type HistoryEntry struct {
	ID        uuid.UUID
	BuyerID   uuid.UUID
	ChangedBy string
	Diff      map[string]any
	ChangedAt time.Time
}

type AppendHistoryParams struct {
	BuyerID   uuid.UUID
	ChangedBy string
	Diff      map[string]any
}

func (r *Repo) AppendHistory(ctx context.Context, params AppendHistoryParams) error {
	diffJSON, err := json.Marshal(params.Diff)
	if err != nil {
		return fmt.Errorf("marshal history diff: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO buyer_history (buyer_id, changed_by, diff)
		VALUES ($1, $2, $3)
	`, params.BuyerID, params.ChangedBy, diffJSON)
	if err != nil {
		return fmt.Errorf("append buyer history: %w", err)
	}
	return nil
}

// ListHistory returns the most recent entries for a buyer, newest first.
func (r *Repo) ListHistory(ctx context.Context, buyerID uuid.UUID, limit int) ([]HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, buyer_id, changed_by, diff, changed_at
		FROM buyer_history
		WHERE buyer_id = $1
		ORDER BY changed_at DESC
		LIMIT $2
	`, buyerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list buyer history: %w", err)
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0, limit)
	for rows.Next() {
		var entry HistoryEntry
		var diffJSON []byte
		if err := rows.Scan(&entry.ID, &entry.BuyerID, &entry.ChangedBy, &diffJSON, &entry.ChangedAt); err != nil {
			return nil, err
		}
		if len(diffJSON) > 0 {
			if err := json.Unmarshal(diffJSON, &entry.Diff); err != nil {
				return nil, fmt.Errorf("decode history diff: %w", err)
			}
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
