package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/fridgeshare/internal/models"
)

// InsertSettlements persists a batch of settlements in a single transaction.
func (s *SQLiteStore) InsertSettlements(ctx context.Context, settlements []*models.Settlement) error {
	if len(settlements) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, st := range settlements {
		if st.Amount <= 0 {
			return fmt.Errorf("settlement amount must be positive, got %.2f", st.Amount)
		}
		if st.ID == "" {
			st.ID = uuid.New().String()
		}
		if st.ClearedAt.IsZero() {
			st.ClearedAt = now
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO settlements (id, fridge_id, from_user_id, to_user_id, amount, cleared_at, created_by, note)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			st.ID, st.FridgeID, st.FromUserID, st.ToUserID,
			st.Amount, toNanos(st.ClearedAt), st.CreatedBy, nullString(st.Note),
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListSettlements retrieves all settlements for a fridge, oldest first.
func (s *SQLiteStore) ListSettlements(ctx context.Context, fridgeID string) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fridge_id, from_user_id, to_user_id, amount, cleared_at, created_by, note
		 FROM settlements WHERE fridge_id = ? ORDER BY cleared_at, id`,
		fridgeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		st := &models.Settlement{}
		var clearedAt int64
		var note sql.NullString
		if err := rows.Scan(&st.ID, &st.FridgeID, &st.FromUserID, &st.ToUserID,
			&st.Amount, &clearedAt, &st.CreatedBy, &note); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		st.ClearedAt = fromNanos(clearedAt)
		st.Note = note.String
		settlements = append(settlements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settlements: %w", err)
	}
	return settlements, nil
}
