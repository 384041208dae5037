package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/fridgeshare/internal/models"
	"github.com/mmynk/fridgeshare/internal/storage"
)

// CreateFridge persists a new fridge to the database.
func (s *SQLiteStore) CreateFridge(ctx context.Context, fridge *models.Fridge) error {
	if fridge.ID == "" {
		fridge.ID = uuid.New().String()
	}
	if fridge.CreatedAt == 0 {
		fridge.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO fridges (id, name, created_at) VALUES (?, ?, ?)",
		fridge.ID, fridge.Name, fridge.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fridge: %w", err)
	}
	return nil
}

// GetFridge retrieves a fridge by ID.
func (s *SQLiteStore) GetFridge(ctx context.Context, fridgeID string) (*models.Fridge, error) {
	fridge := &models.Fridge{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM fridges WHERE id = ?", fridgeID,
	).Scan(&fridge.ID, &fridge.Name, &fridge.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("fridge %s: %w", fridgeID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fridge: %w", err)
	}
	return fridge, nil
}

// ListMembers retrieves the members of a fridge, sorted by user ID.
func (s *SQLiteStore) ListMembers(ctx context.Context, fridgeID string) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+`
		 FROM fridge_memberships m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.fridge_id = ?
		 ORDER BY u.id`,
		fridgeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}
	return members, nil
}

// AddMember adds a user to a fridge. Adding an existing member is a no-op.
func (s *SQLiteStore) AddMember(ctx context.Context, fridgeID, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO fridge_memberships (fridge_id, user_id, joined_at) VALUES (?, ?, ?)",
		fridgeID, userID, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert membership: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE users SET active_fridge_id = ? WHERE id = ? AND (active_fridge_id IS NULL OR active_fridge_id = '')",
		fridgeID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to set active fridge: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RemoveMember removes a user from a fridge.
func (s *SQLiteStore) RemoveMember(ctx context.Context, fridgeID, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"DELETE FROM fridge_memberships WHERE fridge_id = ? AND user_id = ?",
		fridgeID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("membership %s/%s: %w", fridgeID, userID, storage.ErrNotFound)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE users SET active_fridge_id = NULL WHERE id = ? AND active_fridge_id = ?",
		userID, fridgeID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear active fridge: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ReconcileMemberships adds membership rows for users who point at the fridge
// as their active fridge but were never added to it.
func (s *SQLiteStore) ReconcileMemberships(ctx context.Context, fridgeID string) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM users
		 WHERE active_fridge_id = ?
		   AND id NOT IN (SELECT user_id FROM fridge_memberships WHERE fridge_id = ?)
		 ORDER BY id`,
		fridgeID, fridgeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find orphaned users: %w", err)
	}
	var added []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		added = append(added, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	rows.Close()

	now := time.Now().Unix()
	for _, id := range added {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO fridge_memberships (fridge_id, user_id, joined_at) VALUES (?, ?, ?)",
			fridgeID, id, now,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert membership: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return added, nil
}
