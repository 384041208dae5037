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

// CreatePurchase persists a new purchase and its sharers.
func (s *SQLiteStore) CreatePurchase(ctx context.Context, p *models.Purchase) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO fridge_items (id, fridge_id, title, price, added_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.FridgeID, p.Title, p.Price, p.AddedBy, toNanos(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert purchase: %w", err)
	}

	for _, userID := range p.SharedBy {
		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO fridge_item_sharers (item_id, user_id) VALUES (?, ?)",
			p.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert sharer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetPurchase retrieves a purchase by ID, including its sharers.
func (s *SQLiteStore) GetPurchase(ctx context.Context, purchaseID string) (*models.Purchase, error) {
	p := &models.Purchase{}
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, fridge_id, title, price, added_by, created_at FROM fridge_items WHERE id = ?",
		purchaseID,
	).Scan(&p.ID, &p.FridgeID, &p.Title, &p.Price, &p.AddedBy, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("purchase %s: %w", purchaseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	p.CreatedAt = fromNanos(createdAt)

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM fridge_item_sharers WHERE item_id = ? ORDER BY user_id",
		purchaseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get sharers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan sharer: %w", err)
		}
		p.SharedBy = append(p.SharedBy, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sharers: %w", err)
	}
	return p, nil
}

// ListPurchases retrieves all purchases for a fridge, oldest first.
func (s *SQLiteStore) ListPurchases(ctx context.Context, fridgeID string) ([]*models.Purchase, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fridge_id, title, price, added_by, created_at
		 FROM fridge_items WHERE fridge_id = ? ORDER BY created_at, id`,
		fridgeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}

	var purchases []*models.Purchase
	byID := make(map[string]*models.Purchase)
	for rows.Next() {
		p := &models.Purchase{}
		var createdAt int64
		if err := rows.Scan(&p.ID, &p.FridgeID, &p.Title, &p.Price, &p.AddedBy, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		p.CreatedAt = fromNanos(createdAt)
		purchases = append(purchases, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating purchases: %w", err)
	}
	rows.Close()

	// Load every sharer in one query instead of one per item.
	sharerRows, err := s.db.QueryContext(ctx,
		`SELECT s.item_id, s.user_id
		 FROM fridge_item_sharers s
		 JOIN fridge_items i ON i.id = s.item_id
		 WHERE i.fridge_id = ?
		 ORDER BY s.item_id, s.user_id`,
		fridgeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sharers: %w", err)
	}
	defer sharerRows.Close()
	for sharerRows.Next() {
		var itemID, userID string
		if err := sharerRows.Scan(&itemID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan sharer: %w", err)
		}
		if p, ok := byID[itemID]; ok {
			p.SharedBy = append(p.SharedBy, userID)
		}
	}
	if err := sharerRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sharers: %w", err)
	}

	return purchases, nil
}

// DeletePurchase removes a purchase. Its sharers cascade.
func (s *SQLiteStore) DeletePurchase(ctx context.Context, purchaseID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM fridge_items WHERE id = ?", purchaseID)
	if err != nil {
		return fmt.Errorf("failed to delete purchase: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("purchase %s: %w", purchaseID, storage.ErrNotFound)
	}
	return nil
}
