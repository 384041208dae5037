// Package postgres provides a PostgreSQL-backed implementation of the
// storage.Store interface.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mmynk/fridgeshare/internal/models"
	"github.com/mmynk/fridgeshare/internal/storage"
)

var _ storage.Store = (*PostgresStore)(nil)

// PostgresStore implements storage.Store on PostgreSQL via lib/pq.
type PostgresStore struct {
	db *sql.DB
}

// New connects to the database named by dsn and runs migrations.
func New(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation"
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// CreateUser persists a new user.
func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, first_name, last_name, active_fridge_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Email, user.FirstName, user.LastName, nullString(user.ActiveFridgeID), user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", user.Email, storage.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func scanUser(scan func(dest ...interface{}) error) (*models.User, error) {
	user := &models.User{}
	var activeFridge sql.NullString
	if err := scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &activeFridge, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.ActiveFridgeID = activeFridge.String
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *PostgresStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, first_name, last_name, active_fridge_id, created_at
		 FROM users WHERE id = $1`, userID)
	user, err := scanUser(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// CreateFridge persists a new fridge.
func (s *PostgresStore) CreateFridge(ctx context.Context, fridge *models.Fridge) error {
	if fridge.ID == "" {
		fridge.ID = uuid.New().String()
	}
	if fridge.CreatedAt == 0 {
		fridge.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO fridges (id, name, created_at) VALUES ($1, $2, $3)",
		fridge.ID, fridge.Name, fridge.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fridge: %w", err)
	}
	return nil
}

// GetFridge retrieves a fridge by ID.
func (s *PostgresStore) GetFridge(ctx context.Context, fridgeID string) (*models.Fridge, error) {
	fridge := &models.Fridge{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM fridges WHERE id = $1", fridgeID,
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
func (s *PostgresStore) ListMembers(ctx context.Context, fridgeID string) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.email, u.first_name, u.last_name, u.active_fridge_id, u.created_at
		 FROM fridge_memberships m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.fridge_id = $1
		 ORDER BY u.id`,
		fridgeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.User
	for rows.Next() {
		user, err := scanUser(rows.Scan)
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
func (s *PostgresStore) AddMember(ctx context.Context, fridgeID, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO fridge_memberships (fridge_id, user_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		fridgeID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert membership: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE users SET active_fridge_id = $1
		 WHERE id = $2 AND (active_fridge_id IS NULL OR active_fridge_id = '')`,
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
func (s *PostgresStore) RemoveMember(ctx context.Context, fridgeID, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"DELETE FROM fridge_memberships WHERE fridge_id = $1 AND user_id = $2",
		fridgeID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("membership %s/%s: %w", fridgeID, userID, storage.ErrNotFound)
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE users SET active_fridge_id = NULL WHERE id = $1 AND active_fridge_id = $2",
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
func (s *PostgresStore) ReconcileMemberships(ctx context.Context, fridgeID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`INSERT INTO fridge_memberships (fridge_id, user_id)
		 SELECT $1::text, u.id FROM users u
		 WHERE u.active_fridge_id = $1
		   AND NOT EXISTS (
		       SELECT 1 FROM fridge_memberships m
		       WHERE m.fridge_id = $1 AND m.user_id = u.id)
		 ON CONFLICT DO NOTHING
		 RETURNING user_id`,
		fridgeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile memberships: %w", err)
	}
	defer rows.Close()

	var added []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		added = append(added, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	sort.Strings(added)
	return added, nil
}

// CreatePurchase persists a new purchase. Sharers are stored as a TEXT[] column.
func (s *PostgresStore) CreatePurchase(ctx context.Context, p *models.Purchase) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	sharedBy := dedupe(p.SharedBy)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fridge_items (id, fridge_id, title, price, added_by, shared_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.FridgeID, p.Title, p.Price, p.AddedBy, pq.Array(sharedBy), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert purchase: %w", err)
	}
	return nil
}

const purchaseColumns = "id, fridge_id, title, price, added_by, shared_by, created_at"

func scanPurchase(scan func(dest ...interface{}) error) (*models.Purchase, error) {
	p := &models.Purchase{}
	var sharedBy []string
	if err := scan(&p.ID, &p.FridgeID, &p.Title, &p.Price, &p.AddedBy, pq.Array(&sharedBy), &p.CreatedAt); err != nil {
		return nil, err
	}
	if len(sharedBy) > 0 {
		p.SharedBy = sharedBy
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

// GetPurchase retrieves a purchase by ID.
func (s *PostgresStore) GetPurchase(ctx context.Context, purchaseID string) (*models.Purchase, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+purchaseColumns+" FROM fridge_items WHERE id = $1", purchaseID)
	p, err := scanPurchase(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("purchase %s: %w", purchaseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	return p, nil
}

// ListPurchases retrieves all purchases for a fridge, oldest first.
func (s *PostgresStore) ListPurchases(ctx context.Context, fridgeID string) ([]*models.Purchase, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+purchaseColumns+" FROM fridge_items WHERE fridge_id = $1 ORDER BY created_at, id",
		fridgeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []*models.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchases: %w", err)
	}
	return purchases, nil
}

// DeletePurchase removes a purchase.
func (s *PostgresStore) DeletePurchase(ctx context.Context, purchaseID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM fridge_items WHERE id = $1", purchaseID)
	if err != nil {
		return fmt.Errorf("failed to delete purchase: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("purchase %s: %w", purchaseID, storage.ErrNotFound)
	}
	return nil
}

// InsertSettlements persists a batch of settlements in a single transaction.
func (s *PostgresStore) InsertSettlements(ctx context.Context, settlements []*models.Settlement) error {
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
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			st.ID, st.FridgeID, st.FromUserID, st.ToUserID,
			st.Amount, st.ClearedAt, st.CreatedBy, nullString(st.Note),
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
func (s *PostgresStore) ListSettlements(ctx context.Context, fridgeID string) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fridge_id, from_user_id, to_user_id, amount, cleared_at, created_by, note
		 FROM settlements WHERE fridge_id = $1 ORDER BY cleared_at, id`,
		fridgeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		st := &models.Settlement{}
		var note sql.NullString
		if err := rows.Scan(&st.ID, &st.FridgeID, &st.FromUserID, &st.ToUserID,
			&st.Amount, &st.ClearedAt, &st.CreatedBy, &note); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		st.ClearedAt = st.ClearedAt.UTC()
		st.Note = note.String
		settlements = append(settlements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settlements: %w", err)
	}
	return settlements, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
