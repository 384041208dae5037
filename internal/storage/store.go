// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/fridgeshare/internal/models"
)

var (
	// ErrNotFound is wrapped by every store when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is wrapped when an insert collides with a unique key,
	// such as a second user with the same email.
	ErrDuplicate = errors.New("already exists")
)

// HouseholdSource is everything the ledger engine needs from persistence.
type HouseholdSource interface {
	// ListMembers returns the current members of a fridge, sorted by user ID.
	// An unknown fridge has no members.
	ListMembers(ctx context.Context, fridgeID string) ([]*models.User, error)

	// ListPurchases returns the fridge's purchases, oldest first.
	ListPurchases(ctx context.Context, fridgeID string) ([]*models.Purchase, error)

	// ListSettlements returns the fridge's settlements, oldest first.
	ListSettlements(ctx context.Context, fridgeID string) ([]*models.Settlement, error)

	// InsertSettlements writes all settlements in one transaction: either
	// every row is stored or none is. Empty IDs and zero ClearedAt are filled
	// in by the store.
	InsertSettlements(ctx context.Context, settlements []*models.Settlement) error
}

// Store defines the full set of storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	HouseholdSource

	// CreateUser persists a new user. user.ID and user.CreatedAt are
	// populated by the store when empty.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// CreateFridge persists a new fridge. fridge.ID and fridge.CreatedAt are
	// populated by the store when empty.
	CreateFridge(ctx context.Context, fridge *models.Fridge) error

	// GetFridge retrieves a fridge by ID.
	GetFridge(ctx context.Context, fridgeID string) (*models.Fridge, error)

	// AddMember adds a user to a fridge. The fridge becomes the user's active
	// fridge if they have none.
	AddMember(ctx context.Context, fridgeID, userID string) error

	// RemoveMember removes a user from a fridge and clears it as their
	// active fridge.
	RemoveMember(ctx context.Context, fridgeID, userID string) error

	// ReconcileMemberships inserts the missing membership rows for users whose
	// active fridge is fridgeID. It returns the IDs of the users it added.
	ReconcileMemberships(ctx context.Context, fridgeID string) ([]string, error)

	// CreatePurchase persists a new purchase. p.ID and p.CreatedAt are
	// populated by the store when empty.
	CreatePurchase(ctx context.Context, p *models.Purchase) error

	// GetPurchase retrieves a purchase by ID.
	GetPurchase(ctx context.Context, purchaseID string) (*models.Purchase, error)

	// DeletePurchase removes a purchase.
	DeletePurchase(ctx context.Context, purchaseID string) error

	// Close releases any resources held by the store.
	Close() error
}
