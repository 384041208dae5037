package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/fridgeshare/internal/models"
	"github.com/mmynk/fridgeshare/internal/storage"
)

// newTestStore connects to the database in FRIDGESHARE_TEST_POSTGRES_DSN.
// Rows are keyed by fresh UUIDs so runs do not interfere.
func newTestStore(t *testing.T) *PostgresStore {
	t.Helper()
	dsn := os.Getenv("FRIDGESHARE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("FRIDGESHARE_TEST_POSTGRES_DSN not set")
	}
	store, err := New(dsn)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPostgresStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fridge := &models.Fridge{Name: "Shared House"}
	if err := store.CreateFridge(ctx, fridge); err != nil {
		t.Fatalf("CreateFridge failed: %v", err)
	}
	var ids []string
	for i := 0; i < 2; i++ {
		user := &models.User{Email: uuid.NewString() + "@example.com"}
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if err := store.AddMember(ctx, fridge.ID, user.ID); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
		ids = append(ids, user.ID)
	}

	t.Run("duplicate email", func(t *testing.T) {
		user, _ := store.GetUser(ctx, ids[0])
		err := store.CreateUser(ctx, &models.User{Email: user.Email})
		if !errors.Is(err, storage.ErrDuplicate) {
			t.Errorf("Expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("purchases keep sharers", func(t *testing.T) {
		p := &models.Purchase{
			FridgeID:  fridge.ID,
			Title:     "Milk",
			Price:     10,
			AddedBy:   ids[0],
			SharedBy:  []string{ids[1], ids[1]},
			CreatedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		}
		if err := store.CreatePurchase(ctx, p); err != nil {
			t.Fatalf("CreatePurchase failed: %v", err)
		}
		purchases, err := store.ListPurchases(ctx, fridge.ID)
		if err != nil {
			t.Fatalf("ListPurchases failed: %v", err)
		}
		if len(purchases) != 1 || len(purchases[0].SharedBy) != 1 {
			t.Fatalf("Unexpected purchases: %+v", purchases)
		}
		if !purchases[0].CreatedAt.Equal(p.CreatedAt) {
			t.Errorf("Expected CreatedAt %v, got %v", p.CreatedAt, purchases[0].CreatedAt)
		}
	})

	t.Run("settlements are atomic", func(t *testing.T) {
		bad := []*models.Settlement{
			{FridgeID: fridge.ID, FromUserID: ids[1], ToUserID: ids[0], Amount: 3},
			{FridgeID: fridge.ID, FromUserID: ids[1], ToUserID: ids[0], Amount: -1},
		}
		if err := store.InsertSettlements(ctx, bad); err == nil {
			t.Fatal("Expected error for negative amount")
		}
		good := []*models.Settlement{
			{FridgeID: fridge.ID, FromUserID: ids[1], ToUserID: ids[0], Amount: 5},
		}
		if err := store.InsertSettlements(ctx, good); err != nil {
			t.Fatalf("InsertSettlements failed: %v", err)
		}
		settlements, err := store.ListSettlements(ctx, fridge.ID)
		if err != nil {
			t.Fatalf("ListSettlements failed: %v", err)
		}
		if len(settlements) != 1 || settlements[0].Amount != 5 {
			t.Errorf("Unexpected settlements: %+v", settlements)
		}
	})

	t.Run("reconcile memberships", func(t *testing.T) {
		orphan := &models.User{Email: uuid.NewString() + "@example.com", ActiveFridgeID: fridge.ID}
		if err := store.CreateUser(ctx, orphan); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		added, err := store.ReconcileMemberships(ctx, fridge.ID)
		if err != nil {
			t.Fatalf("ReconcileMemberships failed: %v", err)
		}
		if len(added) != 1 || added[0] != orphan.ID {
			t.Errorf("Expected [%s], got %v", orphan.ID, added)
		}
	})
}
