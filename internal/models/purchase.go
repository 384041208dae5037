package models

import "time"

// Purchase represents a fridge item bought by one member.
// Purchases are immutable for ledger purposes; removing an item deletes it.
type Purchase struct {
	// ID is the unique identifier for the purchase (UUID format).
	ID string

	// FridgeID is the household the purchase belongs to.
	FridgeID string

	// Title is the item name (e.g., "Milk").
	Title string

	// Price is what the purchaser paid. Zero-priced items never create debt.
	Price float64

	// AddedBy is the user ID of the purchaser.
	AddedBy string

	// SharedBy lists the user IDs splitting the cost.
	// Empty means the item is shared by every current member of the fridge.
	SharedBy []string

	// CreatedAt orders the item's obligations; older items are settled first.
	CreatedAt time.Time
}
