package models

import "time"

// Settlement represents a payment between fridge members to clear debts.
// Settlements are append-only.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// FridgeID is the household this settlement belongs to.
	FridgeID string

	// FromUserID is the user who paid (debtor settling up).
	FromUserID string

	// ToUserID is the user who received payment (creditor being paid).
	ToUserID string

	// Amount is the payment amount, always positive.
	Amount float64

	// ClearedAt is when the settlement was recorded.
	ClearedAt time.Time

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string

	// Note is an optional description for the settlement.
	Note string
}
