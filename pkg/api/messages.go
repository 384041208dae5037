package api

import "time"

// Transaction is a suggested payment that settles part of the fridge's debts.
type Transaction struct {
	FromUserID string  `json:"from_user_id"`
	ToUserID   string  `json:"to_user_id"`
	Amount     float64 `json:"amount"`
}

// BreakdownItem is one suggested payment as seen by a single user.
type BreakdownItem struct {
	UserID    string  `json:"user_id"`
	Email     string  `json:"email,omitempty"`
	FirstName string  `json:"first_name,omitempty"`
	LastName  string  `json:"last_name,omitempty"`
	Direction string  `json:"direction"` // "owes" or "owed_by"
	Amount    float64 `json:"amount"`
}

// ContributingItem is a purchase that still affects a user's balance.
type ContributingItem struct {
	Type              string    `json:"type"` // "paid" or "shared"
	ItemID            string    `json:"item_id"`
	ItemTitle         string    `json:"item_title"`
	Price             float64   `json:"price"`
	SplitWith         int       `json:"split_with,omitempty"`
	AmountOwed        float64   `json:"amount_owed"`
	OutstandingAmount float64   `json:"outstanding_amount"`
	AddedByID         string    `json:"added_by_id"`
	AddedBy           string    `json:"added_by,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Balance is one member's position in the fridge.
type Balance struct {
	UserID        string              `json:"user_id"`
	Email         string              `json:"email"`
	FirstName     string              `json:"first_name,omitempty"`
	LastName      string              `json:"last_name,omitempty"`
	Balance       float64             `json:"balance"`
	Breakdown     []*BreakdownItem    `json:"breakdown"`
	Items         []*ContributingItem `json:"items"`
	LastClearedAt *time.Time          `json:"last_cleared_at,omitempty"`
}

// Settlement is a recorded payment between two members.
type Settlement struct {
	ID         string    `json:"id"`
	FridgeID   string    `json:"fridge_id"`
	FromUserID string    `json:"from_user_id"`
	ToUserID   string    `json:"to_user_id"`
	Amount     float64   `json:"amount"`
	ClearedAt  time.Time `json:"cleared_at"`
	CreatedBy  string    `json:"created_by"`
	Note       string    `json:"note,omitempty"`
}

// Purchase is a fridge item with a price.
type Purchase struct {
	ID        string    `json:"id"`
	FridgeID  string    `json:"fridge_id"`
	Title     string    `json:"title"`
	Price     float64   `json:"price"`
	AddedBy   string    `json:"added_by"`
	SharedBy  []string  `json:"shared_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GetBalancesRequest asks for a fridge's balances. An empty FridgeID means
// the caller's active fridge.
type GetBalancesRequest struct {
	FridgeID string `json:"fridge_id,omitempty"`
}

type GetBalancesResponse struct {
	FridgeID     string         `json:"fridge_id"`
	Balances     []*Balance     `json:"balances"`
	Transactions []*Transaction `json:"transactions"`
}

// ClearUserBalanceRequest settles every debt of UserID in the fridge.
type ClearUserBalanceRequest struct {
	FridgeID string `json:"fridge_id,omitempty"`
	UserID   string `json:"user_id"`
}

type ClearUserBalanceResponse struct {
	FridgeID       string         `json:"fridge_id"`
	AlreadySettled bool           `json:"already_settled"`
	Settlements    []*Settlement  `json:"settlements"`
	Balances       []*Balance     `json:"balances"`
	Transactions   []*Transaction `json:"transactions"`
}

type ListSettlementsRequest struct {
	FridgeID string `json:"fridge_id,omitempty"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

// AddPurchaseRequest logs an item bought by the caller. An empty SharedBy
// means every member shares it.
type AddPurchaseRequest struct {
	FridgeID string   `json:"fridge_id,omitempty"`
	Title    string   `json:"title"`
	Price    float64  `json:"price"`
	SharedBy []string `json:"shared_by,omitempty"`
}

type AddPurchaseResponse struct {
	Purchase *Purchase `json:"purchase"`
}

type ListPurchasesRequest struct {
	FridgeID string `json:"fridge_id,omitempty"`
}

type ListPurchasesResponse struct {
	Purchases []*Purchase `json:"purchases"`
}

type DeletePurchaseRequest struct {
	PurchaseID string `json:"purchase_id"`
}

type DeletePurchaseResponse struct{}
