package ledger

import (
	"errors"
	"sort"
	"time"

	"github.com/mmynk/fridgeshare/internal/calculator"
	"github.com/mmynk/fridgeshare/internal/metrics"
	"github.com/mmynk/fridgeshare/internal/models"
)

// Direction tells which way money flows in a breakdown entry.
type Direction string

const (
	// DirectionOwes means the user owes the counterparty.
	DirectionOwes Direction = "owes"
	// DirectionOwedBy means the counterparty owes the user.
	DirectionOwedBy Direction = "owed_by"
)

// ItemType says whether the user bought an item or shares its cost.
type ItemType string

const (
	ItemPaid   ItemType = "paid"
	ItemShared ItemType = "shared"
)

// BreakdownEntry is one suggested payment seen from a single user.
type BreakdownEntry struct {
	CounterpartyID string
	Direction      Direction
	Amount         float64
}

// ItemLine is an item that still contributes to a user's balance.
type ItemLine struct {
	Type      ItemType
	ItemID    string
	Title     string
	Price     float64
	AddedBy   string
	CreatedAt time.Time
	// SplitWith counts the other sharers of a paid item.
	SplitWith int
	// AmountOwed is the original debt: the user's share for shared items,
	// the sum of everyone else's shares for paid items.
	AmountOwed float64
	// Outstanding is what is left of AmountOwed after settlements.
	Outstanding float64
}

// UserBalance is one row of a balance report.
type UserBalance struct {
	User          *models.User
	Balance       float64
	Breakdown     []BreakdownEntry
	Items         []ItemLine
	LastClearedAt time.Time // zero when the user never settled
}

// Report is the balance view of a fridge.
type Report struct {
	FridgeID string
	// Balances is sorted by balance descending, then user ID.
	Balances     []UserBalance
	Transactions []calculator.Transaction
}

// Balance returns the row for userID.
func (r *Report) Balance(userID string) (UserBalance, bool) {
	for _, b := range r.Balances {
		if b.User.ID == userID {
			return b, true
		}
	}
	return UserBalance{}, false
}

func (e *Engine) buildReport(snap *Snapshot) *Report {
	balances := snap.Ledger.NetBalances()
	if sum := calculator.SumBalances(balances); !calculator.IsZero(sum) {
		e.integrityWarning(metrics.KindZeroSum, "Balances do not sum to zero",
			"fridge_id", snap.FridgeID, "sum", sum)
	}

	txns, err := calculator.SimplifyDebtsWithLimit(balances, e.maxIterations)
	switch {
	case errors.Is(err, calculator.ErrIterationCap):
		e.integrityWarning(metrics.KindIterationCap, "Debt simplification hit iteration cap",
			"fridge_id", snap.FridgeID, "max_iterations", e.maxIterations, "transactions", len(txns))
	case errors.Is(err, calculator.ErrUnbalanced):
		e.integrityWarning(metrics.KindUnbalanced, "Debt simplification left unmatched balances",
			"fridge_id", snap.FridgeID, "transactions", len(txns))
	}

	lastCleared := make(map[string]time.Time)
	for _, s := range snap.Settlements {
		for _, id := range []string{s.FromUserID, s.ToUserID} {
			if s.ClearedAt.After(lastCleared[id]) {
				lastCleared[id] = s.ClearedAt
			}
		}
	}

	report := &Report{FridgeID: snap.FridgeID, Transactions: txns}
	for _, m := range snap.Members {
		report.Balances = append(report.Balances, UserBalance{
			User:          m,
			Balance:       balances[m.ID],
			Breakdown:     breakdown(m.ID, txns),
			Items:         itemLines(m.ID, snap.Ledger),
			LastClearedAt: lastCleared[m.ID],
		})
	}
	sort.SliceStable(report.Balances, func(i, j int) bool {
		a, b := report.Balances[i], report.Balances[j]
		if a.Balance != b.Balance {
			return a.Balance > b.Balance
		}
		return a.User.ID < b.User.ID
	})
	return report
}

// breakdown lists owed_by entries first, then owes; txns are already sorted
// by amount.
func breakdown(userID string, txns []calculator.Transaction) []BreakdownEntry {
	var owedBy, owes []BreakdownEntry
	for _, t := range txns {
		switch userID {
		case t.To:
			owedBy = append(owedBy, BreakdownEntry{CounterpartyID: t.From, Direction: DirectionOwedBy, Amount: t.Amount})
		case t.From:
			owes = append(owes, BreakdownEntry{CounterpartyID: t.To, Direction: DirectionOwes, Amount: t.Amount})
		}
	}
	return append(owedBy, owes...)
}

func itemLines(userID string, l *calculator.Ledger) []ItemLine {
	var lines []ItemLine
	for _, a := range l.Allocations {
		if a.PurchaserID == userID {
			var owed, outstanding float64
			others := 0
			for _, s := range a.Shares {
				if s.UserID == userID {
					continue
				}
				others++
				owed += s.Amount
				outstanding += l.Remaining(s.UserID, userID, a.ItemID)
			}
			if calculator.IsZero(outstanding) {
				continue
			}
			lines = append(lines, ItemLine{
				Type:        ItemPaid,
				ItemID:      a.ItemID,
				Title:       a.Title,
				Price:       a.Price,
				AddedBy:     a.PurchaserID,
				CreatedAt:   a.CreatedAt,
				SplitWith:   others,
				AmountOwed:  calculator.Round2(owed),
				Outstanding: calculator.Round2(outstanding),
			})
			continue
		}

		for _, s := range a.Shares {
			if s.UserID != userID {
				continue
			}
			outstanding := l.Remaining(userID, a.PurchaserID, a.ItemID)
			if calculator.IsZero(outstanding) {
				break
			}
			lines = append(lines, ItemLine{
				Type:        ItemShared,
				ItemID:      a.ItemID,
				Title:       a.Title,
				Price:       a.Price,
				AddedBy:     a.PurchaserID,
				CreatedAt:   a.CreatedAt,
				AmountOwed:  s.Amount,
				Outstanding: outstanding,
			})
			break
		}
	}
	return lines
}
