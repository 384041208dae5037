package calculator

import (
	"sort"
	"time"
)

// PurchaseForLedger represents a purchase with the minimal information needed
// for balance calculations.
type PurchaseForLedger struct {
	ID          string
	Title       string
	Price       float64
	PurchaserID string
	SharedBy    []string // empty = every member
	CreatedAt   time.Time
}

// SettlementForLedger represents a settlement with the minimal information
// needed for balance calculations.
type SettlementForLedger struct {
	ID         string
	FromUserID string // debtor settling up
	ToUserID   string // creditor being paid
	Amount     float64
	ClearedAt  time.Time
}

// Contribution is what one debtor owes one creditor for one purchase.
// Remaining never exceeds Original and never goes below zero.
type Contribution struct {
	ItemID    string
	Original  float64
	Remaining float64
	CreatedAt time.Time
}

// Allocation records how a purchase was split.
type Allocation struct {
	ItemID      string
	Title       string
	Price       float64
	PurchaserID string
	Shares      []Share
	CreatedAt   time.Time
}

// Ledger is the pairwise contribution ledger for one fridge.
type Ledger struct {
	// Members are the current members, sorted by ID.
	Members []string

	// Allocations lists every purchase that produced shares, oldest first.
	Allocations []Allocation

	// Unapplied holds settlement amounts that found no remaining debt.
	Unapplied []SettlementForLedger

	memberSet map[string]bool
	// pairs[debtor][creditor] is ordered oldest purchase first.
	pairs map[string]map[string][]*Contribution
}

// BuildLedger computes the pairwise ledger from purchases and settlements.
//
// Algorithm:
//   - For each purchase: resolve sharers, split the price evenly in cents and
//     record what each non-purchaser sharer owes the purchaser
//   - Order each debtor/creditor list by purchase time (oldest first)
//   - Replay settlements chronologically, paying down the oldest obligations
//     first
func BuildLedger(members []string, purchases []PurchaseForLedger, settlements []SettlementForLedger) *Ledger {
	l := &Ledger{
		Members:   append([]string(nil), members...),
		memberSet: make(map[string]bool, len(members)),
		pairs:     make(map[string]map[string][]*Contribution),
	}
	sort.Strings(l.Members)
	for _, m := range l.Members {
		l.memberSet[m] = true
	}

	ordered := append([]PurchaseForLedger(nil), purchases...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	for _, p := range ordered {
		l.addPurchase(p)
	}

	replay := append([]SettlementForLedger(nil), settlements...)
	sort.SliceStable(replay, func(i, j int) bool {
		if !replay[i].ClearedAt.Equal(replay[j].ClearedAt) {
			return replay[i].ClearedAt.Before(replay[j].ClearedAt)
		}
		return replay[i].ID < replay[j].ID
	})
	for _, s := range replay {
		l.Apply(s)
	}

	return l
}

func (l *Ledger) addPurchase(p PurchaseForLedger) {
	// Skip purchases with no price or a purchaser who left the fridge
	if p.Price <= 0 || !l.memberSet[p.PurchaserID] {
		return
	}

	sharers := ResolveSharers(p.SharedBy, l.Members)
	if len(sharers) == 0 {
		return
	}

	shares := SplitEvenly(p.Price, sharers, p.PurchaserID)
	l.Allocations = append(l.Allocations, Allocation{
		ItemID:      p.ID,
		Title:       p.Title,
		Price:       p.Price,
		PurchaserID: p.PurchaserID,
		Shares:      shares,
		CreatedAt:   p.CreatedAt,
	})

	for _, share := range shares {
		if share.UserID == p.PurchaserID || IsZero(share.Amount) {
			continue
		}
		if l.pairs[share.UserID] == nil {
			l.pairs[share.UserID] = make(map[string][]*Contribution)
		}
		l.pairs[share.UserID][p.PurchaserID] = append(l.pairs[share.UserID][p.PurchaserID], &Contribution{
			ItemID:    p.ID,
			Original:  share.Amount,
			Remaining: share.Amount,
			CreatedAt: p.CreatedAt,
		})
	}
}

// Apply pays down the debtor's obligations to the creditor, oldest first.
// It returns the part of the amount that could not be applied; that part is
// also appended to Unapplied.
func (l *Ledger) Apply(s SettlementForLedger) float64 {
	left := Round2(s.Amount)
	if left <= 0 {
		return 0
	}

	for _, c := range l.pairs[s.FromUserID][s.ToUserID] {
		if IsZero(left) {
			break
		}
		if IsZero(c.Remaining) {
			continue
		}
		applied := c.Remaining
		if left < applied {
			applied = left
		}
		c.Remaining = Round2(c.Remaining - applied)
		left = Round2(left - applied)
	}

	if IsZero(left) {
		return 0
	}
	unapplied := s
	unapplied.Amount = left
	l.Unapplied = append(l.Unapplied, unapplied)
	return left
}

// Contributions returns a copy of what debtor owes creditor, oldest first.
func (l *Ledger) Contributions(debtor, creditor string) []Contribution {
	list := l.pairs[debtor][creditor]
	out := make([]Contribution, len(list))
	for i, c := range list {
		out[i] = *c
	}
	return out
}

// PairTotal is the outstanding amount debtor owes creditor.
func (l *Ledger) PairTotal(debtor, creditor string) float64 {
	var total float64
	for _, c := range l.pairs[debtor][creditor] {
		if !IsZero(c.Remaining) {
			total += c.Remaining
		}
	}
	return Round2(total)
}

// Remaining is what debtor still owes creditor for one item.
func (l *Ledger) Remaining(debtor, creditor, itemID string) float64 {
	for _, c := range l.pairs[debtor][creditor] {
		if c.ItemID == itemID {
			return c.Remaining
		}
	}
	return 0
}

// Counterparts returns every user that has a pairwise entry with userID, in
// either direction, sorted by ID.
func (l *Ledger) Counterparts(userID string) []string {
	seen := make(map[string]bool)
	for creditor := range l.pairs[userID] {
		seen[creditor] = true
	}
	for debtor, creditors := range l.pairs {
		if _, ok := creditors[userID]; ok {
			seen[debtor] = true
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// NetBalances returns each member's net position from the remaining pairwise
// amounts. Positive = owed money, negative = owes money.
func (l *Ledger) NetBalances() map[string]float64 {
	balances := make(map[string]float64, len(l.Members))
	for _, m := range l.Members {
		balances[m] = 0
	}

	for debtor, creditors := range l.pairs {
		for creditor := range creditors {
			total := l.PairTotal(debtor, creditor)
			if IsZero(total) {
				continue
			}
			balances[creditor] += total
			balances[debtor] -= total
		}
	}

	for id, b := range balances {
		balances[id] = Round2(b)
	}
	return balances
}
