package service

import (
	"github.com/mmynk/fridgeshare/internal/calculator"
	"github.com/mmynk/fridgeshare/internal/ledger"
	"github.com/mmynk/fridgeshare/internal/models"
	"github.com/mmynk/fridgeshare/pkg/api"
)

func toAPIBalances(report *ledger.Report) []*api.Balance {
	users := make(map[string]*models.User, len(report.Balances))
	for _, row := range report.Balances {
		users[row.User.ID] = row.User
	}

	balances := make([]*api.Balance, 0, len(report.Balances))
	for _, row := range report.Balances {
		b := &api.Balance{
			UserID:    row.User.ID,
			Email:     row.User.Email,
			FirstName: row.User.FirstName,
			LastName:  row.User.LastName,
			Balance:   row.Balance,
			Breakdown: make([]*api.BreakdownItem, 0, len(row.Breakdown)),
			Items:     make([]*api.ContributingItem, 0, len(row.Items)),
		}
		if !row.LastClearedAt.IsZero() {
			t := row.LastClearedAt
			b.LastClearedAt = &t
		}

		for _, e := range row.Breakdown {
			item := &api.BreakdownItem{
				UserID:    e.CounterpartyID,
				Direction: string(e.Direction),
				Amount:    e.Amount,
			}
			if u := users[e.CounterpartyID]; u != nil {
				item.Email = u.Email
				item.FirstName = u.FirstName
				item.LastName = u.LastName
			}
			b.Breakdown = append(b.Breakdown, item)
		}

		for _, line := range row.Items {
			item := &api.ContributingItem{
				Type:              string(line.Type),
				ItemID:            line.ItemID,
				ItemTitle:         line.Title,
				Price:             line.Price,
				SplitWith:         line.SplitWith,
				AmountOwed:        line.AmountOwed,
				OutstandingAmount: line.Outstanding,
				AddedByID:         line.AddedBy,
				CreatedAt:         line.CreatedAt,
			}
			if u := users[line.AddedBy]; u != nil {
				item.AddedBy = u.DisplayName()
			}
			b.Items = append(b.Items, item)
		}

		balances = append(balances, b)
	}
	return balances
}

func toAPITransactions(txns []calculator.Transaction) []*api.Transaction {
	out := make([]*api.Transaction, len(txns))
	for i, t := range txns {
		out[i] = &api.Transaction{FromUserID: t.From, ToUserID: t.To, Amount: t.Amount}
	}
	return out
}

func toAPISettlements(settlements []*models.Settlement) []*api.Settlement {
	out := make([]*api.Settlement, len(settlements))
	for i, s := range settlements {
		out[i] = &api.Settlement{
			ID:         s.ID,
			FridgeID:   s.FridgeID,
			FromUserID: s.FromUserID,
			ToUserID:   s.ToUserID,
			Amount:     s.Amount,
			ClearedAt:  s.ClearedAt,
			CreatedBy:  s.CreatedBy,
			Note:       s.Note,
		}
	}
	return out
}

func toAPIPurchase(p *models.Purchase) *api.Purchase {
	return &api.Purchase{
		ID:        p.ID,
		FridgeID:  p.FridgeID,
		Title:     p.Title,
		Price:     p.Price,
		AddedBy:   p.AddedBy,
		SharedBy:  p.SharedBy,
		CreatedAt: p.CreatedAt,
	}
}
