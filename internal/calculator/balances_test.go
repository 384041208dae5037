package calculator

import (
	"math"
	"reflect"
	"testing"
	"time"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return base.Add(time.Duration(minutes) * time.Minute)
}

func assertBalance(t *testing.T, balances map[string]float64, user string, want float64) {
	t.Helper()
	if math.Abs(balances[user]-want) > 1e-9 {
		t.Errorf("balance[%s] = %v, want %v", user, balances[user], want)
	}
}

func TestBuildLedger(t *testing.T) {
	members := []string{"A", "B", "C"}

	tests := []struct {
		name         string
		purchases    []PurchaseForLedger
		settlements  []SettlementForLedger
		validateFunc func(t *testing.T, l *Ledger)
	}{
		{
			name: "shared by everyone with remainder",
			purchases: []PurchaseForLedger{
				{ID: "p1", Price: 10, PurchaserID: "A", CreatedAt: at(0)},
			},
			validateFunc: func(t *testing.T, l *Ledger) {
				b := l.NetBalances()
				assertBalance(t, b, "A", 6.67)
				assertBalance(t, b, "B", -3.34)
				assertBalance(t, b, "C", -3.33)
				if got := l.PairTotal("B", "A"); got != 3.34 {
					t.Errorf("PairTotal(B, A) = %v, want 3.34", got)
				}
				if got := l.PairTotal("A", "A"); got != 0 {
					t.Errorf("self obligation recorded: %v", got)
				}
			},
		},
		{
			name: "purchaser excluded from sharers",
			purchases: []PurchaseForLedger{
				{ID: "p1", Price: 9, PurchaserID: "A", SharedBy: []string{"B", "C"}, CreatedAt: at(0)},
			},
			validateFunc: func(t *testing.T, l *Ledger) {
				b := l.NetBalances()
				assertBalance(t, b, "A", 9)
				assertBalance(t, b, "B", -4.5)
				assertBalance(t, b, "C", -4.5)
			},
		},
		{
			name: "settlement pays oldest item first",
			purchases: []PurchaseForLedger{
				{ID: "p2", Price: 7, PurchaserID: "A", SharedBy: []string{"B"}, CreatedAt: at(10)},
				{ID: "p1", Price: 5, PurchaserID: "A", SharedBy: []string{"B"}, CreatedAt: at(0)},
			},
			settlements: []SettlementForLedger{
				{ID: "s1", FromUserID: "B", ToUserID: "A", Amount: 5, ClearedAt: at(20)},
			},
			validateFunc: func(t *testing.T, l *Ledger) {
				got := l.Contributions("B", "A")
				want := []Contribution{
					{ItemID: "p1", Original: 5, Remaining: 0, CreatedAt: at(0)},
					{ItemID: "p2", Original: 7, Remaining: 7, CreatedAt: at(10)},
				}
				if !reflect.DeepEqual(got, want) {
					t.Errorf("Contributions(B, A) = %+v, want %+v", got, want)
				}
				assertBalance(t, l.NetBalances(), "B", -7)
			},
		},
		{
			name: "excess settlement is dropped",
			purchases: []PurchaseForLedger{
				{ID: "p1", Price: 4, PurchaserID: "A", SharedBy: []string{"B"}, CreatedAt: at(0)},
			},
			settlements: []SettlementForLedger{
				{ID: "s1", FromUserID: "B", ToUserID: "A", Amount: 6, ClearedAt: at(5)},
				{ID: "s2", FromUserID: "C", ToUserID: "A", Amount: 2, ClearedAt: at(6)},
			},
			validateFunc: func(t *testing.T, l *Ledger) {
				assertBalance(t, l.NetBalances(), "B", 0)
				assertBalance(t, l.NetBalances(), "A", 0)
				if len(l.Unapplied) != 2 {
					t.Fatalf("Unapplied = %v, want 2 entries", l.Unapplied)
				}
				if l.Unapplied[0].Amount != 2 || l.Unapplied[1].Amount != 2 {
					t.Errorf("Unapplied amounts = %v, want [2 2]", l.Unapplied)
				}
			},
		},
		{
			name: "skips free items, non-member purchasers and empty sharer sets",
			purchases: []PurchaseForLedger{
				{ID: "p1", Price: 0, PurchaserID: "A", CreatedAt: at(0)},
				{ID: "p2", Price: 8, PurchaserID: "Zed", CreatedAt: at(1)},
				{ID: "p3", Price: 8, PurchaserID: "A", SharedBy: []string{"Zed"}, CreatedAt: at(2)},
				{ID: "p4", Price: -3, PurchaserID: "B", CreatedAt: at(3)},
			},
			validateFunc: func(t *testing.T, l *Ledger) {
				for _, m := range members {
					assertBalance(t, l.NetBalances(), m, 0)
				}
				if len(l.Allocations) != 0 {
					t.Errorf("Allocations = %v, want none", l.Allocations)
				}
			},
		},
		{
			name: "mutual debts stay pairwise",
			purchases: []PurchaseForLedger{
				{ID: "p1", Price: 6, PurchaserID: "A", SharedBy: []string{"A", "B"}, CreatedAt: at(0)},
				{ID: "p2", Price: 4, PurchaserID: "B", SharedBy: []string{"A", "B"}, CreatedAt: at(1)},
			},
			validateFunc: func(t *testing.T, l *Ledger) {
				if got := l.PairTotal("B", "A"); got != 3 {
					t.Errorf("PairTotal(B, A) = %v, want 3", got)
				}
				if got := l.PairTotal("A", "B"); got != 2 {
					t.Errorf("PairTotal(A, B) = %v, want 2", got)
				}
				assertBalance(t, l.NetBalances(), "A", 1)
				assertBalance(t, l.NetBalances(), "B", -1)
				if got := l.Counterparts("A"); !reflect.DeepEqual(got, []string{"B"}) {
					t.Errorf("Counterparts(A) = %v, want [B]", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := BuildLedger(members, tt.purchases, tt.settlements)
			if sum := SumBalances(l.NetBalances()); sum != 0 {
				t.Errorf("balances sum to %v, want 0", sum)
			}
			tt.validateFunc(t, l)
		})
	}
}

func TestBuildLedger_Empty(t *testing.T) {
	l := BuildLedger(nil, nil, nil)
	if len(l.NetBalances()) != 0 {
		t.Errorf("expected no balances, got %v", l.NetBalances())
	}
}

func TestBuildLedger_Deterministic(t *testing.T) {
	members := []string{"D", "A", "C", "B"}
	purchases := []PurchaseForLedger{
		{ID: "p1", Price: 17.23, PurchaserID: "A", CreatedAt: at(0)},
		{ID: "p2", Price: 3.10, PurchaserID: "B", SharedBy: []string{"C", "D"}, CreatedAt: at(1)},
		{ID: "p3", Price: 41, PurchaserID: "C", SharedBy: []string{"A", "B", "C"}, CreatedAt: at(1)},
		{ID: "p4", Price: 0.07, PurchaserID: "D", CreatedAt: at(2)},
	}
	settlements := []SettlementForLedger{
		{ID: "s1", FromUserID: "C", ToUserID: "A", Amount: 2.5, ClearedAt: at(3)},
		{ID: "s2", FromUserID: "A", ToUserID: "C", Amount: 20, ClearedAt: at(4)},
	}

	first := BuildLedger(members, purchases, settlements)
	for i := 0; i < 10; i++ {
		again := BuildLedger(members, purchases, settlements)
		if !reflect.DeepEqual(first.NetBalances(), again.NetBalances()) {
			t.Fatalf("balances differ between runs: %v vs %v", first.NetBalances(), again.NetBalances())
		}
		for _, debtor := range members {
			for _, creditor := range members {
				if !reflect.DeepEqual(first.Contributions(debtor, creditor), again.Contributions(debtor, creditor)) {
					t.Fatalf("pairwise ledger %s->%s differs between runs", debtor, creditor)
				}
			}
		}
	}
	if sum := SumBalances(first.NetBalances()); sum != 0 {
		t.Errorf("balances sum to %v, want 0", sum)
	}
}

func TestLedger_Remaining(t *testing.T) {
	l := BuildLedger([]string{"A", "B"},
		[]PurchaseForLedger{
			{ID: "milk", Price: 4, PurchaserID: "A", CreatedAt: at(0)},
			{ID: "eggs", Price: 6, PurchaserID: "A", CreatedAt: at(1)},
		},
		[]SettlementForLedger{
			{ID: "s1", FromUserID: "B", ToUserID: "A", Amount: 3, ClearedAt: at(2)},
		},
	)

	if got := l.Remaining("B", "A", "milk"); got != 0 {
		t.Errorf("Remaining(milk) = %v, want 0", got)
	}
	if got := l.Remaining("B", "A", "eggs"); got != 2 {
		t.Errorf("Remaining(eggs) = %v, want 2", got)
	}
	if got := l.Remaining("A", "B", "eggs"); got != 0 {
		t.Errorf("Remaining in reverse direction = %v, want 0", got)
	}
}
