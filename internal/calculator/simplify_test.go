package calculator

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"
)

func TestSimplifyDebts(t *testing.T) {
	tests := []struct {
		name     string
		balances map[string]float64
		want     []Transaction
	}{
		{
			name:     "one creditor two debtors",
			balances: map[string]float64{"A": 10, "B": -4, "C": -6},
			want:     []Transaction{{"B", "A", 4}, {"C", "A", 6}},
		},
		{
			name:     "chain collapses",
			balances: map[string]float64{"A": -5, "B": 0, "C": 5},
			want:     []Transaction{{"A", "C", 5}},
		},
		{
			name:     "ties go to lower id",
			balances: map[string]float64{"A": 3, "B": 3, "C": -3, "D": -3},
			want:     []Transaction{{"C", "A", 3}, {"D", "B", 3}},
		},
		{
			name:     "one cent is negligible",
			balances: map[string]float64{"A": 0.01, "B": -0.01},
			want:     nil,
		},
		{
			name:     "two cents are paid",
			balances: map[string]float64{"A": 0.02, "B": -0.02},
			want:     []Transaction{{"B", "A", 0.02}},
		},
		{
			name:     "leftover cents on one side are not an error",
			balances: map[string]float64{"A": 0.02, "B": -0.01, "C": -0.01},
			want:     nil,
		},
		{
			name:     "all zero",
			balances: map[string]float64{"A": 0, "B": 0.001},
			want:     nil,
		},
		{
			name:     "empty",
			balances: map[string]float64{},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SimplifyDebts(tt.balances)
			if err != nil {
				t.Fatalf("SimplifyDebts() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SimplifyDebts() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimplifyDebts_SettlesEverything(t *testing.T) {
	balances := map[string]float64{
		"A": 42.17, "B": -13.05, "C": -9.99, "D": 7.5, "E": -26.63, "F": 0,
	}
	txns, err := SimplifyDebts(balances)
	if err != nil {
		t.Fatalf("SimplifyDebts() error = %v", err)
	}

	nonZero := 0
	for _, b := range balances {
		if !IsZero(b) {
			nonZero++
		}
	}
	if len(txns) > nonZero-1 {
		t.Errorf("got %d transactions for %d non-zero balances", len(txns), nonZero)
	}

	after := make(map[string]float64, len(balances))
	for id, b := range balances {
		after[id] = b
	}
	for _, tx := range txns {
		after[tx.From] += tx.Amount
		after[tx.To] -= tx.Amount
	}
	for id, b := range after {
		if math.Abs(Round2(b)) > Tolerance {
			t.Errorf("balance[%s] = %v after applying transactions", id, b)
		}
	}
}

func TestSimplifyDebts_Unbalanced(t *testing.T) {
	txns, err := SimplifyDebts(map[string]float64{"A": 10, "B": -4})
	if !errors.Is(err, ErrUnbalanced) {
		t.Fatalf("error = %v, want ErrUnbalanced", err)
	}
	want := []Transaction{{"B", "A", 4}}
	if !reflect.DeepEqual(txns, want) {
		t.Errorf("transactions = %v, want %v", txns, want)
	}
}

func TestSimplifyDebtsWithLimit_Cap(t *testing.T) {
	balances := map[string]float64{"creditor": 50}
	for i := 0; i < 50; i++ {
		balances[fmt.Sprintf("debtor-%02d", i)] = -1
	}

	txns, err := SimplifyDebtsWithLimit(balances, 10)
	if !errors.Is(err, ErrIterationCap) {
		t.Fatalf("error = %v, want ErrIterationCap", err)
	}
	if len(txns) != 10 {
		t.Errorf("got %d transactions, want the 10 produced before the cap", len(txns))
	}

	txns, err = SimplifyDebtsWithLimit(balances, DefaultMaxIterations)
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if len(txns) != 50 {
		t.Errorf("got %d transactions, want 50", len(txns))
	}
}
