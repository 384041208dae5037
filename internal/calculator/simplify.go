package calculator

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// DefaultMaxIterations bounds the greedy loop when balances are inconsistent.
const DefaultMaxIterations = 100

var (
	// ErrIterationCap is returned with the partial result when the greedy
	// loop ran out of iterations.
	ErrIterationCap = errors.New("debt simplification exceeded iteration cap")

	// ErrUnbalanced is returned with the partial result when only debtors or
	// only creditors are left, i.e. the input did not sum to zero.
	ErrUnbalanced = errors.New("balances do not sum to zero")
)

// Transaction is a suggested payment from a debtor to a creditor.
type Transaction struct {
	From   string // person who owes
	To     string // person who is owed
	Amount float64
}

// SimplifyDebts runs SimplifyDebtsWithLimit with DefaultMaxIterations.
func SimplifyDebts(balances map[string]float64) ([]Transaction, error) {
	return SimplifyDebtsWithLimit(balances, DefaultMaxIterations)
}

// SimplifyDebtsWithLimit matches debtors with creditors greedily.
//
// Each round pays the smaller of the most negative and the most positive
// balance, so one of them drops out; n non-zero balances need at most n-1
// transactions. Ties between equal balances go to the lower user ID.
//
// Balances of one cent or less are left alone. The result is sorted by amount,
// then debtor, then creditor. A non-nil error
// (ErrIterationCap or ErrUnbalanced) comes with the transactions produced so
// far.
func SimplifyDebtsWithLimit(balances map[string]float64, maxIterations int) ([]Transaction, error) {
	working := make(map[string]float64, len(balances))
	for id, b := range balances {
		if b = Round2(b); !negligible(b) {
			working[id] = b
		}
	}

	var txns []Transaction
	var err error
	for iteration := 0; len(working) > 0; iteration++ {
		if iteration >= maxIterations {
			err = fmt.Errorf("%w: stopped after %d iterations", ErrIterationCap, iteration)
			break
		}

		debtor, creditor := extremes(working)
		if debtor == "" || creditor == "" {
			// Leftover cents on one side are fine when the input was zero-sum.
			if !IsZero(SumBalances(balances)) {
				err = ErrUnbalanced
			}
			break
		}

		amount := Round2(math.Min(-working[debtor], working[creditor]))
		if negligible(amount) {
			break
		}

		txns = append(txns, Transaction{From: debtor, To: creditor, Amount: amount})

		working[debtor] = Round2(working[debtor] + amount)
		working[creditor] = Round2(working[creditor] - amount)
		if negligible(working[debtor]) {
			delete(working, debtor)
		}
		if negligible(working[creditor]) {
			delete(working, creditor)
		}
	}

	sort.SliceStable(txns, func(i, j int) bool {
		a, b := txns[i], txns[j]
		if a.Amount != b.Amount {
			return a.Amount < b.Amount
		}
		if a.From != b.From {
			return a.From < b.From
		}
		return a.To < b.To
	})
	return txns, err
}

// negligible reports whether b is at most one cent in magnitude.
func negligible(b float64) bool {
	return math.Abs(Round2(b)) <= Tolerance
}

// extremes returns the most negative and the most positive entries,
// preferring the lower ID on ties. Either may be empty.
func extremes(balances map[string]float64) (debtor, creditor string) {
	ids := make([]string, 0, len(balances))
	for id := range balances {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		b := balances[id]
		if b < 0 && (debtor == "" || b < balances[debtor]) {
			debtor = id
		}
		if b > 0 && (creditor == "" || b > balances[creditor]) {
			creditor = id
		}
	}
	return debtor, creditor
}
