package calculator

import "sort"

// Share is one sharer's portion of a purchase.
type Share struct {
	UserID string
	Amount float64
}

// ResolveSharers returns the users splitting a purchase.
// An empty sharedBy means every member shares it; otherwise only the listed
// IDs that are current members count. Unknown IDs and duplicates are dropped.
// The result is sorted by user ID.
func ResolveSharers(sharedBy []string, members []string) []string {
	memberSet := make(map[string]bool, len(members))
	for _, m := range members {
		memberSet[m] = true
	}

	candidates := sharedBy
	if len(sharedBy) == 0 {
		candidates = members
	}

	seen := make(map[string]bool, len(candidates))
	sharers := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if !memberSet[id] || seen[id] {
			continue
		}
		seen[id] = true
		sharers = append(sharers, id)
	}
	sort.Strings(sharers)
	return sharers
}

// SplitEvenly divides price among sharers in cents.
//
// Every sharer owes round(price/n, 2). The rounding remainder goes entirely to
// the first sharer in processing order: sharers sorted by ID, with the
// purchaser moved to the end. The returned shares follow that order and always
// add up to price.
func SplitEvenly(price float64, sharers []string, purchaserID string) []Share {
	if len(sharers) == 0 {
		return nil
	}

	order := make([]string, 0, len(sharers))
	purchaserShares := false
	for _, id := range sharers {
		if id == purchaserID {
			purchaserShares = true
			continue
		}
		order = append(order, id)
	}
	sort.Strings(order)
	if purchaserShares {
		order = append(order, purchaserID)
	}

	n := float64(len(order))
	perPerson := Round2(price / n)
	remainder := Round2(price - perPerson*n)
	if Round2(perPerson+remainder) < 0 {
		// Rounding up overshot by more than one share (tiny price, many
		// sharers). Round down instead so the remainder is positive.
		perPerson = floorCents(price / n)
		remainder = Round2(price - perPerson*n)
	}

	shares := make([]Share, len(order))
	for i, id := range order {
		amount := perPerson
		if i == 0 {
			amount = Round2(perPerson + remainder)
		}
		shares[i] = Share{UserID: id, Amount: amount}
	}
	return shares
}
