package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Type classifies a transaction by the direction of money.
type Type string

const (
	Expense Type = "Expense"
	Income  Type = "Income"
)

// Transaction is one ledger entry as both sites display it. Amount is the
// magnitude and is always non-negative; Type carries the direction. Date is a
// local calendar date, time of day is irrelevant.
type Transaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Type        Type
}

// Equal reports whether two transactions match on all four fields. Dates are
// compared at calendar-day granularity, amounts by numeric value. There is no
// fuzzy matching; this is the dedup law for the whole sync.
func (t Transaction) Equal(o Transaction) bool {
	return SameDay(t.Date, o.Date) &&
		t.Description == o.Description &&
		t.Amount.Equal(o.Amount) &&
		t.Type == o.Type
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Contains reports whether list holds a transaction equal to tx.
func Contains(list []Transaction, tx Transaction) bool {
	for _, t := range list {
		if t.Equal(tx) {
			return true
		}
	}
	return false
}

// SortNewestFirst orders txns by descending date in place.
func SortNewestFirst(txns []Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Date.After(txns[j].Date)
	})
}
