package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.Local)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTransaction_Equal(t *testing.T) {
	base := Transaction{
		Date:        date(2023, 6, 10),
		Description: "Coffee",
		Amount:      dec("4.50"),
		Type:        Expense,
	}

	tests := []struct {
		name  string
		other Transaction
		want  bool
	}{
		{"identical", base, true},
		{"same day different time", Transaction{
			Date:        time.Date(2023, 6, 10, 14, 30, 0, 0, time.Local),
			Description: "Coffee",
			Amount:      dec("4.50"),
			Type:        Expense,
		}, true},
		{"amount value equal despite scale", Transaction{
			Date:        base.Date,
			Description: "Coffee",
			Amount:      dec("4.5"),
			Type:        Expense,
		}, true},
		{"different date", Transaction{
			Date:        date(2023, 6, 11),
			Description: "Coffee",
			Amount:      dec("4.50"),
			Type:        Expense,
		}, false},
		{"different description", Transaction{
			Date:        base.Date,
			Description: "Tea",
			Amount:      dec("4.50"),
			Type:        Expense,
		}, false},
		{"different amount", Transaction{
			Date:        base.Date,
			Description: "Coffee",
			Amount:      dec("4.51"),
			Type:        Expense,
		}, false},
		{"different type", Transaction{
			Date:        base.Date,
			Description: "Coffee",
			Amount:      dec("4.50"),
			Type:        Income,
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Equal(tt.other))
			assert.Equal(t, tt.want, tt.other.Equal(base), "equality must be symmetric")
		})
	}
}

func TestContains(t *testing.T) {
	list := []Transaction{
		{Date: date(2023, 6, 10), Description: "Coffee", Amount: dec("4.50"), Type: Expense},
		{Date: date(2023, 6, 9), Description: "Paycheck", Amount: dec("1200.00"), Type: Income},
	}

	assert.True(t, Contains(list, Transaction{Date: date(2023, 6, 9), Description: "Paycheck", Amount: dec("1200.00"), Type: Income}))
	assert.False(t, Contains(list, Transaction{Date: date(2023, 6, 10), Description: "Coffee", Amount: dec("4.51"), Type: Expense}))
	assert.False(t, Contains(nil, list[0]))
}

func TestSortNewestFirst(t *testing.T) {
	txns := []Transaction{
		{Date: date(2023, 5, 20), Description: "old"},
		{Date: date(2023, 6, 10), Description: "new"},
		{Date: date(2023, 6, 5), Description: "mid"},
	}

	SortNewestFirst(txns)

	assert.Equal(t, "new", txns[0].Description)
	assert.Equal(t, "mid", txns[1].Description)
	assert.Equal(t, "old", txns[2].Description)
}
