package extract

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banksync-dev/banksync/internal/model"
)

// fakeRecord serves field text from a selector map.
type fakeRecord map[string]string

func (r fakeRecord) Text(selector string) (string, error) {
	s, ok := r[selector]
	if !ok {
		return "", fmt.Errorf("no element matching %q", selector)
	}
	return s, nil
}

var ledgerFields = Fields{
	Date:        "td.date",
	Description: "td.desc",
	Amount:      "td.amount",
}

var cardFields = Fields{
	Day:         ".date",
	Month:       ".day",
	Description: ".merchant",
	Amount:      ".money",
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw      string
		want     string
		wantType model.Type
	}{
		{"-$45.00", "45.00", model.Expense},
		{"$45.00", "45.00", model.Income},
		{"-4.50", "4.50", model.Expense},
		{"1,200.00", "1200.00", model.Income},
		{"-$1,200.00", "1200.00", model.Expense},
		{"45", "45", model.Income},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			amount, typ, err := ParseAmount(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, typ)
			assert.True(t, amount.Equal(decimal.RequireFromString(tt.want)),
				"got %s want %s", amount, tt.want)
		})
	}
}

func TestParseAmount_Malformed(t *testing.T) {
	_, _, err := ParseAmount("pending")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing amount")
}

func TestParseCardDate(t *testing.T) {
	got, err := ParseCardDate("12", "Jun", 2023)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 6, 12, 0, 0, 0, 0, time.Local), got)

	got, err = ParseCardDate(" 3 ", "December", 2024)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 12, 3, 0, 0, 0, 0, time.Local), got)
}

func TestParseCardDate_BadMonth(t *testing.T) {
	_, err := ParseCardDate("12", "Juneteenth", 2023)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized month")
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "6/12/2023", FormatDate(time.Date(2023, 6, 12, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, "12/3/2024", FormatDate(time.Date(2024, 12, 3, 0, 0, 0, 0, time.Local)))
}

func TestExtractor_Row(t *testing.T) {
	e := New(ledgerFields)

	tx, err := e.Row(fakeRecord{
		"td.date":   "06/12/2023",
		"td.desc":   "COFFEE SHOP  ",
		"td.amount": "-$45.00",
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2023, 6, 12, 0, 0, 0, 0, time.Local), tx.Date)
	assert.Equal(t, "COFFEE SHOP", tx.Description)
	assert.Equal(t, "45.00", tx.Amount.StringFixed(2))
	assert.Equal(t, model.Expense, tx.Type)
}

func TestExtractor_Row_MissingField(t *testing.T) {
	e := New(ledgerFields)

	_, err := e.Row(fakeRecord{
		"td.date": "06/12/2023",
		// description and amount absent
	})
	require.Error(t, err)

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "td.desc", fe.Selector)
}

func TestExtractor_Card(t *testing.T) {
	e := New(cardFields)

	tx, err := e.Card(fakeRecord{
		".date":     "12",
		".day":      "Jun",
		".merchant": "Coffee",
		".money":    "$4.50",
	}, 2023)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2023, 6, 12, 0, 0, 0, 0, time.Local), tx.Date)
	assert.Equal(t, "Coffee", tx.Description)
	assert.Equal(t, model.Income, tx.Type)
}

func TestExtractor_Rows_Order(t *testing.T) {
	e := New(ledgerFields)

	recs := []Record{
		fakeRecord{"td.date": "06/12/2023", "td.desc": "first", "td.amount": "-1.00"},
		fakeRecord{"td.date": "06/11/2023", "td.desc": "second", "td.amount": "-2.00"},
	}

	txns, err := e.Rows(recs)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "first", txns[0].Description)
	assert.Equal(t, "second", txns[1].Description)
}
