package extract

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banksync-dev/banksync/internal/model"
)

func splitPart(desc, amount string) model.Transaction {
	return model.Transaction{
		Date:        time.Date(2023, 6, 10, 0, 0, 0, 0, time.Local),
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		Type:        model.Expense,
	}
}

func TestCombineSplit(t *testing.T) {
	combined, err := CombineSplit([]model.Transaction{
		splitPart("Groceries", "10.00"),
		splitPart("Groceries", "5.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, "15.00", combined.Amount.StringFixed(2))
	assert.Equal(t, "Groceries", combined.Description)
	assert.Equal(t, model.Expense, combined.Type)
}

func TestCombineSplit_SinglePart(t *testing.T) {
	combined, err := CombineSplit([]model.Transaction{splitPart("Groceries", "10.00")})
	require.NoError(t, err)
	assert.Equal(t, "10.00", combined.Amount.StringFixed(2))
}

func TestCombineSplit_DescriptionMismatch(t *testing.T) {
	_, err := CombineSplit([]model.Transaction{
		splitPart("Groceries", "10.00"),
		splitPart("Gas", "5.00"),
	})
	require.ErrorIs(t, err, ErrInvalidSplitGroup)
}

func TestCombineSplit_DateMismatch(t *testing.T) {
	other := splitPart("Groceries", "5.00")
	other.Date = other.Date.AddDate(0, 0, 1)

	_, err := CombineSplit([]model.Transaction{splitPart("Groceries", "10.00"), other})
	require.ErrorIs(t, err, ErrInvalidSplitGroup)
}

func TestCombineSplit_TypeMismatch(t *testing.T) {
	other := splitPart("Groceries", "5.00")
	other.Type = model.Income

	_, err := CombineSplit([]model.Transaction{splitPart("Groceries", "10.00"), other})
	require.ErrorIs(t, err, ErrInvalidSplitGroup)
}

func TestCombineSplit_Empty(t *testing.T) {
	_, err := CombineSplit(nil)
	require.ErrorIs(t, err, ErrInvalidSplitGroup)
}
