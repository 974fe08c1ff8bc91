package extract

import (
	"errors"
	"fmt"

	"github.com/banksync-dev/banksync/internal/model"
)

// ErrInvalidSplitGroup means the parts of a split transaction disagree on
// date, description, or type. The destination's known set can no longer be
// trusted, so the sync aborts.
var ErrInvalidSplitGroup = errors.New("invalid split transaction group")

// CombineSplit merges the parts of one split transaction into a single
// transaction. Every part must share the first part's calendar day,
// description, and type; the amounts are summed.
func CombineSplit(parts []model.Transaction) (model.Transaction, error) {
	if len(parts) == 0 {
		return model.Transaction{}, fmt.Errorf("%w: empty group", ErrInvalidSplitGroup)
	}

	combined := parts[0]
	for _, part := range parts[1:] {
		if !model.SameDay(part.Date, combined.Date) ||
			part.Description != combined.Description ||
			part.Type != combined.Type {
			return model.Transaction{}, fmt.Errorf("%w: part %q (%s) does not match %q (%s)",
				ErrInvalidSplitGroup,
				part.Description, FormatDate(part.Date),
				combined.Description, FormatDate(combined.Date))
		}
		combined.Amount = combined.Amount.Add(part.Amount)
	}

	return combined, nil
}
