// Package sync implements the reconciliation engine: collecting source
// transactions back to a boundary date, assembling the destination's known
// set, and replaying the delta with per-write verification.
package sync

import (
	"fmt"
	"time"

	"github.com/banksync-dev/banksync/internal/model"
)

// Pager walks a paginated, date-descending ledger view.
type Pager interface {
	// ClearedPage returns the current page's cleared transactions in page
	// order (newest first).
	ClearedPage() ([]model.Transaction, error)
	// PreviousPage navigates to the next-older page and blocks until it has
	// settled.
	PreviousPage() error
}

// DefaultBoundary returns one week before the first day of now's month. It is
// the default lower bound for how far back the sync pulls.
func DefaultBoundary(now time.Time) time.Time {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first.AddDate(0, 0, -7)
}

// Collect pulls every source transaction dated on or after boundary that is
// not already in known. Rows within a page are assumed date-descending, so
// each page is a prefix scan: the first row older than the boundary ends the
// whole walk. Known-equal rows are skipped without ending the scan. When a
// page never crosses the boundary the walk continues on the previous (older)
// page. The result is sorted newest first.
func Collect(p Pager, known []model.Transaction, boundary time.Time) ([]model.Transaction, error) {
	var collected []model.Transaction

	for page := 0; ; page++ {
		rows, err := p.ClearedPage()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		reachedBoundary := false
		for _, tx := range rows {
			if tx.Date.Before(boundary) {
				reachedBoundary = true
				break
			}
			if model.Contains(known, tx) {
				continue
			}
			collected = append(collected, tx)
		}

		if reachedBoundary {
			break
		}

		if err := p.PreviousPage(); err != nil {
			return nil, fmt.Errorf("navigating past page %d: %w", page, err)
		}
	}

	model.SortNewestFirst(collected)
	return collected, nil
}
