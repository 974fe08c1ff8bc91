package sync

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banksync-dev/banksync/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.Local)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tx(y, m, d int, desc, amount string) model.Transaction {
	return model.Transaction{
		Date:        date(y, m, d),
		Description: desc,
		Amount:      dec(amount),
		Type:        model.Expense,
	}
}

// fakePager serves fixed pages, newest page first.
type fakePager struct {
	pages   [][]model.Transaction
	current int
	navs    int
	navErr  error
}

func (p *fakePager) ClearedPage() ([]model.Transaction, error) {
	if p.current >= len(p.pages) {
		return nil, errors.New("no such page")
	}
	return p.pages[p.current], nil
}

func (p *fakePager) PreviousPage() error {
	if p.navErr != nil {
		return p.navErr
	}
	p.navs++
	p.current++
	return nil
}

func TestDefaultBoundary(t *testing.T) {
	now := time.Date(2023, 6, 15, 13, 45, 0, 0, time.Local)
	assert.Equal(t, date(2023, 5, 25), DefaultBoundary(now))

	// Month rollover across a year boundary.
	now = time.Date(2024, 1, 3, 0, 0, 0, 0, time.Local)
	assert.Equal(t, date(2023, 12, 25), DefaultBoundary(now))
}

func TestCollect_StopsAtBoundaryOnFirstPage(t *testing.T) {
	p := &fakePager{pages: [][]model.Transaction{{
		tx(2023, 6, 10, "a", "1.00"),
		tx(2023, 6, 5, "b", "2.00"),
		tx(2023, 5, 20, "c", "3.00"),
	}}}

	got, err := Collect(p, nil, date(2023, 5, 25))
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Description)
	assert.Equal(t, "b", got[1].Description)
	assert.Zero(t, p.navs, "no further page should be requested")
}

func TestCollect_PrefixScanNotFilter(t *testing.T) {
	// A row newer than the boundary that appears after an older row must not
	// be collected: the scan ends at the first violation.
	p := &fakePager{pages: [][]model.Transaction{{
		tx(2023, 6, 10, "keep", "1.00"),
		tx(2023, 5, 20, "stop", "2.00"),
		tx(2023, 6, 9, "past-the-stop", "3.00"),
	}}}

	got, err := Collect(p, nil, date(2023, 5, 25))
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "keep", got[0].Description)
}

func TestCollect_SkipsKnownWithoutStopping(t *testing.T) {
	known := []model.Transaction{tx(2023, 6, 10, "Coffee", "4.50")}
	p := &fakePager{pages: [][]model.Transaction{{
		tx(2023, 6, 10, "Coffee", "4.50"),
		tx(2023, 6, 10, "Coffee", "4.51"), // differs only in amount
		tx(2023, 5, 20, "old", "1.00"),
	}}}

	got, err := Collect(p, known, date(2023, 5, 25))
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "4.51", got[0].Amount.StringFixed(2))
}

func TestCollect_WalksToOlderPages(t *testing.T) {
	p := &fakePager{pages: [][]model.Transaction{
		{tx(2023, 6, 10, "p1a", "1.00"), tx(2023, 6, 8, "p1b", "2.00")},
		{tx(2023, 6, 2, "p2a", "3.00"), tx(2023, 5, 20, "p2b", "4.00")},
	}}

	got, err := Collect(p, nil, date(2023, 5, 25))
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, 1, p.navs)
	// Newest first across pages.
	assert.Equal(t, "p1a", got[0].Description)
	assert.Equal(t, "p1b", got[1].Description)
	assert.Equal(t, "p2a", got[2].Description)
}

func TestCollect_BoundaryDateItselfIsIncluded(t *testing.T) {
	p := &fakePager{pages: [][]model.Transaction{{
		tx(2023, 5, 25, "on-boundary", "1.00"),
		tx(2023, 5, 24, "below", "2.00"),
	}}}

	got, err := Collect(p, nil, date(2023, 5, 25))
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "on-boundary", got[0].Description)
}

func TestCollect_NavigationErrorIsFatal(t *testing.T) {
	navErr := errors.New("previous link missing")
	p := &fakePager{
		pages:  [][]model.Transaction{{tx(2023, 6, 10, "a", "1.00")}},
		navErr: navErr,
	}

	_, err := Collect(p, nil, date(2023, 5, 25))
	require.ErrorIs(t, err, navErr)
}
