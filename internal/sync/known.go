package sync

import (
	"fmt"

	"github.com/banksync-dev/banksync/internal/extract"
	"github.com/banksync-dev/banksync/internal/model"
)

// Tab names one of the destination's transaction listings.
type Tab string

const (
	TabNew     Tab = "new"
	TabTracked Tab = "tracked"
	TabDeleted Tab = "deleted"
)

// Destination is the budgeting app's transaction surface.
type Destination interface {
	// Cards returns the transactions listed under a tab, newest first.
	Cards(tab Tab) ([]model.Transaction, error)
	// SplitGroups returns the parts of each split transaction, one inner
	// slice per logical transaction.
	SplitGroups() ([][]model.Transaction, error)
	// Submit drives the new-transaction form and blocks until the dialog
	// closes.
	Submit(tx model.Transaction) error
}

// KnownTransactions assembles the destination's already-present set: the new,
// tracked, and deleted listings plus one combined transaction per split
// group. The flat card list still contains the raw split parts; that is
// harmless for dedup (parts never equal a bank row) and keeping them avoids a
// second listing pass. The returned count is the logical number of
// transactions: flat cards minus split parts plus one per group.
func KnownTransactions(dst Destination) ([]model.Transaction, int, error) {
	var known []model.Transaction

	for _, tab := range []Tab{TabNew, TabTracked, TabDeleted} {
		txns, err := dst.Cards(tab)
		if err != nil {
			return nil, 0, fmt.Errorf("listing %s transactions: %w", tab, err)
		}
		known = append(known, txns...)
	}
	flat := len(known)

	groups, err := dst.SplitGroups()
	if err != nil {
		return nil, 0, fmt.Errorf("listing split transactions: %w", err)
	}

	splitParts := 0
	for _, parts := range groups {
		combined, cerr := extract.CombineSplit(parts)
		if cerr != nil {
			return nil, 0, cerr
		}
		splitParts += len(parts)
		known = append(known, combined)
	}

	model.SortNewestFirst(known)
	return known, flat - splitParts + len(groups), nil
}
