package sync

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/banksync-dev/banksync/internal/extract"
	"github.com/banksync-dev/banksync/internal/model"
	"github.com/banksync-dev/banksync/internal/synclog"
)

// ErrWriteVerificationFailed means a submitted transaction did not show up in
// the destination's new listing. The destination's state can no longer be
// trusted, so the run aborts without attempting further writes.
var ErrWriteVerificationFailed = errors.New("transaction not found after submit")

// Confirmer asks the user a yes/no question. An unrecognized answer is an
// error, which the write-back treats as fatal.
type Confirmer interface {
	Confirm(message string) (bool, error)
}

// WriteBack replays a delta into the destination one transaction at a time,
// verifying each write by re-reading the new listing.
type WriteBack struct {
	dst         Destination
	confirm     Confirmer
	interactive bool
	source      string
	audit       *synclog.Log
	log         zerolog.Logger
}

// WriteBackOptions configures a WriteBack.
type WriteBackOptions struct {
	// Interactive asks for confirmation before each write.
	Interactive bool
	// Source labels audit entries with the originating bank.
	Source string
	// Audit, when non-nil, records every verified write.
	Audit *synclog.Log
	Log   zerolog.Logger
}

// NewWriteBack creates a WriteBack. confirm may be nil when Interactive is
// false.
func NewWriteBack(dst Destination, confirm Confirmer, opts WriteBackOptions) *WriteBack {
	return &WriteBack{
		dst:         dst,
		confirm:     confirm,
		interactive: opts.Interactive,
		source:      opts.Source,
		audit:       opts.Audit,
		log:         opts.Log,
	}
}

// Apply writes each transaction in delta order, skipping any the user
// declines, and returns the number of verified writes. The first failed
// verification aborts the run; writes already committed are not rolled back.
func (wb *WriteBack) Apply(delta []model.Transaction) (int, error) {
	added := 0

	for i, tx := range delta {
		if wb.interactive {
			if remaining := len(delta) - i; i > 0 {
				wb.log.Info().Int("remaining", remaining).Msg("transactions remaining")
			}

			ok, err := wb.confirm.Confirm(confirmMessage(tx))
			if err != nil {
				return added, err
			}
			if !ok {
				wb.log.Info().Str("description", tx.Description).Msg("skipped")
				continue
			}
		}

		if err := wb.dst.Submit(tx); err != nil {
			return added, fmt.Errorf("submitting %q: %w", tx.Description, err)
		}

		if err := wb.verify(tx); err != nil {
			return added, err
		}

		added++
		wb.log.Info().
			Str("date", extract.FormatDate(tx.Date)).
			Str("description", tx.Description).
			Str("amount", tx.Amount.StringFixed(2)).
			Str("type", string(tx.Type)).
			Msg("transaction added")

		if wb.audit != nil {
			entry := synclog.Entry{
				Timestamp:   time.Now(),
				Source:      wb.source,
				Date:        tx.Date,
				Description: tx.Description,
				Amount:      tx.Amount,
				Type:        string(tx.Type),
			}
			if err := wb.audit.Append([]synclog.Entry{entry}); err != nil {
				return added, fmt.Errorf("writing audit log: %w", err)
			}
		}
	}

	return added, nil
}

func (wb *WriteBack) verify(tx model.Transaction) error {
	current, err := wb.dst.Cards(TabNew)
	if err != nil {
		return fmt.Errorf("re-reading new transactions: %w", err)
	}
	if !model.Contains(current, tx) {
		return fmt.Errorf("%w: %q on %s", ErrWriteVerificationFailed,
			tx.Description, extract.FormatDate(tx.Date))
	}
	return nil
}

func confirmMessage(tx model.Transaction) string {
	return "Would you like to add\n" +
		fmt.Sprintf("\tType: %s\n", tx.Type) +
		fmt.Sprintf("\tDate: %s\n", extract.FormatDate(tx.Date)) +
		fmt.Sprintf("\tDesc: %s\n", tx.Description) +
		fmt.Sprintf("\tAmnt: %s\n", tx.Amount.StringFixed(2)) +
		"to the budget? [y/n] "
}
