// Package extract turns raw scraped UI records into model.Transactions.
// Each site supplies the selectors for its own markup; the parsing rules for
// amounts and dates are shared.
package extract

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/banksync-dev/banksync/internal/model"
)

// Record is one scraped row or card. Text suspends until the element under
// selector is present and fails if it never appears.
type Record interface {
	Text(selector string) (string, error)
}

// Fields names the selectors for one UI context. A ledger row carries its
// full date in one cell (Date); a card splits it into Day and Month fragments
// with the year read from elsewhere on the page.
type Fields struct {
	Date        string
	Day         string
	Month       string
	Description string
	Amount      string
}

// FieldError reports a required field that could not be read. It signals
// markup drift and is fatal for the run.
type FieldError struct {
	Selector string
	Err      error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("reading field %q: %v", e.Selector, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Extractor converts records from one UI context into transactions.
type Extractor struct {
	fields Fields
}

// New creates an Extractor for the given selector set.
func New(fields Fields) *Extractor {
	return &Extractor{fields: fields}
}

// Row extracts a single ledger row using the Date selector.
func (e *Extractor) Row(rec Record) (model.Transaction, error) {
	raw, err := e.text(rec, e.fields.Date)
	if err != nil {
		return model.Transaction{}, err
	}

	date, err := time.ParseInLocation(ledgerDateFormat, strings.TrimSpace(raw), time.Local)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", raw, err)
	}

	return e.finish(rec, date)
}

// Rows extracts an ordered batch of ledger rows.
func (e *Extractor) Rows(recs []Record) ([]model.Transaction, error) {
	txns := make([]model.Transaction, 0, len(recs))
	for i, rec := range recs {
		tx, err := e.Row(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		txns = append(txns, tx)
	}
	return txns, nil
}

// Card extracts a single card using the Day and Month selectors plus the
// year shown elsewhere on the page.
func (e *Extractor) Card(rec Record, year int) (model.Transaction, error) {
	day, err := e.text(rec, e.fields.Day)
	if err != nil {
		return model.Transaction{}, err
	}
	month, err := e.text(rec, e.fields.Month)
	if err != nil {
		return model.Transaction{}, err
	}

	date, err := ParseCardDate(day, month, year)
	if err != nil {
		return model.Transaction{}, err
	}

	return e.finish(rec, date)
}

// Cards extracts an ordered batch of cards.
func (e *Extractor) Cards(recs []Record, year int) ([]model.Transaction, error) {
	txns := make([]model.Transaction, 0, len(recs))
	for i, rec := range recs {
		tx, err := e.Card(rec, year)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
		txns = append(txns, tx)
	}
	return txns, nil
}

func (e *Extractor) finish(rec Record, date time.Time) (model.Transaction, error) {
	desc, err := e.text(rec, e.fields.Description)
	if err != nil {
		return model.Transaction{}, err
	}

	raw, err := e.text(rec, e.fields.Amount)
	if err != nil {
		return model.Transaction{}, err
	}

	amount, typ, err := ParseAmount(raw)
	if err != nil {
		return model.Transaction{}, err
	}

	return model.Transaction{
		Date:        date,
		Description: strings.TrimSpace(desc),
		Amount:      amount,
		Type:        typ,
	}, nil
}

func (e *Extractor) text(rec Record, selector string) (string, error) {
	s, err := rec.Text(selector)
	if err != nil {
		return "", &FieldError{Selector: selector, Err: err}
	}
	return s, nil
}

const ledgerDateFormat = "01/02/2006"

// ParseAmount normalizes a raw amount string like "-$45.00" into a
// non-negative magnitude and a transaction type. The type is decided purely
// by the presence of a minus sign; a string without one is Income even when
// it is otherwise odd (inherited behavior, do not tighten).
func ParseAmount(raw string) (decimal.Decimal, model.Type, error) {
	typ := model.Income
	if strings.Contains(raw, "-") {
		typ = model.Expense
	}

	cleaned := strings.NewReplacer("-", "", "$", "", ",", "", " ", "").Replace(strings.TrimSpace(raw))

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, "", fmt.Errorf("parsing amount %q: %w", raw, err)
	}

	return amount, typ, nil
}

// ParseCardDate builds a calendar date from a day number, a month name
// ("Jun" or "June"), and a year.
func ParseCardDate(day, month string, year int) (time.Time, error) {
	d, err := strconv.Atoi(strings.TrimSpace(day))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing day %q: %w", day, err)
	}

	m, err := parseMonth(strings.TrimSpace(month))
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(year, m, d, 0, 0, 0, 0, time.Local), nil
}

func parseMonth(name string) (time.Month, error) {
	for _, layout := range []string{"Jan", "January"} {
		if t, err := time.Parse(layout, name); err == nil {
			return t.Month(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized month %q", name)
}

// FormatDate renders a date as M/D/YYYY without zero padding, the way the
// destination's date input expects it.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
}
