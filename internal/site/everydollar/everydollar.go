// Package everydollar reads and writes the EveryDollar budgeting app.
package everydollar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"

	"github.com/banksync-dev/banksync/internal/browser"
	"github.com/banksync-dev/banksync/internal/extract"
	"github.com/banksync-dev/banksync/internal/model"
	"github.com/banksync-dev/banksync/internal/site"
	"github.com/banksync-dev/banksync/internal/sync"
)

// Name identifies the destination in logs and audit entries.
const Name = "everydollar"

const (
	signInURL = "https://www.everydollar.com/app/sign-in"

	selEmail     = "#emailInput"
	selPassword  = "input[type=password]"
	selIconTray  = "#IconTray_transactions"
	selYear      = ".BudgetNavigation-year"
	selCard      = ".card-body"
	selSplitCard = ".split-transaction-card-container"

	selAddNew      = "#TransactionDrawer_addNew"
	selTypeExpense = "#TransactionModal_typeExpense"
	selTypeIncome  = "#TransactionModal_typeIncome"
	selAmountInput = ".TransactionForm-amountInput"
	selDateInput   = "input[name='date']"
	selSubmit      = "#TransactionModal_submit"
	selModalHeader = "div.modal-header"

	descExpensePlaceholder = "input[placeholder='Where did you spend this money?']"
	descIncomePlaceholder  = "input[placeholder='Where did this money come from?']"

	// loaderDelay works around the SPA's loader racing the password field.
	loaderDelay = 2 * time.Second

	// The modal-close wait is bounded; the poll interval matches the UI's
	// save latency.
	modalPollInterval = 500 * time.Millisecond
	modalPollAttempts = 40
)

// ErrModalStuck means the add-transaction dialog never closed after submit.
var ErrModalStuck = errors.New("transaction dialog did not close")

var tabSelectors = map[sync.Tab]string{
	sync.TabNew:     "#unallocated",
	sync.TabTracked: "#allocated",
	sync.TabDeleted: "#deleted",
}

var cardFields = extract.Fields{
	// The markup reverses what the class names suggest: .day holds the
	// month name, .date the day number.
	Day:         ".date",
	Month:       ".day",
	Description: ".transaction-card-merchant",
	Amount:      ".money",
}

// Destination drives the EveryDollar app in its own tab.
type Destination struct {
	tab *browser.Tab
	ex  *extract.Extractor
}

// New creates a Destination.
func New(tab *browser.Tab) site.Destination {
	return &Destination{tab: tab, ex: extract.New(cardFields)}
}

func (d *Destination) Name() string { return Name }

// Open navigates to the sign-in page.
func (d *Destination) Open() error {
	return d.tab.Navigate(signInURL)
}

// Login signs in with the email-then-password flow.
func (d *Destination) Login(creds site.Credentials) error {
	if err := d.tab.TypeEnter(selEmail, creds.Username); err != nil {
		return fmt.Errorf("entering email: %w", err)
	}
	if err := d.tab.WaitVisible(selPassword); err != nil {
		return fmt.Errorf("waiting for password field: %w", err)
	}
	if err := d.tab.Sleep(loaderDelay); err != nil {
		return err
	}
	if err := d.tab.TypeEnter(selPassword, creds.Password); err != nil {
		return fmt.Errorf("entering password: %w", err)
	}
	return d.tab.Sleep(loaderDelay)
}

// OpenTransactions opens the transaction tray.
func (d *Destination) OpenTransactions() error {
	return d.tab.Click(selIconTray)
}

// Cards clicks a tab and extracts its transaction cards. On the tracked tab
// the split parts appear as ordinary cards; SplitGroups recombines them.
func (d *Destination) Cards(tab sync.Tab) ([]model.Transaction, error) {
	selector, ok := tabSelectors[tab]
	if !ok {
		return nil, fmt.Errorf("unknown tab %q", tab)
	}
	if err := d.tab.Click(selector); err != nil {
		return nil, fmt.Errorf("opening %s tab: %w", tab, err)
	}

	year, err := d.budgetYear()
	if err != nil {
		return nil, err
	}

	cards, err := d.tab.Elements(selCard)
	if err != nil {
		return nil, err
	}
	return d.ex.Cards(records(cards), year)
}

// SplitGroups lists the split-transaction containers on the tracked tab and
// extracts each container's parts.
func (d *Destination) SplitGroups() ([][]model.Transaction, error) {
	if err := d.tab.Click(tabSelectors[sync.TabTracked]); err != nil {
		return nil, fmt.Errorf("opening tracked tab: %w", err)
	}

	year, err := d.budgetYear()
	if err != nil {
		return nil, err
	}

	containers, err := d.tab.Elements(selSplitCard)
	if err != nil {
		return nil, err
	}

	groups := make([][]model.Transaction, 0, len(containers))
	for i, container := range containers {
		cards, err := container.Elements(selCard)
		if err != nil {
			return nil, fmt.Errorf("split group %d: %w", i, err)
		}
		parts, err := d.ex.Cards(records(cards), year)
		if err != nil {
			return nil, fmt.Errorf("split group %d: %w", i, err)
		}
		groups = append(groups, parts)
	}
	return groups, nil
}

// Submit drives the add-transaction form and blocks until the dialog closes.
func (d *Destination) Submit(tx model.Transaction) error {
	if err := d.tab.Click(selAddNew); err != nil {
		return fmt.Errorf("opening add form: %w", err)
	}

	var typeButton, descInput string
	switch tx.Type {
	case model.Expense:
		typeButton, descInput = selTypeExpense, descExpensePlaceholder
	case model.Income:
		typeButton, descInput = selTypeIncome, descIncomePlaceholder
	default:
		return fmt.Errorf("transaction %q has no type", tx.Description)
	}

	if err := d.tab.Click(typeButton); err != nil {
		return fmt.Errorf("selecting type: %w", err)
	}
	if err := d.tab.WaitVisible(descInput); err != nil {
		return fmt.Errorf("waiting for description field: %w", err)
	}

	if err := d.tab.Type(selAmountInput, tx.Amount.StringFixed(2)); err != nil {
		return fmt.Errorf("entering amount: %w", err)
	}

	// Clicking the date input selects its contents so typing replaces them.
	if err := d.tab.Click(selDateInput); err != nil {
		return fmt.Errorf("focusing date: %w", err)
	}
	if err := d.tab.Type(selDateInput, extract.FormatDate(tx.Date)); err != nil {
		return fmt.Errorf("entering date: %w", err)
	}

	if err := d.tab.Type(descInput, tx.Description); err != nil {
		return fmt.Errorf("entering description: %w", err)
	}

	if err := d.tab.Click(selSubmit); err != nil {
		return fmt.Errorf("submitting: %w", err)
	}

	return d.waitModalClosed()
}

func (d *Destination) waitModalClosed() error {
	return retry.Do(
		func() error {
			open, err := d.tab.Present(selModalHeader)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			if open {
				return ErrModalStuck
			}
			return nil
		},
		retry.Attempts(modalPollAttempts),
		retry.Delay(modalPollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}

func (d *Destination) budgetYear() (int, error) {
	raw, err := d.tab.Text(selYear)
	if err != nil {
		return 0, fmt.Errorf("reading budget year: %w", err)
	}
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parsing budget year %q: %w", raw, err)
	}
	return year, nil
}

func records(els []browser.Element) []extract.Record {
	recs := make([]extract.Record, len(els))
	for i, el := range els {
		recs[i] = el
	}
	return recs
}
