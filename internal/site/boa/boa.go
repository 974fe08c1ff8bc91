// Package boa reads the Bank of America online-banking transaction ledger.
package boa

import (
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"

	"github.com/banksync-dev/banksync/internal/browser"
	"github.com/banksync-dev/banksync/internal/extract"
	"github.com/banksync-dev/banksync/internal/model"
	"github.com/banksync-dev/banksync/internal/prompt"
	"github.com/banksync-dev/banksync/internal/site"
)

// Name is the registry key.
const Name = "boa"

const (
	homeURL = "https://www.bankofamerica.com"

	selOnlineID      = "#onlineId1"
	selPasscode      = "#passcode1"
	selRequestHeader = "p.request-heading"
	selAuthContinue  = "#btnARContinue"
	selAuthCode      = "#tlpvt-xsw-authnum"
	selGreeting      = ".olb-ao-greeting-message-module"
	selAccountLink   = "a[name='DDA_details']"
	selClearedRow    = "tr.record.cleared"
	selPreviousLink  = "a[name=prev_trans_nav_bottom]"

	requestHeading = "Request Authorization Code"

	// settleDelay lets full-page navigations finish before the next read.
	settleDelay = 2 * time.Second
)

// ErrLoginFailed means the post-login greeting never appeared.
var ErrLoginFailed = errors.New("bank of america login failed")

var ledgerFields = extract.Fields{
	Date:        "td.date-action > span",
	Description: "td span.transTitleForEditDesc",
	Amount:      "td.amount",
}

// Source drives the BOA website in its own tab.
type Source struct {
	tab  *browser.Tab
	term *prompt.Terminal
	ex   *extract.Extractor
}

// New creates a Source. The terminal is used for the 2FA code prompt.
func New(tab *browser.Tab, term *prompt.Terminal) site.Source {
	return &Source{tab: tab, term: term, ex: extract.New(ledgerFields)}
}

func (s *Source) Name() string { return Name }

// Open navigates to the BOA home page.
func (s *Source) Open() error {
	return s.tab.Navigate(homeURL)
}

// Login signs in, walks the 2FA flow when the site demands one, and fails
// unless the greeting header confirms the session.
func (s *Source) Login(creds site.Credentials) error {
	if err := s.tab.Type(selOnlineID, creds.Username); err != nil {
		return fmt.Errorf("entering online id: %w", err)
	}
	if err := s.tab.TypeEnter(selPasscode, creds.Password); err != nil {
		return fmt.Errorf("entering passcode: %w", err)
	}
	if err := s.tab.Sleep(settleDelay); err != nil {
		return err
	}

	needs2FA, err := s.requires2FA()
	if err != nil {
		return err
	}
	if needs2FA {
		if err := s.handle2FA(); err != nil {
			return fmt.Errorf("2fa: %w", err)
		}
	}

	ok, err := s.tab.Present(selGreeting)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLoginFailed
	}
	return nil
}

func (s *Source) requires2FA() (bool, error) {
	heading, present, err := s.tab.TextIfPresent(selRequestHeader)
	if err != nil {
		return false, err
	}
	return present && heading == requestHeading, nil
}

func (s *Source) handle2FA() error {
	if err := s.tab.Click(selAuthContinue); err != nil {
		return err
	}

	code, err := s.term.Ask("Code: ")
	if err != nil {
		return err
	}

	if err := s.tab.TypeEnter(selAuthCode, code); err != nil {
		return err
	}
	return s.tab.Sleep(settleDelay)
}

// OpenLedger clicks through to the checking account's transaction table.
func (s *Source) OpenLedger() error {
	if err := s.tab.Click(selAccountLink); err != nil {
		return fmt.Errorf("opening account: %w", err)
	}
	return s.tab.Sleep(settleDelay)
}

// ClearedPage extracts the current page's cleared rows, newest first as the
// table lists them.
func (s *Source) ClearedPage() ([]model.Transaction, error) {
	rows, err := s.tab.Elements(selClearedRow)
	if err != nil {
		return nil, err
	}

	recs := make([]extract.Record, len(rows))
	for i, row := range rows {
		recs[i] = row
	}
	return s.ex.Rows(recs)
}

// PreviousPage navigates to the next-older transaction page and waits for
// the table to render again.
func (s *Source) PreviousPage() error {
	if err := s.tab.Click(selPreviousLink); err != nil {
		return fmt.Errorf("previous page link: %w", err)
	}

	return retry.Do(
		func() error {
			ok, err := s.tab.Present(selClearedRow)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("transaction table not rendered")
			}
			return nil
		},
		retry.Attempts(10),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}
