// Package site defines the capabilities the sync engine needs from each
// integrated website and a registry for selecting the bank by name.
package site

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/banksync-dev/banksync/internal/browser"
	"github.com/banksync-dev/banksync/internal/prompt"
	"github.com/banksync-dev/banksync/internal/sync"
)

// ErrUnsupportedBank is returned for a bank name with no registered source.
var ErrUnsupportedBank = errors.New("unsupported bank")

// Credentials is a username/password pair for one site.
type Credentials struct {
	Username string
	Password string
}

// Source is the bank-side ledger, read through its web UI. Login covers the
// whole authentication flow including any 2FA interaction.
type Source interface {
	sync.Pager

	Name() string
	Open() error
	Login(creds Credentials) error
	OpenLedger() error
}

// Destination is the budgeting app, read and written through its web UI.
type Destination interface {
	sync.Destination

	Name() string
	Open() error
	Login(creds Credentials) error
	OpenTransactions() error
}

// SourceFactory builds a Source over its own browser tab. The terminal is
// for flows that need the user mid-login, like a 2FA code. Construction must
// not touch the network.
type SourceFactory func(tab *browser.Tab, term *prompt.Terminal) Source

// Registry maps bank names to source factories.
type Registry struct {
	factories map[string]SourceFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]SourceFactory)}
}

// Register adds a factory. Panics on duplicate name.
func (r *Registry) Register(name string, f SourceFactory) {
	key := strings.ToLower(name)
	if _, ok := r.factories[key]; ok {
		panic("duplicate bank name: " + key)
	}
	r.factories[key] = f
}

// Get returns the factory for name.
func (r *Registry) Get(name string) (SourceFactory, error) {
	f, ok := r.factories[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBank, name)
	}
	return f, nil
}

// Names returns the registered bank names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
