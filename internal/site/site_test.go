package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banksync-dev/banksync/internal/browser"
	"github.com/banksync-dev/banksync/internal/prompt"
)

func nilFactory(*browser.Tab, *prompt.Terminal) Source { return nil }

func TestRegistry_GetIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register("boa", nilFactory)

	f, err := r.Get("BOA")
	require.NoError(t, err)
	assert.NotNil(t, f)
}

func TestRegistry_UnknownBank(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("chase")
	require.ErrorIs(t, err, ErrUnsupportedBank)
	assert.Contains(t, err.Error(), "chase")
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register("boa", nilFactory)

	assert.Panics(t, func() {
		r.Register("BOA", nilFactory)
	})
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	r.Register("boa", nilFactory)
	r.Register("acme", nilFactory)

	assert.Equal(t, []string{"acme", "boa"}, r.Names())
}
