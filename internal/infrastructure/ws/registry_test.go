package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChannel struct {
	open bool
}

func (s *stubChannel) WriteJSON(any) error { return nil }
func (s *stubChannel) IsOpen() bool        { return s.open }
func (s *stubChannel) Close() error        { s.open = false; return nil }

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	ch := &stubChannel{open: true}

	r.Register("u1", ch)

	got, ok := r.Lookup("u1")
	require.True(t, ok)
	assert.Same(t, ch, got)
}

func TestLookupUnknownUser(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Lookup("nobody")
	assert.False(t, ok)
}

func TestLookupClosedChannel(t *testing.T) {
	r := NewRegistry()
	ch := &stubChannel{open: true}
	r.Register("u1", ch)

	ch.Close()

	_, ok := r.Lookup("u1")
	assert.False(t, ok, "closed channels must not be returned")
}

func TestRegisterReplacesPreviousConnection(t *testing.T) {
	r := NewRegistry()
	old := &stubChannel{open: true}
	replacement := &stubChannel{open: true}

	r.Register("u1", old)
	r.Register("u1", replacement)

	got, ok := r.Lookup("u1")
	require.True(t, ok)
	assert.Same(t, replacement, got)
	assert.True(t, old.open, "replaced channel must not be closed by the registry")
	assert.Equal(t, 1, r.Len())
}

func TestUnregisterIsCompareAndDelete(t *testing.T) {
	r := NewRegistry()
	old := &stubChannel{open: true}
	replacement := &stubChannel{open: true}

	r.Register("u1", old)
	r.Register("u1", replacement)

	// the superseded connection's close callback fires late
	r.Unregister("u1", old)

	got, ok := r.Lookup("u1")
	require.True(t, ok, "stale unregister must not evict the live connection")
	assert.Same(t, replacement, got)

	r.Unregister("u1", replacement)
	_, ok = r.Lookup("u1")
	assert.False(t, ok)
}

func TestHasActiveConnection(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.HasActiveConnection("u1"))

	ch := &stubChannel{open: true}
	r.Register("u1", ch)
	assert.True(t, r.HasActiveConnection("u1"))

	ch.Close()
	assert.False(t, r.HasActiveConnection("u1"))
}

func TestSweepClosed(t *testing.T) {
	r := NewRegistry()
	openCh := &stubChannel{open: true}
	closedCh := &stubChannel{open: false}

	r.Register("u1", openCh)
	r.Register("u2", closedCh)
	require.Equal(t, 2, r.Len())

	r.SweepClosed()

	assert.Equal(t, 1, r.Len())
	assert.True(t, r.HasActiveConnection("u1"))
	assert.False(t, r.HasActiveConnection("u2"))
}
