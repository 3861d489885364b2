//go:build linux

package reactor

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoller_RegisterValidation(t *testing.T) {
	p, err := NewPoller()
	require.NoError(t, err)
	defer p.Close()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	fd := int(r.Fd())
	tok := p.NextToken()

	assert.ErrorIs(t, p.Register(p.NextToken(), -1, EventReadable, nil), ErrFDOutOfRange)

	require.NoError(t, p.Register(tok, fd, EventReadable, func(Token, IOEvents) {}))
	assert.ErrorIs(t, p.Register(tok, fd, EventReadable, func(Token, IOEvents) {}), ErrTokenReused)

	assert.ErrorIs(t, p.Reregister(p.NextToken(), EventReadable), ErrTokenNotFound)

	require.NoError(t, p.Deregister(tok))
	// Idempotent: deregistering again is a no-op, not an error.
	assert.NoError(t, p.Deregister(tok))
}

func TestPoller_DeliversReadableEvent(t *testing.T) {
	p, err := NewPoller()
	require.NoError(t, err)
	defer p.Close()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	fired := make(chan IOEvents, 1)
	tok := p.NextToken()
	require.NoError(t, p.Register(tok, int(r.Fd()), EventReadable, func(_ Token, events IOEvents) {
		fired <- events
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- p.Run(ctx) }()

	_, err = w.Write([]byte("x"))
	require.NoError(t, err)

	select {
	case events := <-fired:
		assert.NotZero(t, events&EventReadable)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for readable event")
	}

	cancel()
	<-runErr
}
