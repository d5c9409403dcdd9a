package chat

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/recallbot/internal/market"
	"github.com/vadiminshakov/recallbot/internal/session"
	"go.uber.org/zap"
)

// blockingReader never delivers data, like an idle terminal.
type blockingReader struct{}

func (blockingReader) Read([]byte) (int, error) {
	select {}
}

func TestREPLRunsUntilExit(t *testing.T) {
	d, _ := newTestDispatcher(t)

	in := strings.NewReader("balance\nexit\n")
	var out bytes.Buffer
	repl := NewREPL(d, session.NewStore(), market.DefaultBoard(), d.settings, in, &out, zap.NewNop())

	require.NoError(t, repl.Run(context.Background()))

	output := out.String()
	require.Contains(t, output, "Recall Trading Bot")
	require.Contains(t, output, "USDC")
	require.Contains(t, output, "goodbye")
}

func TestREPLStopsOnEOF(t *testing.T) {
	d, _ := newTestDispatcher(t)

	in := strings.NewReader("balance\n")
	var out bytes.Buffer
	repl := NewREPL(d, session.NewStore(), market.DefaultBoard(), d.settings, in, &out, zap.NewNop())

	require.NoError(t, repl.Run(context.Background()))
	require.Contains(t, out.String(), "USDC")
}

func TestREPLReturnsOnCancelWhileWaitingForInput(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var out bytes.Buffer
	repl := NewREPL(d, session.NewStore(), market.DefaultBoard(), d.settings, blockingReader{}, &out, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- repl.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestREPLSkipsBlankLines(t *testing.T) {
	d, _ := newTestDispatcher(t)

	in := strings.NewReader("\n\nexit\n")
	var out bytes.Buffer
	repl := NewREPL(d, session.NewStore(), market.DefaultBoard(), d.settings, in, &out, zap.NewNop())

	require.NoError(t, repl.Run(context.Background()))
	require.Contains(t, out.String(), "goodbye")
}
