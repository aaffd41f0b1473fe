package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gearbox/internal/store"
	"github.com/roach88/gearbox/internal/trace"
)

func TestRun_TicksUntilCancelled(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "row.db")

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", rowLayout, "--interval", "10ms", "--db", dbPath})

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- cmd.ExecuteContext(ctx)
	}()

	select {
	case err := <-errChan:
		require.NoError(t, err, "context cancellation is a clean shutdown")
	case <-time.After(2 * time.Second):
		t.Fatal("command did not respect context timeout")
	}

	assert.Contains(t, buf.String(), "Engine started. Ticking every 10ms...")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	n, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Positive(t, n, "cadence ticks should reach the store")
}

func TestRun_InvalidInterval(t *testing.T) {
	_, _, err := execute(t, "run", rowLayout, "--interval", "0s")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "--interval must be positive")
}

func TestRun_InvalidLayout(t *testing.T) {
	_, _, err := execute(t, "run", "testdata/overlap.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRun_StreamsToObservers(t *testing.T) {
	addrs := make(chan net.Addr, 1)
	opts := &RunOptions{
		RootOptions: &RootOptions{Format: "text"},
		Interval:    20 * time.Millisecond,
		Listen:      "127.0.0.1:0",
		OnListen:    func(a net.Addr) { addrs <- a },
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := &cobra.Command{}
	cmd.SetContext(ctx)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	done := make(chan error, 1)
	go func() { done <- runEngine(opts, rowLayout, cmd) }()

	var addr net.Addr
	select {
	case addr = <-addrs:
	case err := <-done:
		t.Fatalf("run exited early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("observer server did not start")
	}

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr.String()+"/trace", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var rec trace.Record
	require.NoError(t, json.Unmarshal(msg, &rec))
	assert.Equal(t, trace.KindTick, rec.Kind)
	assert.NotEmpty(t, rec.Token)
	assert.NotEmpty(t, rec.Steps)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}

func TestRunHelpText(t *testing.T) {
	stdout, _, err := execute(t, "run", "--help")
	require.NoError(t, err)

	assert.Contains(t, stdout, "ticking it every --interval")
	assert.Contains(t, stdout, "--listen")
	assert.Contains(t, stdout, "<layout>")
}
