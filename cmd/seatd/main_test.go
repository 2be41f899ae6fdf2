package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatwheel/seatwheel/internal/config"
	"github.com/seatwheel/seatwheel/internal/store"
)

const namesDoc = `{"names": ["a","b","c","d","e","f","g","h","i","j","k","l","m","n","o","p"]}`

const historyDoc = `{"history": [
  [0,1,2,3,4,5,6,7,8,9,10,11,12,13,14,15],
  [1,2,3,4,5,6,7,8,9,10,11,12,13,14,15,0]
]}`

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func testConfig(t *testing.T, history string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Port = freePort(t)
	cfg.NamesPath = filepath.Join(dir, "names.json")
	cfg.HistoryPath = filepath.Join(dir, "history.json")
	cfg.ArchivePath = filepath.Join(dir, "archive.db")
	cfg.LogLevel = "error"
	require.NoError(t, os.WriteFile(cfg.NamesPath, []byte(namesDoc), 0644))
	require.NoError(t, os.WriteFile(cfg.HistoryPath, []byte(history), 0644))
	return cfg
}

func TestRun_RejectsMalformedHistory(t *testing.T) {
	cfg := testConfig(t, `{"history": [[0,1,2]]}`)
	err := run(context.Background(), cfg, strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorIs(t, err, store.ErrMalformedHistory)
}

func TestRun_RejectsMissingRoster(t *testing.T) {
	cfg := testConfig(t, historyDoc)
	cfg.NamesPath = filepath.Join(t.TempDir(), "absent.json")
	err := run(context.Background(), cfg, strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorContains(t, err, "load roster")
}

func TestRun_ScrambleWriteAndServe(t *testing.T) {
	cfg := testConfig(t, historyDoc)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Hold the command input back until a viewer is connected.
	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, pr, &bytes.Buffer{}) }()

	url := fmt.Sprintf("ws://127.0.0.1:%d/ws", cfg.Port)
	var conn *websocket.Conn
	require.Eventually(t, func() bool {
		dialCtx, dialCancel := context.WithTimeout(ctx, time.Second)
		defer dialCancel()
		c, _, err := websocket.Dial(dialCtx, url, nil)
		if err != nil {
			return false
		}
		conn = c
		return true
	}, 5*time.Second, 50*time.Millisecond)
	defer conn.CloseNow()

	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	defer readCancel()
	_, snapshot, err := conn.Read(readCtx)
	require.NoError(t, err)
	assert.Equal(t, "b,c,d,e,f,g,h,i,j,,a,p,o,n,m,l,k,", string(snapshot))

	_, err = io.WriteString(pw, "1 0\nwrite json\n")
	require.NoError(t, err)
	require.NoError(t, pw.Close())

	_, scrambled, err := conn.Read(readCtx)
	require.NoError(t, err)
	assert.Len(t, strings.Split(string(scrambled), ","), 18)

	require.Eventually(t, func() bool {
		entries, err := store.LoadHistory(cfg.HistoryPath)
		return err == nil && len(entries) == 3
	}, 5*time.Second, 50*time.Millisecond)

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/commits", cfg.Port))
	require.NoError(t, err)
	defer resp.Body.Close()
	var commits []store.Commit
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&commits))
	require.Len(t, commits, 1)
	entries, err := store.LoadHistory(cfg.HistoryPath)
	require.NoError(t, err)
	assert.Equal(t, entries[2], commits[0].Arrangement)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestRootCmd_RejectsArguments(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"unexpected"})
	cmd.SetOut(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}
