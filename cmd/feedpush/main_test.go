package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/umputun/feedpush/pkg/config"
)

// telegramStub answers getMe and returns empty long poll results
func telegramStub(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"feedpush","username":"feedpush_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			time.Sleep(50 * time.Millisecond)
			_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
		default:
			_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func writeTestConfig(t *testing.T, dir, apiURL, listen string) string {
	t.Helper()
	content := fmt.Sprintf(`
telegram:
  token: "42:test-token"
  api_endpoint: "%s/bot%%s/%%s"
  poll_timeout: 1
database:
  dsn: "file:%s?mode=rwc&_txlock=immediate&_pragma=foreign_keys(1)"
  max_open_conns: 1
schedule:
  interval: 1s
server:
  listen: "%s"
  timeout: 5s
`, apiURL, filepath.Join(dir, "feedpush.db"), listen)
	configPath := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	return configPath
}

func TestRun_MissingConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := run(ctx, Opts{Config: "non-existent-config.yml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestRun_InvalidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := run(ctx, Opts{Config: configPath})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestRun_SchemaTooNew(t *testing.T) {
	dir := t.TempDir()
	configPath := writeTestConfig(t, dir, telegramStub(t).URL, "")

	db, err := sqlx.Open("sqlite", filepath.Join(dir, "feedpush.db"))
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE version (version INTEGER NOT NULL)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO version (version) VALUES (99)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = run(ctx, Opts{Config: configPath})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upgrade feedpush")
}

func TestRun_ServerStartStop(t *testing.T) {
	dir := t.TempDir()
	listen := freePort(t)
	configPath := writeTestConfig(t, dir, telegramStub(t).URL, listen)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- run(ctx, Opts{Config: configPath, NoColor: true}) }()

	var body []byte
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + listen + "/ping")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, err = io.ReadAll(resp.Body)
		return err == nil && resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, "pong", string(body))

	resp, err := http.Get("http://" + listen + "/api/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-runErr:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not stop")
	}
}

func TestSetupLog(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "feedpush.log")
	w := setupLog(Opts{LogFile: logFile, Debug: true}, config.LogConfig{MaxSize: 1, MaxBackups: 1, MaxAge: 1}, "secret-token")
	require.NotNil(t, w)
	defer func() {
		setupLog(Opts{}, config.LogConfig{})
		_ = w.Close()
	}()

	lgr.Printf("[INFO] using secret-token for the bot")
	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "for the bot")
	assert.NotContains(t, string(data), "secret-token")

	assert.Nil(t, setupLog(Opts{NoColor: true}, config.LogConfig{}))
}
