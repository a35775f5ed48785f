package serve

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zip2addr/zip2addr/internal/cmd/application"
	"github.com/zip2addr/zip2addr/internal/server"
	"github.com/zip2addr/zip2addr/internal/testhelper"
	"github.com/zip2addr/zip2addr/pkg/errors"
	"github.com/zip2addr/zip2addr/pkg/logging"
)

func parse(t *testing.T, args ...string) (server.Config, error) {
	t.Helper()
	cmd := NewCommand(&application.Mock{})
	require.NoError(t, cmd.ParseFlags(args))
	return parseConfig(cmd)
}

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("HTTP_HOST", "")
	t.Setenv("HTTP_PORT", "")

	cfg, err := parse(t)
	require.NoError(t, err)

	want := server.DefaultConfig()
	assert.Equal(t, want.Host, cfg.Host)
	assert.Equal(t, want.Port, cfg.Port)
	assert.Equal(t, want.PathPrefix, cfg.PathPrefix)
	assert.False(t, cfg.CORSEnabled)
}

func TestParseConfigFlags(t *testing.T) {
	t.Setenv("HTTP_HOST", "")
	t.Setenv("HTTP_PORT", "")

	cfg, err := parse(t,
		"--host", "0.0.0.0", "-p", "9000", "--prefix", "/zip",
		"--cors-origins", "https://a.example,https://b.example",
		"--rate-limit", "60", "--cache-ttl", "1m", "--db", "x.db",
		"--trusted-proxies", "10.0.0.0/8,127.0.0.1",
	)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "/zip", cfg.PathPrefix)
	assert.Equal(t, "x.db", cfg.DBPath)
	assert.True(t, cfg.CORSEnabled, "origins imply cors")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 60, cfg.RateLimit)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.TrustedProxies)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
}

func TestParseConfigEnv(t *testing.T) {
	t.Setenv("HTTP_HOST", "127.0.0.2")
	t.Setenv("HTTP_PORT", "8123")

	cfg, err := parse(t)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.2", cfg.Host)
	assert.Equal(t, 8123, cfg.Port)

	// Flags win over the environment.
	cfg, err = parse(t, "--host", "localhost", "--port", "9000")
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
}

func TestParseConfigInvalid(t *testing.T) {
	t.Setenv("HTTP_HOST", "")
	t.Setenv("HTTP_PORT", "")

	for _, args := range [][]string{
		{"--port", "http"},
		{"--port", "70000"},
		{"--port", "-1"},
		{"--rate-limit", "-5"},
	} {
		_, err := parse(t, args...)
		require.Error(t, err, args)
		assert.True(t, errors.IsValidationError(err), err.Error())
	}
}

func TestServeUntilCancelled(t *testing.T) {
	dbPath := testhelper.SampleStore(t)

	cfg := server.DefaultConfig()
	cfg.DBPath = dbPath
	srv, err := server.New(context.Background(), &application.Mock{}, cfg)
	require.NoError(t, err)
	defer func() { _ = srv.Shutdown(context.Background()) }()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serveWithGracefulShutdown(ctx, &http.Server{Handler: srv.Handler()}, ln, logging.NewNopLogger())
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/v1/zipcodes/1000001")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "千代田区")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestRunMissingStore(t *testing.T) {
	cfg := server.DefaultConfig()
	cfg.DBPath = t.TempDir() + "/missing.db"
	cfg.Port = 0

	err := run(context.Background(), &application.Mock{}, cfg)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}
