package service

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"feedgram/app/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunAppServerGracefulShutdown(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Storage.Path = filepath.Join(tmpDir, "serve.db")
	cfg.Media.Dir = filepath.Join(tmpDir, "media")
	cfg.Auth.Secret = "service-test-secret-0123"
	cfg.Server.ShutdownTimeout = "2s"

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunAppServer(ctx, cfg, zap.NewNop(), ln)
	}()

	client := &http.Client{
		Timeout: 5 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	base := "http://" + ln.Addr().String()

	resp, err := client.Get(base + "/login")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Get(base + "/feed")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?next=%2Ffeed", resp.Header.Get("Location"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	assert.DirExists(t, cfg.Storage.Path)
	assert.DirExists(t, cfg.Media.Dir)
}

func TestRunAppServerOpenFailure(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "db")
	cfg.Media.Dir = filepath.Join(t.TempDir(), "media")
	cfg.Auth.Secret = "short"

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	err = RunAppServer(context.Background(), cfg, zap.NewNop(), ln)
	assert.Error(t, err)
}
