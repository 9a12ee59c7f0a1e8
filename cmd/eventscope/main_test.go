package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_MissingConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	opts := Opts{
		Config: "non-existent-config.yml",
	}

	err := run(ctx, opts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load config")
}

func TestRun_InvalidConfig(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "invalid-config-*.yml")
	require.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	tmpFile.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	opts := Opts{
		Config: tmpFile.Name(),
	}

	err = run(ctx, opts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load config")
}

func TestRun_ServerStartStop(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("EVENTSCOPE_DB", tmpDir)
	t.Setenv("EVENTSCOPE_LISTEN", "127.0.0.1:8199")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wd, err := os.Getwd()
	require.NoError(t, err)

	opts := Opts{
		Config: wd + "/testdata/test_config.yml",
		Server: true,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- run(ctx, opts)
	}()

	// wait for the server to come up
	var resp *http.Response
	require.Eventually(t, func() bool {
		var err error
		resp, err = http.Get("http://127.0.0.1:8199/ping")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 50*time.Millisecond)

	cancel()

	select {
	case err := <-serverErr:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRun_IngestOneShot(t *testing.T) {
	var ingested bool
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/debug/telegram-fetch-event-posts":
			ingested = true
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodGet && r.URL.Path == "/events":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"id":"1","title":"t","channel":"c","message_id":1,"created_at":"2025-01-01T00:00:00"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer backend.Close()

	t.Setenv("EVENTSCOPE_API", backend.URL)
	t.Setenv("EVENTSCOPE_DB", t.TempDir())
	t.Setenv("EVENTSCOPE_LISTEN", ":0")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wd, err := os.Getwd()
	require.NoError(t, err)

	opts := Opts{
		Config: wd + "/testdata/test_config.yml",
		Ingest: true,
	}

	require.NoError(t, run(ctx, opts))
	assert.True(t, ingested)
}

func TestSetupLog(t *testing.T) {
	assert.NotPanics(t, func() { setupLog(false) })
	assert.NotPanics(t, func() { setupLog(true) })
	assert.NotPanics(t, func() { setupLog(true, "secret") })
}
