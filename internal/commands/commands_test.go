package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		envFile = ""
		servePort = ""
	})
	err := Execute(context.Background())
	return out.String(), err
}

func TestPingReadsEnvFile(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/assets", r.URL.Path)
		_, _ = w.Write([]byte("[]"))
	}))
	defer api.Close()

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("ASSET_API_URL="+api.URL+"/api\nLOG_LEVEL=error\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("ASSET_API_URL"); os.Unsetenv("LOG_LEVEL") })

	out, err := run(t, "ping", "--env-file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "is reachable")
}

func TestPingFailsWhenServiceDown(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer api.Close()
	t.Setenv("ASSET_API_URL", api.URL+"/api")
	t.Setenv("LOG_LEVEL", "error")

	_, err := run(t, "ping")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping "+api.URL+"/api")
}

func TestInvalidConfigIsRejected(t *testing.T) {
	t.Setenv("ASSET_API_URL", "ftp://example.com")
	t.Setenv("LOG_LEVEL", "error")

	_, err := run(t, "serve", "--port", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
	assert.Contains(t, err.Error(), "invalid port 0")
	assert.Contains(t, err.Error(), "scheme 'ftp'")
}
