package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vectorkit/vectorkit/internal/httpapi"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "vectorkit.yaml")
	yaml := "storage:\n  data_dir: " + filepath.Join(dir, "data") + "\n" +
		"backup:\n  dir: " + filepath.Join(dir, "backups") + "\n" +
		"object_store:\n  uri: " + filepath.Join(dir, "objects") + "\n" +
		"lexical:\n  persist_path: " + filepath.Join(dir, "lexical.db") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestRunServe_StopsCleanlyOnContextCancel(t *testing.T) {
	configPath := writeTestConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)

	go func() {
		errCh <- runServe(ctx, configPath, "127.0.0.1:0", "127.0.0.1:0", nil, "", false)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop within timeout")
	}
}

func TestBuildAuthenticator_RejectsMalformedAPIKey(t *testing.T) {
	_, err := buildAuthenticator("", []string{"not-a-key-value-pair"})
	require.Error(t, err)
}

func TestBuildAuthenticator_PrefersTrustedHeader(t *testing.T) {
	auth, err := buildAuthenticator("X-Tenant-ID", []string{"key:tenant"})
	require.NoError(t, err)
	require.IsType(t, httpapi.TrustedHeaderAuthenticator{}, auth)
}

func TestBuildAuthenticator_DefaultsToStaticKeys(t *testing.T) {
	auth, err := buildAuthenticator("", []string{"key:tenant"})
	require.NoError(t, err)
	require.IsType(t, httpapi.StaticAuthenticator{}, auth)
}
