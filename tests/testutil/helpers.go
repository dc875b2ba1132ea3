// Package testutil provides shared test helpers used across integration
// and unit test packages.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// WriteSourcesTree lays out a root sources file plus a drop-in directory
// under a fresh temp dir and returns the three paths an adapter needs.
func WriteSourcesTree(t *testing.T, rootContent string, dropIns map[string]string) (rootFile string, dropInDir string, backupRoot string) {
	t.Helper()
	dir := t.TempDir()
	rootFile = filepath.Join(dir, "sources.list")
	dropInDir = filepath.Join(dir, "sources.list.d")
	backupRoot = filepath.Join(dir, "backups")
	require.NoError(t, os.WriteFile(rootFile, []byte(rootContent), 0o644))
	require.NoError(t, os.MkdirAll(dropInDir, 0o755))
	for name, content := range dropIns {
		require.NoError(t, os.WriteFile(filepath.Join(dropInDir, name), []byte(content), 0o644))
	}
	return rootFile, dropInDir, backupRoot
}

// StaticServer serves a fixed body for every request and closes itself
// when the test ends.
func StaticServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}
