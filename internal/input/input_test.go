package input

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func Test_GetReader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	require.NoError(t, os.WriteFile(path, []byte("existing: []\n"), 0600))

	rc, err := GetReader(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, "existing: []\n", readAll(t, rc))

	_, err = GetReader(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not open file")
}

func Test_GetReader_URL(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("spawns: []\n"))
	}))
	t.Cleanup(s.Close)

	rc, err := GetReader(context.Background(), s.URL, "")
	require.NoError(t, err)
	assert.Equal(t, "spawns: []\n", readAll(t, rc))

	_, err = GetReader(context.Background(), s.URL, strings.Repeat("0", 64))
	require.Error(t, err)
}

func Test_IsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/world.yaml"))
	assert.True(t, IsURL("http://localhost:8080/world.yaml"))
	assert.False(t, IsURL("./world.yaml"))
	assert.False(t, IsURL("-"))
}
