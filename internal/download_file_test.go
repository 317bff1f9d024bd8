package internal

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_DownloadFile(t *testing.T) {
	contents := "existing:\n  - short-name: chicken.small\n    type: Chicken\n"
	tests := []struct {
		name     string
		status   int
		checksum func(string) string
		wantErr  require.ErrorAssertionFunc
	}{
		{
			name:     "matching checksum",
			status:   http.StatusOK,
			checksum: sha256Hex,
		},
		{
			name:     "prefixed upper case checksum",
			status:   http.StatusOK,
			checksum: func(s string) string { return "sha256:" + strings.ToUpper(sha256Hex(s)) },
		},
		{
			name:     "mismatched checksum",
			status:   http.StatusOK,
			checksum: func(string) string { return "805694affd979f1438069800e3961b1a1ba50d02793baa492be5b5b2a1a463b1" },
			wantErr:  require.Error,
		},
		{
			name:     "malformed checksum",
			status:   http.StatusOK,
			checksum: func(string) string { return "sha256:abc" },
			wantErr:  require.Error,
		},
		{
			name:     "missing checksum",
			status:   http.StatusOK,
			checksum: func(string) string { return "" },
		},
		{
			name:     "bad status",
			status:   http.StatusNotFound,
			checksum: func(string) string { return "" },
			wantErr:  require.Error,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantErr == nil {
				tt.wantErr = require.NoError
			}
			s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodGet, r.Method)
				w.WriteHeader(tt.status)
				_, err := w.Write([]byte(contents))
				require.NoError(t, err)
			}))
			t.Cleanup(s.Close)

			dlPath := filepath.Join(t.TempDir(), "world.yaml")

			err := DownloadFile(context.Background(), s.URL, dlPath, tt.checksum(contents))
			tt.wantErr(t, err)
			if err != nil {
				assert.NoFileExists(t, dlPath)
				return
			}

			gotContents, err := os.ReadFile(dlPath)
			require.NoError(t, err)
			assert.Equal(t, contents, string(gotContents))
		})
	}
}

func Test_DownloadFile_ChecksumMismatchDetails(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("spawns: []\n"))
	}))
	t.Cleanup(s.Close)

	expected := strings.Repeat("0", 64)
	err := DownloadFile(context.Background(), s.URL, filepath.Join(t.TempDir(), "world.yaml"), expected)
	require.Error(t, err)

	var mismatch *ErrChecksumMismatch
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, expected, mismatch.Expected)
	assert.Equal(t, sha256Hex("spawns: []\n"), mismatch.Actual)
	assert.Equal(t, s.URL, mismatch.URL)
}

func Test_NormalizeChecksum(t *testing.T) {
	digest := sha256Hex("chicken")
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "", want: ""},
		{input: "sha256:", want: ""},
		{input: digest, want: digest},
		{input: " SHA256:" + strings.ToUpper(digest) + " ", want: digest},
		{input: "md5:" + digest, wantErr: true},
		{input: digest[:10], wantErr: true},
		{input: strings.Repeat("z", 64), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeChecksum(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func sha256Hex(s string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(s)))
}
