package internal

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/anchore/spawnguard/internal/log"
)

const sha256Prefix = "sha256:"

// ErrChecksumMismatch is returned when a downloaded world does not hash to the expected digest
type ErrChecksumMismatch struct {
	URL      string
	Expected string
	Actual   string
}

func (e *ErrChecksumMismatch) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected sha256 %s, got %s", e.URL, e.Expected, e.Actual)
}

// NormalizeChecksum accepts a sha256 hex digest, optionally prefixed with "sha256:", and returns
// the lower case digest. An empty checksum stays empty.
func NormalizeChecksum(checksum string) (string, error) {
	digest := strings.ToLower(strings.TrimSpace(checksum))
	digest = strings.TrimPrefix(digest, sha256Prefix)
	if digest == "" {
		return "", nil
	}
	if b, err := hex.DecodeString(digest); err != nil || len(b) != sha256.Size {
		return "", fmt.Errorf("invalid sha256 checksum %q", checksum)
	}
	return digest, nil
}

// DownloadFile fetches a world description from url into path. When checksum is set the body must
// hash to it; a world that does not is removed again.
func DownloadFile(ctx context.Context, url string, path string, checksum string) error {
	expected, err := NormalizeChecksum(checksum)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req) // nolint:gosec
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(out, h), resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	log.WithFields("url", url, "bytes", n).Debug("downloaded world")

	if expected == "" {
		return nil
	}

	if actual := hex.EncodeToString(h.Sum(nil)); actual != expected {
		_ = os.Remove(path)
		return &ErrChecksumMismatch{URL: url, Expected: expected, Actual: actual}
	}

	log.WithFields("checksum", expected, "url", url).Trace("checksum verified")
	return nil
}
