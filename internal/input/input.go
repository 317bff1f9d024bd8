package input

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"

	"github.com/anchore/spawnguard/internal"
)

// IsStdinPipeOrRedirect returns true if stdin is provided via pipe or redirect
func IsStdinPipeOrRedirect() (bool, error) {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to determine if there is piped input: %w", err)
	}

	// note: we should NOT use the absence of a character device here as the hint that there may be input expected
	// on stdin, as running spawnguard as a subprocess you would expect no character device to be present but input
	// can be from either stdin or indicated by the CLI. Checking if stdin is a pipe is the most direct way to
	// determine if there *may* be bytes that will show up on stdin.
	return fi.Mode()&os.ModeNamedPipe != 0 || fi.Size() > 0, nil
}

// IsURL returns true for http(s) sources
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// GetReader opens src, which is "-" for stdin, an http(s) URL (downloaded and verified against
// checksum when given), or a file path (with ~ expansion).
func GetReader(ctx context.Context, src string, checksum string) (io.ReadCloser, error) {
	switch {
	case src == "-":
		r, err := decodeStdin(os.Stdin)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(r), nil
	case IsURL(src):
		return download(ctx, src, checksum)
	default:
		fileLocation, err := homedir.Expand(src)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("could not read world; could not expand path: %s ", src))
		}

		reader, err := os.Open(fileLocation)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("could not read world; could not open file: %s ", fileLocation))
		}
		return reader, nil
	}
}

func download(ctx context.Context, url, checksum string) (io.ReadCloser, error) {
	dir, err := os.MkdirTemp("", internal.ApplicationName+"-")
	if err != nil {
		return nil, fmt.Errorf("unable to create download directory: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "world")
	if err := internal.DownloadFile(ctx, url, path, checksum); err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("could not read world; could not download: %s ", url))
	}

	// the download directory is removed on return, so hand back the contents instead of the file
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func decodeStdin(r io.Reader) (io.ReadSeeker, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed reading stdin: %w", err)
	}

	reader := bytes.NewReader(b)
	_, err = reader.Seek(0, io.SeekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stdin: %w", err)
	}

	return reader, nil
}
