package pyboost

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadRemovesStaleDestination(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "Python-3.12.3.tgz")
	require.NoError(t, os.WriteFile(dest, []byte("leftover from an interrupted run"), 0o644))

	opt := downloadOptions{
		Quiet:          true,
		ConnectTimeout: time.Second,
		TotalTimeout:   2 * time.Second,
		Retries:        0,
	}
	err := downloadFileWithOptions("http://127.0.0.1:9/Python-3.12.3.tgz", dest, opt)

	require.Error(t, err)
	// The leftover must not survive to be mistaken for a finished download.
	assert.NoFileExists(t, dest)
}
