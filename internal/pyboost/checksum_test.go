package pyboost

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveHashRoundtrip(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "boost_1_84_0.tar.gz")
	require.NoError(t, os.WriteFile(archive, []byte("archive payload"), 0o644))

	require.NoError(t, recordArchiveHash(archive))
	assert.FileExists(t, sidecarPath(archive))
	assert.NoError(t, verifyArchiveHash(archive))
}

func TestArchiveHashDetectsCorruption(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "boost_1_84_0.tar.gz")
	require.NoError(t, os.WriteFile(archive, []byte("archive payload"), 0o644))
	require.NoError(t, recordArchiveHash(archive))

	// Flip the cached bytes underneath the sidecar.
	require.NoError(t, os.WriteFile(archive, []byte("bitrot"), 0o644))
	assert.Error(t, verifyArchiveHash(archive))
}

func TestArchiveHashMissingSidecarIsNotAnError(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "boost_1_84_0.tar.gz")
	require.NoError(t, os.WriteFile(archive, []byte("archive payload"), 0o644))

	assert.NoError(t, verifyArchiveHash(archive))
}

func TestComputeBlake3Deterministic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, []byte("same bytes"), 0o644))

	a, err := computeBlake3(path)
	require.NoError(t, err)
	b, err := computeBlake3(path)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64) // blake3-256, hex encoded
}
