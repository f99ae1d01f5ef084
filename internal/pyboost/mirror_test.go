package pyboost

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSources(n int) []archiveSource {
	srcs := make([]archiveSource, n)
	for i := range srcs {
		srcs[i] = archiveSource{Name: string(rune('A' + i)), URL: "https://example.invalid/" + string(rune('a'+i))}
	}
	return srcs
}

func TestFetchWithFallbackLastMirrorWins(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "boost.tar.gz")
	var attempts []string

	fetch := func(src archiveSource, dest string) error {
		attempts = append(attempts, src.Name)
		if src.Name != "C" {
			return errors.New("simulated network error")
		}
		return os.WriteFile(dest, []byte("payload"), 0o644)
	}
	verify := func(path string) error { return nil }

	err := fetchWithFallback(testSources(3), dest, fetch, verify)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, attempts)
	assert.FileExists(t, dest)
}

func TestFetchWithFallbackStopsAtFirstSuccess(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "boost.tar.gz")
	var attempts int

	fetch := func(src archiveSource, dest string) error {
		attempts++
		return os.WriteFile(dest, []byte("payload"), 0o644)
	}

	err := fetchWithFallback(testSources(3), dest, fetch, func(string) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestFetchWithFallbackExhaustion(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "boost.tar.gz")

	fetch := func(src archiveSource, dest string) error {
		return errors.New("simulated network error")
	}

	err := fetchWithFallback(testSources(3), dest, fetch, func(string) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 mirrors exhausted")
	assert.NoFileExists(t, dest)
}

func TestFetchWithFallbackClearsPartialBeforeNextMirror(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "boost.tar.gz")

	fetch := func(src archiveSource, dest string) error {
		if src.Name == "A" {
			require.NoError(t, os.WriteFile(dest, []byte("partial garbage"), 0o644))
			return errors.New("connection reset mid-transfer")
		}
		// The previous mirror's partial output must be gone by now.
		assert.NoFileExists(t, dest)
		return os.WriteFile(dest, []byte("complete"), 0o644)
	}

	err := fetchWithFallback(testSources(2), dest, fetch, func(string) error { return nil })
	require.NoError(t, err)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "complete", string(data))
}

func TestBoostSourcesConfiguredMirrorFirst(t *testing.T) {
	prev := archiveMirror
	archiveMirror = "https://mirror.internal/boost"
	defer func() { archiveMirror = prev }()

	srcs := boostSources("1.84.0")
	require.Len(t, srcs, 4)
	assert.Equal(t, "configured mirror", srcs[0].Name)
	assert.Equal(t, "https://mirror.internal/boost/boost_1_84_0.tar.gz", srcs[0].URL)
}

func TestFetchWithFallbackDeletesCorruptDownload(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "boost.tar.gz")
	var verified []string

	fetch := func(src archiveSource, dest string) error {
		return os.WriteFile(dest, []byte("garbage"), 0o644)
	}
	verify := func(path string) error {
		verified = append(verified, path)
		return errors.New("not a tarball")
	}

	err := fetchWithFallback(testSources(2), dest, fetch, verify)
	require.Error(t, err)
	// Every download failed verification and was removed before the next try.
	assert.Len(t, verified, 2)
	assert.NoFileExists(t, dest)
}
