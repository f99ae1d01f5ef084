package pyboost

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"lukechampine.com/blake3"
)

// The archive cache survives across runs; a blake3 sidecar written after the
// first successful listing check catches on-disk corruption that a later
// listing would only find at extraction time.

func sidecarPath(archive string) string {
	return archive + ".b3"
}

// computeBlake3 hashes a file with blake3-256.
func computeBlake3(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for hashing: %w", path, err)
	}
	defer f.Close()

	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// recordArchiveHash writes the sidecar for a freshly verified archive.
func recordArchiveHash(archive string) error {
	sum, err := computeBlake3(archive)
	if err != nil {
		return err
	}
	return os.WriteFile(sidecarPath(archive), []byte(sum+"\n"), 0o644)
}

// verifyArchiveHash compares the archive against its sidecar. A missing
// sidecar is not an error; the listing check is the authoritative gate.
func verifyArchiveHash(archive string) error {
	data, err := os.ReadFile(sidecarPath(archive))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read checksum sidecar for %s: %w", archive, err)
	}
	want := strings.TrimSpace(string(data))

	got, err := computeBlake3(archive)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("cached archive %s does not match recorded checksum", archive)
	}
	return nil
}
