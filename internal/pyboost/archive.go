package pyboost

import (
	"archive/tar"
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/ulikunitz/xz"
)

// compressedReader wraps f with the decompressor matching the archive name.
func compressedReader(name string, f *os.File) (io.Reader, func(), error) {
	noop := func() {}
	switch {
	case strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz"):
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create gzip reader for %s: %w", name, err)
		}
		return gz, func() { gz.Close() }, nil
	case strings.HasSuffix(name, ".tar.bz2"):
		return bzip2.NewReader(f), noop, nil
	case strings.HasSuffix(name, ".tar.xz"):
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create xz reader for %s: %w", name, err)
		}
		return xr, noop, nil
	case strings.HasSuffix(name, ".tar.zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create zstd reader for %s: %w", name, err)
		}
		return zr, func() { zr.Close() }, nil
	case strings.HasSuffix(name, ".tar"):
		return f, noop, nil
	}
	return nil, noop, fmt.Errorf("unsupported archive format: %s", name)
}

// listTarball is the integrity check: an archive is considered good when its
// entire entry list can be read. Tries system tar first, then the pure-Go
// reader.
func listTarball(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("archive %s not readable: %w", path, err)
	}

	if _, err := exec.LookPath("tar"); err == nil {
		cmd := exec.Command("tar", "tf", path)
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
		if err := cmd.Run(); err == nil {
			return nil
		}
		debugf("system tar listing failed for %s, trying pure-Go reader\n", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer f.Close()

	r, closeFn, err := compressedReader(path, f)
	if err != nil {
		return err
	}
	defer closeFn()

	tr := tar.NewReader(r)
	for {
		_, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("corrupt archive %s: %w", path, err)
		}
		if _, err := io.Copy(io.Discard, tr); err != nil {
			return fmt.Errorf("corrupt archive %s: %w", path, err)
		}
	}
}

// shouldStripTar reports whether every entry shares one top-level directory.
func shouldStripTar(archive string) (bool, error) {
	cmd := exec.Command("sh", "-c", fmt.Sprintf("tar tf %s | head -n 51", archive))

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = io.Discard

	if err := cmd.Run(); err != nil {
		return false, fmt.Errorf("tar tf failed: %w", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) == 0 || lines[0] == "" {
		return false, nil
	}

	slashIdx := strings.IndexByte(lines[0], '/')
	if slashIdx == -1 {
		return false, nil
	}
	topDir := lines[0][:slashIdx+1]

	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, topDir) {
			return false, nil
		}
	}
	return true, nil
}

// extractTar extracts an archive into dest, stripping the single top-level
// source directory (Python-X.Y.Z/, boost_X_Y_Z/). System tar is preferred;
// the pure-Go reader covers hosts where it chokes on the format.
func extractTar(realPath, dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("failed to create extraction dir %s: %w", dest, err)
	}

	strip, err := shouldStripTar(realPath)
	if err != nil {
		debugf("shouldStripTar(%s) failed: %v\n", realPath, err)
	}
	args := []string{"xf", realPath, "-C", dest}
	if strip {
		args = append(args, "--strip-components=1")
	}
	if err := exec.Command("tar", args...).Run(); err == nil {
		debugf("extracted %s with system tar\n", realPath)
		return nil
	}

	f, err := os.Open(realPath)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", realPath, err)
	}
	defer f.Close()

	r, closeFn, err := compressedReader(realPath, f)
	if err != nil {
		return err
	}
	defer closeFn()

	tr := tar.NewReader(r)

	// Track the prefix for stripping (e.g. "boost_1_84_0/")
	var prefix string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("error reading tar header in %s: %w", realPath, err)
		}

		// Skip PAX headers (global or per-file)
		if hdr.Typeflag == tar.TypeXHeader || hdr.Typeflag == tar.TypeXGlobalHeader {
			if _, err := io.Copy(io.Discard, tr); err != nil {
				return fmt.Errorf("error skipping extended header data in %s: %w", realPath, err)
			}
			continue
		}

		if prefix == "" && (hdr.Typeflag == tar.TypeDir || hdr.Typeflag == tar.TypeReg) {
			if slashIdx := strings.Index(hdr.Name, "/"); slashIdx != -1 {
				prefix = hdr.Name[:slashIdx+1]
				debugf("Detected tar prefix for stripping: %s\n", prefix)
			}
		}

		targetName := strings.TrimPrefix(hdr.Name, prefix)
		if targetName == "" {
			continue
		}

		targetPath := filepath.Join(dest, targetName)
		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return fmt.Errorf("failed to create parent dir for %s: %w", targetPath, err)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(targetPath, os.FileMode(hdr.Mode)); err != nil {
				return fmt.Errorf("failed to create dir %s: %w", targetPath, err)
			}
		case tar.TypeReg:
			outFile, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return fmt.Errorf("failed to create file %s: %w", targetPath, err)
			}
			if _, err := io.Copy(outFile, tr); err != nil {
				outFile.Close()
				return fmt.Errorf("failed to write file %s: %w", targetPath, err)
			}
			outFile.Close()
			if err := os.Chtimes(targetPath, hdr.AccessTime, hdr.ModTime); err != nil {
				debugf("failed to set times for %s: %v\n", targetPath, err)
			}
		case tar.TypeSymlink:
			if err := os.Symlink(hdr.Linkname, targetPath); err != nil && !os.IsExist(err) {
				return fmt.Errorf("failed to create symlink %s -> %s: %w", targetPath, hdr.Linkname, err)
			}
		default:
			debugf("Skipping unsupported tar entry type %c: %s\n", hdr.Typeflag, hdr.Name)
		}
	}

	if prefix == "" {
		debugf("No top-level directory prefix found in %s; extracted without stripping\n", realPath)
	}

	return nil
}
