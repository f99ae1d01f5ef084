package pyboost

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Boost components built against the custom interpreter. The python binding
// is the point of the exercise; the rest are the usual suspects its
// consumers link.
var boostComponents = []string{
	"python", "system", "filesystem", "program_options", "regex", "thread",
}

// encodeBoostVersion computes the numeric form of the BOOST_VERSION macro
// for a requested release.
func encodeBoostVersion(major, minor, patch int) int {
	return major*100000 + minor*1000 + patch*10
}

var boostVersionMacroRe = regexp.MustCompile(`(?m)^#define\s+BOOST_VERSION\s+(\d+)`)

// installedBoostVersion extracts the BOOST_VERSION macro value from a
// version.hpp body.
func installedBoostVersion(header []byte) (string, bool) {
	m := boostVersionMacroRe.FindSubmatch(header)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}

// headerReader loads an installed header; injected for testability.
type headerReader func(path string) ([]byte, error)

// statFunc probes an installed artifact; injected for testability.
type statFunc func(path string) (os.FileInfo, error)

// boostState probes the library prefix: the version macro in the installed
// header must decode to exactly the requested release, and the python
// binding artifact for the bound interpreter minor must exist in either
// shared or static form.
func boostState(prefix, boostVer, pyVer string, readHeader headerReader, stat statFunc) InstallState {
	headerPath := filepath.Join(prefix, "include", "boost", "version.hpp")
	data, err := readHeader(headerPath)
	if err != nil {
		return StateAbsent
	}

	got, ok := installedBoostVersion(data)
	if !ok {
		return StateMismatch
	}
	major, minor, patch, err := parseVersion(boostVer)
	if err != nil {
		return StateMismatch
	}
	want := strconv.Itoa(encodeBoostVersion(major, minor, patch))
	if got != want {
		return StateMismatch
	}

	// The header can match while the python binding was built against a
	// different interpreter, or not at all.
	pyMinor := strings.SplitN(pythonMajMin(pyVer), ".", 2)
	if len(pyMinor) != 2 {
		return StateMismatch
	}
	libBase := filepath.Join(prefix, "lib", "libboost_python"+pyMinor[0]+pyMinor[1])
	for _, ext := range []string{".so", ".a"} {
		if _, err := stat(libBase + ext); err == nil {
			return StateCurrent
		}
	}
	return StateMismatch
}

// ensureBoostArchive produces a verified source tarball at the cache path,
// reusing the cached copy when it passes the listing check and matches its
// recorded hash, and otherwise walking the mirror list.
func ensureBoostArchive(v Versions, paths Paths) (string, error) {
	archive := paths.BoostArchive(v.Boost)

	if fileExists(archive) {
		if err := listTarball(archive); err != nil {
			warnf("Cached archive is corrupt: %v; re-downloading\n", err)
			tryRemoveCachedFile(archive)
		} else if err := verifyArchiveHash(archive); err != nil {
			warnf("%v; re-downloading\n", err)
			tryRemoveCachedFile(archive)
			_ = os.Remove(sidecarPath(archive))
		} else {
			infof("Reusing cached archive %s\n", archive)
			return archive, nil
		}
	}

	fetch := func(src archiveSource, dest string) error {
		return downloadFileWithOptions(src.URL, dest, defaultDownloadOptions())
	}
	if err := fetchWithFallback(boostSources(v.Boost), archive, fetch, listTarball); err != nil {
		return "", err
	}
	if err := recordArchiveHash(archive); err != nil {
		warnf("Failed to record archive checksum: %v\n", err)
	}
	return archive, nil
}

// buildBoost downloads, bootstraps and compiles the requested Boost release
// against the custom interpreter and compiler, installing into its derived
// prefix. A matching installed release short-circuits the whole stage.
func buildBoost(execCtx *Executor, v Versions, paths Paths, tc Toolchain) error {
	prefix := paths.BoostPrefix(v.Boost)
	pyPrefix := paths.PythonPrefix(v.Python)
	majMin := pythonMajMin(v.Python)

	switch boostState(prefix, v.Boost, v.Python, os.ReadFile, os.Stat) {
	case StateCurrent:
		infof("Boost %s already installed at %s, skipping build\n", v.Boost, prefix)
		return nil
	case StateMismatch:
		warnf("Prefix %s holds a different Boost build, rebuilding\n", prefix)
	}

	for _, dir := range []string{paths.Scratch, paths.Archives} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create dir %s: %w", dir, err)
		}
	}

	srcDir := paths.BoostSrcDir(v.Boost)
	if fileExists(filepath.Join(srcDir, "bootstrap.sh")) {
		infof("Reusing extracted source tree %s\n", srcDir)
	} else {
		archive, err := ensureBoostArchive(v, paths)
		if err != nil {
			return err
		}

		// The archive may have been sitting in the cache while something else
		// wrote to the filesystem; check it once more immediately before
		// committing to extraction.
		if err := listTarball(archive); err != nil {
			return fmt.Errorf("archive failed final verification: %w", err)
		}

		if err := os.RemoveAll(srcDir); err != nil {
			return fmt.Errorf("failed to remove stale source tree %s: %w", srcDir, err)
		}
		infof("Extracting %s\n", filepath.Base(archive))
		if err := extractTar(archive, srcDir); err != nil {
			return fmt.Errorf("failed to extract Boost source: %w", err)
		}
	}

	env := envWith(
		"CC="+tc.CC,
		"CXX="+tc.CXX,
	)

	infof("Bootstrapping Boost %s against Python %s\n", v.Boost, v.Python)
	bootstrap := exec.Command("./bootstrap.sh",
		"--with-toolset=gcc",
		"--with-libraries="+strings.Join(boostComponents, ","),
		"--with-python="+filepath.Join(pyPrefix, "bin", "python3"),
		"--with-python-version="+majMin,
		"--with-python-root="+pyPrefix,
		"--prefix="+prefix,
	)
	bootstrap.Dir = srcDir
	bootstrap.Env = env
	if err := execCtx.Run(bootstrap); err != nil {
		return fmt.Errorf("Boost bootstrap failed: %w", err)
	}

	b2Args := []string{"install",
		"toolset=gcc",
		"--prefix=" + prefix,
	}
	for _, c := range boostComponents {
		b2Args = append(b2Args, "--with-"+c)
	}
	b2Args = append(b2Args,
		"python="+majMin,
		fmt.Sprintf("cxxflags=-std=c++17 -O2 -fPIC -I%s", filepath.Join(pyPrefix, "include", "python"+majMin)),
		fmt.Sprintf("linkflags=-L%s", filepath.Join(pyPrefix, "lib")),
		"variant=release",
		"link=shared",
		"threading=multi",
		fmt.Sprintf("-j%d", numJobs()),
	)

	infof("Building Boost %s with %d jobs\n", v.Boost, numJobs())
	b2 := exec.Command("./b2", b2Args...)
	b2.Dir = srcDir
	b2.Env = env
	if err := execCtx.Run(b2); err != nil {
		return fmt.Errorf("Boost build failed: %w", err)
	}

	if err := registerSharedLibDir(execCtx, "pyboost-boost_"+underscored(v.Boost), filepath.Join(prefix, "lib")); err != nil {
		return err
	}

	infof("Boost %s installed at %s\n", v.Boost, prefix)
	return nil
}
