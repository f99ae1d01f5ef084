package pyboost

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// InstallState is the result of an idempotency probe against an installed
// artifact.
type InstallState int

const (
	StateAbsent   InstallState = iota // nothing installed at the prefix
	StateMismatch                     // something installed, wrong version
	StateCurrent                      // exact requested version installed
)

const pythonURLFormat = "https://www.python.org/ftp/python/%s/Python-%s.tgz"

// versionQuery asks an installed binary for its version string. Injected so
// the state predicate can be exercised without a real interpreter on disk.
type versionQuery func(bin string) (string, error)

func runVersionQuery(bin string) (string, error) {
	out, err := exec.Command(bin, "--version").CombinedOutput()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// pythonState probes the interpreter prefix. The version comparison is exact
// string equality: a binary reporting any other component count or value is
// treated as not installed.
func pythonState(prefix, ver string, query versionQuery) InstallState {
	bin := filepath.Join(prefix, "bin", "python3")
	if !fileExists(bin) {
		return StateAbsent
	}
	out, err := query(bin)
	if err != nil {
		return StateMismatch
	}
	if out == "Python "+ver {
		return StateCurrent
	}
	return StateMismatch
}

// Development headers CPython's configure probes for on dpkg hosts. Without
// these the resulting interpreter silently loses ssl, sqlite3, lzma and
// readline.
var debianPythonBuildDeps = []string{
	"libssl-dev", "zlib1g-dev", "libbz2-dev", "libreadline-dev",
	"libsqlite3-dev", "libffi-dev", "liblzma-dev", "libncursesw5-dev",
	"libgdbm-dev", "uuid-dev",
}

// buildPython downloads, configures, compiles and installs the requested
// interpreter version into its derived prefix. A matching installed
// interpreter short-circuits the whole stage.
func buildPython(execCtx *Executor, v Versions, paths Paths, tc Toolchain) error {
	prefix := paths.PythonPrefix(v.Python)

	switch pythonState(prefix, v.Python, runVersionQuery) {
	case StateCurrent:
		infof("Python %s already installed at %s, skipping build\n", v.Python, prefix)
		return nil
	case StateMismatch:
		warnf("Prefix %s holds a different interpreter, rebuilding\n", prefix)
	}

	if err := os.MkdirAll(paths.Scratch, 0o755); err != nil {
		return fmt.Errorf("failed to create scratch dir %s: %w", paths.Scratch, err)
	}

	if isDebianFamily() {
		infof("Installing interpreter build headers via apt-get\n")
		args := append([]string{"install", "-y"}, debianPythonBuildDeps...)
		if err := execCtx.Run(exec.Command("apt-get", args...)); err != nil {
			return fmt.Errorf("apt-get failed to install interpreter build headers: %w", err)
		}
	}

	url := fmt.Sprintf(pythonURLFormat, v.Python, v.Python)
	archive := filepath.Join(paths.Scratch, "Python-"+v.Python+".tgz")
	infof("Downloading Python %s\n", v.Python)
	if err := downloadFile(url, archive); err != nil {
		return fmt.Errorf("failed to download Python %s: %w", v.Python, err)
	}
	// A truncated transfer that slipped past the download tools is still
	// caught before extraction.
	if err := listTarball(archive); err != nil {
		tryRemoveCachedFile(archive)
		return fmt.Errorf("downloaded Python archive is corrupt: %w", err)
	}

	srcDir := paths.PythonSrcDir(v.Python)
	if err := os.RemoveAll(srcDir); err != nil {
		return fmt.Errorf("failed to remove stale source tree %s: %w", srcDir, err)
	}
	infof("Extracting %s\n", filepath.Base(archive))
	if err := extractTar(archive, srcDir); err != nil {
		return fmt.Errorf("failed to extract Python source: %w", err)
	}

	env := envWith(
		"CC="+tc.CC,
		"CXX="+tc.CXX,
		"CFLAGS="+tc.CFLAGS,
		"CXXFLAGS="+tc.CXXFLAGS,
	)

	infof("Configuring Python %s (prefix %s)\n", v.Python, prefix)
	configure := exec.Command("./configure",
		"--prefix="+prefix,
		"--enable-shared",
		"--enable-optimizations",
		"--with-lto",
		"--with-system-ffi",
		"--enable-loadable-sqlite-extensions",
	)
	configure.Dir = srcDir
	configure.Env = env
	if err := execCtx.Run(configure); err != nil {
		return fmt.Errorf("Python configure failed: %w", err)
	}

	infof("Building Python %s with %d jobs\n", v.Python, numJobs())
	makeCmd := exec.Command("make", fmt.Sprintf("-j%d", numJobs()))
	makeCmd.Dir = srcDir
	makeCmd.Env = env
	if err := execCtx.Run(makeCmd); err != nil {
		return fmt.Errorf("Python build failed: %w", err)
	}

	installCmd := exec.Command("make", "install")
	installCmd.Dir = srcDir
	installCmd.Env = env
	if err := execCtx.Run(installCmd); err != nil {
		return fmt.Errorf("Python install failed: %w", err)
	}

	if err := registerSharedLibDir(execCtx, "pyboost-python"+v.Python, filepath.Join(prefix, "lib")); err != nil {
		return err
	}

	infof("Python %s installed at %s\n", v.Python, prefix)
	return nil
}

// registerSharedLibDir makes the freshly installed shared libraries visible
// to the dynamic linker.
func registerSharedLibDir(execCtx *Executor, name, libDir string) error {
	confPath := filepath.Join("/etc/ld.so.conf.d", name+".conf")
	if err := os.WriteFile(confPath, []byte(libDir+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", confPath, err)
	}
	if err := execCtx.Run(exec.Command("ldconfig")); err != nil {
		return fmt.Errorf("ldconfig failed: %w", err)
	}
	return nil
}
