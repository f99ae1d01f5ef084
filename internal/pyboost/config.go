package pyboost

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config struct
type Config struct {
	Values map[string]string
}

// Load /etc/pyboost.conf and apply defaults
func loadConfig(path string) (*Config, error) {
	cfg := &Config{Values: make(map[string]string)}

	// Attempt to read the file
	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}
			key := strings.TrimSpace(parts[0])
			val := strings.TrimSpace(parts[1])
			val = strings.Trim(val, `"'`)
			cfg.Values[key] = val
		}
		if err := scanner.Err(); err != nil {
			return cfg, err
		}
	}

	// Merge PYBOOST_* env overrides
	mergeEnvOverrides(cfg)

	// Ensure TMPDIR has a default
	if tmp := cfg.Values["TMPDIR"]; tmp == "" {
		cfg.Values["TMPDIR"] = "/tmp"
	}

	return cfg, nil
}

// Merge PYBOOST_* env overrides
func mergeEnvOverrides(cfg *Config) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "PYBOOST_") {
			parts := strings.SplitN(env, "=", 2)
			if len(parts) == 2 {
				cfg.Values[parts[0]] = parts[1]
			}
		}
	}
}

// Versions is the target pair selected by the operator.
type Versions struct {
	Python string
	Boost  string
}

// Toolchain selects the compiler and code-generation flags passed explicitly
// into every configure/build invocation. Nothing is exported into the pyboost
// process environment itself.
type Toolchain struct {
	CC       string
	CXX      string
	CFLAGS   string
	CXXFLAGS string
}

// Paths holds the derived filesystem layout for a run.
type Paths struct {
	Root     string // namespace root, install prefixes live here
	Archives string // persistent source-archive cache
	Scratch  string // ephemeral build trees, removed on success
}

// initConfig derives the filesystem layout and toolchain from the merged
// configuration.
func initConfig(cfg *Config) (Paths, Toolchain) {
	root := cfg.Values["PYBOOST_ROOT"]
	if root == "" {
		root = "/opt/pyboost"
	}

	tmpDir := cfg.Values["PYBOOST_TMPDIR"]
	if tmpDir == "" {
		tmpDir = cfg.Values["TMPDIR"]
	}
	if tmpDir == "" {
		tmpDir = "/tmp"
	}

	Debug = cfg.Values["PYBOOST_DEBUG"] == "1"

	archiveMirror = ""
	if mirror := cfg.Values["PYBOOST_MIRROR"]; mirror != "" {
		archiveMirror = strings.TrimRight(mirror, "/")
		debugf("=> Using archive mirror: %s\n", archiveMirror)
	}

	cc := cfg.Values["PYBOOST_CC"]
	if cc == "" {
		cc = "gcc"
	}
	cxx := cfg.Values["PYBOOST_CXX"]
	if cxx == "" {
		cxx = "g++"
	}

	cflags := cfg.Values["PYBOOST_CFLAGS"]
	if cflags == "" {
		cflags = suggestCFLAGS()
	}

	paths := Paths{
		Root:     root,
		Archives: filepath.Join(root, "archives"),
		Scratch:  filepath.Join(tmpDir, "pyboost-build"),
	}
	tc := Toolchain{
		CC:       cc,
		CXX:      cxx,
		CFLAGS:   cflags,
		CXXFLAGS: cflags,
	}
	return paths, tc
}

// PythonPrefix returns the version-scoped install prefix for the interpreter.
func (p Paths) PythonPrefix(ver string) string {
	return filepath.Join(p.Root, "python"+ver)
}

// BoostPrefix returns the version-scoped install prefix for the library.
func (p Paths) BoostPrefix(ver string) string {
	return filepath.Join(p.Root, "boost_"+underscored(ver))
}

// BoostArchive returns the cache path for the library source tarball.
func (p Paths) BoostArchive(ver string) string {
	return filepath.Join(p.Archives, "boost_"+underscored(ver)+".tar.gz")
}

// BoostSrcDir returns the scratch extraction directory for the library.
func (p Paths) BoostSrcDir(ver string) string {
	return filepath.Join(p.Scratch, "boost_"+underscored(ver))
}

// PythonSrcDir returns the scratch extraction directory for the interpreter.
func (p Paths) PythonSrcDir(ver string) string {
	return filepath.Join(p.Scratch, "Python-"+ver)
}

func underscored(ver string) string {
	return strings.ReplaceAll(ver, ".", "_")
}

// parseVersion validates a three-component version string.
func parseVersion(s string) (major, minor, patch int, err error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid version %q: expected MAJOR.MINOR.PATCH", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, convErr := strconv.Atoi(p)
		if convErr != nil || n < 0 {
			return 0, 0, 0, fmt.Errorf("invalid version %q: component %q is not a number", s, p)
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], nil
}

// pythonMajMin turns "3.12.3" into "3.12" for include dirs and b2 bindings.
func pythonMajMin(ver string) string {
	parts := strings.SplitN(ver, ".", 3)
	if len(parts) < 2 {
		return ver
	}
	return parts[0] + "." + parts[1]
}
