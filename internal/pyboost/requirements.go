package pyboost

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// requiredTool names a host prerequisite; any one of Probe satisfies it.
type requiredTool struct {
	Name  string
	Probe []string
}

var requiredTools = []requiredTool{
	{Name: "archiver (tar)", Probe: []string{"tar"}},
	{Name: "make", Probe: []string{"make"}},
	{Name: "C compiler (gcc)", Probe: []string{"gcc"}},
	{Name: "C++ compiler (g++)", Probe: []string{"g++"}},
	{Name: "downloader (wget or curl)", Probe: []string{"wget", "curl"}},
}

// optionalTools are only reported; the Build-Tool Installer provides them
// later via the freshly built interpreter's pip.
var optionalTools = []requiredTool{
	{Name: "build orchestrator (meson)", Probe: []string{"meson"}},
	{Name: "build backend (ninja)", Probe: []string{"ninja"}},
}

// packageManager describes one known manager family: how to probe for it and
// how to install this host's prerequisite package set non-interactively.
type packageManager struct {
	Name        string
	InstallArgs []string
	Packages    []string
}

// Probed in this order; the first executable found wins.
var packageManagers = []packageManager{
	{
		Name:        "apt-get",
		InstallArgs: []string{"install", "-y"},
		Packages:    []string{"build-essential", "tar", "xz-utils", "wget", "curl", "make"},
	},
	{
		Name:        "dnf",
		InstallArgs: []string{"install", "-y"},
		Packages:    []string{"gcc", "gcc-c++", "make", "tar", "xz", "wget", "curl"},
	},
	{
		Name:        "yum",
		InstallArgs: []string{"install", "-y"},
		Packages:    []string{"gcc", "gcc-c++", "make", "tar", "xz", "wget", "curl"},
	},
	{
		Name:        "zypper",
		InstallArgs: []string{"--non-interactive", "install"},
		Packages:    []string{"gcc", "gcc-c++", "make", "tar", "xz", "wget", "curl"},
	},
	{
		Name:        "pacman",
		InstallArgs: []string{"-S", "--noconfirm", "--needed"},
		Packages:    []string{"base-devel", "tar", "xz", "wget", "curl"},
	},
}

// lookPathAny returns the first name from the list resolvable on PATH.
func lookPathAny(names ...string) (string, bool) {
	for _, n := range names {
		if p, err := exec.LookPath(n); err == nil {
			return p, true
		}
	}
	return "", false
}

// missingRequiredTools returns the required tools not present on the host.
func missingRequiredTools() []requiredTool {
	var missing []requiredTool
	for _, t := range requiredTools {
		if _, ok := lookPathAny(t.Probe...); !ok {
			missing = append(missing, t)
		}
	}
	return missing
}

// detectPackageManager probes known manager executables in priority order.
func detectPackageManager() (*packageManager, bool) {
	return detectPackageManagerFrom(exec.LookPath)
}

// detectPackageManagerFrom is the probe with an injectable lookup, so the
// priority order can be tested without touching the host PATH.
func detectPackageManagerFrom(lookup func(string) (string, error)) (*packageManager, bool) {
	for i := range packageManagers {
		if _, err := lookup(packageManagers[i].Name); err == nil {
			return &packageManagers[i], true
		}
	}
	return nil, false
}

// parseOSRelease collects the ID and ID_LIKE tokens from an os-release stream.
func parseOSRelease(r io.Reader) map[string]bool {
	ids := make(map[string]bool)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "ID=") && !strings.HasPrefix(line, "ID_LIKE=") {
			continue
		}
		_, val, _ := strings.Cut(line, "=")
		val = strings.Trim(val, `"'`)
		for _, tok := range strings.Fields(val) {
			ids[strings.ToLower(tok)] = true
		}
	}
	return ids
}

func osReleaseIDs() map[string]bool {
	f, err := os.Open("/etc/os-release")
	if err != nil {
		return map[string]bool{}
	}
	defer f.Close()
	return parseOSRelease(f)
}

// isDebianFamily reports whether the host uses dpkg-style packaging, which
// needs the interpreter's development headers installed up front.
func isDebianFamily() bool {
	ids := osReleaseIDs()
	return ids["debian"] || ids["ubuntu"]
}

// checkRequirements verifies the host prerequisites and, when running with
// privileges, installs any missing required packages through the detected
// package manager. Optional tools only produce a warning: the Build-Tool
// Installer provides them via pip once the interpreter exists.
func checkRequirements(execCtx *Executor) error {
	infof("Checking host requirements\n")

	missing := missingRequiredTools()
	for _, t := range requiredTools {
		if p, ok := lookPathAny(t.Probe...); ok {
			cPrintf(colInfo, "  %s: %s\n", t.Name, p)
		}
	}
	for _, t := range optionalTools {
		if _, ok := lookPathAny(t.Probe...); !ok {
			warnf("Optional tool missing: %s (installed later via pip)\n", t.Name)
		}
	}

	if len(missing) == 0 {
		infof("All required tools present\n")
		return nil
	}

	var names []string
	for _, t := range missing {
		names = append(names, t.Name)
	}
	warnf("Missing required tools: %s\n", strings.Join(names, ", "))

	if os.Geteuid() != 0 {
		return fmt.Errorf("missing required tools (%s) and not running as root; install them manually or re-run with sudo",
			strings.Join(names, ", "))
	}

	pm, ok := detectPackageManager()
	if !ok {
		return fmt.Errorf("no supported package manager found (tried apt-get, dnf, yum, zypper, pacman); install %s manually",
			strings.Join(names, ", "))
	}

	infof("Installing prerequisites via %s\n", pm.Name)
	args := append(append([]string{}, pm.InstallArgs...), pm.Packages...)
	cmd := exec.Command(pm.Name, args...)
	if err := execCtx.Run(cmd); err != nil {
		return fmt.Errorf("%s failed to install prerequisites: %w", pm.Name, err)
	}

	// Re-probe: the manager may have succeeded while still not providing a tool
	// (renamed package, masked repo).
	if still := missingRequiredTools(); len(still) > 0 {
		var stillNames []string
		for _, t := range still {
			stillNames = append(stillNames, t.Name)
		}
		return fmt.Errorf("still missing after %s install: %s", pm.Name, strings.Join(stillNames, ", "))
	}

	infof("All required tools present\n")
	return nil
}
