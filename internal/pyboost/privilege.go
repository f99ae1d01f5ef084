package pyboost

import (
	"fmt"
	"os"
	"runtime"
)

// requireLinux verifies we are running on a Linux host. Every later stage
// shells out to Linux-only tooling (package managers, ldconfig), so this is
// checked before anything else.
func requireLinux() error {
	if runtime.GOOS != "linux" {
		return fmt.Errorf("unsupported operating system %q: pyboost only provisions Linux hosts", runtime.GOOS)
	}
	return nil
}

// requireRoot verifies the process runs with elevated privileges. Installation
// writes under /opt and /etc/ld.so.conf.d and may mutate host package state,
// so the whole pipeline (including --check-system) insists on euid 0 up front.
func requireRoot() error {
	if os.Geteuid() != 0 {
		return fmt.Errorf("pyboost must run as root (try: sudo pyboost)")
	}
	return nil
}
