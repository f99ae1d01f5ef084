package pyboost

import (
	"fmt"
	"os/exec"
	"path/filepath"
)

// Auxiliary packaging tools installed alongside the orchestrator/backend.
var auxPackagingTools = []string{"wheel", "setuptools", "packaging"}

// installBuildTools installs meson, ninja and the packaging helpers through
// the freshly built interpreter's pip. Not idempotency-checked: pip is
// no-op-safe for already-current packages.
func installBuildTools(execCtx *Executor, pyPrefix string) error {
	pip := filepath.Join(pyPrefix, "bin", "pip3")
	if !fileExists(pip) {
		return fmt.Errorf("pip not found at %s; interpreter install appears incomplete", pip)
	}

	// pip warns loudly when invoked as root; the whole pipeline runs as root
	// on purpose.
	env := envWith("PIP_ROOT_USER_ACTION=ignore")

	steps := [][]string{
		{"install", "--upgrade", "pip"},
		{"install", "meson", "ninja"},
		append([]string{"install"}, auxPackagingTools...),
	}
	for _, args := range steps {
		infof("pip %v\n", args)
		cmd := exec.Command(pip, args...)
		cmd.Env = env
		if err := execCtx.Run(cmd); err != nil {
			return fmt.Errorf("pip %v failed: %w", args, err)
		}
	}

	// pip exits zero even when a wheel it installed is broken; re-probe the
	// two tools later build steps rely on and surface a warning rather than
	// failing the stage.
	reprobeBuildTools(pyPrefix, fileExists)

	return nil
}

// reprobeBuildTools checks that meson and ninja actually landed under the
// interpreter prefix after pip reported success. Missing tools are warned
// about and returned; they never fail the stage.
func reprobeBuildTools(pyPrefix string, exists func(string) bool) []string {
	var missing []string
	for _, tool := range []string{"meson", "ninja"} {
		if !exists(filepath.Join(pyPrefix, "bin", tool)) {
			warnf("%s still missing under %s after pip install\n", tool, pyPrefix)
			missing = append(missing, tool)
		}
	}
	return missing
}
