package pyboost

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// The activation script is a one-way artifact: pyboost never reads it back,
// and it deliberately does not validate that the referenced paths exist.
const activateScriptName = "activate-pyboost.sh"

const activateTemplate = `#!/bin/sh
# Generated by pyboost for Python {{.PythonVersion}} / Boost {{.BoostVersion}}.
# Source this file to point builds at the provisioned toolchain.

export PYBOOST_PYTHON_ROOT="{{.PythonPrefix}}"
export PYBOOST_BOOST_ROOT="{{.BoostPrefix}}"

export PATH="{{.PythonPrefix}}/bin:$PATH"

export CC="{{.CC}}"
export CXX="{{.CXX}}"
export CFLAGS="{{.CFLAGS}}"
export CXXFLAGS="{{.CXXFLAGS}}"

export LD_LIBRARY_PATH="{{.PythonPrefix}}/lib:{{.BoostPrefix}}/lib${LD_LIBRARY_PATH:+:$LD_LIBRARY_PATH}"
export PKG_CONFIG_PATH="{{.PythonPrefix}}/lib/pkgconfig${PKG_CONFIG_PATH:+:$PKG_CONFIG_PATH}"
export PYTHONPATH="{{.BoostPrefix}}/lib${PYTHONPATH:+:$PYTHONPATH}"
export CMAKE_PREFIX_PATH="{{.PythonPrefix}};{{.BoostPrefix}}${CMAKE_PREFIX_PATH:+;$CMAKE_PREFIX_PATH}"

export BOOST_ROOT="{{.BoostPrefix}}"
export BOOST_INCLUDEDIR="{{.BoostPrefix}}/include"
export BOOST_LIBRARYDIR="{{.BoostPrefix}}/lib"

alias meson="{{.PythonPrefix}}/bin/meson"
alias ninja="{{.PythonPrefix}}/bin/ninja"
`

type activateParams struct {
	PythonVersion string
	BoostVersion  string
	PythonPrefix  string
	BoostPrefix   string
	CC            string
	CXX           string
	CFLAGS        string
	CXXFLAGS      string
}

// renderActivateScript renders the activation script for the given version
// pair. Pure function of its inputs; the prefixes are derived, never probed.
func renderActivateScript(v Versions, paths Paths, tc Toolchain) (string, error) {
	tmpl, err := template.New("activate").Parse(activateTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse activation template: %w", err)
	}
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, activateParams{
		PythonVersion: v.Python,
		BoostVersion:  v.Boost,
		PythonPrefix:  paths.PythonPrefix(v.Python),
		BoostPrefix:   paths.BoostPrefix(v.Boost),
		CC:            tc.CC,
		CXX:           tc.CXX,
		CFLAGS:        tc.CFLAGS,
		CXXFLAGS:      tc.CXXFLAGS,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render activation script: %w", err)
	}
	return buf.String(), nil
}

// writeActivateScript writes the rendered script to path with the executable
// bit set.
func writeActivateScript(path string, v Versions, paths Paths, tc Toolchain) error {
	script, err := renderActivateScript(v, paths, tc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		return fmt.Errorf("failed to write activation script %s: %w", path, err)
	}
	// os.WriteFile honors umask; force the mode we promised.
	if err := os.Chmod(path, 0o755); err != nil {
		return fmt.Errorf("failed to mark %s executable: %w", path, err)
	}
	return nil
}

// defaultActivatePath places the script beside the pyboost executable.
func defaultActivatePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate own executable: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), activateScriptName), nil
}
