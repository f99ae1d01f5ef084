package pyboost

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnvInputs() (Versions, Paths, Toolchain) {
	v := Versions{Python: "3.12.3", Boost: "1.84.0"}
	p := Paths{Root: "/opt/pyboost", Archives: "/opt/pyboost/archives", Scratch: "/tmp/pyboost-build"}
	tc := Toolchain{CC: "gcc", CXX: "g++", CFLAGS: "-O2 -fPIC", CXXFLAGS: "-O2 -fPIC"}
	return v, p, tc
}

func TestRenderActivateScript(t *testing.T) {
	v, p, tc := testEnvInputs()

	script, err := renderActivateScript(v, p, tc)
	require.NoError(t, err)

	assert.Contains(t, script, `export PYBOOST_PYTHON_ROOT="/opt/pyboost/python3.12.3"`)
	assert.Contains(t, script, `export PYBOOST_BOOST_ROOT="/opt/pyboost/boost_1_84_0"`)
	assert.Contains(t, script, `export PATH="/opt/pyboost/python3.12.3/bin:$PATH"`)
	assert.Contains(t, script, `export CC="gcc"`)
	assert.Contains(t, script, `export CXX="g++"`)
	assert.Contains(t, script, "/opt/pyboost/python3.12.3/lib:/opt/pyboost/boost_1_84_0/lib")
	assert.Contains(t, script, `export BOOST_INCLUDEDIR="/opt/pyboost/boost_1_84_0/include"`)
	assert.Contains(t, script, `export BOOST_LIBRARYDIR="/opt/pyboost/boost_1_84_0/lib"`)
	assert.Contains(t, script, `alias meson="/opt/pyboost/python3.12.3/bin/meson"`)
	assert.Contains(t, script, `alias ninja="/opt/pyboost/python3.12.3/bin/ninja"`)

	// Pure function: same inputs, same output.
	again, err := renderActivateScript(v, p, tc)
	require.NoError(t, err)
	assert.Equal(t, script, again)
}

func TestWriteActivateScriptExecutable(t *testing.T) {
	v, p, tc := testEnvInputs()
	path := filepath.Join(t.TempDir(), activateScriptName)

	require.NoError(t, writeActivateScript(path, v, p, tc))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o111, "activation script must be executable")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(data) > 0)
	assert.Equal(t, "#!/bin/sh", string(data[:9]))
}
