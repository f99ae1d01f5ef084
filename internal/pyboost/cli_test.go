package pyboost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgsDefaults(t *testing.T) {
	act, err := parseArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, actionInstall, act.Kind)
	assert.Equal(t, DefaultPythonVersion, act.Versions.Python)
	assert.Equal(t, DefaultBoostVersion, act.Versions.Boost)
}

func TestParseArgsHelp(t *testing.T) {
	for _, flag := range []string{"--help", "-h"} {
		act, err := parseArgs([]string{flag})
		require.NoError(t, err)
		assert.Equal(t, actionHelp, act.Kind)
	}
}

func TestParseArgsCheckSystem(t *testing.T) {
	act, err := parseArgs([]string{"--check-system"})
	require.NoError(t, err)
	assert.Equal(t, actionCheck, act.Kind)

	_, err = parseArgs([]string{"--check-system", "extra"})
	assert.Error(t, err)
}

func TestParseArgsInstallOverrides(t *testing.T) {
	act, err := parseArgs([]string{"--install", "3.11.9"})
	require.NoError(t, err)
	assert.Equal(t, "3.11.9", act.Versions.Python)
	assert.Equal(t, DefaultBoostVersion, act.Versions.Boost)

	act, err = parseArgs([]string{"--install", "3.11.9", "1.83.0"})
	require.NoError(t, err)
	assert.Equal(t, "3.11.9", act.Versions.Python)
	assert.Equal(t, "1.83.0", act.Versions.Boost)
}

func TestParseArgsInstallBadVersions(t *testing.T) {
	_, err := parseArgs([]string{"--install", "3.11"})
	assert.Error(t, err)

	_, err = parseArgs([]string{"--install", "3.11.9", "latest"})
	assert.Error(t, err)

	_, err = parseArgs([]string{"--install", "1.2.3", "4.5.6", "7.8.9"})
	assert.Error(t, err)
}

func TestParseArgsUnknown(t *testing.T) {
	for _, bad := range []string{"--frobnicate", "install", "check-system"} {
		_, err := parseArgs([]string{bad})
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}
