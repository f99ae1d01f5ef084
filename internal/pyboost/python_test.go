package pyboost

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPythonStateAbsent(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "python3.12.3")

	state := pythonState(prefix, "3.12.3", func(bin string) (string, error) {
		t.Fatal("query must not run when the binary is missing")
		return "", nil
	})
	assert.Equal(t, StateAbsent, state)
}

func TestPythonStateCurrent(t *testing.T) {
	prefix := t.TempDir()
	writeTestFile(t, filepath.Join(prefix, "bin", "python3"), "#!/bin/sh\n")

	state := pythonState(prefix, "3.12.3", func(bin string) (string, error) {
		return "Python 3.12.3", nil
	})
	assert.Equal(t, StateCurrent, state)
}

func TestPythonStateMismatch(t *testing.T) {
	prefix := t.TempDir()
	writeTestFile(t, filepath.Join(prefix, "bin", "python3"), "#!/bin/sh\n")

	// Any component differing from the request means "not installed".
	for _, reported := range []string{"Python 3.12.2", "Python 3.11.3", "Python 2.12.3", "Python 3.12", "garbage"} {
		state := pythonState(prefix, "3.12.3", func(bin string) (string, error) {
			return reported, nil
		})
		assert.Equal(t, StateMismatch, state, "reported %q", reported)
	}
}

func TestPythonStateQueryError(t *testing.T) {
	prefix := t.TempDir()
	writeTestFile(t, filepath.Join(prefix, "bin", "python3"), "")

	state := pythonState(prefix, "3.12.3", func(bin string) (string, error) {
		return "", errors.New("exec format error")
	})
	assert.Equal(t, StateMismatch, state)
}
