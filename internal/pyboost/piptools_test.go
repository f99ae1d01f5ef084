package pyboost

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReprobeBuildTools(t *testing.T) {
	prefix := "/opt/pyboost/python3.12.3"

	missing := reprobeBuildTools(prefix, func(string) bool { return false })
	assert.Equal(t, []string{"meson", "ninja"}, missing)

	missing = reprobeBuildTools(prefix, func(string) bool { return true })
	assert.Empty(t, missing)
}

func TestReprobeBuildToolsPartial(t *testing.T) {
	prefix := "/opt/pyboost/python3.12.3"

	missing := reprobeBuildTools(prefix, func(path string) bool {
		return filepath.Base(path) == "meson"
	})
	assert.Equal(t, []string{"ninja"}, missing)
}
