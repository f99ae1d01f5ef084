package pyboost

import (
	"runtime"

	"github.com/gookit/color"
)

// Default target versions; both may be overridden positionally on --install.
const (
	DefaultPythonVersion = "3.12.3"
	DefaultBoostVersion  = "1.84.0"
)

// Global variables
var (
	Debug      bool
	ConfigFile = "/etc/pyboost.conf"
	// archiveMirror, when configured, is tried before the canonical mirrors.
	archiveMirror string
	version       = "dev"     // overridden at build time
	buildDate     = "unknown" // overridden at build time
	arch          = runtime.GOARCH
	// Global executor (assigned in Main)
	Exec *Executor
)

// color helpers
var (
	colInfo    = color.Info // style provided by gookit/color
	colWarn    = color.Warn
	colError   = color.Error
	colSuccess = color.HEX("#1976D2")
	colArrow   = color.HEX("#FFEB3B")
	colNote    = color.Tag("notice")
)
