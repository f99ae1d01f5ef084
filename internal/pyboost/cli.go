package pyboost

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gookit/color"
)

type actionKind int

const (
	actionInstall actionKind = iota
	actionCheck
	actionHelp
)

type action struct {
	Kind     actionKind
	Versions Versions
}

// parseArgs maps the fixed command surface onto an action. No arguments
// means a default install; any unrecognized first argument is an error.
func parseArgs(args []string) (action, error) {
	v := Versions{Python: DefaultPythonVersion, Boost: DefaultBoostVersion}

	if len(args) == 0 {
		return action{Kind: actionInstall, Versions: v}, nil
	}

	switch args[0] {
	case "--help", "-h":
		return action{Kind: actionHelp}, nil
	case "--check-system":
		if len(args) > 1 {
			return action{}, fmt.Errorf("--check-system takes no arguments")
		}
		return action{Kind: actionCheck}, nil
	case "--install":
		rest := args[1:]
		if len(rest) > 2 {
			return action{}, fmt.Errorf("--install takes at most two version arguments")
		}
		if len(rest) >= 1 {
			v.Python = rest[0]
		}
		if len(rest) == 2 {
			v.Boost = rest[1]
		}
		if _, _, _, err := parseVersion(v.Python); err != nil {
			return action{}, err
		}
		if _, _, _, err := parseVersion(v.Boost); err != nil {
			return action{}, err
		}
		return action{Kind: actionInstall, Versions: v}, nil
	}
	return action{}, fmt.Errorf("unknown argument %q", args[0])
}

func printUsage() {
	colSuccess.Println("Usage: pyboost [--check-system | --install [PYVER] [BOOSTVER]]")
	fmt.Println()
	color.Info.Println("Options:")
	fmt.Println("  --check-system              Verify (and if possible install) host prerequisites")
	fmt.Println("  --install [PYVER] [BOOSTVER]")
	fmt.Printf("                              Build and install Python (default %s) and Boost (default %s)\n",
		DefaultPythonVersion, DefaultBoostVersion)
	fmt.Println("  --help, -h                  Show this help")
	fmt.Println()
	cPrintln(colNote, "Running with no arguments is the same as --install with the defaults.")
	fmt.Printf("pyboost %s (%s, built %s)\n", version, arch, buildDate)
}

// runInstall executes the full pipeline for the requested version pair.
func runInstall(execCtx *Executor, v Versions, paths Paths, tc Toolchain) error {
	if err := checkRequirements(execCtx); err != nil {
		return err
	}
	if err := buildPython(execCtx, v, paths, tc); err != nil {
		return err
	}
	if err := installBuildTools(execCtx, paths.PythonPrefix(v.Python)); err != nil {
		return err
	}
	if err := buildBoost(execCtx, v, paths, tc); err != nil {
		return err
	}

	scriptPath, err := defaultActivatePath()
	if err != nil {
		return err
	}
	if err := writeActivateScript(scriptPath, v, paths, tc); err != nil {
		return err
	}
	infof("Wrote activation script %s\n", scriptPath)

	removeScratch(paths)
	return nil
}

// Main is the CLI entrypoint for cmd/pyboost.
func Main() {
	// 1. CONTEXT AND SIGNAL SETUP
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		for {
			select {
			case sig := <-sigs:
				colArrow.Print("\n-> ")
				color.Danger.Printf("Received %v. Cancelling process gracefully\n", sig)
				cancel()

				// Give the running build a moment to die and flush its buffers
				time.Sleep(100 * time.Millisecond)

				select {
				case <-sigs:
					colArrow.Print("\n-> ")
					color.Danger.Printf("Second interrupt received. Forcing immediate exit.")
					os.Exit(130)
				case <-time.After(2 * time.Second):
					colArrow.Print("\n-> ")
					color.Danger.Printf("Graceful shutdown timeout. Exiting.")
					os.Exit(130)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// 2. ARGUMENT DISPATCH
	act, err := parseArgs(os.Args[1:])
	if err != nil {
		colArrow.Print("-> ")
		colError.Printf("Error: %v\n\n", err)
		printUsage()
		os.Exit(1)
	}

	if act.Kind == actionHelp {
		printUsage()
		return
	}

	// 3. PRECONDITIONS: every action besides --help runs on Linux, as root.
	if err := requireLinux(); err != nil {
		fatalf("%v\n", err)
	}
	if err := requireRoot(); err != nil {
		fatalf("%v\n", err)
	}

	// 4. CONFIGURATION
	cfg, err := loadConfig(ConfigFile)
	if err != nil {
		warnf("Failed to read %s: %v (continuing with defaults)\n", ConfigFile, err)
	}
	paths, tc := initConfig(cfg)

	// 5. EXECUTOR
	Exec = NewExecutor(ctx)

	// 6. RUN
	switch act.Kind {
	case actionCheck:
		if err := checkRequirements(Exec); err != nil {
			fatalf("System check failed: %v\n", err)
		}
		infof("System check passed\n")

	case actionInstall:
		infof("Provisioning Python %s and Boost %s under %s\n", act.Versions.Python, act.Versions.Boost, paths.Root)
		if err := runInstall(Exec, act.Versions, paths, tc); err != nil {
			fatalf("Install failed: %v\n", err)
		}
		infof("Provisioning complete. Source the activation script to use the toolchain.\n")
	}
}
