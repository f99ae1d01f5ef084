package pyboost

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strings"
)

// numJobs returns the parallelism handed to make and b2. Both upstream build
// graphs get the full host.
func numJobs() int {
	return runtime.NumCPU()
}

// suggestCFLAGS returns optimized, position-independent code-generation flags
// based on detected hardware. Both CPython (--enable-shared) and Boost
// (link=shared) need -fPIC throughout.
func suggestCFLAGS() string {
	arch := runtime.GOARCH
	if arch == "amd64" {
		march := "x86-64"

		flags := make(map[string]bool)
		file, err := os.Open("/proc/cpuinfo")
		if err == nil {
			defer file.Close()
			scanner := bufio.NewScanner(file)
			for scanner.Scan() {
				line := scanner.Text()
				if strings.HasPrefix(line, "flags") {
					parts := strings.SplitN(line, ":", 2)
					if len(parts) >= 2 {
						for _, f := range strings.Fields(parts[1]) {
							flags[f] = true
						}
					}
					break
				}
			}
		}

		if flags["avx512f"] {
			march = "x86-64-v4"
		} else if flags["avx2"] {
			march = "x86-64-v3"
		} else if flags["sse4_2"] {
			march = "x86-64-v2"
		}

		return fmt.Sprintf("-O2 -march=%s -mtune=generic -pipe -fPIC", march)
	} else if arch == "arm64" {
		return "-O2 -march=armv8-a -mtune=generic -pipe -fPIC"
	}
	return "-O2 -pipe -fPIC"
}
