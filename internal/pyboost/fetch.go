package pyboost

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

type downloadOptions struct {
	Quiet          bool          // Quiet suppresses all stdout/stderr/progress output
	ConnectTimeout time.Duration // per-attempt connection timeout
	TotalTimeout   time.Duration // per-attempt total transfer timeout
	Retries        int           // retries within a single attempt
}

func defaultDownloadOptions() downloadOptions {
	return downloadOptions{
		ConnectTimeout: 30 * time.Second,
		TotalTimeout:   10 * time.Minute,
		Retries:        2,
	}
}

// tryRemoveCachedFile deletes a cached archive unless another process holds
// its download lock.
func tryRemoveCachedFile(path string) {
	lockPath := path + ".lock"
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		_ = os.Remove(path)
		return
	}
	defer f.Close()
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		// Someone is downloading or verifying the file; skip cleanup.
		return
	}
	defer unix.Flock(int(f.Fd()), unix.LOCK_UN)
	_ = os.Remove(path)
	_ = os.Remove(lockPath)
}

func downloadFile(url, destFile string) error {
	return downloadFileWithOptions(url, destFile, defaultDownloadOptions())
}

// downloadFileWithOptions downloads url into destFile, preferring curl, then
// wget, then the native HTTP client. An exclusive flock on destFile.lock
// serializes two runs racing on the same archive cache entry.
func downloadFileWithOptions(url, destFile string, opt downloadOptions) error {
	if err := os.MkdirAll(filepath.Dir(destFile), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", destFile, err)
	}
	lockPath := destFile + ".lock"

	// A file already on disk at this point is a stale or partial leftover
	// from an earlier run; only a file that materializes while we wait for
	// the lock is a concurrent download worth trusting.
	existedBefore := fileExists(destFile)

	lFile, err := os.Create(lockPath)
	if err != nil {
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	defer lFile.Close()

	if err := unix.Flock(int(lFile.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("failed to acquire lock for download: %w", err)
	}
	defer unix.Flock(int(lFile.Fd()), unix.LOCK_UN)

	if fileExists(destFile) {
		if !existedBefore {
			debugf("File %s appeared after acquiring lock, skipping download.\n", destFile)
			_ = os.Remove(lockPath)
			return nil
		}
		debugf("Removing stale file %s before download.\n", destFile)
		if err := os.Remove(destFile); err != nil {
			return fmt.Errorf("failed to remove stale file %s: %w", destFile, err)
		}
	}

	// Ensure lock file is removed on successful download
	defer func() {
		if _, err := os.Stat(destFile); err == nil {
			_ = os.Remove(lockPath)
		}
	}()

	debugf("Downloading %s -> %s\n", url, destFile)

	// --- Primary choice: curl with Go-native progress colorization ---
	if _, err := exec.LookPath("curl"); err == nil {
		curlArgs := []string{
			"-L", "--fail", "-o", destFile,
			"--connect-timeout", fmt.Sprintf("%d", int(opt.ConnectTimeout.Seconds())),
			"--max-time", fmt.Sprintf("%d", int(opt.TotalTimeout.Seconds())),
			"--retry", fmt.Sprintf("%d", opt.Retries),
		}
		if opt.Quiet {
			curlArgs = append(curlArgs, "-sS")
		} else {
			curlArgs = append(curlArgs, "-#")
		}
		curlArgs = append(curlArgs, url)
		cmd := exec.Command("curl", curlArgs...)

		if opt.Quiet {
			cmd.Stdout = io.Discard
			cmd.Stderr = io.Discard
			if err := cmd.Run(); err == nil {
				return nil
			}
			// curl -o leaves a partial output file behind on failure
			_ = os.Remove(destFile)
			debugf("curl (quiet) failed, falling back to wget\n")
		} else {
			stderrPipe, err := cmd.StderrPipe()
			if err != nil {
				cmd.Stderr = os.Stderr
			}
			cmd.Stdout = os.Stdout

			if err := cmd.Start(); err != nil {
				return fmt.Errorf("failed to start curl: %w", err)
			}

			if stderrPipe != nil {
				go func() {
					reader := bufio.NewReader(stderrPipe)
					blue := "\x1b[" + color.Blue.Code() + "m"
					reset := "\x1b[0m"
					for {
						lineBytes, err := reader.ReadBytes('\r')
						if len(lineBytes) > 0 {
							line := string(lineBytes)
							if strings.HasPrefix(strings.TrimSpace(line), "#") {
								fmt.Fprintf(os.Stderr, "%s%s%s", blue, line, reset)
							} else {
								fmt.Fprint(os.Stderr, line)
							}
						}
						if err != nil {
							break
						}
					}
				}()
			}

			if err := cmd.Wait(); err != nil {
				_ = os.Remove(destFile)
				debugf("\ncurl failed, falling back to wget")
			} else {
				debugf("\nDownload successful with curl.")
				return nil
			}
		}
	} else {
		debugf("curl not found, trying wget")
	}

	// --- Fallback 1: wget ---
	if _, err := exec.LookPath("wget"); err == nil {
		args := []string{
			"-T", fmt.Sprintf("%d", int(opt.ConnectTimeout.Seconds())),
			"-t", fmt.Sprintf("%d", opt.Retries+1),
			"-O", destFile,
		}
		if opt.Quiet {
			args = append([]string{"-q"}, args...)
		} else {
			args = append([]string{"-nv"}, args...)
		}
		args = append(args, url)
		cmd := exec.Command("wget", args...)
		if opt.Quiet {
			cmd.Stdout = io.Discard
			cmd.Stderr = io.Discard
		} else {
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
		}
		if err := cmd.Run(); err == nil {
			debugf("\nDownload successful with wget.")
			return nil
		}
		// wget leaves a partial -O file behind on failure
		_ = os.Remove(destFile)
		debugf("\nwget failed, falling back to native Go HTTP client")
	} else {
		debugf("wget not found, using native Go HTTP client")
	}

	// --- Fallback 2: native Go HTTP client ---
	client := &http.Client{Timeout: opt.TotalTimeout}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("native http get failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %s", resp.Status)
	}

	out, err := os.Create(destFile)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", destFile, err)
	}
	defer out.Close()

	var body io.Reader = resp.Body
	if !opt.Quiet && term.IsTerminal(int(os.Stderr.Fd())) {
		bar := progressbar.DefaultBytes(resp.ContentLength, filepath.Base(destFile))
		body = io.TeeReader(resp.Body, bar)
	}

	if _, err := io.Copy(out, body); err != nil {
		out.Close()
		_ = os.Remove(destFile)
		return fmt.Errorf("failed to write to destination file: %w", err)
	}

	debugf("Download successful with native Go HTTP client.")
	return nil
}
