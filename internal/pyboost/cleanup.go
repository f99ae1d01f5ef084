package pyboost

import "os"

// removeScratch deletes the ephemeral build trees. Called only after the
// full pipeline succeeds; failed runs keep their scratch for inspection and
// for the idempotency checks to resume from.
func removeScratch(paths Paths) {
	if paths.Scratch == "" || paths.Scratch == "/" {
		return
	}
	debugf("Removing scratch directory %s\n", paths.Scratch)
	if err := os.RemoveAll(paths.Scratch); err != nil {
		warnf("Failed to remove scratch directory %s: %v\n", paths.Scratch, err)
		return
	}
	infof("Removed scratch directory %s\n", paths.Scratch)
}
