package pyboost

import (
	"fmt"
	"os"
)

// archiveSource is one candidate origin for a source tarball.
type archiveSource struct {
	Name string
	URL  string
}

// boostSources returns the ordered mirror list for a Boost release. A
// configured PYBOOST_MIRROR goes first, then the canonical mirrors, most
// reliable first.
func boostSources(ver string) []archiveSource {
	u := underscored(ver)
	var srcs []archiveSource
	if archiveMirror != "" {
		srcs = append(srcs, archiveSource{
			Name: "configured mirror",
			URL:  fmt.Sprintf("%s/boost_%s.tar.gz", archiveMirror, u),
		})
	}
	return append(srcs, []archiveSource{
		{
			Name: "boost.io archives",
			URL:  fmt.Sprintf("https://archives.boost.io/release/%s/source/boost_%s.tar.gz", ver, u),
		},
		{
			Name: "JFrog",
			URL:  fmt.Sprintf("https://boostorg.jfrog.io/artifactory/main/release/%s/source/boost_%s.tar.gz", ver, u),
		},
		{
			Name: "SourceForge",
			URL:  fmt.Sprintf("https://downloads.sourceforge.net/project/boost/boost/%s/boost_%s.tar.gz", ver, u),
		},
	}...)
}

// fetchFunc attempts to download one source into dest.
type fetchFunc func(src archiveSource, dest string) error

// fetchWithFallback tries each source in order until one downloads AND passes
// verification. A file that downloads but fails verification is deleted
// before the next mirror is tried. Exhausting the list is an error.
func fetchWithFallback(sources []archiveSource, dest string, fetch fetchFunc, verify func(string) error) error {
	for _, src := range sources {
		infof("Fetching %s from %s\n", dest, src.Name)
		if err := fetch(src, dest); err != nil {
			warnf("Download from %s failed: %v\n", src.Name, err)
			// A failed transfer can leave a partial file that the next
			// attempt's exists-check would mistake for a finished download.
			tryRemoveCachedFile(dest)
			continue
		}
		if err := verify(dest); err != nil {
			warnf("Archive from %s failed verification: %v; removing\n", src.Name, err)
			tryRemoveCachedFile(dest)
			continue
		}
		return nil
	}
	return fmt.Errorf("all %d mirrors exhausted for %s", len(sources), dest)
}

// fileExists is a small stat helper shared by the idempotency checks.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
