// Package output writes a frozen findings snapshot to the six PREFIX_*.txt
// result files, one entry per line, sorted ascending by URL.
package output

import (
	"bufio"
	"fmt"
	"os"
	"sort"

	"github.com/reconcrawl/surfacecrawl/internal/findings"
)

// Write renders snap to six files named "<prefix>_<suffix>.txt" in the
// current directory.
func Write(prefix string, snap findings.Snapshot) error {
	if err := writeAlive(prefix+"_alive_urls.txt", snap.Alive); err != nil {
		return err
	}
	if err := writeLines(prefix+"_params.txt", snap.Params); err != nil {
		return err
	}
	if err := writeLines(prefix+"_endpoints.txt", snap.Endpoints); err != nil {
		return err
	}
	if err := writeLines(prefix+"_api_endpoints.txt", snap.APIEndpoints); err != nil {
		return err
	}
	if err := writeLines(prefix+"_js_files.txt", snap.JSFiles); err != nil {
		return err
	}
	if err := writeLines(prefix+"_osint_strings.txt", snap.OSINT); err != nil {
		return err
	}
	return nil
}

// writeAlive writes "STATUS\tURL" pairs, sorted ascending by URL.
func writeAlive(path string, alive map[string]int) error {
	urls := make([]string, 0, len(alive))
	for u := range alive {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: creating %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, u := range urls {
		if _, err := fmt.Fprintf(w, "%d\t%s\n", alive[u], u); err != nil {
			return fmt.Errorf("output: writing %q: %w", path, err)
		}
	}
	return w.Flush()
}

// writeLines writes lines sorted ascending, one per line.
func writeLines(path string, lines []string) error {
	sorted := make([]string, len(lines))
	copy(sorted, lines)
	sort.Strings(sorted)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: creating %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, line := range sorted {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("output: writing %q: %w", path, err)
		}
	}
	return w.Flush()
}
