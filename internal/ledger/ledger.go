// Package ledger keeps the plain-text URL lists that drive a run: the
// pending list of items to capture and the done list of items that were
// captured completely.
package ledger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Pending returns the lines of urlsFile that are not present in doneFile,
// in their original order. Duplicates are kept as they are. Blank lines are
// ignored in both files.
func Pending(urlsFile, doneFile string) ([]string, error) {
	done, err := readLines(doneFile)
	if err != nil {
		return nil, fmt.Errorf("done list: %w", err)
	}

	seen := make(map[string]struct{}, len(done))
	for _, u := range done {
		seen[u] = struct{}{}
	}

	all, err := readLines(urlsFile)
	if err != nil {
		return nil, fmt.Errorf("url list: %w", err)
	}

	out := make([]string, 0, len(all))
	for _, u := range all {
		if _, ok := seen[u]; ok {
			continue
		}
		out = append(out, u)
	}

	return out, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	return scanLines(f)
}

func scanLines(r io.Reader) ([]string, error) {
	var out []string

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" {
			continue
		}
		out = append(out, line)
	}

	return out, sc.Err()
}
