package ledger

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Appender adds lines to the end of a ledger file. The file is never
// rewritten, so an interrupted run leaves every earlier line intact.
type Appender struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

func OpenAppender(path string) (*Appender, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return &Appender{path: path, f: f}, nil
}

// Append writes one line per entry and syncs the file before returning.
func (a *Appender) Append(lines ...string) error {
	if len(lines) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}

	if _, err := a.f.WriteString(sb.String()); err != nil {
		return fmt.Errorf("append %s: %w", a.path, err)
	}

	return a.f.Sync()
}

func (a *Appender) Path() string {
	return a.path
}

func (a *Appender) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.f.Close()
}
