// Package journal keeps an append-only history of install and uninstall
// operations and the lock that serialises them.
//
// Records are stored one JSON object per line in <cache>/journal.jsonl.
package journal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// FileName is the journal file inside the cache directory.
const FileName = "journal.jsonl"

// State is the outcome of a recorded operation.
type State string

const (
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Operation names the installer operation a record describes.
type Operation string

const (
	OpInstallLibrary   Operation = "install-library"
	OpInstallLinker    Operation = "install-linker"
	OpInstallFiles     Operation = "install-files"
	OpUninstallLibrary Operation = "uninstall-library"
	OpUninstallFiles   Operation = "uninstall-files"
)

// Record describes one operation.
type Record struct {
	Version   int       `json:"version"`
	ID        string    `json:"id"`
	Operation Operation `json:"operation"`
	Timestamp time.Time `json:"timestamp"`
	Args      []string  `json:"args,omitempty"`
	State     State     `json:"state"`
	Duration  string    `json:"duration,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// New starts a record for op.
func New(op Operation, args ...string) *Record {
	return &Record{
		Version:   1,
		ID:        uuid.New().String(),
		Operation: op,
		Timestamp: time.Now().UTC(),
		Args:      append([]string(nil), args...),
		State:     StateInProgress,
	}
}

// Finish marks the record completed, or failed when err is non-nil.
func (r *Record) Finish(err error) {
	r.Duration = time.Since(r.Timestamp).Round(time.Millisecond).String()
	if err != nil {
		r.State = StateFailed
		r.LastError = err.Error()
		return
	}
	r.State = StateCompleted
	r.LastError = ""
}

// Append writes r as one line to the journal in dir.
func Append(dir string, r *Record) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create journal directory: %w", err)
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write journal: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync journal: %w", err)
	}
	return f.Close()
}

// Load reads every record in dir, oldest first. A missing journal yields no
// records.
func Load(dir string) ([]Record, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var r Record
		if err := json.Unmarshal(raw, &r); err != nil {
			return records, fmt.Errorf("unmarshal journal line %d: %w", line, err)
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("read journal: %w", err)
	}
	return records, nil
}
