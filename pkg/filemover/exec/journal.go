// Package exec applies a MovePlan to the filesystem: the Executor walks
// plan nodes in dependency order, journals every attempt before it
// mutates anything, and Undo can replay a journal in reverse (spec §4.5).
package exec

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"filemover/pkg/filemover/plan"
)

// Result is the outcome tag a journal entry's result field carries
// (spec §6 Journal format).
type Result string

const (
	ResultPending Result = "Pending"
	ResultOk      Result = "Ok"
	ResultSkip    Result = "Skip"
	ResultFailed  Result = "Failed"
)

// Entry is one line of a journal file (spec §6 Journal format).
type Entry struct {
	WhenUTC time.Time `json:"when_utc"`
	Source  string    `json:"source"`
	Dest    string    `json:"dest"`
	Op      plan.Kind `json:"op"`
	Result  Result    `json:"result"`
	Message string    `json:"message,omitempty"`
}

// Header is the first line of every journal (spec §6).
type Header struct {
	Version    int    `json:"version"`
	StartedUTC string `json:"started_utc"`
	SessionID  string `json:"session_id"`
}

const journalVersion = 1

// Journal is an append-only, line-delimited JSON file, fsync'd after
// every write so a crash mid-run leaves a readable, truncation-safe
// tail (spec §5 Disk durability).
type Journal struct {
	mu        sync.Mutex
	f         *os.File
	w         *bufio.Writer
	SessionID string
	Path      string
}

// CreateJournal creates a new journal file at path and writes its
// header line, using a random session id to correlate this run's
// entries with a later undo run (spec §6 Journal format).
func CreateJournal(path string) (*Journal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create journal %s: %w", path, err)
	}
	j := &Journal{f: f, w: bufio.NewWriter(f), SessionID: uuid.NewString(), Path: path}
	header := Header{Version: journalVersion, StartedUTC: time.Now().UTC().Format(time.RFC3339), SessionID: j.SessionID}
	if err := j.writeLine(header); err != nil {
		_ = f.Close()
		return nil, err
	}
	return j, nil
}

// Append writes one entry line and fsyncs the file (spec §4.5 Per-node
// protocol step 1/3, spec §5 Disk durability).
func (j *Journal) Append(e Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.writeLine(e)
}

func (j *Journal) writeLine(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := j.w.Write(data); err != nil {
		return err
	}
	if err := j.w.WriteByte('\n'); err != nil {
		return err
	}
	if err := j.w.Flush(); err != nil {
		return err
	}
	return j.f.Sync()
}

// Close flushes and closes the underlying file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.w.Flush(); err != nil {
		return err
	}
	return j.f.Close()
}

// ReadJournal loads a journal's header and entries from disk, used by
// Undo and ValidateJournal.
func ReadJournal(path string) (Header, []Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var header Header
	var entries []Entry
	first := true
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if first {
			if err := json.Unmarshal(line, &header); err != nil {
				return Header{}, nil, fmt.Errorf("decode journal header: %w", err)
			}
			first = false
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return Header{}, nil, fmt.Errorf("decode journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return Header{}, nil, fmt.Errorf("scan journal %s: %w", path, err)
	}
	return header, entries, nil
}
