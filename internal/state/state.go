// Package state persists a history of reflow runs so past outcomes can
// be listed without re-running the engine.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

const historyFile = "history.json"

// DefaultDir is where run history lives unless configured otherwise.
const DefaultDir = ".reflow"

// RunRecord is one reflow invocation's outcome.
type RunRecord struct {
	ID                string    `json:"id"`
	InputPath         string    `json:"input_path"`
	StartedAt         time.Time `json:"started_at"`
	Status            string    `json:"status"` // "ok" or "failed"
	Error             string    `json:"error,omitempty"`
	WorkOrders        int       `json:"work_orders"`
	Changes           int       `json:"changes"`
	TotalDelayMinutes int       `json:"total_delay_minutes"`
}

// NewRecord starts a run record with a fresh id.
func NewRecord(inputPath string) RunRecord {
	return RunRecord{
		ID:        uuid.NewString(),
		InputPath: inputPath,
		StartedAt: time.Now().UTC(),
	}
}

// History is the persistent list of run records.
type History struct {
	Runs []RunRecord `json:"runs"`

	mu   sync.Mutex `json:"-"`
	path string     `json:"-"`
}

// Load reads history from dir, returning an empty history when none
// exists yet.
func Load(dir string) (*History, error) {
	path := filepath.Join(dir, historyFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &History{path: path}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("parse history: %w", err)
	}
	h.path = path
	return &h, nil
}

// Append adds a record and saves.
func (h *History) Append(rec RunRecord) error {
	h.mu.Lock()
	h.Runs = append(h.Runs, rec)
	h.mu.Unlock()
	return h.Save()
}

// Save persists the history to disk.
func (h *History) Save() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	return os.WriteFile(h.path, data, 0644)
}

// Clean removes the history directory.
func Clean(dir string) error {
	return os.RemoveAll(dir)
}
