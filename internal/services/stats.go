package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// UsageStats tracks request counters and persists them to a small JSON file.
// The file is the only shared mutable state in the system; all writes go
// through the mutex so concurrent requests never corrupt it.
type UsageStats struct {
	mu   sync.Mutex
	path string
	data StatsSnapshot
}

// StatsSnapshot is the persisted counter state
type StatsSnapshot struct {
	TotalPredictions int64            `json:"total_predictions"`
	TotalChats       int64            `json:"total_chats"`
	ByFuelType       map[string]int64 `json:"by_fuel_type"`
	Since            time.Time        `json:"since"`
}

// NewUsageStats loads existing counters from path, starting fresh when the
// file does not exist yet
func NewUsageStats(path string) (*UsageStats, error) {
	u := &UsageStats{
		path: path,
		data: StatsSnapshot{
			ByFuelType: make(map[string]int64),
			Since:      time.Now().UTC(),
		},
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create stats directory: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return u, nil
		}
		return nil, fmt.Errorf("failed to read stats file: %w", err)
	}

	if err := json.Unmarshal(data, &u.data); err != nil {
		return nil, fmt.Errorf("failed to parse stats file: %w", err)
	}
	if u.data.ByFuelType == nil {
		u.data.ByFuelType = make(map[string]int64)
	}
	if u.data.Since.IsZero() {
		u.data.Since = time.Now().UTC()
	}

	log.Printf("UsageStats: loaded %d predictions, %d chats from %s",
		u.data.TotalPredictions, u.data.TotalChats, path)
	return u, nil
}

// RecordPrediction increments the prediction counters for one served request
func (u *UsageStats) RecordPrediction(fuelType string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.data.TotalPredictions++
	u.data.ByFuelType[fuelType]++
	u.persistLocked()
}

// RecordChat increments the chat counter
func (u *UsageStats) RecordChat() {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.data.TotalChats++
	u.persistLocked()
}

// Snapshot returns a copy of the current counters
func (u *UsageStats) Snapshot() StatsSnapshot {
	u.mu.Lock()
	defer u.mu.Unlock()

	snapshot := u.data
	snapshot.ByFuelType = make(map[string]int64, len(u.data.ByFuelType))
	for k, v := range u.data.ByFuelType {
		snapshot.ByFuelType[k] = v
	}
	return snapshot
}

// persistLocked writes the counters to disk. Callers hold the mutex.
// Persistence failures are logged, not surfaced; counters must never fail a
// request.
func (u *UsageStats) persistLocked() {
	data, err := json.MarshalIndent(u.data, "", "  ")
	if err != nil {
		log.Printf("UsageStats: failed to marshal counters: %v", err)
		return
	}
	if err := os.WriteFile(u.path, data, 0644); err != nil {
		log.Printf("UsageStats: failed to write %s: %v", u.path, err)
	}
}
