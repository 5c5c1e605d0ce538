package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const digestFile = "sent_digests.json"

// DigestTracker persists which location/date digests were already emailed so a
// restarted or re-triggered agent does not send the same digest twice
type DigestTracker struct {
	filePath string
	sent     map[string]time.Time
	mu       sync.RWMutex
	maxAge   time.Duration
}

// SentDigest is one persisted send record
type SentDigest struct {
	Key    string    `json:"key"`
	SentAt time.Time `json:"sent_at"`
}

// NewDigestTracker opens (or creates) the tracker file under dataDir. Records
// older than maxAge are dropped on load.
func NewDigestTracker(dataDir string, maxAge time.Duration) (*DigestTracker, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	tracker := &DigestTracker{
		filePath: filepath.Join(dataDir, digestFile),
		sent:     make(map[string]time.Time),
		maxAge:   maxAge,
	}

	if err := tracker.load(); err != nil {
		return nil, fmt.Errorf("failed to load digest tracker data: %w", err)
	}
	tracker.cleanup(time.Now())

	return tracker, nil
}

// DigestKey identifies the digest of one location on one calendar day
func DigestKey(location string, date time.Time) string {
	return fmt.Sprintf("%s|%s", location, date.Format("2006-01-02"))
}

// IsSent reports whether the digest with key was already sent
func (dt *DigestTracker) IsSent(key string) bool {
	dt.mu.RLock()
	defer dt.mu.RUnlock()

	_, exists := dt.sent[key]
	return exists
}

// MarkSent records key as sent and persists the tracker
func (dt *DigestTracker) MarkSent(key string) error {
	dt.mu.Lock()
	defer dt.mu.Unlock()

	dt.sent[key] = time.Now()
	return dt.save()
}

// SentCount returns the number of tracked sends
func (dt *DigestTracker) SentCount() int {
	dt.mu.RLock()
	defer dt.mu.RUnlock()
	return len(dt.sent)
}

func (dt *DigestTracker) cleanup(now time.Time) {
	if dt.maxAge <= 0 {
		return
	}
	cutoff := now.Add(-dt.maxAge)
	for key, sentAt := range dt.sent {
		if sentAt.Before(cutoff) {
			delete(dt.sent, key)
		}
	}
}

func (dt *DigestTracker) load() error {
	file, err := os.Open(dt.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open tracker file: %w", err)
	}
	defer file.Close()

	var records []SentDigest
	if err := json.NewDecoder(file).Decode(&records); err != nil {
		return fmt.Errorf("failed to decode tracker data: %w", err)
	}

	for _, r := range records {
		dt.sent[r.Key] = r.SentAt
	}
	return nil
}

// save writes to a temp file and renames it so a crash never leaves a truncated tracker
func (dt *DigestTracker) save() error {
	records := make([]SentDigest, 0, len(dt.sent))
	for key, sentAt := range dt.sent {
		records = append(records, SentDigest{Key: key, SentAt: sentAt})
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tracker data: %w", err)
	}

	tmp := dt.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write tracker file: %w", err)
	}
	if err := os.Rename(tmp, dt.filePath); err != nil {
		return fmt.Errorf("failed to replace tracker file: %w", err)
	}
	return nil
}
