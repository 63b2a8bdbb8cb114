// Package dedup guards batch imports against re-pasted clipboard blocks via
// SHA256 fingerprinting of parsed notifications and a persisted state file.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rumor-ml/commons.systems/smsledger/internal/domain"
)

// State represents the deduplication state with fingerprint history.
type State struct {
	Version      int                           `json:"version"`
	Fingerprints map[string]*FingerprintRecord `json:"fingerprints"`
	Metadata     StateMetadata                 `json:"metadata"`
}

// FingerprintRecord tracks a notification fingerprint across observations.
type FingerprintRecord struct {
	FirstSeen time.Time `json:"firstSeen"`
	LastSeen  time.Time `json:"lastSeen"`
	Count     int       `json:"count"`
	Reference string    `json:"reference,omitempty"`
}

// StateMetadata contains aggregate statistics about the state.
type StateMetadata struct {
	LastUpdated       time.Time `json:"lastUpdated"`
	TotalFingerprints int       `json:"totalFingerprints"`
}

const (
	// CurrentVersion is the current state file format version
	CurrentVersion = 1
)

// NewState creates an empty deduplication state with version 1.
func NewState() *State {
	return &State{
		Version:      CurrentVersion,
		Fingerprints: make(map[string]*FingerprintRecord),
		Metadata: StateMetadata{
			LastUpdated:       time.Now(),
			TotalFingerprints: 0,
		},
	}
}

// Fingerprint creates a SHA256 hash identifying a parsed notification.
// Format: SHA256("{date}|{amount}|{reference}|{bank}|{normalizedMerchant}")
// Amount is rendered with 2 decimal places; merchant is lowercased and
// trimmed. Two pastes of the same SMS always hash identically because the
// parser is deterministic for fixed-date messages.
func Fingerprint(p *domain.ParsedTransaction) string {
	merchant := strings.ToLower(strings.TrimSpace(p.Merchant))
	input := fmt.Sprintf("%s|%s|%s|%s|%s",
		p.Date.UTC().Format(time.RFC3339),
		p.Amount.StringFixed(2),
		p.ReferenceNumber,
		p.BankName,
		merchant,
	)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}

// LoadState loads a state file from disk.
// Returns os.IsNotExist error if file doesn't exist (caller should handle).
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err // Preserve os.IsNotExist for caller
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	if state.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported state file version %d (current version: %d)", state.Version, CurrentVersion)
	}

	if state.Fingerprints == nil {
		state.Fingerprints = make(map[string]*FingerprintRecord)
	}

	return &state, nil
}

// SaveState atomically writes the state to disk.
// Uses atomic write pattern: write to temp file, then rename.
// Ensures parent directory exists.
func SaveState(state *State, filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	state.Metadata.LastUpdated = time.Now()
	state.Metadata.TotalFingerprints = len(state.Fingerprints)

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tempFile := filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempFile, filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// IsDuplicate checks if a fingerprint exists in the state.
func (s *State) IsDuplicate(fingerprint string) bool {
	_, exists := s.Fingerprints[fingerprint]
	return exists
}

// Record records a notification fingerprint in the state.
// If new: creates record with firstSeen=timestamp, count=1.
// If exists: updates lastSeen=timestamp, increments count.
func (s *State) Record(fingerprint, reference string, timestamp time.Time) error {
	if fingerprint == "" {
		return fmt.Errorf("fingerprint cannot be empty")
	}

	if record, exists := s.Fingerprints[fingerprint]; exists {
		record.LastSeen = timestamp
		record.Count++
	} else {
		s.Fingerprints[fingerprint] = &FingerprintRecord{
			FirstSeen: timestamp,
			LastSeen:  timestamp,
			Count:     1,
			Reference: reference,
		}
	}

	return nil
}

// TotalFingerprints returns the number of distinct fingerprints recorded.
func (s *State) TotalFingerprints() int {
	return len(s.Fingerprints)
}

// Validate checks internal consistency of a loaded state.
func (s *State) Validate() error {
	if s.Version != CurrentVersion {
		return fmt.Errorf("unsupported version %d", s.Version)
	}
	for fp, record := range s.Fingerprints {
		if fp == "" {
			return fmt.Errorf("state contains empty fingerprint key")
		}
		if record == nil {
			return fmt.Errorf("fingerprint %s has nil record", fp)
		}
		if record.Count < 1 {
			return fmt.Errorf("fingerprint %s has invalid count %d", fp, record.Count)
		}
		if record.LastSeen.Before(record.FirstSeen) {
			return fmt.Errorf("fingerprint %s lastSeen precedes firstSeen", fp)
		}
	}
	return nil
}
