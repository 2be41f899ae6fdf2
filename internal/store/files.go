// Package store holds the seating history: the in-memory log, the JSON
// documents it is loaded from and saved to, and a bbolt archive of commits.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/renameio/v2"

	"github.com/seatwheel/seatwheel/internal/seating"
)

var (
	ErrMalformedRoster  = errors.New("malformed roster document")
	ErrMalformedHistory = errors.New("malformed history document")
)

type rosterDocument struct {
	Names []string `json:"names"`
}

type historyDocument struct {
	History [][]int `json:"history"`
}

// LoadRoster reads a {"names": [...]} document holding exactly one name per
// seat.
func LoadRoster(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	var doc rosterDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRoster, err)
	}
	if doc.Names == nil {
		return nil, fmt.Errorf("%w: the names field is missing or not an array", ErrMalformedRoster)
	}
	if len(doc.Names) != seating.SeatCount {
		return nil, fmt.Errorf("%w: expected %d names, got %d", ErrMalformedRoster, seating.SeatCount, len(doc.Names))
	}
	return doc.Names, nil
}

// LoadHistory reads a {"history": [[...], ...]} document. Every entry must be
// a valid arrangement and there must be at least two of them.
func LoadHistory(path string) ([]seating.Arrangement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return DecodeHistory(data)
}

// DecodeHistory parses and validates a history document.
func DecodeHistory(data []byte) ([]seating.Arrangement, error) {
	var doc historyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHistory, err)
	}
	if doc.History == nil {
		return nil, fmt.Errorf("%w: the history field is missing or not an array", ErrMalformedHistory)
	}
	if len(doc.History) < 2 {
		return nil, fmt.Errorf("%w: %w", ErrMalformedHistory, ErrInsufficientHistory)
	}

	entries := make([]seating.Arrangement, 0, len(doc.History))
	for i, raw := range doc.History {
		a, err := seating.FromSlice(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrMalformedHistory, i, err)
		}
		entries = append(entries, a)
	}
	return entries, nil
}

// EncodeHistory renders entries as an indented history document.
func EncodeHistory(entries []seating.Arrangement) ([]byte, error) {
	doc := historyDocument{History: make([][]int, len(entries))}
	for i, a := range entries {
		doc.History[i] = a.Slice()
	}
	return json.MarshalIndent(doc, "", "  ")
}

// SaveHistory overwrites path with entries. The document is written to a
// temporary file in the same directory and renamed over path, so readers see
// either the old or the new file. An existing file keeps its permissions.
func SaveHistory(path string, entries []seating.Arrangement) error {
	data, err := EncodeHistory(entries)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	err = renameio.WriteFile(path, append(data, '\n'), 0644, renameio.WithExistingPermissions())
	if err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}
