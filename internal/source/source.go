// Package source fetches PDG payloads for a (scan, file) pair.
//
// It stands in for the backend endpoint GET /scans/{scanId}/pdg/{fileId}:
// DirSource reads payloads exported to disk and ReaderSource serves a
// single payload read from a stream.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/pdgview/internal/pdg"
)

var (
	// ErrNotFound is returned when no payload exists for the pair.
	ErrNotFound = errors.New("pdg payload not found")
	// ErrInvalidID is returned for ids that are not a single path segment.
	ErrInvalidID = errors.New("invalid id")
)

// Source fetches the payload for one scanned file.
type Source interface {
	Fetch(ctx context.Context, scanID, fileID string) (*pdg.Payload, error)
}

// Ref identifies a payload.
type Ref struct {
	ScanID string `json:"scan_id" yaml:"scan_id"`
	FileID string `json:"file_id" yaml:"file_id"`
}

// String returns "scan/file".
func (r Ref) String() string {
	return r.ScanID + "/" + r.FileID
}

// ValidateID rejects ids that could escape the payload directory.
func ValidateID(id string) error {
	switch {
	case id == "", id == ".", id == "..":
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	case strings.ContainsAny(id, `/\`), strings.ContainsRune(id, 0):
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
