package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/pdgview/internal/pdg"
)

// Payload file extensions, in lookup order.
const (
	ExtJSON = ".json"
	ExtDOT  = ".dot"
)

// DirSource reads payloads laid out as <root>/<scanID>/<fileID>.json or
// <root>/<scanID>/<fileID>.dot. JSON files hold the response envelope;
// DOT files hold the pdg_data text itself.
type DirSource struct {
	root   string
	logger *slog.Logger
}

// NewDirSource creates a DirSource rooted at dir.
func NewDirSource(dir string, logger *slog.Logger) *DirSource {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DirSource{root: dir, logger: logger}
}

// Root returns the payload directory.
func (s *DirSource) Root() string {
	return s.root
}

// Fetch implements Source.
func (s *DirSource) Fetch(ctx context.Context, scanID, fileID string) (*pdg.Payload, error) {
	if err := ValidateID(scanID); err != nil {
		return nil, err
	}
	if err := ValidateID(fileID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, ext := range []string{ExtJSON, ExtDOT} {
		path := filepath.Join(s.root, scanID, fileID+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read payload %s: %w", path, err)
		}

		s.logger.Debug("payload loaded", "path", path, "bytes", len(data))
		if ext == ExtDOT {
			return pdg.PayloadFromText(string(data)), nil
		}
		return pdg.DecodePayload(data), nil
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, scanID, fileID)
}

// List returns every payload under the root, sorted by scan then file.
// A missing root yields an empty list.
func (s *DirSource) List(ctx context.Context) ([]Ref, error) {
	scans, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list payload directory: %w", err)
	}

	seen := make(map[Ref]bool)
	var refs []Ref
	for _, scan := range scans {
		if !scan.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		files, err := os.ReadDir(filepath.Join(s.root, scan.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to list scan %s: %w", scan.Name(), err)
		}
		for _, f := range files {
			ref, ok := RefFromPath(filepath.Join(s.root, scan.Name(), f.Name()), s.root)
			if !ok || f.IsDir() || seen[ref] {
				continue
			}
			seen[ref] = true
			refs = append(refs, ref)
		}
	}

	sort.Slice(refs, func(i, j int) bool {
		if refs[i].ScanID != refs[j].ScanID {
			return refs[i].ScanID < refs[j].ScanID
		}
		return refs[i].FileID < refs[j].FileID
	})
	return refs, nil
}

// RefFromPath maps a payload file path under root back to its Ref.
func RefFromPath(path, root string) (Ref, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return Ref{}, false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 2 {
		return Ref{}, false
	}
	ext := filepath.Ext(parts[1])
	if ext != ExtJSON && ext != ExtDOT {
		return Ref{}, false
	}
	ref := Ref{ScanID: parts[0], FileID: strings.TrimSuffix(parts[1], ext)}
	if ValidateID(ref.ScanID) != nil || ValidateID(ref.FileID) != nil {
		return Ref{}, false
	}
	return ref, true
}
