package source

import (
	"context"
	"fmt"
	"io"

	"github.com/leapstack-labs/pdgview/internal/pdg"
)

// ReaderSource serves one payload read from a stream, whatever ids are
// asked for. The stream is read on the first Fetch.
type ReaderSource struct {
	r       io.Reader
	payload *pdg.Payload
}

// NewReaderSource creates a ReaderSource over r.
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{r: r}
}

// Fetch implements Source.
func (s *ReaderSource) Fetch(ctx context.Context, _, _ string) (*pdg.Payload, error) {
	if s.payload != nil {
		return s.payload, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(s.r)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	s.payload = pdg.DecodePayload(data)
	return s.payload, nil
}
