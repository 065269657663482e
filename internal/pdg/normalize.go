package pdg

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Source names the decoder that produced a graph.
type Source string

// Decoders, in the order they are tried.
const (
	SourceStructured Source = "structured"
	SourceJSONString Source = "json"
	SourceDOT        Source = "dot"
	SourceFallback   Source = "fallback"
)

// Result is a canonical graph plus the decoder that produced it.
type Result struct {
	Graph  Graph  `json:"graph" yaml:"graph"`
	Source Source `json:"source" yaml:"source"`
}

// IsFallback reports whether the payload was replaced by the sample graph.
func (r *Result) IsFallback() bool {
	return r.Source == SourceFallback
}

var (
	errAbsent  = errors.New("no pdg_data in payload")
	errNoMatch = errors.New("no decoder accepted pdg_data")
	errNotText = errors.New("pdg_data is not a string")
)

type decoder struct {
	source Source
	decode func(json.RawMessage) (Graph, error)
}

// decoders is tried in order; the first success wins.
var decoders = []decoder{
	{source: SourceStructured, decode: decodeStructured},
	{source: SourceJSONString, decode: decodeJSONString},
	{source: SourceDOT, decode: decodeDOTString},
}

// unquote returns the text of a pdg_data JSON string.
func unquote(data json.RawMessage) (string, error) {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return "", errNotText
	}
	return text, nil
}

func decodeJSONString(data json.RawMessage) (Graph, error) {
	text, err := unquote(data)
	if err != nil {
		return Graph{}, err
	}
	if !json.Valid([]byte(text)) {
		return Graph{}, errors.New("pdg_data string is not valid JSON")
	}
	return decodeStructured(json.RawMessage(text))
}

func decodeDOTString(data json.RawMessage) (Graph, error) {
	text, err := unquote(data)
	if err != nil {
		return Graph{}, err
	}
	return ParseDOT(text)
}

// Normalizer converts payloads to canonical graphs. It logs at debug
// level why a payload was rejected; callers never see an error.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a Normalizer. A nil logger discards output.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Normalizer{logger: logger}
}

var defaultNormalizer = NewNormalizer(nil)

// Normalize converts p with a silent Normalizer.
func Normalize(p *Payload) *Result {
	return defaultNormalizer.Normalize(p)
}

// NormalizeJSON decodes a raw response body and normalizes it.
func NormalizeJSON(data []byte) *Result {
	return defaultNormalizer.Normalize(DecodePayload(data))
}

// Normalize always returns a well-formed graph. Payloads that are absent
// or that no decoder accepts are replaced by Fallback.
func (n *Normalizer) Normalize(p *Payload) *Result {
	res, err := n.decode(p)
	if err != nil {
		n.logger.Debug("using fallback graph", "reason", err)
		return &Result{Graph: Fallback(), Source: SourceFallback}
	}
	n.logger.Debug("pdg payload decoded",
		"source", res.Source,
		"nodes", len(res.Graph.Nodes),
		"edges", len(res.Graph.Edges))
	return res
}

func (n *Normalizer) decode(p *Payload) (*Result, error) {
	kind := p.kind()
	switch kind {
	case kindAbsent:
		return nil, errAbsent
	case kindOther:
		return nil, fmt.Errorf("unsupported pdg_data type: %s", kind)
	}

	for _, d := range decoders {
		g, err := d.decode(p.PDGData)
		if err == nil {
			return &Result{Graph: g, Source: d.source}, nil
		}
		n.logger.Debug("pdg decoder rejected payload", "decoder", d.source, "error", err)
	}
	return nil, errNoMatch
}
