package pdg

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/go-viper/mapstructure/v2"
)

var (
	errNotObject    = errors.New("pdg_data is not a JSON object")
	errMissingNodes = errors.New("structured graph has no nodes field")
)

// structuredGraph is the pre-structured pdg_data shape.
type structuredGraph struct {
	Nodes *nodeList         `json:"nodes"`
	Edges []json.RawMessage `json:"edges"`
}

// nodeDescriptor carries the optional per-node fields. Pointers tell an
// omitted field apart from a zero value.
type nodeDescriptor struct {
	ID           *string  `mapstructure:"id"`
	Label        *string  `mapstructure:"label"`
	X            *float64 `mapstructure:"x"`
	Y            *float64 `mapstructure:"y"`
	IsVulnerable *bool    `mapstructure:"isVulnerable"`
}

// edgeDescriptor accepts both source/target and from/to naming.
type edgeDescriptor struct {
	Source string `mapstructure:"source"`
	Target string `mapstructure:"target"`
	From   string `mapstructure:"from"`
	To     string `mapstructure:"to"`
}

type nodeEntry struct {
	id   string
	desc nodeDescriptor
}

// nodeList keeps nodes in document order. It decodes either a mapping of
// id to descriptor or an array of descriptors carrying their own id.
type nodeList []nodeEntry

// UnmarshalJSON implements json.Unmarshaler.
func (l *nodeList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("empty nodes value")
	}
	switch data[0] {
	case '{':
		return l.decodeMapping(data)
	case '[':
		return l.decodeArray(data)
	default:
		return fmt.Errorf("nodes must be an object or an array, got %.20s", data)
	}
}

// decodeMapping walks the object token by token so key order survives.
func (l *nodeList) decodeMapping(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected node key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("node %q: %w", id, err)
		}
		desc, err := decodeNodeDescriptor(raw)
		if err != nil {
			return fmt.Errorf("node %q: %w", id, err)
		}
		*l = append(*l, nodeEntry{id: id, desc: desc})
	}
	_, err := dec.Token()
	return err
}

func (l *nodeList) decodeArray(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	for i, raw := range items {
		desc, err := decodeNodeDescriptor(raw)
		if err != nil {
			return fmt.Errorf("node #%d: %w", i, err)
		}
		if desc.ID == nil {
			return fmt.Errorf("node #%d: missing id", i)
		}
		*l = append(*l, nodeEntry{id: *desc.ID, desc: desc})
	}
	return nil
}

// decodeObject turns a raw JSON object into a generic map, keeping
// numbers as json.Number for mapstructure.
func decodeObject(raw json.RawMessage) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New("descriptor is null")
	}
	return m, nil
}

// weakDecode decodes loosely typed input, so "10" is a valid coordinate
// and a numeric id becomes a string.
func weakDecode(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func decodeNodeDescriptor(raw json.RawMessage) (nodeDescriptor, error) {
	var desc nodeDescriptor
	m, err := decodeObject(raw)
	if err != nil {
		return desc, err
	}
	err = weakDecode(m, &desc)
	return desc, err
}

func decodeEdgeDescriptor(raw json.RawMessage) (GraphEdge, error) {
	m, err := decodeObject(raw)
	if err != nil {
		return GraphEdge{}, err
	}
	var desc edgeDescriptor
	if err := weakDecode(m, &desc); err != nil {
		return GraphEdge{}, err
	}
	e := GraphEdge{Source: desc.Source, Target: desc.Target}
	if e.Source == "" {
		e.Source = desc.From
	}
	if e.Target == "" {
		e.Target = desc.To
	}
	return e, nil
}

// decodeStructured reads pdg_data when it is a structured JSON object.
func decodeStructured(data json.RawMessage) (Graph, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return Graph{}, errNotObject
	}

	var sg structuredGraph
	if err := json.Unmarshal(data, &sg); err != nil {
		return Graph{}, err
	}
	if sg.Nodes == nil {
		return Graph{}, errMissingNodes
	}

	total := len(*sg.Nodes)
	g := Graph{
		Nodes: make([]GraphNode, 0, total),
		Edges: make([]GraphEdge, 0, len(sg.Edges)),
	}
	for i, entry := range *sg.Nodes {
		g.Nodes = append(g.Nodes, entry.toNode(i, total))
	}
	for i, raw := range sg.Edges {
		e, err := decodeEdgeDescriptor(raw)
		if err != nil {
			return Graph{}, fmt.Errorf("edge #%d: %w", i, err)
		}
		g.Edges = append(g.Edges, e)
	}
	return g, nil
}

// toNode applies the defaults: label falls back to the id, each missing
// or non-finite coordinate comes from the circular layout, and nodes are
// not vulnerable unless flagged.
func (e nodeEntry) toNode(index, total int) GraphNode {
	x, y := CircularPosition(index, total)
	n := GraphNode{ID: e.id, Label: e.id, X: x, Y: y}
	if e.desc.Label != nil && *e.desc.Label != "" {
		n.Label = *e.desc.Label
	}
	if finite(e.desc.X) {
		n.X = *e.desc.X
	}
	if finite(e.desc.Y) {
		n.Y = *e.desc.Y
	}
	if e.desc.IsVulnerable != nil {
		n.IsVulnerable = *e.desc.IsVulnerable
	}
	return n
}

// finite reports whether v is set to a drawable number. Weak decoding turns
// "NaN" and "Inf" strings into floats that JSON cannot encode.
func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
