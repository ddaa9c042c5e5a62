package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Stage identifies which resolution pass produced a Manifest.
type Stage string

const (
	StageRollup     Stage = "rollup"
	StageShrinkwrap Stage = "shrinkwrap"
	StageLive       Stage = "live"
)

// Manifest is an ordered mapping from kind to records. Kinds keep the
// order in which they first appeared.
type Manifest struct {
	Stage   Stage
	order   []Kind
	records map[Kind][]*Record
}

// NewManifest creates an empty manifest for the given stage.
func NewManifest(stage Stage) *Manifest {
	return &Manifest{
		Stage:   stage,
		records: make(map[Kind][]*Record),
	}
}

// Ensure registers kind without adding records, so it shows up in output.
func (m *Manifest) Ensure(kind Kind) {
	if m.records == nil {
		m.records = make(map[Kind][]*Record)
	}
	if _, ok := m.records[kind]; !ok {
		m.order = append(m.order, kind)
		m.records[kind] = []*Record{}
	}
}

// Add appends records to the list of kind.
func (m *Manifest) Add(kind Kind, records ...*Record) {
	m.Ensure(kind)
	m.records[kind] = append(m.records[kind], records...)
}

// Kinds returns kinds in first-appearance order.
func (m *Manifest) Kinds() []Kind {
	return append([]Kind(nil), m.order...)
}

// Records returns the records of kind in declaration order.
func (m *Manifest) Records(kind Kind) []*Record {
	return m.records[kind]
}

// Has reports whether kind appears in the manifest.
func (m *Manifest) Has(kind Kind) bool {
	_, ok := m.records[kind]
	return ok
}

// Len returns the total number of top-level records.
func (m *Manifest) Len() int {
	n := 0
	for _, recs := range m.records {
		n += len(recs)
	}
	return n
}

// Index returns records of kind keyed by name. Later records win, so
// callers get last-write-wins lookup while the lists keep every entry.
func (m *Manifest) Index(kind Kind) map[string]*Record {
	idx := make(map[string]*Record, len(m.records[kind]))
	for _, r := range m.records[kind] {
		idx[r.Name] = r
	}
	return idx
}

// Clone returns a deep copy of the manifest.
func (m *Manifest) Clone() *Manifest {
	if m == nil {
		return nil
	}

	out := NewManifest(m.Stage)
	for _, kind := range m.order {
		out.Ensure(kind)
		for _, r := range m.records[kind] {
			out.records[kind] = append(out.records[kind], r.Clone())
		}
	}
	return out
}

// Walk visits every record depth-first, including nested imports.
func (m *Manifest) Walk(fn func(r *Record, depth int) error) error {
	return m.walk(fn, 0)
}

func (m *Manifest) walk(fn func(r *Record, depth int) error, depth int) error {
	for _, kind := range m.order {
		for _, r := range m.records[kind] {
			if err := fn(r, depth); err != nil {
				return err
			}
			if r.Children != nil {
				if err := r.Children.walk(fn, depth+1); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// MarshalJSON writes kinds as plural keys in first-appearance order.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kind := range m.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(kind.Plural())
		buf.Write(key)
		buf.WriteByte(':')

		recs, err := json.Marshal(m.records[kind])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", kind.Plural(), err)
		}
		buf.Write(recs)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a manifest while keeping key order.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	entries, err := decodeOrderedObject(data)
	if err != nil {
		return err
	}

	*m = *NewManifest(m.Stage)
	for _, entry := range entries {
		kind, ok := KindForKey(entry.Key)
		if !ok {
			return fmt.Errorf("unknown manifest key: %s", entry.Key)
		}

		var recs []*Record
		if err := json.Unmarshal(entry.Value, &recs); err != nil {
			return fmt.Errorf("failed to decode %s: %w", entry.Key, err)
		}
		m.Add(kind, recs...)
	}
	return nil
}

// MarshalYAML writes kinds as an ordered mapping.
func (m *Manifest) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, kind := range m.order {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: kind.Plural()}

		value := &yaml.Node{}
		if err := value.Encode(m.records[kind]); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", kind.Plural(), err)
		}
		node.Content = append(node.Content, key, value)
	}
	return node, nil
}

// UnmarshalYAML reads an ordered mapping of kinds.
func (m *Manifest) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest must be a mapping, got %v", value.Tag)
	}

	*m = *NewManifest(m.Stage)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i].Value
		kind, ok := KindForKey(key)
		if !ok {
			return fmt.Errorf("unknown manifest key: %s", key)
		}

		var recs []*Record
		if err := value.Content[i+1].Decode(&recs); err != nil {
			return fmt.Errorf("failed to decode %s: %w", key, err)
		}
		m.Add(kind, recs...)
	}
	return nil
}
