package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestEntry is one authored key of a project manifest with its raw
// fragments.
type ManifestEntry struct {
	Key       string
	Kind      Kind
	Fragments []json.RawMessage
}

// ProjectManifest is a manifest as authored in project.json or in the
// panda key of a package.json. Entries keep their authored order.
type ProjectManifest struct {
	Entries []ManifestEntry

	// Ignored lists keys that do not name an entity kind.
	Ignored []string
}

// Fragments returns all raw fragments declared for kind, across aliases.
func (pm *ProjectManifest) Fragments(kind Kind) []json.RawMessage {
	var out []json.RawMessage
	for _, e := range pm.Entries {
		if e.Kind == kind {
			out = append(out, e.Fragments...)
		}
	}
	return out
}

// ParseProjectManifest decodes a JSON manifest object.
func ParseProjectManifest(data []byte) (*ProjectManifest, error) {
	entries, err := decodeOrderedObject(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	pm := &ProjectManifest{}
	for _, entry := range entries {
		kind, ok := KindForKey(entry.Key)
		if !ok {
			pm.Ignored = append(pm.Ignored, entry.Key)
			continue
		}

		fragments, err := splitFragments(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", entry.Key, err)
		}
		pm.Entries = append(pm.Entries, ManifestEntry{Key: entry.Key, Kind: kind, Fragments: fragments})
	}
	return pm, nil
}

// ParseProjectManifestYAML decodes a YAML manifest document.
func ParseProjectManifestYAML(data []byte) (*ProjectManifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	pm := &ProjectManifest{}
	if len(doc.Content) == 0 {
		return pm, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to parse manifest: top level must be a mapping")
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		kind, ok := KindForKey(key)
		if !ok {
			pm.Ignored = append(pm.Ignored, key)
			continue
		}

		var value any
		if err := root.Content[i+1].Decode(&value); err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", key, err)
		}

		fragments, err := splitFragments(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		pm.Entries = append(pm.Entries, ManifestEntry{Key: key, Kind: kind, Fragments: fragments})
	}
	return pm, nil
}

// splitFragments accepts either a list of fragments or a single fragment.
func splitFragments(raw json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] != '[' {
		return []json.RawMessage{trimmed}, nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, err
	}
	return list, nil
}

type orderedEntry struct {
	Key   string
	Value json.RawMessage
}

// decodeOrderedObject reads the top-level members of a JSON object in
// document order.
func decodeOrderedObject(data []byte) ([]orderedEntry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object")
	}

	var entries []orderedEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", key, err)
		}
		entries = append(entries, orderedEntry{Key: strings.TrimSpace(key), Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return entries, nil
}
