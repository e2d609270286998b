package domain

import "sort"

// ArtifactMap maps canonical test identities to the artifact files recorded for them.
type ArtifactMap struct {
	root    string
	entries map[TestIdentity][]string
}

// NewArtifactMap returns an empty map whose keys are canonicalized against root.
func NewArtifactMap(root string) *ArtifactMap {
	return &ArtifactMap{root: root, entries: make(map[TestIdentity][]string)}
}

// Add registers files for the identity, accumulating across bundles.
func (m *ArtifactMap) Add(raw string, files ...string) {
	id := Canonical(m.root, raw)
	if id == "" {
		return
	}
	m.entries[id] = append(m.entries[id], files...)
}

// Lookup resolves an identity in any of its forms. When no exact key exists it
// falls back to the first key, in sorted order, with the same case name.
func (m *ArtifactMap) Lookup(raw string) []string {
	if m == nil {
		return nil
	}
	id := Canonical(m.root, raw)
	if files, ok := m.entries[id]; ok {
		return files
	}

	suffix := id.Suffix()
	if suffix == "" {
		return nil
	}
	for _, key := range m.Keys() {
		if key.Suffix() == suffix {
			return m.entries[key]
		}
	}
	return nil
}

// Keys returns the registered identities in sorted order.
func (m *ArtifactMap) Keys() []TestIdentity {
	keys := make([]TestIdentity, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Len returns the number of registered identities.
func (m *ArtifactMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}
