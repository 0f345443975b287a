package index

import (
	"context"
	"sort"

	"assistant/internal/embeddings"
)

// MemoryIndex scans every entry and ranks by cosine similarity.
type MemoryIndex struct {
	model   string
	entries []Entry
}

func NewMemoryIndex(model string, entries []Entry) *MemoryIndex {
	return &MemoryIndex{model: model, entries: entries}
}

func (m *MemoryIndex) Search(ctx context.Context, vector embeddings.Vector, k int) ([]Fragment, error) {
	if k <= 0 || len(m.entries) == 0 {
		return []Fragment{}, nil
	}
	type scored struct {
		i     int
		score float32
	}
	all := make([]scored, len(m.entries))
	for i, e := range m.entries {
		all[i] = scored{i: i, score: embeddings.CosineSimilarity(vector, e.Vector)}
	}
	// Stable keeps build order among equal scores.
	sort.SliceStable(all, func(a, b int) bool { return all[a].score > all[b].score })

	if k > len(all) {
		k = len(all)
	}
	out := make([]Fragment, 0, k)
	for _, s := range all[:k] {
		e := m.entries[s.i]
		out = append(out, Fragment{Content: e.Content, Source: e.Source, Score: s.score})
	}
	return out, nil
}

func (m *MemoryIndex) Len() int      { return len(m.entries) }
func (m *MemoryIndex) Model() string { return m.model }
