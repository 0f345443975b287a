package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const snapshotFile = "index.json"

type snapshot struct {
	Model   string    `json:"model"`
	BuiltAt time.Time `json:"built_at"`
	Entries []Entry   `json:"entries"`
}

// LocalStore keeps the index as a JSON snapshot under a directory and
// serves searches from memory.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

func (s *LocalStore) path() string { return filepath.Join(s.dir, snapshotFile) }

func (s *LocalStore) Load(ctx context.Context) (Searcher, error) {
	raw, err := os.ReadFile(s.path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoIndex
	}
	if err != nil {
		return nil, fmt.Errorf("read index snapshot: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode index snapshot: %w", err)
	}
	return NewMemoryIndex(snap.Model, snap.Entries), nil
}

// Save writes the snapshot to a temp file and renames it into place so a
// concurrent reader never sees a partial file.
func (s *LocalStore) Save(ctx context.Context, model string, entries []Entry) (Searcher, error) {
	if entries == nil {
		entries = []Entry{}
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	raw, err := json.Marshal(snapshot{Model: model, BuiltAt: time.Now().UTC(), Entries: entries})
	if err != nil {
		return nil, fmt.Errorf("encode index snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, snapshotFile+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path()); err != nil {
		return nil, fmt.Errorf("replace snapshot: %w", err)
	}
	return NewMemoryIndex(model, entries), nil
}
