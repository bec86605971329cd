// Package index persists the Gmail label-name to label-ID mapping so that
// repeat runs skip the Labels.List round trip.
package index

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

type LabelIndex struct {
	Mappings map[string]string `json:"mappings"`
	Path     string            `json:"-"`
	mu       sync.RWMutex
	dirty    bool
}

func NewLabelIndex() (*LabelIndex, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "mailtask", "labels.json")

	idx := &LabelIndex{
		Mappings: make(map[string]string),
		Path:     path,
	}

	if _, err := os.Stat(path); err == nil {
		if err := idx.Load(); err != nil {
			return nil, err
		}
	}

	return idx, nil
}

func (idx *LabelIndex) Load() error {
	f, err := os.Open(idx.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(&idx.Mappings)
}

func (idx *LabelIndex) Save() error {
	idx.mu.RLock()
	if !idx.dirty {
		idx.mu.RUnlock()
		return nil
	}
	idx.mu.RUnlock()

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(idx.Path), 0700); err != nil {
		return err
	}

	f, err := os.Create(idx.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(idx.Mappings); err != nil {
		return err
	}
	idx.dirty = false
	return nil
}

func (idx *LabelIndex) Get(labelName string) string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.Mappings[labelName]
}

func (idx *LabelIndex) Set(labelName, labelID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.Mappings[labelName] != labelID {
		idx.Mappings[labelName] = labelID
		idx.dirty = true
	}
}

func (idx *LabelIndex) Remove(labelName string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, exists := idx.Mappings[labelName]; exists {
		delete(idx.Mappings, labelName)
		idx.dirty = true
	}
}
