// Package colors assigns a stable fill color to each module so that a
// module keeps its color across successive exported reports. Assignments
// persist in the app's config directory; when the palette runs out, the
// least recently seen module loses its slot.
package colors

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"
)

// palette holds the fill colors handed out to modules, light enough for
// black text.
var palette = []string{
	"FFB3BA", "FFDFBA", "FFFFBA", "BAFFC9", "BAE1FF",
	"E3BAFF", "FFC8DD", "C9F2C7", "F2E2C9", "C9D6F2", "D9F2C9",
}

type ModuleState struct {
	Color        string    `json:"color"`
	TaskCount    int       `json:"task_count"`
	LastModified time.Time `json:"last_modified"`
}

type ModuleColors struct {
	Path    string
	Modules map[string]*ModuleState `json:"modules"`
	dirty   bool
}

const (
	xdgAppName = "mailtask"
	cacheFile  = "module_colors.json"
)

func NewModuleColors() (*ModuleColors, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", xdgAppName, cacheFile)

	cache := &ModuleColors{
		Path:    path,
		Modules: make(map[string]*ModuleState),
	}

	if _, err := os.Stat(path); err == nil {
		if err := cache.Load(); err != nil {
			return nil, err
		}
	}
	return cache, nil
}

func (c *ModuleColors) Load() error {
	f, err := os.Open(c.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(&c.Modules)
}

func (c *ModuleColors) Save() error {
	if !c.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0700); err != nil {
		log.Printf("Error creating module color directory: %v", err)
		return err
	}

	f, err := os.Create(c.Path)
	if err != nil {
		log.Printf("Error creating module color file: %v", err)
		return err
	}
	defer f.Close()
	err = json.NewEncoder(f).Encode(c.Modules)
	if err == nil {
		c.dirty = false
	}
	return err
}

// GetColor returns the fill color for a module, assigning one on first
// sight.
func (c *ModuleColors) GetColor(module string) string {
	if module == "" {
		return "D9D9D9" // gray for uncategorized work
	}

	if state, exists := c.Modules[module]; exists {
		state.LastModified = time.Now()
		c.dirty = true
		return state.Color
	}

	return c.assignColor(module)
}

func (c *ModuleColors) assignColor(module string) string {
	used := make(map[string]bool)
	for _, s := range c.Modules {
		used[s.Color] = true
	}

	for _, color := range palette {
		if !used[color] {
			c.Modules[module] = &ModuleState{
				Color:        color,
				TaskCount:    1,
				LastModified: time.Now(),
			}
			c.dirty = true
			return color
		}
	}

	// Palette exhausted: recycle the slot of the module seen longest ago.
	var oldestModule string
	var oldestTime time.Time
	first := true
	for m, s := range c.Modules {
		if first || s.LastModified.Before(oldestTime) {
			oldestTime = s.LastModified
			oldestModule = m
			first = false
		}
	}

	if oldestModule != "" {
		recycled := c.Modules[oldestModule].Color
		delete(c.Modules, oldestModule)

		c.Modules[module] = &ModuleState{
			Color:        recycled,
			TaskCount:    1,
			LastModified: time.Now(),
		}
		c.dirty = true
		return recycled
	}

	return palette[0]
}
