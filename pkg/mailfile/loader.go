// Package mailfile loads messages from a local fixture file, for offline
// analysis of exported mail. Files are YAML lists of
// {id?, subject, body, date, time?} records; since YAML is a JSON
// superset, JSON exports load too.
package mailfile

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/harrisonrobin/mailtask/pkg/model"
)

// Load reads and validates messages from a file.
func Load(path string) ([]model.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes messages from a reader. Messages without a date are
// rejected here: the lifecycle walk depends on date ordering, so a
// dateless message can never reach the core.
func Parse(r io.Reader) ([]model.Message, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var messages []model.Message
	if err := yaml.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode message file: %w", err)
	}

	for i := range messages {
		if messages[i].Date.IsZero() {
			return nil, fmt.Errorf("message %d (%q) has no date", i, messages[i].Subject)
		}
		if messages[i].ID == "" {
			messages[i].ID = uuid.NewString()
		}
	}
	return messages, nil
}
