package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Entry is one manifest row: an identifier plus the location of the image to
// process. FileURL may be an http(s) URL or a local file path.
type Entry struct {
	ID      string `json:"id"`
	FileURL string `json:"file_url"`
}

// ReadManifest parses a JSON manifest holding either an array of entries or
// a single entry object.
//
// Rows with a missing id or file_url are skipped. Duplicate ids keep only
// the first occurrence. maxRows caps the result when positive.
func ReadManifest(path string, maxRows int) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var rows []Entry
	if err := json.Unmarshal(data, &rows); err != nil {
		var single Entry
		if err2 := json.Unmarshal(data, &single); err2 != nil {
			return nil, fmt.Errorf("manifest must be an entry or an array of entries: %w", err)
		}
		rows = []Entry{single}
	}

	seen := make(map[string]bool, len(rows))
	out := rows[:0]
	for _, row := range rows {
		row.ID = strings.TrimSpace(row.ID)
		row.FileURL = strings.TrimSpace(row.FileURL)
		if row.ID == "" || row.FileURL == "" {
			continue
		}
		if seen[row.ID] {
			continue
		}
		seen[row.ID] = true
		out = append(out, row)
	}

	if maxRows > 0 && len(out) > maxRows {
		out = out[:maxRows]
	}
	return out, nil
}
