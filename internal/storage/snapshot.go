package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/deusflow/teledigest/internal/news"
)

// Snapshot is the JSON record of one test-mode run.
type Snapshot struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Subject     string        `json:"subject"`
	Ranked      bool          `json:"ranked"`
	Records     []news.Record `json:"records"`
	Stats       news.Stats    `json:"stats"`
	Errors      []string      `json:"errors,omitempty"`
}

// OutputWriter stores rendered digests on disk instead of mailing them.
type OutputWriter struct {
	dir string
}

func NewOutputWriter(dir string) *OutputWriter {
	if dir == "" {
		dir = "output"
	}
	return &OutputWriter{dir: dir}
}

// Write saves html as daily_<stamp>.html and the snapshot next to it as
// daily_<stamp>.json. It returns the HTML path.
func (w *OutputWriter) Write(html string, snap Snapshot) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	base := filepath.Join(w.dir, "daily_"+snap.GeneratedAt.Format("20060102_150405"))
	htmlPath := base + ".html"
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("failed to write html: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(base+".json", data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return htmlPath, nil
}

// LoadSnapshot reads a snapshot written by Write.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
