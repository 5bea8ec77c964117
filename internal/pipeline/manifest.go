package pipeline

import (
	"time"

	"github.com/JakeFAU/yoweb-scraper/internal/stage"
)

// Manifest describes a completed run. It is published after the tables are
// written.
type Manifest struct {
	RunID      string          `json:"run_id"`
	RootURL    string          `json:"root_url"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Stamp      string          `json:"stamp"`
	Stages     []stage.Summary `json:"stages"`
	Tables     []TableInfo     `json:"tables"`
}

// TableInfo is the manifest entry for one output table. SHA256 covers the
// table's CSV rendering.
type TableInfo struct {
	Name   string `json:"name"`
	Rows   int    `json:"rows"`
	SHA256 string `json:"sha256"`
}

// Attributes exposes the run identity as message attributes.
func (m Manifest) Attributes() map[string]string {
	return map[string]string{"run_id": m.RunID, "stamp": m.Stamp}
}
