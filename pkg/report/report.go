// Package report assembles and formats size estimates.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/stacksize/pkg/profile"
)

const (
	mib = 1024 * 1024
	gib = 1024 * mib
)

// Row is the estimate for one profile.
type Row struct {
	Profile       string   `json:"profile"`
	R             string   `json:"r"`
	Quarto        string   `json:"quarto"`
	Tex           string   `json:"tex"`
	Packages      int      `json:"packages"`
	PackageBytes  int64    `json:"package_bytes"`
	ArtifactBytes int64    `json:"artifact_bytes"`
	TotalBytes    int64    `json:"total_bytes"`
	Dropped       []string `json:"dropped,omitempty"`
	Cached        bool     `json:"cached,omitempty"`
}

// NewRow fills the label columns from p.
func NewRow(p profile.Profile, packages int, packageBytes, artifactBytes int64) Row {
	return Row{
		Profile:       p.Name,
		R:             p.RLabel(),
		Quarto:        p.QuartoLabel(),
		Tex:           p.Tex().String(),
		Packages:      packages,
		PackageBytes:  packageBytes,
		ArtifactBytes: artifactBytes,
		TotalBytes:    packageBytes + artifactBytes,
	}
}

// Report is a set of rows plus provenance.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Source      string    `json:"source"`
	IndexDigest string    `json:"index_digest,omitempty"`
	Rows        []Row     `json:"rows"`
}

// New starts an empty report with a fresh run ID.
func New(source string) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Source:      source,
	}
}

// HumanSize formats bytes the way the setup-script table does: one
// decimal GB above 1 GiB, whole MB otherwise.
func HumanSize(n int64) string {
	if n > gib {
		return fmt.Sprintf("%.1f GB", float64(n)/gib)
	}
	return fmt.Sprintf("%.0f MB", float64(n)/mib)
}

// WriteMarkdown writes the rows as a GitHub markdown table.
func (r *Report) WriteMarkdown(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "| Setup Script | R | Quarto | Tex | Total Installation Size |"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "|---|---|---|---|---|"); err != nil {
		return err
	}
	for _, row := range r.Rows {
		if _, err := fmt.Fprintf(w, "| `%s` | %s | %s | %s | %s |\n",
			row.Profile, row.R, row.Quarto, row.Tex, HumanSize(row.TotalBytes)); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Total sums TotalBytes over all rows.
func (r *Report) Total() int64 {
	var n int64
	for _, row := range r.Rows {
		n += row.TotalBytes
	}
	return n
}
