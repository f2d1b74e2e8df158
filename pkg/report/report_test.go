package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/stacksize/pkg/profile"
)

func TestHumanSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 MB"},
		{381 * mib, "381 MB"},
		{mib / 2, "0 MB"},
		{3 * mib / 2, "2 MB"},
		{gib, "1024 MB"},
		{gib + 1, "1.0 GB"},
		{5*gib + gib/2, "5.5 GB"},
	}
	for _, tt := range tests {
		if got := HumanSize(tt.n); got != tt.want {
			t.Errorf("HumanSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestNewRow(t *testing.T) {
	p := profile.Profile{Name: "setup_r_quarto_tex.sh", R: true, Quarto: "prerelease",
		Packages: []string{"texlive-latex-extra"}}
	row := NewRow(p, 120, 900*mib, 388*mib)
	if row.TotalBytes != 1288*mib {
		t.Errorf("TotalBytes = %d", row.TotalBytes)
	}
	if row.R != "Yes" || row.Quarto != "Prerelease" || row.Tex != "Standard (latex-extra, luatex, science)" {
		t.Errorf("labels = %q %q %q", row.R, row.Quarto, row.Tex)
	}
}

func TestWriteMarkdown(t *testing.T) {
	r := New("test")
	r.Rows = []Row{
		NewRow(profile.Profile{Name: "setup_quarto_latest.sh", Quarto: "latest"}, 0, 0, 381*mib),
		NewRow(profile.Profile{Name: "setup_r_tex_full.sh", R: true, Packages: []string{"texlive-full"}}, 900, 6*gib, 0),
	}

	var buf bytes.Buffer
	if err := r.WriteMarkdown(&buf); err != nil {
		t.Fatal(err)
	}
	want := "| Setup Script | R | Quarto | Tex | Total Installation Size |\n" +
		"|---|---|---|---|---|\n" +
		"| `setup_quarto_latest.sh` | No | Latest Stable | No | 381 MB |\n" +
		"| `setup_r_tex_full.sh` | Yes | No | Full (texlive-full) | 6.0 GB |\n"
	if buf.String() != want {
		t.Errorf("WriteMarkdown() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteJSON(t *testing.T) {
	r := New("http://archive.ubuntu.com/ubuntu")
	r.Rows = []Row{NewRow(profile.Profile{Name: "a"}, 1, 10, 5)}

	var buf bytes.Buffer
	if err := r.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	var got Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, err := uuid.Parse(got.RunID); err != nil {
		t.Errorf("RunID %q is not a UUID", got.RunID)
	}
	if len(got.Rows) != 1 || got.Rows[0].TotalBytes != 15 {
		t.Errorf("Rows = %+v", got.Rows)
	}
	if !strings.Contains(buf.String(), `"package_bytes": 10`) {
		t.Error("JSON should use snake_case field names")
	}
	if r.Total() != 15 {
		t.Errorf("Total() = %d", r.Total())
	}
}
