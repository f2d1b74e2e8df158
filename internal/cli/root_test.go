package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/stacksize/pkg/errors"
	"github.com/matzehuels/stacksize/pkg/observability"
	"github.com/matzehuels/stacksize/pkg/profile"
	"github.com/matzehuels/stacksize/pkg/report"
)

const testPackages = `Package: alpha
Installed-Size: 1024
Depends: beta, ghost

Package: beta
Installed-Size: 2048
Provides: beta-virtual
`

const testProfiles = `
[[profile]]
name = "mini.sh"
packages = ["alpha"]

[[profile]]
name = "quarto.sh"
quarto = "latest"
packages = ["beta"]
`

// testEnv isolates config and cache directories and writes the fixtures.
func testEnv(t *testing.T) (index, profiles string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	clearConfigEnv(t)
	t.Cleanup(observability.Reset)

	dir := t.TempDir()
	index = filepath.Join(dir, "Packages")
	profiles = filepath.Join(dir, "profiles.toml")
	if err := os.WriteFile(index, []byte(testPackages), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(profiles, []byte(testProfiles), 0o644); err != nil {
		t.Fatal(err)
	}
	return index, profiles
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"estimate", "resolve", "profiles", "serve", "cache", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing subcommand %q in %v", want, names)
		}
	}
}

func TestEstimateMarkdown(t *testing.T) {
	index, profiles := testEnv(t)

	out, err := run(t, "estimate", "--index", index, "--profiles", profiles, "--no-cache", "-f", "markdown")
	if err != nil {
		t.Fatalf("estimate error: %v", err)
	}
	want := "| Setup Script | R | Quarto | Tex | Total Installation Size |\n" +
		"|---|---|---|---|---|\n" +
		"| `mini.sh` | No | No | No | 3 MB |\n" +
		"| `quarto.sh` | No | Latest Stable | No | 383 MB |\n"
	if out != want {
		t.Errorf("output:\n%s\nwant:\n%s", out, want)
	}
}

func TestEstimateJSONSelectsProfiles(t *testing.T) {
	index, profiles := testEnv(t)

	out, err := run(t, "estimate", "quarto.sh", "--index", index, "--profiles", profiles, "--no-cache", "-f", "json")
	if err != nil {
		t.Fatalf("estimate error: %v", err)
	}
	var rep report.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(rep.Rows) != 1 || rep.Rows[0].Profile != "quarto.sh" {
		t.Fatalf("rows = %+v", rep.Rows)
	}
	if rep.Rows[0].ArtifactBytes != 381*1024*1024 || rep.Rows[0].PackageBytes != 2048*1024 {
		t.Errorf("row = %+v", rep.Rows[0])
	}
}

func TestEstimateErrors(t *testing.T) {
	index, profiles := testEnv(t)
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"format", []string{"estimate", "--index", index, "-f", "xml"}, errors.ErrCodeInvalidFormat},
		{"profile", []string{"estimate", "nope.sh", "--index", index, "--profiles", profiles}, errors.ErrCodeProfileNotFound},
		{"profile file", []string{"estimate", "--index", index, "--profiles", profiles + ".missing.toml"}, errors.ErrCodeFileNotFound},
		{"artifacts", []string{"estimate", "--index", index, "--profiles", profiles, "--artifacts", "s3"}, errors.ErrCodeInvalidInput},
		{"strict", []string{"estimate", "--index", index + ".missing", "--profiles", profiles, "--strict", "--no-cache"}, errors.ErrCodeFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestResolveCommand(t *testing.T) {
	index, _ := testEnv(t)

	out, err := run(t, "resolve", "alpha", "--index", index, "--no-cache", "-f", "json", "--sort", "size")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	var entries []resolvedEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(entries) != 2 || entries[0].Name != "beta" || entries[0].Depth != 1 {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].By != "alpha" || entries[1].Pulls != 1 {
		t.Errorf("pulled-by links = %+v", entries)
	}

	out, err = run(t, "resolve", "alpha", "--index", index, "--no-cache", "--why", "beta")
	if err != nil {
		t.Fatalf("resolve --why error: %v", err)
	}
	if strings.TrimSpace(out) != "alpha "+iconArrow+" beta" {
		t.Errorf("--why output = %q", out)
	}

	_, err = run(t, "resolve", "alpha", "--index", index, "--no-cache", "--why", "ghost")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("--why for a dropped name: %v", err)
	}

	_, err = run(t, "resolve", "Not_A_Package", "--index", index)
	if !errors.Is(err, errors.ErrCodeInvalidPackage) {
		t.Errorf("invalid name: %v", err)
	}
}

func TestResolveWritesDOT(t *testing.T) {
	index, _ := testEnv(t)
	dot := filepath.Join(t.TempDir(), "tree.dot")

	if _, err := run(t, "resolve", "alpha", "--index", index, "--no-cache", "--dot", dot); err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	data, err := os.ReadFile(dot)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"alpha" -> "beta"`) {
		t.Errorf("DOT missing edge:\n%s", data)
	}
}

func TestProfilesCommand(t *testing.T) {
	_, profiles := testEnv(t)

	out, err := run(t, "profiles", "-f", "json")
	if err != nil {
		t.Fatalf("profiles error: %v", err)
	}
	var got []profile.Profile
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(profile.Names(got), profile.Names(profile.Defaults())) {
		t.Errorf("profiles = %v, want the built-in set", profile.Names(got))
	}

	out, err = run(t, "profiles", "quarto.sh", "--profiles", profiles, "-f", "json")
	if err != nil {
		t.Fatalf("profiles quarto.sh error: %v", err)
	}
	var p profile.Profile
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatal(err)
	}
	if p.Quarto != "latest" {
		t.Errorf("profile = %+v", p)
	}
}

func TestConfigFlag(t *testing.T) {
	testEnv(t)

	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "profiles")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("explicit missing config: %v", err)
	}

	path := writeConfig(t, "[cache]\nbackend = \"bogus\"\n")
	if _, err := run(t, "--config", path, "profiles"); err == nil {
		t.Error("invalid config should fail before the command runs")
	}
}

func TestCachePath(t *testing.T) {
	testEnv(t)
	out, err := run(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	want, _ := cacheDir()
	if strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}
}

func TestCacheClearAfterEstimate(t *testing.T) {
	index, profiles := testEnv(t)
	if _, err := run(t, "estimate", "--index", index, "--profiles", profiles, "-f", "json"); err != nil {
		t.Fatalf("estimate error: %v", err)
	}
	dir, _ := cacheDir()
	if entries, _ := os.ReadDir(dir); len(entries) == 0 {
		t.Fatal("estimate should have cached its rows")
	}

	if _, err := run(t, "cache", "prune"); err != nil {
		t.Fatalf("cache prune: %v", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) == 0 {
		t.Error("prune should keep live entries")
	}

	if _, err := run(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("clear left %d entries", len(entries))
	}
}
