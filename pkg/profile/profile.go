// Package profile defines installation profiles: named sets of apt
// packages plus an optional non-package artifact (Quarto), mirroring one
// setup script each.
//
// The five setup scripts of the reference environment are built in (see
// [Defaults]). Other sets can be loaded from TOML or YAML files:
//
//	# profiles.toml
//	[[profile]]
//	name = "setup_docs.sh"
//	quarto = "latest"
//	packages = ["pandoc", "make"]
//
//	# profiles.yaml
//	profiles:
//	  - name: setup_docs.sh
//	    quarto: latest
//	    packages: [pandoc, make]
package profile

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stacksize/pkg/errors"
)

// Artifact keys understood by the artifact size sources.
const (
	QuartoLatest     = "latest"
	QuartoPrerelease = "prerelease"
)

// Profile is one installation recipe.
type Profile struct {
	Name     string   `toml:"name" yaml:"name" json:"name"`
	Packages []string `toml:"packages" yaml:"packages" json:"packages"`
	Quarto   string   `toml:"quarto" yaml:"quarto" json:"quarto,omitempty"`
	R        bool     `toml:"r" yaml:"r" json:"r"`
}

// Tex classifies the TeX installation a profile's packages imply.
type Tex int

const (
	TexNone Tex = iota
	TexStandard
	TexFull
)

// Tex reports the TeX level: texlive-full wins over texlive-latex-extra.
func (p Profile) Tex() Tex {
	switch {
	case slices.Contains(p.Packages, "texlive-full"):
		return TexFull
	case slices.Contains(p.Packages, "texlive-latex-extra"):
		return TexStandard
	default:
		return TexNone
	}
}

// String returns the report label.
func (t Tex) String() string {
	switch t {
	case TexFull:
		return "Full (texlive-full)"
	case TexStandard:
		return "Standard (latex-extra, luatex, science)"
	default:
		return "No"
	}
}

// QuartoLabel returns the report label for the Quarto channel.
func (p Profile) QuartoLabel() string {
	switch p.Quarto {
	case "":
		return "No"
	case QuartoLatest:
		return "Latest Stable"
	case QuartoPrerelease:
		return "Prerelease"
	default:
		return p.Quarto
	}
}

// RLabel returns "Yes" or "No".
func (p Profile) RLabel() string {
	if p.R {
		return "Yes"
	}
	return "No"
}

var artifactKeyRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]*$`)

// Validate checks the profile name, every package name and the artifact
// key. Errors are *errors.ValidationError values naming the field.
func (p Profile) Validate() error {
	if err := errors.ValidateProfileName(p.Name); err != nil {
		return errors.Field("name", err.(*errors.Error))
	}
	for i, pkg := range p.Packages {
		if err := errors.ValidatePackageName(pkg); err != nil {
			return errors.Field(fmt.Sprintf("%s.packages[%d]", p.Name, i), err.(*errors.Error))
		}
	}
	if p.Quarto != "" && !artifactKeyRegex.MatchString(p.Quarto) {
		return errors.Field(p.Name+".quarto",
			errors.New(errors.ErrCodeInvalidProfile, "invalid artifact key %q", p.Quarto))
	}
	return nil
}

type file struct {
	Profiles []Profile `toml:"profile" yaml:"profiles"`
}

// Format is a profile file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"unsupported profile file %q (want .toml, .yaml or .yml)", filepath.Base(path))
}

// Parse decodes and validates a profile list. Names must be unique.
func Parse(data []byte, format Format) ([]Profile, error) {
	var f file
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &f)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidProfile, err, "parse toml")
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidProfile, "unknown key %q", keys[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidProfile, err, "parse yaml")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported profile format %q", format)
	}

	seen := make(map[string]bool, len(f.Profiles))
	for i := range f.Profiles {
		p := &f.Profiles[i]
		p.Name = strings.TrimSpace(p.Name)
		p.Quarto = strings.TrimSpace(p.Quarto)
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if seen[p.Name] {
			return nil, errors.New(errors.ErrCodeInvalidProfile, "duplicate profile %q", p.Name)
		}
		seen[p.Name] = true
	}
	return f.Profiles, nil
}

// Load reads a profile file, choosing the format by extension.
func Load(path string) ([]Profile, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "profile file %s", path)
		}
		return nil, err
	}
	profiles, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return profiles, nil
}

//go:embed defaults.toml
var defaultsTOML []byte

var defaults = sync.OnceValue(func() []Profile {
	p, err := Parse(defaultsTOML, FormatTOML)
	if err != nil {
		panic("profile: built-in profiles: " + err.Error())
	}
	return p
})

// Defaults returns a copy of the built-in setup-script profiles in
// declaration order.
func Defaults() []Profile {
	src := defaults()
	out := make([]Profile, len(src))
	for i, p := range src {
		p.Packages = slices.Clone(p.Packages)
		out[i] = p
	}
	return out
}

// Lookup finds a profile by name.
func Lookup(profiles []Profile, name string) (Profile, error) {
	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, errors.New(errors.ErrCodeProfileNotFound, "unknown profile %q", name)
}

// Select returns the named profiles in the requested order, or all of them
// when names is empty.
func Select(profiles []Profile, names ...string) ([]Profile, error) {
	if len(names) == 0 {
		return profiles, nil
	}
	out := make([]Profile, 0, len(names))
	for _, n := range names {
		p, err := Lookup(profiles, n)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Names lists profile names in order.
func Names(profiles []Profile) []string {
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
	}
	return names
}
