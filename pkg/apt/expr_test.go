package apt

import (
	"slices"
	"testing"
)

func TestStripQualifiers(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"libc6", "libc6"},
		{"libc6 (>= 2.34)", "libc6"},
		{"libc6(>=2.34)", "libc6"},
		{"  python3:any  ", "python3"},
		{"perl:any (>= 5.10)", "perl"},
		{"libfoo [amd64 arm64]", "libfoo"},
		{"debhelper <!nocheck>", "debhelper"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := StripQualifiers(tt.in); got != tt.want {
			t.Errorf("StripQualifiers(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAlternatives(t *testing.T) {
	tests := []struct {
		name  string
		group string
		want  []string
	}{
		{"single", "libc6 (>= 2.34)", []string{"libc6"}},
		{"pair", "debconf (>= 0.5) | debconf-2.0", []string{"debconf", "debconf-2.0"}},
		{"three", "pkg1 | pkg2 | pkg3 (>= 1.0.0)", []string{"pkg1", "pkg2", "pkg3"}},
		{"tight", "a|b", []string{"a", "b"}},
		{"empty option", "a | | b", []string{"a", "b"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Alternatives(tt.group); !slices.Equal(got, tt.want) {
				t.Errorf("Alternatives(%q) = %q, want %q", tt.group, got, tt.want)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" a (>= 1), b | c ,, d ")
	want := []string{"a (>= 1)", "b | c", "d"}
	if !slices.Equal(got, want) {
		t.Errorf("SplitList = %q, want %q", got, want)
	}
	if got := SplitList(""); got != nil {
		t.Errorf("SplitList(\"\") = %q, want nil", got)
	}
}
