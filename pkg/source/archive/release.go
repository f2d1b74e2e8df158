package archive

import (
	"bufio"
	"strconv"
	"strings"
)

// FileEntry is one line of a Release file's SHA256 section.
type FileEntry struct {
	SHA256 string
	Size   int64
}

// Release holds the fields of an (In)Release file that verification needs.
type Release struct {
	Suite      string
	Codename   string
	Date       string
	Components []string
	Files      map[string]FileEntry // keyed by path below dists/<suite>/
}

// ParseRelease parses the plaintext of a Release file. Unknown fields are
// ignored; malformed checksum lines are skipped.
func ParseRelease(text string) *Release {
	rel := &Release{Files: make(map[string]FileEntry)}
	inSHA := false

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			if inSHA {
				rel.addFile(line)
			}
			continue
		}

		key, value, _ := strings.Cut(line, ":")
		value = strings.TrimSpace(value)
		inSHA = key == "SHA256"
		switch key {
		case "Suite":
			rel.Suite = value
		case "Codename":
			rel.Codename = value
		case "Date":
			rel.Date = value
		case "Components":
			rel.Components = strings.Fields(value)
		}
	}
	return rel
}

func (r *Release) addFile(line string) {
	f := strings.Fields(line)
	if len(f) != 3 {
		return
	}
	size, err := strconv.ParseInt(f[1], 10, 64)
	if err != nil {
		return
	}
	r.Files[f[2]] = FileEntry{SHA256: strings.ToLower(f[0]), Size: size}
}
