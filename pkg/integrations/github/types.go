package github

import "time"

// Release is the subset of a GitHub release stacksize needs.
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Prerelease  bool      `json:"prerelease"`
	Draft       bool      `json:"draft"`
	PublishedAt time.Time `json:"published_at"`
	Assets      []Asset   `json:"assets"`
}

// Asset is a downloadable file attached to a release.
type Asset struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	DownloadURL string `json:"browser_download_url"`
}

// Version returns the tag without a leading "v".
func (r *Release) Version() string {
	if len(r.TagName) > 1 && r.TagName[0] == 'v' {
		return r.TagName[1:]
	}
	return r.TagName
}
