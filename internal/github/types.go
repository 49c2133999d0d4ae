package github

// Repository is the repository a code-search hit belongs to.
type Repository struct {
	Name     string `json:"name" yaml:"name"`
	FullName string `json:"full_name" yaml:"full_name"` // owner/name
}

// SearchResult is a single file matched by a code search.
type SearchResult struct {
	Name       string     `json:"name"`
	Path       string     `json:"path"`
	SHA        string     `json:"sha"`
	URL        string     `json:"url"` // contents API URL for the file
	GitURL     string     `json:"git_url"`
	HTMLURL    string     `json:"html_url"`
	Score      float64    `json:"score"`
	Repository Repository `json:"repository"`
}

// DisplayName is the label shown for a hit: "owner/repo: path".
func (r SearchResult) DisplayName() string {
	return r.Repository.FullName + ": " + r.Path
}

// SearchResults is the GitHub code-search response. The order of Items is
// the API's ranking and is preserved by callers.
type SearchResults struct {
	TotalCount        uint           `json:"total_count"`
	IncompleteResults bool           `json:"incomplete_results"`
	Items             []SearchResult `json:"items"`
}

// contentResponse is the subset of the contents API response needed to fetch
// the raw file.
type contentResponse struct {
	DownloadURL string `json:"download_url"`
}
