// Package github fetches project manifests from GitHub repositories.
package github

// AuditRequest is the POST body for repository-sourced audits.
type AuditRequest struct {
	URL string `json:"url"`
	Ref string `json:"ref,omitempty"`
}

// Repo identifies one GitHub repository.
type Repo struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// Label is the owner/repo form used as an audit source label.
func (r Repo) Label() string {
	return r.Owner + "/" + r.Name
}
