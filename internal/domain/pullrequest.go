// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

const (
	StateOpen   = "open"
	StateClosed = "closed"
)

// Label is a GitHub issue label as shown on a pull request.
type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// PullRequestSummary is a single pull request built from a search hit and its
// authoritative detail. A closed summary always carries MergedAt.
type PullRequestSummary struct {
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	CreatedAt     time.Time  `json:"createdAt"`
	MergedAt      *time.Time `json:"mergedAt,omitempty"`
	State         string     `json:"state"`
	IsDraft       bool       `json:"isDraft"`
	Labels        []Label    `json:"labels"`
	RepositoryURL string     `json:"repositoryUrl"`
	Number        int        `json:"number"`
}

// LabelNames returns the label names in order.
func (p PullRequestSummary) LabelNames() []string {
	names := make([]string, 0, len(p.Labels))
	for _, l := range p.Labels {
		names = append(names, l.Name)
	}
	return names
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"perPage"`
	TotalPages int  `json:"totalPages"`
	HasMore    bool `json:"hasMore"`
}

// NewPagination derives page metadata from the total number of valid items.
func NewPagination(page, perPage, total int) Pagination {
	totalPages := 0
	if perPage > 0 {
		totalPages = (total + perPage - 1) / perPage
	}
	return Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}

// OrgContributions is every resolved pull request of a user in one organization.
type OrgContributions struct {
	Org          string               `json:"org"`
	Username     string               `json:"username"`
	TotalPRs     int                  `json:"totalPRs"`
	PullRequests []PullRequestSummary `json:"pullRequests"`
	FetchedAt    time.Time            `json:"fetchedAt"`
}

// OrgContributionPage is one page of OrgContributions. TotalPRs counts the
// valid pull requests across all pages.
type OrgContributionPage struct {
	Org          string               `json:"org"`
	Username     string               `json:"username"`
	TotalPRs     int                  `json:"totalPRs"`
	PullRequests []PullRequestSummary `json:"pullRequests"`
	FetchedAt    time.Time            `json:"fetchedAt"`
	Pagination   Pagination           `json:"pagination"`
}
