package domain

import "time"

// Category is the kind of change a pull request represents.
type Category string

const (
	CategoryFeature Category = "feature"
	CategoryBugfix  Category = "bugfix"
	CategoryDocs    Category = "docs"
	CategoryInfra   Category = "infra"
	CategoryOther   Category = "other"
)

// Categories lists every category. CountsByType always carries all of them.
var Categories = []Category{CategoryFeature, CategoryBugfix, CategoryDocs, CategoryInfra, CategoryOther}

// NewCountsByType returns a zeroed counter for every category.
func NewCountsByType() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = 0
	}
	return counts
}

// MonthPoint is the number of pull requests opened in one calendar month.
type MonthPoint struct {
	Month string `json:"month"`
	PRs   int    `json:"prs"`
}

// AggregatedStats is the cross-organization summary for one user.
// It is the core domain entity of this application.
type AggregatedStats struct {
	User          string           `json:"user"`
	TotalPRs      int              `json:"totalPRs"`
	ReposCount    int              `json:"reposCount"`
	OrgsCount     int              `json:"orgsCount"`
	CountsByType  map[Category]int `json:"countsByType"`
	CountsByOrg   map[string]int   `json:"countsByOrg"`
	MonthlySeries []MonthPoint     `json:"monthlySeries"`
	MonthlyMean   float64          `json:"monthlyMean"`
	MonthlyMedian float64          `json:"monthlyMedian"`
	FetchedAt     time.Time        `json:"fetchedAt"`
}

// RateLimitStatus reports the GraphQL budget left for the configured token.
type RateLimitStatus struct {
	Login     string    `json:"login"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"resetAt"`
}
