package usecase

import (
	"strings"

	"github.com/naka-gawa/oss-stats/internal/domain"
)

// categoryRules are checked in order; the first group with a hit wins.
// A title with both "fix" and "feature" is therefore a bugfix.
var categoryRules = []struct {
	category domain.Category
	keywords []string
}{
	{domain.CategoryBugfix, []string{"bug", "fix", "hotfix"}},
	{domain.CategoryDocs, []string{"docs", "documentation", "readme"}},
	{domain.CategoryInfra, []string{"infra", "chore", "build", "ci", "pipeline", "devops", "test"}},
	{domain.CategoryFeature, []string{"feature", "feat", "add", "implement", "support"}},
}

// Classify maps a pull request title and its label names to a category using
// case-insensitive substring matches.
func Classify(title string, labels []string) domain.Category {
	t := strings.ToLower(title)
	lowered := make([]string, len(labels))
	for i, l := range labels {
		lowered[i] = strings.ToLower(l)
	}

	has := func(keyword string) bool {
		if strings.Contains(t, keyword) {
			return true
		}
		for _, l := range lowered {
			if strings.Contains(l, keyword) {
				return true
			}
		}
		return false
	}

	for _, rule := range categoryRules {
		for _, k := range rule.keywords {
			if has(k) {
				return rule.category
			}
		}
	}
	return domain.CategoryOther
}
