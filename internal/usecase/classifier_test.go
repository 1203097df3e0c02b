package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/naka-gawa/oss-stats/internal/domain"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		title    string
		labels   []string
		expected domain.Category
	}{
		{name: "bugfix beats feature", title: "fix: add new feature", expected: domain.CategoryBugfix},
		{name: "docs", title: "docs: update README", labels: []string{}, expected: domain.CategoryDocs},
		{name: "readme only", title: "Polish Readme wording", expected: domain.CategoryDocs},
		{name: "infra from title", title: "chore: bump deps", expected: domain.CategoryInfra},
		{name: "ci substring", title: "Tweak CI matrix", expected: domain.CategoryInfra},
		{name: "docs beats infra", title: "docs: document build steps", expected: domain.CategoryDocs},
		{name: "feature", title: "Implement dark mode", expected: domain.CategoryFeature},
		{name: "label decides", title: "Rework parser", labels: []string{"Type: Bug"}, expected: domain.CategoryBugfix},
		{name: "label case insensitive", title: "Something", labels: []string{"DOCUMENTATION"}, expected: domain.CategoryDocs},
		{name: "substring of a word still matches", title: "Prefix handling", expected: domain.CategoryBugfix},
		{name: "other", title: "Refactor logger", labels: nil, expected: domain.CategoryOther},
		{name: "empty", title: "", expected: domain.CategoryOther},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Classify(tc.title, tc.labels))
		})
	}
}
