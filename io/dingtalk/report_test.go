package dingtalk

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/igorsal/commit-reviewer/internal/models"
)

func TestScoreGlyphThresholds(t *testing.T) {
	assert.Equal(t, "🏆", scoreGlyph(9.0))
	assert.Equal(t, "✅", scoreGlyph(7.0))
	assert.Equal(t, "🔶", scoreGlyph(5.0))
	assert.Equal(t, "🔴", scoreGlyph(4.9))
}

func TestBuildReviewReportSections(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	title, text := buildReviewReport(models.ReviewNotification{
		ProjectName: "demo",
		Branch:      "main",
		Commit: models.CommitRecord{
			ShortID: "abcdef12",
			Message: "feat: add login",
			Author:  "dev",
			URL:     "https://gitlab.example.com/demo/-/commit/abcdef12",
		},
		Review: models.ReviewResult{
			OverallScore: 6.0,
			Summary:      "one problem found",
			Issues: []models.Issue{
				{
					Severity:   models.SeverityHigh,
					Type:       models.IssueSecurity,
					File:       "config.go",
					Line:       12,
					Message:    "credential material in diff",
					Suggestion: "use environment variables",
				},
			},
			Positives:       []string{"includes tests"},
			Recommendations: []string{"audit regularly"},
		},
	}, now)

	assert.Equal(t, "demo code review", title)
	assert.Contains(t, text, "- **Project**: demo")
	assert.Contains(t, text, "- **Branch**: main")
	assert.Contains(t, text, "🔶 **Overall score**: 6.0/10")
	assert.Contains(t, text, "config.go (line 12)")
	assert.Contains(t, text, "use environment variables")
	assert.Contains(t, text, "- ✅ includes tests")
	assert.Contains(t, text, "- 🔧 audit regularly")
	assert.Contains(t, text, "2024-05-01")
}

func TestBuildBatchReportGroupsIssuesBySeverity(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	commit := func(short string) models.CommitRecord {
		return models.CommitRecord{ShortID: short, URL: "https://gitlab.example.com/demo/-/commit/" + short, Author: "dev", Message: "change"}
	}

	_, text := buildBatchReport(models.BatchNotification{
		ProjectName: "demo",
		Branch:      "main",
		Author:      "dev",
		Reviews: []models.CommitReview{
			{
				Commit: commit("aaaaaaaa"),
				Review: models.ReviewResult{
					OverallScore: 6,
					Issues: []models.Issue{
						{Severity: models.SeverityLow, Type: models.IssueStyle, File: "a.go", Message: "debug output"},
					},
					Recommendations: []string{"run linters", "audit regularly"},
				},
			},
			{
				Commit: commit("bbbbbbbb"),
				Review: models.ReviewResult{
					OverallScore: 4,
					Issues: []models.Issue{
						{Severity: models.SeverityHigh, Type: models.IssueSecurity, File: "b.go", Message: "hardcoded token"},
					},
					Recommendations: []string{"run linters"},
				},
			},
		},
	}, now)

	// high severity issues render before low ones
	highIdx := strings.Index(text, "HIGH (1)")
	lowIdx := strings.Index(text, "LOW (1)")
	assert.Greater(t, highIdx, 0)
	assert.Greater(t, lowIdx, highIdx)

	// commits keep input order
	firstIdx := strings.Index(text, "1. [aaaaaaaa]")
	secondIdx := strings.Index(text, "2. [bbbbbbbb]")
	assert.Greater(t, firstIdx, 0)
	assert.Greater(t, secondIdx, firstIdx)

	// recommendations de-duplicated, first occurrence wins
	assert.Equal(t, 1, strings.Count(text, "run linters"))
	assert.Equal(t, 1, strings.Count(text, "audit regularly"))
}
