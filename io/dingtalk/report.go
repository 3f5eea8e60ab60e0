package dingtalk

import (
	"fmt"
	"strings"
	"time"

	"github.com/igorsal/commit-reviewer/internal/models"
)

// severity grouping order for batch reports
var severityOrder = []models.Severity{
	models.SeverityCritical,
	models.SeverityHigh,
	models.SeverityMedium,
	models.SeverityLow,
}

func severityGlyph(severity models.Severity) string {
	switch severity {
	case models.SeverityCritical:
		return "🚨"
	case models.SeverityHigh:
		return "⚠️"
	case models.SeverityMedium:
		return "⚡"
	case models.SeverityLow:
		return "💡"
	default:
		return "📝"
	}
}

func scoreGlyph(score float64) string {
	switch {
	case score >= 9:
		return "🏆"
	case score >= 7:
		return "✅"
	case score >= 5:
		return "🔶"
	default:
		return "🔴"
	}
}

// buildReviewReport renders a single-commit review as a markdown report
func buildReviewReport(n models.ReviewNotification, now time.Time) (title, text string) {
	var b strings.Builder

	b.WriteString("# 🔍 Code Review Report\n\n")
	b.WriteString("## 📋 Details\n")
	fmt.Fprintf(&b, "- **Project**: %s\n", n.ProjectName)
	fmt.Fprintf(&b, "- **Branch**: %s\n", n.Branch)
	fmt.Fprintf(&b, "- **Author**: %s\n", n.Commit.Author)
	fmt.Fprintf(&b, "- **Commit**: [%s](%s)\n", n.Commit.ShortID, n.Commit.URL)
	fmt.Fprintf(&b, "- **Message**: %s\n\n", n.Commit.Message)

	b.WriteString("## 📊 Result\n")
	fmt.Fprintf(&b, "%s **Overall score**: %.1f/10\n\n", scoreGlyph(n.Review.OverallScore), n.Review.OverallScore)
	fmt.Fprintf(&b, "**Summary**: %s\n", n.Review.Summary)

	if len(n.Review.Issues) > 0 {
		fmt.Fprintf(&b, "\n## ⚠️ Issues (%d)\n", len(n.Review.Issues))
		for _, issue := range n.Review.Issues {
			writeIssue(&b, issue, "")
		}
	}

	writePositives(&b, n.Review.Positives)
	writeRecommendations(&b, n.Review.Recommendations)
	writeFooter(&b, now)

	return fmt.Sprintf("%s code review", n.ProjectName), b.String()
}

// buildBatchReport renders a whole push as one aggregate markdown report.
// Commits appear in input order; recommendations are de-duplicated across
// commits, first occurrence wins.
func buildBatchReport(n models.BatchNotification, now time.Time) (title, text string) {
	var b strings.Builder

	totalIssues := 0
	scoreSum := 0.0
	for _, review := range n.Reviews {
		totalIssues += len(review.Review.Issues)
		scoreSum += review.Review.OverallScore
	}
	averageScore := 0.0
	if len(n.Reviews) > 0 {
		averageScore = scoreSum / float64(len(n.Reviews))
	}

	b.WriteString("# 📦 Push Review Report\n\n")
	b.WriteString("## 📋 Details\n")
	fmt.Fprintf(&b, "- **Project**: %s\n", n.ProjectName)
	fmt.Fprintf(&b, "- **Branch**: %s\n", n.Branch)
	fmt.Fprintf(&b, "- **Commits**: %d\n", len(n.Reviews))
	fmt.Fprintf(&b, "- **Author**: %s\n\n", n.Author)

	b.WriteString("## 📊 Overall Result\n")
	fmt.Fprintf(&b, "%s **Average score**: %.1f/10\n", scoreGlyph(averageScore), averageScore)
	fmt.Fprintf(&b, "🔍 **Total issues**: %d\n\n", totalIssues)

	b.WriteString("## 📝 Commits\n")
	for i, review := range n.Reviews {
		fmt.Fprintf(&b, "\n### %d. [%s](%s) %s %.1f/10\n",
			i+1, review.Commit.ShortID, review.Commit.URL,
			scoreGlyph(review.Review.OverallScore), review.Review.OverallScore)
		fmt.Fprintf(&b, "**Author**: %s\n", review.Commit.Author)
		fmt.Fprintf(&b, "**Message**: %s\n", firstLine(review.Commit.Message))
		fmt.Fprintf(&b, "**Issues**: %d\n", len(review.Review.Issues))
	}

	if totalIssues > 0 {
		fmt.Fprintf(&b, "\n## ⚠️ Issues by Severity (%d)\n", totalIssues)
		for _, severity := range severityOrder {
			var grouped []issueWithCommit
			for _, review := range n.Reviews {
				for _, issue := range review.Review.Issues {
					if issue.Severity == severity {
						grouped = append(grouped, issueWithCommit{issue: issue, commit: review.Commit.ShortID})
					}
				}
			}
			if len(grouped) == 0 {
				continue
			}
			fmt.Fprintf(&b, "\n### %s %s (%d)\n", severityGlyph(severity), strings.ToUpper(string(severity)), len(grouped))
			for _, item := range grouped {
				writeIssue(&b, item.issue, item.commit)
			}
		}
	}

	writeRecommendations(&b, dedupeRecommendations(n.Reviews))
	writeFooter(&b, now)

	return fmt.Sprintf("%s push review (%d commits)", n.ProjectName, len(n.Reviews)), b.String()
}

type issueWithCommit struct {
	issue  models.Issue
	commit string
}

func writeIssue(b *strings.Builder, issue models.Issue, commit string) {
	location := issue.File
	if issue.Line > 0 {
		location = fmt.Sprintf("%s (line %d)", issue.File, issue.Line)
	}
	if commit != "" {
		fmt.Fprintf(b, "- **File**: %s - **Commit**: %s\n", location, commit)
	} else {
		fmt.Fprintf(b, "- **File**: %s [%s/%s]\n", location, strings.ToUpper(string(issue.Severity)), issue.Type)
	}
	fmt.Fprintf(b, "  **Problem**: %s\n", issue.Message)
	if issue.Suggestion != "" {
		fmt.Fprintf(b, "  **Suggestion**: %s\n", issue.Suggestion)
	}
}

func writePositives(b *strings.Builder, positives []string) {
	if len(positives) == 0 {
		return
	}
	b.WriteString("\n## 👍 Positives\n")
	for _, positive := range positives {
		fmt.Fprintf(b, "- ✅ %s\n", positive)
	}
}

func writeRecommendations(b *strings.Builder, recommendations []string) {
	if len(recommendations) == 0 {
		return
	}
	b.WriteString("\n## 💡 Recommendations\n")
	for _, rec := range recommendations {
		fmt.Fprintf(b, "- 🔧 %s\n", rec)
	}
}

func writeFooter(b *strings.Builder, now time.Time) {
	fmt.Fprintf(b, "\n---\n*Generated by the commit review service • %s*", now.Format("2006-01-02 15:04:05"))
}

func dedupeRecommendations(reviews []models.CommitReview) []string {
	seen := make(map[string]bool)
	var out []string
	for _, review := range reviews {
		for _, rec := range review.Review.Recommendations {
			if seen[rec] {
				continue
			}
			seen[rec] = true
			out = append(out, rec)
		}
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
