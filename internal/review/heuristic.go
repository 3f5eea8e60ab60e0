package review

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/igorsal/commit-reviewer/internal/interfaces"
	"github.com/igorsal/commit-reviewer/internal/models"
)

const (
	baseScore = 8.0
	minScore  = 0.0
	maxScore  = 10.0

	// diffs longer than this are flagged as hard to review in one commit
	largeDiffLines = 100
)

var conventionalCommitPattern = regexp.MustCompile(`^(feat|fix|docs|style|refactor|test|chore):`)

// HeuristicEngine is the reference ReviewEngine implementation. It scores
// commits with a fixed rule set; any replacement must keep the same score
// direction (higher is better) and output shape.
type HeuristicEngine struct {
	logger interfaces.Logger
}

// NewHeuristicEngine creates the rule-based review engine
func NewHeuristicEngine(logger interfaces.Logger) *HeuristicEngine {
	return &HeuristicEngine{logger: logger}
}

// Review scores one commit from its per-file diffs and commit message
func (e *HeuristicEngine) Review(_ context.Context, req models.ReviewRequest) (*models.ReviewResult, error) {
	score := baseScore
	var issues []models.Issue
	var positives []string

	for _, file := range req.Files {
		diff := strings.ToLower(file.Diff)

		if strings.Contains(diff, "password") || strings.Contains(diff, "secret") || strings.Contains(diff, "token") {
			issues = append(issues, models.Issue{
				Severity:   models.SeverityHigh,
				Type:       models.IssueSecurity,
				File:       file.FilePath,
				Message:    "Diff appears to contain credential-like material (password, secret or token)",
				Suggestion: "Store sensitive values in environment variables or a secrets manager",
			})
			score -= 2
		}

		if strings.Contains(diff, "console.log") || strings.Contains(diff, "print(") {
			issues = append(issues, models.Issue{
				Severity:   models.SeverityLow,
				Type:       models.IssueStyle,
				File:       file.FilePath,
				Message:    "Diff contains debug print statements",
				Suggestion: "Remove debug output or switch to the project logging framework",
			})
			score -= 0.5
		}

		if strings.Contains(diff, "todo") || strings.Contains(diff, "fixme") {
			issues = append(issues, models.Issue{
				Severity:   models.SeverityMedium,
				Type:       models.IssueMaintainability,
				File:       file.FilePath,
				Message:    "Diff contains TODO/FIXME markers",
				Suggestion: "Resolve the marker or file a tracking task for it",
			})
		}

		if len(strings.Split(file.Diff, "\n")) > largeDiffLines {
			issues = append(issues, models.Issue{
				Severity:   models.SeverityMedium,
				Type:       models.IssueMaintainability,
				File:       file.FilePath,
				Message:    "Change is large for a single commit",
				Suggestion: "Split large changes into smaller, logically scoped commits",
			})
			score -= 1
		}

		if strings.Contains(diff, "test") || strings.Contains(diff, "spec") {
			positives = append(positives, fmt.Sprintf("%s includes test code", file.FilePath))
			score += 0.5
		}

		if strings.Contains(diff, "/**") || strings.Contains(diff, "//") {
			positives = append(positives, fmt.Sprintf("%s carries code comments", file.FilePath))
		}
	}

	if len(req.CommitMessage) < 10 {
		issues = append(issues, models.Issue{
			Severity:   models.SeverityLow,
			Type:       models.IssueDocumentation,
			File:       "commit",
			Message:    "Commit message is very short",
			Suggestion: "Describe what changed and why in the commit message",
		})
		score -= 0.5
	}

	if conventionalCommitPattern.MatchString(req.CommitMessage) {
		positives = append(positives, "Commit message follows the conventional commit format")
		score += 0.5
	}

	if score < minScore {
		score = minScore
	}
	if score > maxScore {
		score = maxScore
	}

	return &models.ReviewResult{
		OverallScore:    score,
		Summary:         buildSummary(len(req.Files), len(issues), len(positives)),
		Issues:          issues,
		Positives:       positives,
		Recommendations: buildRecommendations(issues),
	}, nil
}

func buildSummary(fileCount, issueCount, positiveCount int) string {
	summary := fmt.Sprintf("Commit changes %d file(s). ", fileCount)
	if issueCount > 0 {
		summary += fmt.Sprintf("Found %d issue(s) that need attention. ", issueCount)
	} else {
		summary += "Code quality looks good. "
	}
	if positiveCount > 0 {
		summary += fmt.Sprintf("%d positive aspect(s) noted.", positiveCount)
	}
	return strings.TrimSpace(summary)
}

func buildRecommendations(issues []models.Issue) []string {
	if len(issues) == 0 {
		return []string{"Code quality looks good, keep it up"}
	}

	recommendations := []string{"Run linters and static checks before committing"}
	if hasIssueType(issues, models.IssueSecurity) {
		recommendations = append(recommendations, "Schedule regular security audits")
	}
	if hasIssueType(issues, models.IssueMaintainability) {
		recommendations = append(recommendations, "Follow the project coding standards and best practices")
	}
	return recommendations
}

func hasIssueType(issues []models.Issue, issueType models.IssueType) bool {
	for _, issue := range issues {
		if issue.Type == issueType {
			return true
		}
	}
	return false
}
