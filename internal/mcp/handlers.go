package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/privacykit/cohortd/internal/cohort"
	"github.com/privacykit/cohortd/internal/metrics"
	"github.com/privacykit/cohortd/internal/taxonomy"
)

// handleClassifyDomain classifies one domain into taxonomy topics.
func (s *Server) handleClassifyDomain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	domain, err := request.RequireString("domain")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: domain"), nil
	}

	result, err := s.classifier.Classify(domain)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("classification failed: %v", err)), nil
	}

	tax, err := s.taxonomy.Get(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading taxonomy: %v", err)), nil
	}

	if len(result.TopicIDs) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No topics matched %s.", result.Domain)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Domain: %s\n", result.Domain)
	fmt.Fprintf(&sb, "Confidence: %.2f (source: %s)\n", result.Confidence, result.Source)
	sb.WriteString("Topics:\n")
	for _, id := range result.TopicIDs {
		name := "unknown"
		if topic, ok := tax.GetByID(id); ok {
			name = topic.Name
		}
		fmt.Fprintf(&sb, "  %d: %s\n", id, name)
	}
	if len(result.MatchedKeywords) > 0 {
		fmt.Fprintf(&sb, "Matched keywords: %s\n", strings.Join(result.MatchedKeywords, ", "))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleSearchTopics searches taxonomy names and descriptions.
func (s *Server) handleSearchTopics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	tax, err := s.taxonomy.Get(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading taxonomy: %v", err)), nil
	}

	topics := tax.Search(query)
	if len(topics) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No topics matched %q.", query)), nil
	}
	return mcp.NewToolResultText(formatTopics(topics)), nil
}

// handleGetCohorts returns current or shareable cohort assignments.
func (s *Server) handleGetCohorts(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var assignments []cohort.Assignment
	if request.GetBool("shareable", false) {
		assignments = s.cohorts.GetCohortsForSharing()
	} else {
		assignments = s.cohorts.GetCurrentCohorts()
	}

	if len(assignments) == 0 {
		return mcp.NewToolResultText("No cohort assignments. Run cohort assignment with recent browsing visits first."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d cohort assignment(s):\n", len(assignments))
	for _, a := range assignments {
		fmt.Fprintf(&sb, "  %d: %s (confidence %.2f, assigned %s, expires %s)\n",
			a.TopicID, a.TopicName, a.Confidence,
			a.AssignedDate.Format("2006-01-02"), a.ExpiryDate.Format("2006-01-02"))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleGetCohortMetrics returns noised per-cohort aggregates.
func (s *Server) handleGetCohortMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var cohortIDs []string
	if raw := request.GetString("cohorts", ""); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cohortIDs = append(cohortIDs, id)
			}
		}
	}

	aggregated, err := s.metrics.GetAggregatedMetrics(ctx, cohortIDs, metrics.TimeRange{})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("aggregation failed: %v", err)), nil
	}
	if len(aggregated) == 0 {
		return mcp.NewToolResultText("No metrics recorded yet."), nil
	}

	var sb strings.Builder
	for _, m := range aggregated {
		fmt.Fprintf(&sb, "Cohort %s:\n", m.CohortID)
		if !m.PrivacyThresholdMet {
			sb.WriteString("  suppressed (below privacy thresholds)\n")
			continue
		}
		fmt.Fprintf(&sb, "  impressions: %d, clicks: %d, conversions: %d\n",
			m.Impressions, m.Clicks, m.Conversions)
		fmt.Fprintf(&sb, "  CTR: %.2f%%, conversion rate: %.2f%%\n",
			m.ClickThroughRate, m.ConversionRate)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatTopics(topics []taxonomy.Topic) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d topic(s):\n", len(topics))
	for _, t := range topics {
		fmt.Fprintf(&sb, "  %d: %s (level %d", t.ID, t.Name, t.Level)
		if t.IsSensitive {
			sb.WriteString(", sensitive")
		}
		sb.WriteString(")\n")
	}
	return sb.String()
}
