package mcp

import "github.com/mark3labs/mcp-go/mcp"

// classifyDomainTool defines the classify_domain MCP tool.
var classifyDomainTool = mcp.NewTool("classify_domain",
	mcp.WithDescription("Classify a website domain into interest taxonomy topics. Returns topic ids, names, confidence, and how the match was made."),
	mcp.WithString("domain",
		mcp.Required(),
		mcp.Description("Domain or URL to classify, e.g. netflix.com"),
	),
)

// searchTopicsTool defines the search_topics MCP tool.
var searchTopicsTool = mcp.NewTool("search_topics",
	mcp.WithDescription("Search the interest taxonomy by keyword. Matches topic names and descriptions."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Keyword to search for"),
	),
)

// getCohortsTool defines the get_cohorts MCP tool.
var getCohortsTool = mcp.NewTool("get_cohorts",
	mcp.WithDescription("Get the device's current cohort assignments. Use the shareable view to see only what would be disclosed to third parties."),
	mcp.WithBoolean("shareable",
		mcp.Description("Return only the privacy-limited shareable subset (default false)"),
	),
)

// getCohortMetricsTool defines the get_cohort_metrics MCP tool.
var getCohortMetricsTool = mcp.NewTool("get_cohort_metrics",
	mcp.WithDescription("Get noised, privacy-thresholded aggregate ad metrics per cohort."),
	mcp.WithString("cohorts",
		mcp.Description("Comma-separated cohort ids to include (default all)"),
	),
)
