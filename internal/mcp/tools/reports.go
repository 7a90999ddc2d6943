package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/warebase/server/internal/reports"
)

// ReportTools provides MCP tools over the reporting service.
type ReportTools struct {
	reports *reports.Service
}

func NewReportTools(reportsService *reports.Service) *ReportTools {
	return &ReportTools{reports: reportsService}
}

// OrganizationStatsTool returns the MCP tool definition for operational stats.
func (t *ReportTools) OrganizationStatsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "organization_stats",
		Description: "Summarize one organization: item and warehouse counts, stock on hand and allocated, low stock items, orders by status, and open shipments.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"organization_id": map[string]interface{}{
					"type":        "integer",
					"description": "Organization to summarize",
				},
			},
			Required: []string{"organization_id"},
		},
	}
}

// OrganizationStatsHandler handles the organization_stats tool call.
func (t *ReportTools) OrganizationStatsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t == nil || t.reports == nil {
		return mcp.NewToolResultError("reports service not configured"), nil
	}

	args := struct {
		OrganizationID int64 `json:"organization_id"`
	}{}
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	if args.OrganizationID <= 0 {
		return mcp.NewToolResultError("organization_id parameter is required"), nil
	}

	stats, err := t.reports.Stats(ctx, args.OrganizationID)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to build stats", err), nil
	}
	return toolResultJSON(stats)
}
