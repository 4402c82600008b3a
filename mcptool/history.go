package mcptool

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/maastricht-university/meeting-clarity/meeting"
)

const HistoryToolName = "meeting_history"

// HistoryLister lists stored analyses for an owner.
type HistoryLister interface {
	History(ctx context.Context, owner string) ([]meeting.Summary, error)
}

// HistoryTool handles the meeting_history tool.
type HistoryTool struct {
	meetings HistoryLister
}

func NewHistoryTool(m HistoryLister) *HistoryTool {
	return &HistoryTool{meetings: m}
}

func (t *HistoryTool) Definition() mcp.Tool {
	return mcp.NewTool(HistoryToolName,
		mcp.WithDescription("List the analyzed meetings of an owner, oldest first, with their clarity index."),
		mcp.WithString("owner",
			mcp.Required(),
			mcp.Description("Owner the meetings were analyzed for"),
		),
	)
}

func (t *HistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	owner := strings.TrimSpace(req.GetString("owner", ""))
	if owner == "" {
		return mcp.NewToolResultError("'owner' is required"), nil
	}
	list, err := t.meetings.History(ctx, owner)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("history failed: %v", err)), nil
	}
	if len(list) == 0 {
		return mcp.NewToolResultText("No meetings found for " + owner + "."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d meetings for %s:\n\n", len(list), owner)
	for _, s := range list {
		fmt.Fprintf(&b, "- %s  %s  %q  clarity %d, jargon %d, %.0fs\n",
			s.CreatedAt.Format("2006-01-02 15:04"), s.ID, s.Label, s.ClarityIndex, s.TotalJargonCount, s.DurationSec)
	}
	return mcp.NewToolResultText(b.String()), nil
}
