package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const instructions = `Tools for the Feedbucket website feedback service.
Start with list_feedback (summary mode, small pages) and drill into single items with get_feedback.
Use get_feedback_stats for an overview of the whole project. add_comment and resolve_feedback change
data on the Feedbucket dashboard; call them only when the user asks for it.`

// NewServer создаёт MCP сервер и регистрирует на нём инструменты.
func NewServer(h *Handler, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"feedbucket",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	h.Register(s)
	return s
}

func feedbackTypes() []string {
	return []string{"screenshot", "video", "text"}
}

func listFeedbackTool() mcp.Tool {
	return mcp.NewTool("list_feedback",
		mcp.WithDescription("List feedback for the configured project with optional filters and pagination. "+
			"Returns compact summaries by default; set summary=false for full records."),
		mcp.WithBoolean("resolved", mcp.Description("Only resolved (true) or unresolved (false) feedback")),
		mcp.WithString("page", mcp.Description("Substring of the page URL the feedback was left on")),
		mcp.WithString("reporter", mcp.Description("Substring of the reporter name")),
		mcp.WithString("type", mcp.Description("Feedback kind"), mcp.Enum(feedbackTypes()...)),
		mcp.WithString("created_after", mcp.Description("ISO-8601 timestamp, inclusive lower bound")),
		mcp.WithString("created_before", mcp.Description("ISO-8601 timestamp, inclusive upper bound")),
		mcp.WithNumber("limit",
			mcp.Description("Page size, 1..50 (default 20)"),
			mcp.Min(1),
			mcp.Max(MaxLimit),
		),
		mcp.WithNumber("offset", mcp.Description("Number of matching items to skip (default 0)"), mcp.Min(0)),
		mcp.WithBoolean("summary", mcp.Description("Return summaries instead of full records (default true)")),
	)
}

func getFeedbackTool() mcp.Tool {
	return mcp.NewTool("get_feedback",
		mcp.WithDescription("Get one feedback item with comments, attachments and session data."),
		mcp.WithNumber("feedback_id", mcp.Required(), mcp.Description("Feedback identifier")),
	)
}

func statsTool() mcp.Tool {
	return mcp.NewTool("get_feedback_stats",
		mcp.WithDescription("Aggregate statistics over all feedback of the project: counts by status and type, "+
			"top pages and reporters, comment and attachment totals."),
	)
}

func addCommentTool() mcp.Tool {
	return mcp.NewTool("add_comment",
		mcp.WithDescription("Add a comment to a feedback item. Optionally resolve the item in the same call."),
		mcp.WithNumber("feedback_id", mcp.Required(), mcp.Description("Feedback identifier")),
		mcp.WithString("body", mcp.Required(), mcp.Description("Comment text")),
		mcp.WithString("reporter_name", mcp.Description("Author name (default AI Assistant)")),
		mcp.WithString("reporter_email", mcp.Description("Author email")),
		mcp.WithBoolean("resolve", mcp.Description("Also mark the feedback as resolved (default false)")),
	)
}

func resolveFeedbackTool() mcp.Tool {
	return mcp.NewTool("resolve_feedback",
		mcp.WithDescription("Mark a feedback item as resolved."),
		mcp.WithNumber("feedback_id", mcp.Required(), mcp.Description("Feedback identifier")),
	)
}

func checkConnectionTool() mcp.Tool {
	return mcp.NewTool("check_connection",
		mcp.WithDescription("Check that the Feedbucket API is reachable with the configured credentials."),
	)
}
