package app

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the EventStock server version and status. Use this to verify connectivity."),
	)
}

// createEventStatsTool returns the event_stats tool definition
func createEventStatsTool() mcp.Tool {
	return mcp.NewTool("event_stats",
		mcp.WithDescription("Load company profiles, stock prices and news for an event and return per-company statistics over the event window: news mentions, min/max/start/end stock price and average social activity."),
		mcp.WithString("event",
			mcp.Required(),
			mcp.Description(`Event record as JSON, e.g. {"name":"Oil Spill","start_date":"2020-01-01","end_date":"ongoing","keywords":["oil","spill"],"related_companies":{"BP":"BP","Local Fishery":null}}`),
		),
		mcp.WithNumber("timeout_seconds",
			mcp.Description("Maximum time to wait for every source to load (default: 60)"),
		),
	)
}

// createPurgeCacheTool returns the purge_cache tool definition
func createPurgeCacheTool() mcp.Tool {
	return mcp.NewTool("purge_cache",
		mcp.WithDescription("Empty the source cache so the next request fetches profiles and stock prices again."),
	)
}
