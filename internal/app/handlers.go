package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/eventstock/internal/common"
	"github.com/bobmcallan/eventstock/internal/interfaces"
	"github.com/bobmcallan/eventstock/internal/models"
	"github.com/bobmcallan/eventstock/internal/services/aggregate"
)

const defaultStatsTimeout = 60 * time.Second

// handleGetVersion implements the get_version tool
func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		info := common.GetVersionInfo()
		result := fmt.Sprintf("EventStock MCP Server\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			info.Version, info.Build, info.Commit)
		return textResult(result), nil
	}
}

// handleEventStats implements the event_stats tool
func handleEventStats(aggregateService interfaces.AggregateService, statsService interfaces.StatsService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := request.RequireString("event")
		if err != nil || raw == "" {
			return errorResult("Error: event parameter is required"), nil
		}

		var event models.EventRecord
		if err := json.Unmarshal([]byte(raw), &event); err != nil {
			return errorResult(fmt.Sprintf("Error: invalid event JSON: %v", err)), nil
		}

		timeout := defaultStatsTimeout
		if secs := request.GetFloat("timeout_seconds", 0); secs > 0 {
			timeout = time.Duration(secs * float64(time.Second))
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		agg, err := aggregate.LoadComplete(ctx, aggregateService, &event)
		if err != nil {
			logger.Error().Err(err).Str("event", event.Name).Msg("Event aggregation failed")
			return errorResult(fmt.Sprintf("Aggregation error: %v", err)), nil
		}

		window := event.Window(time.Now())
		stats := statsService.ComputeAll(&event, window, agg)
		return textResult(formatEventStats(&event, window, stats)), nil
	}
}

// handlePurgeCache implements the purge_cache tool
func handlePurgeCache(cache interfaces.CacheStore, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if cache == nil {
			return errorResult("Error: source cache is not configured"), nil
		}
		n, err := cache.Purge(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Cache purge failed")
			return errorResult(fmt.Sprintf("Purge error: %v", err)), nil
		}
		return textResult(fmt.Sprintf("Purged %d cached entries", n)), nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
