package main

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/couchcryptid/notam-briefing-service/internal/adapter/llm"
	"github.com/couchcryptid/notam-briefing-service/internal/domain"
	"github.com/couchcryptid/notam-briefing-service/internal/pipeline"
)

type briefer interface {
	Brief(ctx context.Context, req pipeline.BriefingRequest) (pipeline.Briefing, error)
}

type tools struct {
	fetcher pipeline.NotamFetcher
	briefer briefer
}

func registerTools(s *server.MCPServer, t *tools) {
	s.AddTool(mcp.NewTool("fetch_notams",
		mcp.WithDescription("List the NOTAMs for an airport, optionally limited to those active in a look-ahead window."),
		mcp.WithString("icao", mcp.Required(), mcp.Description("4-character ICAO airport code, e.g. KJFK")),
		mcp.WithNumber("value", mcp.Description("Window length, default 24")),
		mcp.WithString("unit", mcp.Description("Window unit"), mcp.Enum("hours", "days")),
		mcp.WithBoolean("filter", mcp.Description("Only return NOTAMs active in the window, default true")),
	), t.fetchNotams)

	s.AddTool(mcp.NewTool("brief_airport",
		mcp.WithDescription("Produce a prioritized operational briefing of the NOTAMs active at an airport."),
		mcp.WithString("icao", mcp.Required(), mcp.Description("4-character ICAO airport code, e.g. KJFK")),
		mcp.WithNumber("value", mcp.Description("Window length, default 24")),
		mcp.WithString("unit", mcp.Description("Window unit"), mcp.Enum("hours", "days")),
		mcp.WithString("focus", mcp.Description("Briefing emphasis"), mcp.Enum("general", "runway", "airspace")),
	), t.briefAirport)

	s.AddTool(mcp.NewTool("parse_notam",
		mcp.WithDescription("Split a raw ICAO-format NOTAM into its Q) A) B) C) D) E) fields."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Raw NOTAM text")),
	), t.parseNotam)
}

func (t *tools) fetchNotams(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	icao, err := req.RequireString("icao")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := t.fetcher.FetchNotams(ctx, pipeline.FetchRequest{
		ICAO:            icao,
		TimeValue:       req.GetInt("value", pipeline.DefaultTimeValue),
		TimeUnit:        domain.TimeUnit(req.GetString("unit", string(domain.UnitHours))),
		EnableFiltering: req.GetBool("filter", true),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (t *tools) briefAirport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	icao, err := req.RequireString("icao")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	brief, err := t.briefer.Brief(ctx, pipeline.BriefingRequest{
		ICAO:      icao,
		TimeValue: req.GetInt("value", pipeline.DefaultTimeValue),
		TimeUnit:  domain.TimeUnit(req.GetString("unit", string(domain.UnitHours))),
		Focus:     llm.Focus(req.GetString("focus", string(llm.FocusGeneral))),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if brief.Summary != "" {
		return mcp.NewToolResultText(brief.Summary), nil
	}
	// No summarizer configured: hand the client the parsed records instead.
	return jsonResult(brief)
}

func (t *tools) parseNotam(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	parsed := domain.ParseRawNotam(text)
	if parsed == nil {
		return mcp.NewToolResultError("NOTAM text is empty"), nil
	}
	return jsonResult(parsed)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
