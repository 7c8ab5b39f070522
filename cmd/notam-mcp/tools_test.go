package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/notam-briefing-service/internal/domain"
	"github.com/couchcryptid/notam-briefing-service/internal/pipeline"
)

type stubFetcher struct {
	result pipeline.FetchResult
	err    error
	req    pipeline.FetchRequest
}

func (s *stubFetcher) FetchNotams(_ context.Context, req pipeline.FetchRequest) (pipeline.FetchResult, error) {
	s.req = req
	return s.result, s.err
}

type stubBriefer struct {
	briefing pipeline.Briefing
	err      error
	req      pipeline.BriefingRequest
}

func (s *stubBriefer) Brief(_ context.Context, req pipeline.BriefingRequest) (pipeline.Briefing, error) {
	s.req = req
	return s.briefing, s.err
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestFetchNotamsTool(t *testing.T) {
	f := &stubFetcher{result: pipeline.FetchResult{
		ICAO:    "KJFK",
		Source:  domain.SourcePrimary,
		Records: []domain.NotamRecord{{Number: "A0001/24", Text: "RWY 04L CLSD", Source: domain.SourcePrimary}},
	}}
	tl := &tools{fetcher: f}

	res, err := tl.fetchNotams(context.Background(), callRequest(map[string]any{
		"icao":   "KJFK",
		"value":  float64(3),
		"unit":   "days",
		"filter": false,
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	assert.Equal(t, 3, f.req.TimeValue)
	assert.Equal(t, domain.UnitDays, f.req.TimeUnit)
	assert.False(t, f.req.EnableFiltering)

	var got pipeline.FetchResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	assert.Equal(t, "A0001/24", got.Records[0].Number)
}

func TestFetchNotamsTool_Defaults(t *testing.T) {
	f := &stubFetcher{}
	tl := &tools{fetcher: f}

	_, err := tl.fetchNotams(context.Background(), callRequest(map[string]any{"icao": "EGLL"}))
	require.NoError(t, err)
	assert.Equal(t, pipeline.DefaultTimeValue, f.req.TimeValue)
	assert.Equal(t, domain.UnitHours, f.req.TimeUnit)
	assert.True(t, f.req.EnableFiltering)
}

func TestFetchNotamsTool_Errors(t *testing.T) {
	t.Run("missing icao", func(t *testing.T) {
		res, err := (&tools{fetcher: &stubFetcher{}}).fetchNotams(context.Background(), callRequest(map[string]any{}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})

	t.Run("upstream failure", func(t *testing.T) {
		f := &stubFetcher{err: &domain.AggregateFetchError{ICAO: "KJFK", Primary: errors.New("timeout")}}
		res, err := (&tools{fetcher: f}).fetchNotams(context.Background(), callRequest(map[string]any{"icao": "KJFK"}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "timeout")
	})
}

func TestBriefAirportTool_Summary(t *testing.T) {
	b := &stubBriefer{briefing: pipeline.Briefing{ICAO: "KJFK", Summary: "🔴 **CRITICAL**\n• RWY 04L closed"}}
	tl := &tools{briefer: b}

	res, err := tl.briefAirport(context.Background(), callRequest(map[string]any{"icao": "KJFK", "focus": "runway"}))
	require.NoError(t, err)
	assert.Equal(t, "🔴 **CRITICAL**\n• RWY 04L closed", resultText(t, res))
	assert.Equal(t, "runway", string(b.req.Focus))
}

func TestBriefAirportTool_RecordsWithoutSummary(t *testing.T) {
	b := &stubBriefer{briefing: pipeline.Briefing{
		ICAO:    "KJFK",
		Records: []domain.NotamRecord{{Number: "A0001/24", Text: "RWY 04L CLSD"}},
	}}
	tl := &tools{briefer: b}

	res, err := tl.briefAirport(context.Background(), callRequest(map[string]any{"icao": "KJFK"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), `"number": "A0001/24"`)
}

func TestParseNotamTool(t *testing.T) {
	tl := &tools{}

	res, err := tl.parseNotam(context.Background(), callRequest(map[string]any{
		"text": "A0009/24 NOTAMC A0001/24\nA) KJFK\nE) CANCELLED",
	}))
	require.NoError(t, err)

	var parsed domain.ParsedNotamBody
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &parsed))
	assert.True(t, parsed.IsCancellation)
	assert.Equal(t, "A0001/24", parsed.CancelsNotam)

	res, err = tl.parseNotam(context.Background(), callRequest(map[string]any{"text": "  "}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
